// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedshare.
//
// go-seedshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package seedshare

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jeremyhahn/go-seedshare/pkg/checksum"
	"github.com/jeremyhahn/go-seedshare/pkg/crypto/bitpack"
	"github.com/jeremyhahn/go-seedshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-seedshare/pkg/kdf"
	"github.com/jeremyhahn/go-seedshare/pkg/logging"
	"github.com/jeremyhahn/go-seedshare/pkg/metrics"
	"github.com/jeremyhahn/go-seedshare/pkg/mnemonic"
	"github.com/jeremyhahn/go-seedshare/pkg/mnemonic/wordlists"
	"github.com/jeremyhahn/go-seedshare/pkg/share"
)

// TextBlock is the alignment of text secrets. Text is padded with NUL
// bytes to a multiple of TextBlock before splitting.
const TextBlock = 4

// Config configures an Engine. Zero values select the built-in wordlists,
// crypto/rand and a discarding logger.
type Config struct {
	// ShareWordlist is the 1024-word alphabet for share words.
	ShareWordlist *mnemonic.Wordlist

	// MnemonicWordlist is the 2048-word BIP-39 alphabet.
	MnemonicWordlist *mnemonic.Wordlist

	// Random supplies polynomial coefficients and generated entropy.
	Random io.Reader

	// Logger receives operation records and rejected-share warnings.
	// Secrets are never logged.
	Logger *logging.Logger
}

// Engine splits and merges secrets.
type Engine struct {
	shares   *mnemonic.Codec
	mnemonic *mnemonic.Codec
	random   io.Reader
	logger   *logging.Logger
}

// NewEngine creates an Engine. cfg may be nil.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	shareWords, err := withDefault(cfg.ShareWordlist, wordlists.SLIP39)
	if err != nil {
		return nil, err
	}
	if shareWords.Width() != share.SymbolWidth {
		return nil, fmt.Errorf("%w: share wordlist is %d bits, need %d",
			ErrWordlistWidth, shareWords.Width(), share.SymbolWidth)
	}
	mnemonicWords, err := withDefault(cfg.MnemonicWordlist, wordlists.English)
	if err != nil {
		return nil, err
	}
	if mnemonicWords.Width() != bitpack.MnemonicWidth {
		return nil, fmt.Errorf("%w: mnemonic wordlist is %d bits, need %d",
			ErrWordlistWidth, mnemonicWords.Width(), bitpack.MnemonicWidth)
	}

	e := &Engine{
		random: cfg.Random,
		logger: cfg.Logger,
	}
	if e.shares, err = mnemonic.NewCodec(shareWords); err != nil {
		return nil, err
	}
	if e.mnemonic, err = mnemonic.NewCodec(mnemonicWords); err != nil {
		return nil, err
	}
	if e.random == nil {
		e.random = rand.Reader
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	return e, nil
}

func withDefault(wl *mnemonic.Wordlist, def func() (*mnemonic.Wordlist, error)) (*mnemonic.Wordlist, error) {
	if wl != nil {
		return wl, nil
	}
	return def()
}

// observe records the outcome of op.
func (e *Engine) observe(op string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		metrics.RecordError(op, errorType(err))
		e.logger.Debug("operation failed", "operation", op, "error", err)
	}
	metrics.RecordOperation(op, status, time.Since(start).Seconds())
}

func validateSplit(secretLen, threshold, count int) error {
	if secretLen == 0 || secretLen%2 != 0 {
		return fmt.Errorf("%w: length must be positive and even, got %d", ErrInvalidSecret, secretLen)
	}
	if count < 1 || count > share.MaxIndex {
		return fmt.Errorf("%w: share count must be in [1, %d], got %d",
			secretsharing.ErrInvalidParameters, share.MaxIndex, count)
	}
	if threshold < 1 || threshold > count {
		return fmt.Errorf("%w: threshold must be in [1, %d], got %d",
			secretsharing.ErrInvalidParameters, count, threshold)
	}
	return nil
}

// SplitEntropy splits secret into count shares, any threshold of which
// reconstruct it. Each share is returned as its words. The secret must
// have a positive even length; 1 <= threshold <= count <= 32.
func (e *Engine) SplitEntropy(secret []byte, threshold, count int) (out [][]string, err error) {
	defer func(start time.Time) { e.observe(metrics.OpSplit, start, err) }(time.Now())

	if err := validateSplit(len(secret), threshold, count); err != nil {
		return nil, err
	}

	shares, err := secretsharing.Split(secret, threshold, count, e.random)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, s := range shares {
			clear(s.Value)
		}
	}()

	out = make([][]string, len(shares))
	for i, s := range shares {
		symbols, err := share.Encode(int(s.X), threshold, s.Value)
		if err != nil {
			return nil, err
		}
		if out[i], err = e.shares.SymbolsToWords(symbols); err != nil {
			return nil, err
		}
	}

	metrics.RecordSplit(len(secret), count)
	e.logger.Debug("split secret", "bytes", len(secret), "threshold", threshold, "count", count)
	return out, nil
}

// SplitText splits a text secret. The text is padded with NUL bytes to a
// multiple of TextBlock and must not itself contain NUL.
func (e *Engine) SplitText(text string, threshold, count int) ([][]string, error) {
	if text == "" || strings.IndexByte(text, 0) >= 0 {
		return nil, fmt.Errorf("%w: text must be non-empty and free of NUL bytes", ErrInvalidSecret)
	}
	padded := make([]byte, (len(text)+TextBlock-1)/TextBlock*TextBlock)
	copy(padded, text)
	defer clear(padded)
	return e.SplitEntropy(padded, threshold, count)
}

// SplitMnemonic verifies a BIP-39 mnemonic and splits its entropy.
func (e *Engine) SplitMnemonic(words []string, threshold, count int) ([][]string, error) {
	entropy, err := e.mnemonic.DecodeEntropy(words)
	if err != nil {
		return nil, err
	}
	defer clear(entropy)
	return e.SplitEntropy(entropy, threshold, count)
}

// DecodeShare parses share words into a verified share record.
func (e *Engine) DecodeShare(words []string) (*share.Share, error) {
	symbols, err := e.shares.WordsToSymbols(words)
	if err != nil {
		return nil, err
	}
	return share.Decode(symbols)
}

// EncodeShare renders a share record as words.
func (e *Engine) EncodeShare(s *share.Share) ([]string, error) {
	symbols, err := share.Encode(s.Index, s.Threshold, s.Payload)
	if err != nil {
		return nil, err
	}
	return e.shares.SymbolsToWords(symbols)
}

// Combine reconstructs the secret from share words. Every share is
// decoded and checked for a consistent threshold, payload length and
// distinct index before interpolation. At least threshold shares are
// required; the first threshold of them are used.
func (e *Engine) Combine(shares [][]string) (secret []byte, err error) {
	defer func(start time.Time) { e.observe(metrics.OpCombine, start, err) }(time.Now())

	decoded := make([]*share.Share, 0, len(shares))
	defer func() {
		for _, s := range decoded {
			clear(s.Payload)
		}
	}()

	for i, words := range shares {
		s, err := e.DecodeShare(words)
		if err != nil {
			return nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		if err := compatible(decoded, s); err != nil {
			return nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		decoded = append(decoded, s)
	}

	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: no shares given", secretsharing.ErrInsufficientShares)
	}
	threshold := decoded[0].Threshold
	if len(decoded) < threshold {
		return nil, fmt.Errorf("%w: need %d, got %d", secretsharing.ErrInsufficientShares, threshold, len(decoded))
	}

	secret, err = interpolate(decoded[:threshold])
	if err != nil {
		return nil, err
	}
	e.logger.Debug("combined shares", "threshold", threshold, "given", len(decoded), "bytes", len(secret))
	return secret, nil
}

// CombineMnemonic reconstructs a secret and renders it as a BIP-39
// mnemonic. The secret must be 16, 20, 24, 28 or 32 bytes.
func (e *Engine) CombineMnemonic(shares [][]string) ([]string, error) {
	secret, err := e.Combine(shares)
	if err != nil {
		return nil, err
	}
	defer clear(secret)
	return e.EncodeMnemonic(secret)
}

// EncodeMnemonic renders entropy as a BIP-39 mnemonic.
func (e *Engine) EncodeMnemonic(entropy []byte) ([]string, error) {
	return e.mnemonic.EncodeEntropy(entropy)
}

// CombineSeed reconstructs a secret and stretches it with passphrase
// using the SLIP39 derivation constants.
func (e *Engine) CombineSeed(shares [][]string, passphrase []byte) ([]byte, error) {
	secret, err := e.Combine(shares)
	if err != nil {
		return nil, err
	}
	defer clear(secret)
	return e.DeriveSeed(secret, passphrase)
}

// DeriveSeed stretches a reconstructed secret with passphrase using the
// SLIP39 derivation constants.
func (e *Engine) DeriveSeed(secret, passphrase []byte) (seed []byte, err error) {
	defer func(start time.Time) { e.observe(metrics.OpDeriveSeed, start, err) }(time.Now())
	return kdf.DeriveSeed(secret, passphrase, kdf.VariantSLIP39)
}

// CombineText reconstructs a text secret, dropping the NUL padding.
func (e *Engine) CombineText(shares [][]string) (string, error) {
	secret, err := e.Combine(shares)
	if err != nil {
		return "", err
	}
	defer clear(secret)
	return Text(secret), nil
}

// Text returns a reconstructed text secret without its NUL padding.
func Text(secret []byte) string {
	if i := bytes.IndexByte(secret, 0); i >= 0 {
		secret = secret[:i]
	}
	return string(secret)
}

// MnemonicSeed verifies a BIP-39 mnemonic and derives its 64-byte seed.
func (e *Engine) MnemonicSeed(words []string, passphrase []byte) (seed []byte, err error) {
	defer func(start time.Time) { e.observe(metrics.OpMnemonicSeed, start, err) }(time.Now())

	entropy, err := e.mnemonic.DecodeEntropy(words)
	if err != nil {
		return nil, err
	}
	clear(entropy)
	return kdf.MnemonicSeed(mnemonic.Join(words), passphrase)
}

// GenerateEntropy returns size bytes from the engine's random source.
// size must be a valid BIP-39 entropy length.
func (e *Engine) GenerateEntropy(size int) (entropy []byte, err error) {
	defer func(start time.Time) { e.observe(metrics.OpGenerate, start, err) }(time.Now())

	if !checksum.ValidEntropyLength(size) {
		return nil, fmt.Errorf("%w: %d bytes", checksum.ErrInvalidEntropyLength, size)
	}
	entropy = make([]byte, size)
	if _, err := io.ReadFull(e.random, entropy); err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	return entropy, nil
}

// GenerateMnemonic returns a new BIP-39 mnemonic with size bytes of
// entropy.
func (e *Engine) GenerateMnemonic(size int) ([]string, error) {
	entropy, err := e.GenerateEntropy(size)
	if err != nil {
		return nil, err
	}
	defer clear(entropy)
	return e.EncodeMnemonic(entropy)
}

// compatible checks next against already accepted shares.
func compatible(accepted []*share.Share, next *share.Share) error {
	if len(accepted) == 0 {
		return nil
	}
	first := accepted[0]
	if next.Threshold != first.Threshold {
		return fmt.Errorf("%w: share %d has threshold %d, expected %d",
			ErrThresholdMismatch, next.Index, next.Threshold, first.Threshold)
	}
	if len(next.Payload) != len(first.Payload) {
		return fmt.Errorf("%w: share %d carries %d bytes, expected %d",
			ErrLengthMismatch, next.Index, len(next.Payload), len(first.Payload))
	}
	for _, s := range accepted {
		if s.Index == next.Index {
			return fmt.Errorf("%w: %d", secretsharing.ErrDuplicateShareIndex, next.Index)
		}
	}
	return nil
}

// interpolate recovers the secret from exactly threshold compatible shares.
func interpolate(shares []*share.Share) ([]byte, error) {
	if len(shares) == 1 {
		return append([]byte(nil), shares[0].Payload...), nil
	}
	points := make([]secretsharing.Share, len(shares))
	for i, s := range shares {
		points[i] = secretsharing.Share{X: byte(s.Index), Value: s.Payload}
	}
	return secretsharing.Combine(points)
}
