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

package mnemonic

import (
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-seedshare/pkg/checksum"
	"github.com/jeremyhahn/go-seedshare/pkg/crypto/bitpack"
)

var (
	// ErrInvalidWordCount is returned when a mnemonic has a word count that
	// no entropy length produces.
	ErrInvalidWordCount = errors.New("mnemonic: invalid word count")

	// ErrWidthMismatch is returned when BIP-39 entropy is encoded with a
	// codec whose wordlist is not 11 bits wide.
	ErrWidthMismatch = errors.New("mnemonic: wordlist width mismatch")
)

// EntropyLayout describes the BIP-39 encoding of a given entropy length.
type EntropyLayout struct {
	EntropyLen   int // bytes of entropy
	ChecksumBits int // EntropyLen*8/32
	Bits         int // entropy plus checksum bits
	Words        int // 11-bit words
}

// LayoutForEntropy returns the layout for n bytes of entropy.
func LayoutForEntropy(n int) (EntropyLayout, error) {
	if !checksum.ValidEntropyLength(n) {
		return EntropyLayout{}, fmt.Errorf("%w: %d bytes", checksum.ErrInvalidEntropyLength, n)
	}
	bits := 8*n + checksum.BIP39Bits(n)
	return EntropyLayout{
		EntropyLen:   n,
		ChecksumBits: checksum.BIP39Bits(n),
		Bits:         bits,
		Words:        bitpack.SymbolCount(bits, bitpack.MnemonicWidth),
	}, nil
}

// LayoutForWordCount returns the layout of a mnemonic with words words.
func LayoutForWordCount(words int) (EntropyLayout, error) {
	if words%3 != 0 {
		return EntropyLayout{}, fmt.Errorf("%w: %d", ErrInvalidWordCount, words)
	}
	layout, err := LayoutForEntropy(words / 3 * 4)
	if err != nil || layout.Words != words {
		return EntropyLayout{}, fmt.Errorf("%w: %d", ErrInvalidWordCount, words)
	}
	return layout, nil
}

func (c *Codec) requireWidth(width int) error {
	if c.Width() != width {
		return fmt.Errorf("%w: have %d bits, need %d", ErrWidthMismatch, c.Width(), width)
	}
	return nil
}

// EncodeEntropy renders entropy as a BIP-39 mnemonic. The codec must use
// an 11-bit wordlist.
func (c *Codec) EncodeEntropy(entropy []byte) ([]string, error) {
	if err := c.requireWidth(bitpack.MnemonicWidth); err != nil {
		return nil, err
	}
	layout, err := LayoutForEntropy(len(entropy))
	if err != nil {
		return nil, err
	}
	data, err := checksum.AppendBIP39(entropy)
	if err != nil {
		return nil, err
	}
	symbols, err := bitpack.Unpack(data, bitpack.MnemonicWidth)
	if err != nil {
		return nil, err
	}
	return c.SymbolsToWords(symbols[:layout.Words])
}

// DecodeEntropy parses a BIP-39 mnemonic and returns its entropy after
// verifying the checksum.
func (c *Codec) DecodeEntropy(words []string) ([]byte, error) {
	if err := c.requireWidth(bitpack.MnemonicWidth); err != nil {
		return nil, err
	}
	layout, err := LayoutForWordCount(len(words))
	if err != nil {
		return nil, err
	}
	symbols, err := c.WordsToSymbols(words)
	if err != nil {
		return nil, err
	}
	data, err := bitpack.Pack(symbols, bitpack.MnemonicWidth)
	if err != nil {
		return nil, err
	}
	if len(data) != layout.EntropyLen+1 {
		panic(fmt.Sprintf("mnemonic: packed %d bytes for %d words", len(data), layout.Words))
	}
	return checksum.VerifyBIP39(data)
}
