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

// Package share frames Shamir share payloads into self-describing records
// and converts them to and from 10-bit word symbols.
//
// A framed share is the bit string
//
//	index-1 (5) | threshold-1 (5) | payload (8L) | checksum (32)
//
// packed MSB first and zero padded to a whole byte. The checksum covers
// the header and payload bits, zero padded to L+2 bytes. Every size
// calculation goes through LayoutFor so that framing and parsing agree.
package share

import (
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-seedshare/pkg/checksum"
	"github.com/jeremyhahn/go-seedshare/pkg/crypto/bitpack"
)

const (
	IndexBits     = 5
	ThresholdBits = 5
	HeaderBits    = IndexBits + ThresholdBits
	ChecksumBits  = checksum.ShareBits

	// OverheadBits is the per-share cost of the header and checksum.
	OverheadBits = HeaderBits + ChecksumBits

	MaxIndex     = 1 << IndexBits
	MaxThreshold = 1 << ThresholdBits

	// SymbolWidth is the bit width of one share word.
	SymbolWidth = bitpack.ShareWidth
)

var (
	// ErrInvalidParameters is returned when framing with an out of range
	// index, threshold or payload length.
	ErrInvalidParameters = errors.New("share: invalid parameters")

	// ErrMalformedShare is returned when a share fails to parse or its
	// checksum does not verify.
	ErrMalformedShare = errors.New("share: malformed share")
)

// Share is a decoded share record.
type Share struct {
	Index     int
	Threshold int
	Payload   []byte
	Checksum  uint32
}

// Layout describes the encoded size of a share with a given payload length.
type Layout struct {
	PayloadLen int // L, bytes of secret material
	Bits       int // 8L + OverheadBits
	Bytes      int // framed bytes, including pad bits
	Words      int // 10-bit symbols, padding-only symbol excluded
}

// LayoutFor returns the layout for a payload of payloadLen bytes.
// The length must be positive and even.
func LayoutFor(payloadLen int) (Layout, error) {
	if payloadLen <= 0 || payloadLen%2 != 0 {
		return Layout{}, fmt.Errorf("%w: payload length must be positive and even, got %d",
			ErrInvalidParameters, payloadLen)
	}
	bits := 8*payloadLen + OverheadBits
	return Layout{
		PayloadLen: payloadLen,
		Bits:       bits,
		Bytes:      bitpack.ByteCount(bits),
		Words:      bitpack.SymbolCount(bits, SymbolWidth),
	}, nil
}

// LayoutForWords returns the layout whose encoding is exactly words
// symbols long.
func LayoutForWords(words int) (Layout, error) {
	payloadLen := (words*SymbolWidth - OverheadBits) / 8
	if payloadLen%2 != 0 {
		payloadLen--
	}
	layout, err := LayoutFor(payloadLen)
	if err != nil || layout.Words != words {
		return Layout{}, fmt.Errorf("%w: no share is %d words long", ErrMalformedShare, words)
	}
	return layout, nil
}

// LayoutForBytes returns the layout whose framed form is exactly n bytes.
func LayoutForBytes(n int) (Layout, error) {
	layout, err := LayoutFor(n - bitpack.ByteCount(OverheadBits))
	if err != nil || layout.Bytes != n {
		return Layout{}, fmt.Errorf("%w: no share is %d bytes long", ErrMalformedShare, n)
	}
	return layout, nil
}

func validate(index, threshold int) error {
	if index < 1 || index > MaxIndex {
		return fmt.Errorf("%w: index must be in [1, %d], got %d", ErrInvalidParameters, MaxIndex, index)
	}
	if threshold < 1 || threshold > MaxThreshold {
		return fmt.Errorf("%w: threshold must be in [1, %d], got %d", ErrInvalidParameters, MaxThreshold, threshold)
	}
	return nil
}

// body returns the header and payload bits, zero padded to a byte.
func body(index, threshold int, payload []byte) *bitpack.Writer {
	w := bitpack.NewWriter(8*len(payload) + OverheadBits)
	w.WriteBits(uint32(index-1), IndexBits)
	w.WriteBits(uint32(threshold-1), ThresholdBits)
	w.WriteBytes(payload)
	return w
}

// Frame encodes a share record.
func Frame(index, threshold int, payload []byte) ([]byte, error) {
	if err := validate(index, threshold); err != nil {
		return nil, err
	}
	layout, err := LayoutFor(len(payload))
	if err != nil {
		return nil, err
	}

	w := body(index, threshold, payload)
	w.WriteBits(checksum.Share(w.Bytes()), ChecksumBits)
	if w.Len() != layout.Bits {
		panic(fmt.Sprintf("share: framed %d bits, layout says %d", w.Len(), layout.Bits))
	}
	return w.Bytes(), nil
}

// Unframe parses and verifies a framed share.
func Unframe(data []byte) (*Share, error) {
	layout, err := LayoutForBytes(len(data))
	if err != nil {
		return nil, err
	}

	r := bitpack.NewReader(data)
	index, err := r.ReadBits(IndexBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShare, err)
	}
	threshold, err := r.ReadBits(ThresholdBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShare, err)
	}
	payload, err := r.ReadBytes(layout.PayloadLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShare, err)
	}
	sum, err := r.ReadBits(ChecksumBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShare, err)
	}
	pad, err := r.ReadBits(r.Remaining())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShare, err)
	}
	if pad != 0 {
		return nil, fmt.Errorf("%w: non-zero padding", ErrMalformedShare)
	}

	s := &Share{
		Index:     int(index) + 1,
		Threshold: int(threshold) + 1,
		Payload:   payload,
		Checksum:  sum,
	}
	if err := checksum.VerifyShare(body(s.Index, s.Threshold, payload).Bytes(), sum); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShare, err)
	}
	return s, nil
}

// EncodeSymbols converts a framed share into 10-bit symbols. The trailing
// symbol made only of pad bits is dropped.
func EncodeSymbols(framed []byte) ([]uint16, error) {
	layout, err := LayoutForBytes(len(framed))
	if err != nil {
		return nil, err
	}
	symbols, err := bitpack.Unpack(framed, SymbolWidth)
	if err != nil {
		return nil, err
	}
	for _, s := range symbols[layout.Words:] {
		if s != 0 {
			return nil, fmt.Errorf("%w: non-zero padding", ErrMalformedShare)
		}
	}
	return symbols[:layout.Words], nil
}

// DecodeSymbols converts 10-bit symbols back into a framed share. The
// expected length is recomputed from the symbol count.
func DecodeSymbols(symbols []uint16) ([]byte, error) {
	layout, err := LayoutForWords(len(symbols))
	if err != nil {
		return nil, err
	}
	packed, err := bitpack.Pack(symbols, SymbolWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShare, err)
	}
	for _, b := range packed[layout.Bytes:] {
		if b != 0 {
			return nil, fmt.Errorf("%w: non-zero padding", ErrMalformedShare)
		}
	}
	return packed[:layout.Bytes], nil
}

// Encode frames a share and returns its symbols.
func Encode(index, threshold int, payload []byte) ([]uint16, error) {
	framed, err := Frame(index, threshold, payload)
	if err != nil {
		return nil, err
	}
	return EncodeSymbols(framed)
}

// Decode parses a share from its symbols.
func Decode(symbols []uint16) (*Share, error) {
	framed, err := DecodeSymbols(symbols)
	if err != nil {
		return nil, err
	}
	return Unframe(framed)
}
