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

// Package bitpack converts between byte sequences and sequences of
// fixed-width unsigned symbols.
//
// Symbols are laid out most-significant-bit first and may straddle byte
// boundaries. Packing pads the final byte with zero bits; unpacking
// consumes every bit including that padding, so the last symbol may carry
// zero-filled low bits. Callers that need the original symbol count must
// trim using a known bit length rather than inferring it from content.
package bitpack

import (
	"errors"
	"fmt"
)

const (
	// MinWidth is the smallest supported symbol width in bits.
	MinWidth = 1

	// MaxWidth is the largest supported symbol width in bits.
	MaxWidth = 16

	// ShareWidth is the symbol width of the 1024-word share alphabet.
	ShareWidth = 10

	// MnemonicWidth is the symbol width of the 2048-word BIP-39 alphabet.
	MnemonicWidth = 11
)

var (
	// ErrInvalidWidth is returned for symbol widths outside [MinWidth, MaxWidth].
	ErrInvalidWidth = errors.New("bitpack: invalid symbol width")

	// ErrSymbolOverflow is returned when a symbol does not fit its width.
	ErrSymbolOverflow = errors.New("bitpack: symbol exceeds width")

	// ErrShortRead is returned when a Reader runs out of bits.
	ErrShortRead = errors.New("bitpack: not enough bits")
)

// ByteCount returns the number of bytes needed to hold bits bits.
func ByteCount(bits int) int {
	return (bits + 7) / 8
}

// SymbolCount returns the number of width-bit symbols needed to hold
// bits bits.
func SymbolCount(bits, width int) int {
	return (bits + width - 1) / width
}

// Pack concatenates symbols as width-bit fields, MSB first, and returns
// the resulting bytes with the final byte zero padded.
func Pack(symbols []uint16, width int) ([]byte, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	w := NewWriter(len(symbols) * width)
	for i, s := range symbols {
		if uint32(s)>>uint(width) != 0 {
			return nil, fmt.Errorf("%w: symbol %d is %d, width %d", ErrSymbolOverflow, i, s, width)
		}
		w.WriteBits(uint32(s), width)
	}
	return w.Bytes(), nil
}

// Unpack splits data into width-bit symbols, MSB first. It returns
// SymbolCount(8*len(data), width) symbols; when the bit length is not a
// multiple of width the last symbol is zero padded on its low bits.
func Unpack(data []byte, width int) ([]uint16, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	totalBits := len(data) * 8
	out := make([]uint16, 0, SymbolCount(totalBits, width))
	r := NewReader(data)
	for r.Remaining() > 0 {
		n := width
		if r.Remaining() < n {
			n = r.Remaining()
		}
		v, err := r.ReadBits(n)
		if err != nil {
			return nil, err
		}
		out = append(out, uint16(v<<uint(width-n)))
	}
	return out, nil
}

func checkWidth(width int) error {
	if width < MinWidth || width > MaxWidth {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	return nil
}
