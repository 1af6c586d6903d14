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

package share

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-seedshare/pkg/checksum"
	"github.com/jeremyhahn/go-seedshare/pkg/crypto/bitpack"
)

func payloadOf(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i*37 + 11)
	}
	return p
}

func TestLayoutFor(t *testing.T) {
	assert.Equal(t, 42, OverheadBits)

	tests := []struct {
		payloadLen int
		bits       int
		bytes      int
		words      int
	}{
		{2, 58, 8, 6},
		{16, 170, 22, 17},
		{20, 202, 26, 21},
		{24, 234, 30, 24},
		{28, 266, 34, 27},
		{32, 298, 38, 30},
	}

	for _, tt := range tests {
		layout, err := LayoutFor(tt.payloadLen)
		require.NoError(t, err)
		assert.Equal(t, Layout{
			PayloadLen: tt.payloadLen,
			Bits:       tt.bits,
			Bytes:      tt.bytes,
			Words:      tt.words,
		}, layout)

		byWords, err := LayoutForWords(tt.words)
		require.NoError(t, err)
		assert.Equal(t, layout, byWords)

		byBytes, err := LayoutForBytes(tt.bytes)
		require.NoError(t, err)
		assert.Equal(t, layout, byBytes)
	}
}

func TestLayoutFor_Invalid(t *testing.T) {
	for _, n := range []int{-2, 0, 1, 15, 17} {
		_, err := LayoutFor(n)
		assert.ErrorIs(t, err, ErrInvalidParameters, "payload length %d", n)
	}
}

// Every even payload length maps to a distinct word count and back.
func TestLayoutForWords_Inverse(t *testing.T) {
	seen := make(map[int]int)
	for n := 2; n <= 256; n += 2 {
		layout, err := LayoutFor(n)
		require.NoError(t, err)

		prev, dup := seen[layout.Words]
		require.False(t, dup, "payload lengths %d and %d share word count %d", prev, n, layout.Words)
		seen[layout.Words] = n

		back, err := LayoutForWords(layout.Words)
		require.NoError(t, err)
		assert.Equal(t, n, back.PayloadLen)
	}

	maxWords := 0
	for words := range seen {
		maxWords = max(maxWords, words)
	}
	for words := 0; words <= maxWords; words++ {
		if _, ok := seen[words]; ok {
			continue
		}
		_, err := LayoutForWords(words)
		assert.ErrorIs(t, err, ErrMalformedShare, "word count %d", words)
	}
}

func TestLayoutForBytes_Invalid(t *testing.T) {
	for _, n := range []int{0, 6, 7, 21, 23} {
		_, err := LayoutForBytes(n)
		assert.ErrorIs(t, err, ErrMalformedShare, "byte count %d", n)
	}
}

func TestFrameUnframe_RoundTrip(t *testing.T) {
	payload := payloadOf(16)
	for index := 1; index <= MaxIndex; index++ {
		for threshold := 1; threshold <= MaxThreshold; threshold++ {
			framed, err := Frame(index, threshold, payload)
			require.NoError(t, err)
			require.Len(t, framed, 22)

			s, err := Unframe(framed)
			require.NoError(t, err)
			assert.Equal(t, index, s.Index)
			assert.Equal(t, threshold, s.Threshold)
			assert.Equal(t, payload, s.Payload)
		}
	}
}

func TestFrame_BitLayout(t *testing.T) {
	payload := []byte{0xAB, 0xCD}
	framed, err := Frame(3, 2, payload)
	require.NoError(t, err)
	require.Len(t, framed, 8)

	// index-1 = 2 (00010), threshold-1 = 1 (00001), then payload bits
	r := bitpack.NewReader(framed)
	v, err := r.ReadBits(5)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v)
	v, err = r.ReadBits(5)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)
	p, err := r.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, payload, p)

	body := []byte{0x10, 0x6A, 0xF3, 0x40}
	sum, err := r.ReadBits(32)
	require.NoError(t, err)
	assert.Equal(t, checksum.Share(body), sum)

	pad, err := r.ReadBits(6)
	require.NoError(t, err)
	assert.Zero(t, pad)
}

func TestFrame_InvalidParameters(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		threshold int
		payload   []byte
	}{
		{"index zero", 0, 2, payloadOf(16)},
		{"index too large", MaxIndex + 1, 2, payloadOf(16)},
		{"threshold zero", 1, 0, payloadOf(16)},
		{"threshold too large", 1, MaxThreshold + 1, payloadOf(16)},
		{"odd payload", 1, 2, payloadOf(15)},
		{"empty payload", 1, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Frame(tt.index, tt.threshold, tt.payload)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}

// Any single flipped bit is rejected: header and payload flips break the
// checksum, checksum flips mismatch, pad flips fail the padding check.
func TestUnframe_SingleBitFlip(t *testing.T) {
	for _, n := range []int{16, 32} {
		framed, err := Frame(7, 3, payloadOf(n))
		require.NoError(t, err)

		for bit := 0; bit < len(framed)*8; bit++ {
			bad := append([]byte(nil), framed...)
			bad[bit/8] ^= 0x80 >> uint(bit%8)
			_, err := Unframe(bad)
			assert.ErrorIs(t, err, ErrMalformedShare, "payload %d bit %d", n, bit)
		}
	}
}

func TestUnframe_ChecksumError(t *testing.T) {
	framed, err := Frame(1, 2, payloadOf(16))
	require.NoError(t, err)
	framed[5] ^= 0x01

	_, err = Unframe(framed)
	assert.ErrorIs(t, err, ErrMalformedShare)
	assert.ErrorIs(t, err, checksum.ErrChecksumMismatch)
}

func TestUnframe_WrongLength(t *testing.T) {
	framed, err := Frame(1, 2, payloadOf(16))
	require.NoError(t, err)

	_, err = Unframe(framed[:21])
	assert.ErrorIs(t, err, ErrMalformedShare)
	_, err = Unframe(append(framed, 0))
	assert.ErrorIs(t, err, ErrMalformedShare)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for n := 2; n <= 64; n += 2 {
		payload := payloadOf(n)
		layout, err := LayoutFor(n)
		require.NoError(t, err)

		symbols, err := Encode(32, 5, payload)
		require.NoError(t, err)
		require.Len(t, symbols, layout.Words)
		for _, s := range symbols {
			assert.Less(t, s, uint16(1<<SymbolWidth))
		}

		s, err := Decode(symbols)
		require.NoError(t, err)
		assert.Equal(t, 32, s.Index)
		assert.Equal(t, 5, s.Threshold)
		assert.Equal(t, payload, s.Payload)
	}
}

// A 16-byte payload frames to 22 bytes (176 bits), which unpacks into 18
// symbols; the last one is all padding and is not emitted.
func TestEncodeSymbols_DropsPaddingSymbol(t *testing.T) {
	framed, err := Frame(2, 2, payloadOf(16))
	require.NoError(t, err)

	all, err := bitpack.Unpack(framed, SymbolWidth)
	require.NoError(t, err)
	require.Len(t, all, 18)
	assert.Zero(t, all[17])

	symbols, err := EncodeSymbols(framed)
	require.NoError(t, err)
	assert.Equal(t, all[:17], symbols)

	back, err := DecodeSymbols(symbols)
	require.NoError(t, err)
	assert.Equal(t, framed, back)
}

// A 20-byte payload fills its 21 symbols without a padding-only symbol.
func TestEncodeSymbols_NoPaddingSymbol(t *testing.T) {
	framed, err := Frame(2, 2, payloadOf(20))
	require.NoError(t, err)

	all, err := bitpack.Unpack(framed, SymbolWidth)
	require.NoError(t, err)

	symbols, err := EncodeSymbols(framed)
	require.NoError(t, err)
	assert.Len(t, symbols, 21)
	assert.Equal(t, all, symbols)
}

func TestDecode_Errors(t *testing.T) {
	symbols, err := Encode(4, 3, payloadOf(16))
	require.NoError(t, err)

	t.Run("wrong word count", func(t *testing.T) {
		_, err := Decode(symbols[:16])
		assert.ErrorIs(t, err, ErrMalformedShare)
		_, err = Decode(append(append([]uint16(nil), symbols...), 0))
		assert.ErrorIs(t, err, ErrMalformedShare)
	})

	t.Run("altered word", func(t *testing.T) {
		bad := append([]uint16(nil), symbols...)
		bad[8] ^= 0x155
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrMalformedShare)
	})

	t.Run("swapped words", func(t *testing.T) {
		bad := append([]uint16(nil), symbols...)
		if bad[2] == bad[3] {
			t.Skip("adjacent words are equal")
		}
		bad[2], bad[3] = bad[3], bad[2]
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrMalformedShare)
	})

	t.Run("altered checksum word", func(t *testing.T) {
		bad := append([]uint16(nil), symbols...)
		bad[16] ^= 0x001
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrMalformedShare)
		assert.ErrorIs(t, err, checksum.ErrChecksumMismatch)
	})

	// 20-byte payload: 202 bits in 21 symbols, the last 8 bits are padding.
	padded, err := Encode(4, 3, payloadOf(20))
	require.NoError(t, err)

	t.Run("padding bits in trailing byte", func(t *testing.T) {
		bad := append([]uint16(nil), padded...)
		bad[20] |= 0x001
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrMalformedShare)
	})

	t.Run("padding bits in last framed byte", func(t *testing.T) {
		bad := append([]uint16(nil), padded...)
		bad[20] |= 0x020
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrMalformedShare)
	})

	t.Run("symbol overflow", func(t *testing.T) {
		bad := append([]uint16(nil), symbols...)
		bad[0] = 1 << SymbolWidth
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrMalformedShare)
		assert.ErrorIs(t, err, bitpack.ErrSymbolOverflow)
	})
}

func TestUnframe_PayloadIsCopy(t *testing.T) {
	payload := payloadOf(16)
	framed, err := Frame(1, 1, payload)
	require.NoError(t, err)

	s, err := Unframe(framed)
	require.NoError(t, err)
	s.Payload[0] ^= 0xFF
	assert.False(t, bytes.Equal(payload, s.Payload))

	again, err := Unframe(framed)
	require.NoError(t, err)
	assert.Equal(t, payload, again.Payload)
}
