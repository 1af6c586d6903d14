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

package gf256

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSub(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			x, y := byte(a), byte(b)
			assert.Equal(t, x^y, Add(x, y))
			assert.Equal(t, Add(x, y), Sub(x, y))
		}
	}
}

func TestMul_KnownValues(t *testing.T) {
	tests := []struct {
		a, b, want byte
	}{
		{0x00, 0x53, 0x00},
		{0x01, 0x53, 0x53},
		{0x53, 0xCA, 0x01}, // FIPS-197 inverse pair
		{0x57, 0x83, 0xC1}, // FIPS-197 section 4.2
		{0x57, 0x13, 0xFE},
		{0x02, 0x80, 0x1B},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, Mul(tt.a, tt.b), "%#x * %#x", tt.a, tt.b)
	}
}

func TestMul_MatchesReference(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			require.Equal(t, mulSlow(byte(a), byte(b)), Mul(byte(a), byte(b)), "a=%d b=%d", a, b)
		}
	}
}

func TestMul_Commutative(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := a; b < 256; b++ {
			require.Equal(t, Mul(byte(a), byte(b)), Mul(byte(b), byte(a)))
		}
	}
}

func TestInverse(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv, err := Inverse(byte(a))
		require.NoError(t, err)
		assert.Equal(t, byte(1), Mul(byte(a), inv), "a=%d", a)
	}

	_, err := Inverse(0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestDiv(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 1; b < 256; b++ {
			q, err := Div(byte(a), byte(b))
			require.NoError(t, err)
			require.Equal(t, byte(a), Mul(q, byte(b)), "a=%d b=%d", a, b)
		}
	}
}

func TestDiv_ByZero(t *testing.T) {
	_, err := Div(7, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	assert.Panics(t, func() { MustDiv(7, 0) })
	assert.Equal(t, byte(1), MustDiv(0x53, 0x53))
}
