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

// Package gf256 implements arithmetic in the finite field GF(2^8).
//
// The field is defined by the AES irreducible polynomial
// x^8 + x^4 + x^3 + x + 1 (0x11B). Addition and subtraction are XOR;
// multiplication and division use 256-entry logarithm and exponentiation
// tables built once at package initialization with generator 0x03.
//
// All functions are pure and safe for concurrent use.
package gf256

import "errors"

// Polynomial is the irreducible reduction polynomial of the field.
const Polynomial = 0x11B

// ErrDivisionByZero is returned when dividing by, or inverting, zero.
var ErrDivisionByZero = errors.New("gf256: division by zero")

var (
	logTable [256]byte
	expTable [256]byte
)

func init() {
	var x byte = 1
	for i := 0; i < 255; i++ {
		expTable[i] = x
		logTable[x] = byte(i)
		x = mulSlow(x, 0x03)
	}
	expTable[255] = expTable[0]
}

// Add returns a + b, which is XOR in GF(2^8).
func Add(a, b byte) byte {
	return a ^ b
}

// Sub returns a - b. Subtraction is identical to addition in GF(2^8).
func Sub(a, b byte) byte {
	return a ^ b
}

// Mul returns a * b.
func Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[(int(logTable[a])+int(logTable[b]))%255]
}

// Inverse returns the multiplicative inverse of a.
func Inverse(a byte) (byte, error) {
	if a == 0 {
		return 0, ErrDivisionByZero
	}
	return expTable[(255-int(logTable[a]))%255], nil
}

// Div returns a / b.
func Div(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	if a == 0 {
		return 0, nil
	}
	return expTable[(int(logTable[a])+255-int(logTable[b]))%255], nil
}

// MustDiv returns a / b and panics if b is zero. It is meant for call
// sites where a zero divisor has already been ruled out.
func MustDiv(a, b byte) byte {
	q, err := Div(a, b)
	if err != nil {
		panic(err)
	}
	return q
}

// mulSlow multiplies using the shift-and-add (peasant) algorithm. It is
// only used to build the tables and as a reference in tests.
func mulSlow(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= Polynomial & 0xFF
		}
		b >>= 1
	}
	return p
}
