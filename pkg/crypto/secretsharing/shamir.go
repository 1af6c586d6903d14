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

package secretsharing

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-seedshare/pkg/crypto/gf256"
)

// MaxShares is the largest number of shares a single split can produce.
const MaxShares = 255

var (
	// ErrInvalidParameters is returned for out of range threshold or share
	// counts and for empty secrets.
	ErrInvalidParameters = errors.New("secretsharing: invalid parameters")

	// ErrInsufficientShares is returned when fewer than two shares are
	// supplied for reconstruction.
	ErrInsufficientShares = errors.New("secretsharing: insufficient shares")

	// ErrDuplicateShareIndex is returned when two shares share an
	// x-coordinate.
	ErrDuplicateShareIndex = errors.New("secretsharing: duplicate share index")

	// ErrInconsistentShares is returned when share values differ in length
	// or are empty.
	ErrInconsistentShares = errors.New("secretsharing: inconsistent shares")
)

// ShareConfig configures secret sharing parameters.
type ShareConfig struct {
	Threshold   int // M - minimum shares needed to reconstruct
	TotalShares int // N - total shares to create

	// Random supplies polynomial coefficients. Defaults to crypto/rand.Reader.
	// It must be safe for concurrent use if the Shamir instance is shared.
	Random io.Reader
}

// Share represents a single share of a secret: the polynomial evaluations
// at X for every byte position of the secret.
type Share struct {
	X     byte   // Evaluation point (1-255)
	Value []byte // One evaluation per secret byte
}

// Shamir splits secrets with a fixed threshold and share count.
type Shamir struct {
	config *ShareConfig
	random io.Reader
}

// NewShamir creates a new Shamir instance with the given configuration.
// Returns an error if the configuration is invalid.
func NewShamir(config *ShareConfig) (*Shamir, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config cannot be nil", ErrInvalidParameters)
	}
	if config.Threshold < 1 {
		return nil, fmt.Errorf("%w: threshold must be at least 1, got %d", ErrInvalidParameters, config.Threshold)
	}
	if config.TotalShares < config.Threshold {
		return nil, fmt.Errorf("%w: total shares (%d) must be >= threshold (%d)",
			ErrInvalidParameters, config.TotalShares, config.Threshold)
	}
	if config.TotalShares > MaxShares {
		return nil, fmt.Errorf("%w: total shares must be <= %d, got %d", ErrInvalidParameters, MaxShares, config.TotalShares)
	}

	random := config.Random
	if random == nil {
		random = rand.Reader
	}

	return &Shamir{
		config: config,
		random: random,
	}, nil
}

// Split divides a secret into N shares, requiring M to reconstruct.
// Share i is the evaluation of every byte polynomial at x = i+1.
func (s *Shamir) Split(secret []byte) ([]Share, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: secret cannot be empty", ErrInvalidParameters)
	}

	threshold := s.config.Threshold
	shares := make([]Share, s.config.TotalShares)
	for i := range shares {
		shares[i].X = byte(i + 1)
		shares[i].Value = make([]byte, len(secret))
	}

	// Fresh coefficients for every byte position: a1..a(m-1) per byte.
	degree := threshold - 1
	random := make([]byte, degree*len(secret))
	if degree > 0 {
		if _, err := io.ReadFull(s.random, random); err != nil {
			return nil, fmt.Errorf("failed to generate random coefficients: %w", err)
		}
	}
	defer wipe(random)

	coeffs := make([]byte, threshold)
	defer wipe(coeffs)

	for byteIdx := range secret {
		// p(x) = a0 + a1*x + ... + a(m-1)*x^(m-1), a0 = secret byte
		coeffs[0] = secret[byteIdx]
		copy(coeffs[1:], random[byteIdx*degree:(byteIdx+1)*degree])

		for i := range shares {
			shares[i].Value[byteIdx] = evaluatePolynomial(coeffs, shares[i].X)
		}
	}

	return shares, nil
}

// Split is a convenience wrapper around NewShamir and Shamir.Split.
func Split(secret []byte, threshold, count int, random io.Reader) ([]Share, error) {
	s, err := NewShamir(&ShareConfig{
		Threshold:   threshold,
		TotalShares: count,
		Random:      random,
	})
	if err != nil {
		return nil, err
	}
	return s.Split(secret)
}

// Combine reconstructs the secret by Lagrange interpolation at x = 0 over
// every supplied share. It does not know the threshold: callers must pass
// at least as many shares as the split required. The result does not
// depend on share order.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("%w: need at least 2, got %d", ErrInsufficientShares, len(shares))
	}
	if err := validate(shares); err != nil {
		return nil, err
	}

	basis := lagrangeBasis(shares)
	secret := make([]byte, len(shares[0].Value))
	for byteIdx := range secret {
		var acc byte
		for i := range shares {
			acc = gf256.Add(acc, gf256.Mul(shares[i].Value[byteIdx], basis[i]))
		}
		secret[byteIdx] = acc
	}

	return secret, nil
}

func validate(shares []Share) error {
	size := len(shares[0].Value)
	if size == 0 {
		return fmt.Errorf("%w: shares have empty values", ErrInconsistentShares)
	}

	var seen [256]bool
	for i, share := range shares {
		if share.X == 0 {
			return fmt.Errorf("%w: share %d has invalid index 0", ErrInvalidParameters, i)
		}
		if seen[share.X] {
			return fmt.Errorf("%w: %d", ErrDuplicateShareIndex, share.X)
		}
		seen[share.X] = true

		if len(share.Value) != size {
			return fmt.Errorf("%w: share %d has length %d, want %d", ErrInconsistentShares, i, len(share.Value), size)
		}
	}
	return nil
}

// lagrangeBasis returns l_i(0) for every share. The basis depends only on
// the x-coordinates, so it is shared by all byte positions.
func lagrangeBasis(shares []Share) []byte {
	basis := make([]byte, len(shares))
	for i := range shares {
		xi := shares[i].X

		var numerator byte = 1
		var denominator byte = 1
		for j := range shares {
			if i == j {
				continue
			}
			xj := shares[j].X

			// numerator *= (0 - xj) = xj
			numerator = gf256.Mul(numerator, xj)

			// denominator *= (xi - xj)
			denominator = gf256.Mul(denominator, gf256.Sub(xi, xj))
		}

		// Distinct x-coordinates were checked by validate.
		basis[i] = gf256.MustDiv(numerator, denominator)
	}
	return basis
}

// evaluatePolynomial evaluates a polynomial at point x in GF(256).
// Uses Horner's method: p(x) = a0 + x(a1 + x(a2 + ... + x*an))
func evaluatePolynomial(coeffs []byte, x byte) byte {
	if len(coeffs) == 0 {
		return 0
	}

	result := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = gf256.Add(gf256.Mul(result, x), coeffs[i])
	}
	return result
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
