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

package kdf

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2Adapter implements the KDFAdapter interface using PBKDF2 (RFC 8018).
// Iteration counts and salts come from the seed protocols, so no strength
// minimums are applied.
type PBKDF2Adapter struct{}

// NewPBKDF2Adapter creates a new PBKDF2 adapter
func NewPBKDF2Adapter() *PBKDF2Adapter {
	return &PBKDF2Adapter{}
}

// DeriveKey stretches ikm with params. The input must not be empty.
func (p *PBKDF2Adapter) DeriveKey(ikm []byte, params *KDFParams) ([]byte, error) {
	if err := p.ValidateParams(params); err != nil {
		return nil, err
	}
	if len(ikm) == 0 {
		return nil, ErrInvalidIKM
	}
	return pbkdf2.Key(ikm, params.Salt, params.Iterations, params.KeyLength, params.Hash.New), nil
}

// Algorithm returns the KDF algorithm
func (p *PBKDF2Adapter) Algorithm() KDFAlgorithm {
	return AlgorithmPBKDF2
}

// ValidateParams checks params for PBKDF2. Parameters carrying a Variant
// must also match that protocol exactly.
func (p *PBKDF2Adapter) ValidateParams(params *KDFParams) error {
	switch {
	case params == nil || params.KeyLength <= 0:
		return ErrInvalidKeyLength
	case params.Algorithm != AlgorithmPBKDF2:
		return ErrUnsupportedAlgorithm
	case len(params.Salt) == 0:
		return ErrInvalidSalt
	case params.Iterations < 1:
		return ErrInvalidIterations
	case params.Hash == 0 || !params.Hash.Available():
		return ErrInvalidHash
	case params.Variant == "":
		return nil
	}
	return matchProtocol(params)
}

// matchProtocol reports the first constant of params.Variant that params
// deviates from.
func matchProtocol(params *KDFParams) error {
	want, ok := protocols[params.Variant]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, params.Variant)
	}
	switch {
	case params.Hash != want.hash:
		return fmt.Errorf("%w: %s uses HMAC-%s, got HMAC-%s", ErrProtocolMismatch, params.Variant, want.hash, params.Hash)
	case params.Iterations != want.iterations:
		return fmt.Errorf("%w: %s uses %d iterations, got %d", ErrProtocolMismatch, params.Variant, want.iterations, params.Iterations)
	case params.KeyLength != want.keyLength:
		return fmt.Errorf("%w: %s derives %d bytes, got %d", ErrProtocolMismatch, params.Variant, want.keyLength, params.KeyLength)
	case !bytes.HasPrefix(params.Salt, []byte(want.saltPrefix)):
		return fmt.Errorf("%w: %s salt must start with %q", ErrProtocolMismatch, params.Variant, want.saltPrefix)
	}
	return nil
}
