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

// Package kdf stretches reconstructed secrets and mnemonic sentences into
// seeds with PBKDF2.
//
// Two protocol variants are supported:
//
//	SLIP39: PBKDF2-HMAC-SHA256, salt "SLIP0039"+passphrase, 20000 iterations, 32 bytes
//	BIP39:  PBKDF2-HMAC-SHA512, salt "mnemonic"+passphrase, 2048 iterations, 64 bytes
//
// Passphrases are NFKD normalized before use. For the BIP39 variant the
// input key material is a mnemonic sentence and is normalized as well.
package kdf

import (
	"crypto"
	_ "crypto/sha256" // Link in SHA256
	_ "crypto/sha512" // Link in SHA512
	"errors"
	"fmt"
	"strings"
)

// KDFAlgorithm represents the key derivation function algorithm type
type KDFAlgorithm string

const (
	// AlgorithmPBKDF2 represents Password-Based Key Derivation Function 2 (RFC 8018)
	AlgorithmPBKDF2 KDFAlgorithm = "PBKDF2"
)

// String returns the string representation of the KDF algorithm
func (a KDFAlgorithm) String() string {
	return string(a)
}

// Variant selects the protocol constants for seed derivation.
type Variant string

const (
	// VariantSLIP39 derives a 32-byte seed from a reconstructed secret.
	VariantSLIP39 Variant = "slip39"

	// VariantBIP39 derives a 64-byte seed from a mnemonic sentence.
	VariantBIP39 Variant = "bip39"
)

// Protocol constants.
const (
	SLIP39SaltPrefix = "SLIP0039"
	SLIP39Iterations = 20000
	SLIP39KeyLength  = 32

	BIP39SaltPrefix = "mnemonic"
	BIP39Iterations = 2048
	BIP39KeyLength  = 64
)

func (v Variant) String() string {
	return string(v)
}

// ParseVariant parses a variant name, ignoring case.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(s)) {
	case VariantSLIP39:
		return VariantSLIP39, nil
	case VariantBIP39:
		return VariantBIP39, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// KDFParams contains parameters for key derivation
type KDFParams struct {
	// Algorithm specifies which KDF algorithm to use
	Algorithm KDFAlgorithm

	// Salt is the protocol salt prefix followed by the passphrase
	Salt []byte

	// Iterations specifies the number of PBKDF2 iterations
	Iterations int

	// KeyLength is the desired output key length in bytes
	KeyLength int

	// Hash is the HMAC hash function
	Hash crypto.Hash

	// Variant, when set, pins every other field to that protocol's
	// constants. ParamsFor always sets it.
	Variant Variant
}

// KDFAdapter is the interface for key derivation function adapters
type KDFAdapter interface {
	// DeriveKey derives a key from the input key material using the specified parameters
	DeriveKey(ikm []byte, params *KDFParams) ([]byte, error)

	// Algorithm returns the KDF algorithm this adapter implements
	Algorithm() KDFAlgorithm

	// ValidateParams validates the KDF parameters for this algorithm
	ValidateParams(params *KDFParams) error
}

// Common errors
var (
	// ErrInvalidSalt indicates the salt is empty
	ErrInvalidSalt = errors.New("kdf: invalid salt")

	// ErrInvalidKeyLength indicates the requested key length is invalid
	ErrInvalidKeyLength = errors.New("kdf: invalid key length")

	// ErrInvalidIterations indicates the iteration count is invalid
	ErrInvalidIterations = errors.New("kdf: invalid iterations")

	// ErrInvalidHash indicates the hash function is invalid or not supported
	ErrInvalidHash = errors.New("kdf: invalid or unsupported hash function")

	// ErrInvalidIKM indicates the input key material is invalid
	ErrInvalidIKM = errors.New("kdf: invalid input key material")

	// ErrUnsupportedAlgorithm indicates the algorithm is not supported by this adapter
	ErrUnsupportedAlgorithm = errors.New("kdf: unsupported algorithm")

	// ErrUnknownVariant indicates an unrecognized derivation variant
	ErrUnknownVariant = errors.New("kdf: unknown variant")

	// ErrProtocolMismatch indicates params tied to a Variant deviate from
	// its fixed constants.
	ErrProtocolMismatch = errors.New("kdf: parameters do not match variant")
)

// protocol holds the fixed PBKDF2 constants of a Variant.
type protocol struct {
	saltPrefix string
	iterations int
	keyLength  int
	hash       crypto.Hash
}

var protocols = map[Variant]protocol{
	VariantSLIP39: {SLIP39SaltPrefix, SLIP39Iterations, SLIP39KeyLength, crypto.SHA256},
	VariantBIP39:  {BIP39SaltPrefix, BIP39Iterations, BIP39KeyLength, crypto.SHA512},
}

// ParamsFor returns the PBKDF2 parameters for variant with the given
// passphrase, NFKD normalized, appended to the protocol salt.
func ParamsFor(variant Variant, passphrase []byte) (*KDFParams, error) {
	p, ok := protocols[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	return &KDFParams{
		Algorithm:  AlgorithmPBKDF2,
		Salt:       append([]byte(p.saltPrefix), NormalizeBytes(passphrase)...),
		Iterations: p.iterations,
		KeyLength:  p.keyLength,
		Hash:       p.hash,
		Variant:    variant,
	}, nil
}
