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
	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in Unicode normalization form KD.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}

// NormalizeBytes returns b in normalization form KD. The result may
// alias b.
func NormalizeBytes(b []byte) []byte {
	return norm.NFKD.Bytes(b)
}

// DeriveSeed stretches secret and passphrase into a seed using the
// constants of variant. For VariantBIP39 the secret is a mnemonic
// sentence and is NFKD normalized first.
func DeriveSeed(secret, passphrase []byte, variant Variant) ([]byte, error) {
	params, err := ParamsFor(variant, passphrase)
	if err != nil {
		return nil, err
	}
	ikm := secret
	if variant == VariantBIP39 {
		ikm = NormalizeBytes(secret)
	}
	return NewPBKDF2Adapter().DeriveKey(ikm, params)
}

// MnemonicSeed derives the BIP-39 seed of a mnemonic sentence.
func MnemonicSeed(sentence string, passphrase []byte) ([]byte, error) {
	return DeriveSeed([]byte(sentence), passphrase, VariantBIP39)
}
