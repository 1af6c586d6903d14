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

// Package seedshare splits secrets into mnemonic shares and reconstructs
// them.
//
// An Engine ties together the layers of the scheme:
//
//	secret -> secretsharing.Split -> share.Frame -> 10-bit symbols -> words
//
// and the reverse for reconstruction, optionally followed by seed
// derivation through the kdf package. BIP-39 mnemonics can be split and
// merged directly; their checksum is verified on the way in and recomputed
// on the way out.
//
// Shares can be merged in one call with Engine.Combine or collected one
// at a time with a Session, which keeps every accepted share when a later
// entry is rejected.
//
// An Engine is safe for concurrent use when its random source is. A
// Session belongs to a single caller.
package seedshare

import (
	"errors"

	"github.com/jeremyhahn/go-seedshare/pkg/checksum"
	"github.com/jeremyhahn/go-seedshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-seedshare/pkg/mnemonic"
	"github.com/jeremyhahn/go-seedshare/pkg/share"
)

var (
	// ErrInvalidSecret is returned for empty or odd length secrets and for
	// text that cannot round trip through NUL padding.
	ErrInvalidSecret = errors.New("seedshare: invalid secret")

	// ErrThresholdMismatch is returned when shares encode different
	// thresholds.
	ErrThresholdMismatch = errors.New("seedshare: threshold mismatch")

	// ErrLengthMismatch is returned when shares carry payloads of
	// different lengths.
	ErrLengthMismatch = errors.New("seedshare: share length mismatch")

	// ErrSessionNotReady is returned by Session.Secret before enough
	// shares have been accepted.
	ErrSessionNotReady = errors.New("seedshare: session not ready")

	// ErrSessionComplete is returned by Session.Add once the session
	// holds enough shares.
	ErrSessionComplete = errors.New("seedshare: session already complete")

	// ErrWordlistWidth is returned when a configured wordlist does not
	// have the width its role requires.
	ErrWordlistWidth = errors.New("seedshare: wordlist has wrong width")
)

// Error types reported to metrics.
const (
	errTypeThreshold    = "threshold_mismatch"
	errTypeLength       = "length_mismatch"
	errTypeDuplicate    = "duplicate_index"
	errTypeChecksum     = "checksum_mismatch"
	errTypeMalformed    = "malformed_share"
	errTypeUnknownWord  = "unknown_word"
	errTypeInsufficient = "insufficient_shares"
	errTypeInvalid      = "invalid_parameters"
	errTypeSession      = "session_state"
	errTypeOther        = "other"
)

// errorType classifies err for metrics labels.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrThresholdMismatch):
		return errTypeThreshold
	case errors.Is(err, ErrLengthMismatch):
		return errTypeLength
	case errors.Is(err, secretsharing.ErrDuplicateShareIndex):
		return errTypeDuplicate
	case errors.Is(err, checksum.ErrChecksumMismatch):
		return errTypeChecksum
	case errors.Is(err, share.ErrMalformedShare):
		return errTypeMalformed
	case errors.Is(err, mnemonic.ErrUnknownWord):
		return errTypeUnknownWord
	case errors.Is(err, secretsharing.ErrInsufficientShares):
		return errTypeInsufficient
	case errors.Is(err, ErrInvalidSecret),
		errors.Is(err, secretsharing.ErrInvalidParameters),
		errors.Is(err, share.ErrInvalidParameters),
		errors.Is(err, checksum.ErrInvalidEntropyLength),
		errors.Is(err, mnemonic.ErrInvalidWordCount):
		return errTypeInvalid
	case errors.Is(err, ErrSessionComplete), errors.Is(err, ErrSessionNotReady):
		return errTypeSession
	default:
		return errTypeOther
	}
}
