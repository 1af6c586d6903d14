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

// Package checksum computes the integrity checks carried by mnemonic
// entropy and by framed shares.
//
// The BIP-39 checksum is the leading len(entropy)*8/32 bits of
// SHA-256(entropy), appended after the entropy bits. The share checksum is
// the first 32 bits of SHA-256 over a share's header and payload. It
// detects transcription errors and is not an authentication tag.
package checksum

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
)

// ShareBits is the width of the share checksum field.
const ShareBits = 32

var (
	// ErrChecksumMismatch is returned when a stored checksum does not match
	// the recomputed value.
	ErrChecksumMismatch = errors.New("checksum: mismatch")

	// ErrInvalidEntropyLength is returned for entropy that is not 16, 20,
	// 24, 28 or 32 bytes long.
	ErrInvalidEntropyLength = errors.New("checksum: invalid entropy length")
)

// ValidEntropyLength reports whether n bytes is a valid BIP-39 entropy size.
func ValidEntropyLength(n int) bool {
	return n >= 16 && n <= 32 && n%4 == 0
}

// BIP39Bits returns the number of checksum bits for n bytes of entropy.
func BIP39Bits(n int) int {
	return n * 8 / 32
}

// bip39Byte returns the checksum bits left aligned in a byte with the
// unused low bits cleared.
func bip39Byte(entropy []byte) byte {
	sum := sha256.Sum256(entropy)
	bits := BIP39Bits(len(entropy))
	return sum[0] & ^byte(0xFF>>uint(bits))
}

// AppendBIP39 returns a new slice holding entropy followed by one byte
// whose high bits carry the checksum.
func AppendBIP39(entropy []byte) ([]byte, error) {
	if !ValidEntropyLength(len(entropy)) {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidEntropyLength, len(entropy))
	}
	out := make([]byte, len(entropy)+1)
	copy(out, entropy)
	out[len(entropy)] = bip39Byte(entropy)
	return out, nil
}

// VerifyBIP39 checks data produced by AppendBIP39 and returns a copy of
// the entropy. Non-zero pad bits after the checksum are a mismatch.
func VerifyBIP39(data []byte) ([]byte, error) {
	n := len(data) - 1
	if !ValidEntropyLength(n) {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidEntropyLength, n)
	}
	entropy := data[:n]
	if subtle.ConstantTimeByteEq(data[n], bip39Byte(entropy)) != 1 {
		return nil, ErrChecksumMismatch
	}
	return append([]byte(nil), entropy...), nil
}

// Share computes the share checksum over data.
func Share(data []byte) uint32 {
	sum := sha256.Sum256(data)
	return binary.BigEndian.Uint32(sum[:4])
}

// VerifyShare recomputes the share checksum over data and compares it
// with want.
func VerifyShare(data []byte, want uint32) error {
	var expected, got [4]byte
	binary.BigEndian.PutUint32(expected[:], Share(data))
	binary.BigEndian.PutUint32(got[:], want)
	if subtle.ConstantTimeCompare(expected[:], got[:]) != 1 {
		return fmt.Errorf("%w: share checksum %08x, computed %08x", ErrChecksumMismatch, want, Share(data))
	}
	return nil
}
