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

// Package password provides secure passphrase handling for seed derivation.
//
// Passphrases are held in memory as cleartext and can be zeroed once the
// seed has been derived. An empty passphrase is valid: both seed protocols
// define derivation with an empty passphrase.
package password

import (
	"bufio"
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
)

// Password is a zeroizable secret.
type Password interface {
	// Bytes returns a copy of the passphrase, or nil after Clear.
	Bytes() []byte

	// Clear zeros out the passphrase from memory
	Clear()
}

// ClearPassword stores a passphrase in memory as cleartext.
type ClearPassword struct {
	password []byte
	cleared  bool
}

// NewClearPassword creates a new cleartext passphrase stored in memory.
// The provided byte slice is copied to prevent external modification.
func NewClearPassword(password []byte) *ClearPassword {
	p := make([]byte, len(password))
	copy(p, password)
	return &ClearPassword{password: p}
}

// NewClearPasswordFromString creates a new cleartext passphrase from a string.
func NewClearPasswordFromString(password string) *ClearPassword {
	return &ClearPassword{password: []byte(password)}
}

// ReadLine reads the first line of r as a passphrase with the line
// terminator removed. EOF before any input yields an empty passphrase.
func ReadLine(r io.Reader) (*ClearPassword, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	defer clear(line)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return NewClearPassword(bytes.TrimRight(line, "\r\n")), nil
}

// Bytes returns a copy of the passphrase, or nil after Clear.
func (p *ClearPassword) Bytes() []byte {
	if p.cleared {
		return nil
	}
	result := make([]byte, len(p.password))
	copy(result, p.password)
	return result
}

// Clear securely clears the passphrase from memory. This operation is
// irreversible.
func (p *ClearPassword) Clear() {
	if p.cleared {
		return
	}
	// Use subtle.ConstantTimeCopy to ensure compiler doesn't optimize away
	subtle.ConstantTimeCopy(1, p.password, make([]byte, len(p.password)))
	p.password = nil
	p.cleared = true
}

// Verify interface compliance at compile time
var _ Password = (*ClearPassword)(nil)
