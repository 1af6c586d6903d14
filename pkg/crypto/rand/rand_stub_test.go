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

//go:build !tpm2 && !pkcs11

package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHardwareModesNotCompiled(t *testing.T) {
	assert.False(t, tpm2Available())
	assert.False(t, pkcs11Available())

	_, err := NewResolver(ModeTPM2)
	assert.ErrorIs(t, err, ErrNotCompiled)

	_, err = NewResolver(&Config{Mode: ModePKCS11, PKCS11Config: &PKCS11Config{Module: "/usr/lib/softhsm/libsofthsm2.so"}})
	assert.ErrorIs(t, err, ErrNotCompiled)
}
