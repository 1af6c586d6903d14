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

package password

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestNewClearPassword(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"ascii passphrase", []byte("TREZOR")},
		{"empty passphrase", []byte{}},
		{"nil passphrase", nil},
		{"special characters", []byte("p@$$w0rd!#%&*()")},
		{"unicode passphrase", []byte("пароль密码")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd := NewClearPassword(tt.input)
			got := pwd.Bytes()
			if got == nil {
				t.Fatal("Bytes() returned nil before Clear")
			}
			if string(got) != string(tt.input) {
				t.Errorf("Bytes() = %q, want %q", got, tt.input)
			}

			// Returned bytes are a copy
			if len(got) > 0 {
				got[0] ^= 0xFF
				if string(pwd.Bytes()) != string(tt.input) {
					t.Error("modifying Bytes() result changed the stored passphrase")
				}
			}
		})
	}
}

func TestNewClearPassword_CopiesInput(t *testing.T) {
	input := []byte("secret")
	pwd := NewClearPassword(input)
	input[0] = 'X'

	if got := string(pwd.Bytes()); got != "secret" {
		t.Errorf("Bytes() = %q, want %q", got, "secret")
	}
}

func TestClear(t *testing.T) {
	pwd := NewClearPasswordFromString("TREZOR")
	pwd.Clear()
	pwd.Clear()

	if pwd.Bytes() != nil {
		t.Error("Bytes() should return nil after Clear")
	}

	// An empty passphrase is distinguishable from a cleared one.
	empty := NewClearPasswordFromString("")
	if empty.Bytes() == nil {
		t.Error("empty passphrase should not report as cleared")
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"TREZOR\n", "TREZOR"},
		{"windows\r\nsecond line\n", "windows"},
		{"no newline", "no newline"},
		{"", ""},
		{"  spaced  \n", "  spaced  "},
	}
	for _, tt := range tests {
		pwd, err := ReadLine(strings.NewReader(tt.input))
		if err != nil {
			t.Fatalf("ReadLine(%q) error = %v", tt.input, err)
		}
		if got := string(pwd.Bytes()); got != tt.want {
			t.Errorf("ReadLine(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReadLine_Error(t *testing.T) {
	failure := errors.New("device gone")
	_, err := ReadLine(iotest.ErrReader(failure))
	if !errors.Is(err, failure) {
		t.Errorf("ReadLine() error = %v, want %v", err, failure)
	}
}
