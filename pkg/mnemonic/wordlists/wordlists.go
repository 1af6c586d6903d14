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

// Package wordlists provides the built-in mnemonic alphabets and loads
// custom ones from disk.
//
// English is the 2048-word BIP-39 list used for 11-bit mnemonics. SLIP39
// is the 1024-word list used for 10-bit share words. Custom lists are
// plain text with one word per line; blank lines and lines starting with
// '#' are ignored.
package wordlists

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	bip39words "github.com/tyler-smith/go-bip39/wordlists"

	"github.com/jeremyhahn/go-seedshare/pkg/mnemonic"
)

//go:embed slip39_english.txt
var slip39English string

var (
	english = sync.OnceValues(func() (*mnemonic.Wordlist, error) {
		return mnemonic.NewWordlist(bip39words.English)
	})
	slip39 = sync.OnceValues(func() (*mnemonic.Wordlist, error) {
		return Parse(strings.NewReader(slip39English))
	})
)

// English returns the BIP-39 English wordlist.
func English() (*mnemonic.Wordlist, error) {
	return english()
}

// SLIP39 returns the 1024-word share wordlist.
func SLIP39() (*mnemonic.Wordlist, error) {
	return slip39()
}

// Parse reads a wordlist with one word per line.
func Parse(r io.Reader) (*mnemonic.Wordlist, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wordlist: %w", err)
	}
	return mnemonic.NewWordlist(words)
}

// Load reads a wordlist file.
func Load(path string) (*mnemonic.Wordlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wordlist: %w", err)
	}
	defer f.Close()

	wl, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wl, nil
}

// LoadOrDefault loads path when it is set and otherwise returns def().
func LoadOrDefault(path string, def func() (*mnemonic.Wordlist, error)) (*mnemonic.Wordlist, error) {
	if path == "" {
		return def()
	}
	return Load(path)
}
