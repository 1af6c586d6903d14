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

package mnemonic

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/jeremyhahn/go-seedshare/pkg/crypto/bitpack"
)

var (
	// ErrInvalidWordlist is returned when a wordlist is not a power of two
	// in size or contains empty or repeated words.
	ErrInvalidWordlist = errors.New("mnemonic: invalid wordlist")

	// ErrUnknownWord is returned when a word is not in the wordlist.
	ErrUnknownWord = errors.New("mnemonic: unknown word")

	// ErrSymbolOutOfRange is returned when a symbol has no word.
	ErrSymbolOutOfRange = errors.New("mnemonic: symbol out of range")
)

// Wordlist is an immutable bijection between symbols and words. A list of
// 2^w words encodes w-bit symbols.
type Wordlist struct {
	words []string
	index map[string]uint16
	width int
}

// NewWordlist builds a Wordlist from words in symbol order. The slice is
// copied.
func NewWordlist(words []string) (*Wordlist, error) {
	n := len(words)
	if n < 2 || n > 1<<bitpack.MaxWidth || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: size %d is not a power of two in [2, %d]",
			ErrInvalidWordlist, n, 1<<bitpack.MaxWidth)
	}

	wl := &Wordlist{
		words: make([]string, n),
		index: make(map[string]uint16, n),
		width: bits.TrailingZeros(uint(n)),
	}
	for i, word := range words {
		if word == "" || strings.ContainsAny(word, " \t\r\n") {
			return nil, fmt.Errorf("%w: invalid word %q at %d", ErrInvalidWordlist, word, i)
		}
		if prev, ok := wl.index[word]; ok {
			return nil, fmt.Errorf("%w: %q appears at %d and %d", ErrInvalidWordlist, word, prev, i)
		}
		wl.words[i] = word
		wl.index[word] = uint16(i)
	}
	return wl, nil
}

// Width returns the number of bits encoded by one word.
func (wl *Wordlist) Width() int {
	return wl.width
}

// Len returns the number of words.
func (wl *Wordlist) Len() int {
	return len(wl.words)
}

// Word returns the word for symbol s.
func (wl *Wordlist) Word(s uint16) (string, error) {
	if int(s) >= len(wl.words) {
		return "", fmt.Errorf("%w: %d (wordlist has %d words)", ErrSymbolOutOfRange, s, len(wl.words))
	}
	return wl.words[s], nil
}

// Index returns the symbol for word. Lookup is case sensitive.
func (wl *Wordlist) Index(word string) (uint16, error) {
	s, ok := wl.index[word]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}
	return s, nil
}

// Contains reports whether word is in the list.
func (wl *Wordlist) Contains(word string) bool {
	_, ok := wl.index[word]
	return ok
}
