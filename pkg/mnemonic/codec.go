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

// Package mnemonic maps fixed-width symbols to and from words of an
// injected Wordlist.
//
// The same Codec serves the 1024-word share alphabet (10-bit symbols) and
// the 2048-word BIP-39 alphabet (11-bit symbols). Wordlists are passed in
// at construction time; see the wordlists subpackage for the built-in
// lists.
package mnemonic

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilWordlist is returned by NewCodec when no wordlist is supplied.
var ErrNilWordlist = errors.New("mnemonic: wordlist is required")

// Codec converts between symbols and words.
type Codec struct {
	wordlist *Wordlist
}

// NewCodec returns a Codec over wl.
func NewCodec(wl *Wordlist) (*Codec, error) {
	if wl == nil {
		return nil, ErrNilWordlist
	}
	return &Codec{wordlist: wl}, nil
}

// Width returns the symbol width of the codec's wordlist.
func (c *Codec) Width() int {
	return c.wordlist.Width()
}

// Wordlist returns the codec's wordlist.
func (c *Codec) Wordlist() *Wordlist {
	return c.wordlist
}

// WordsToSymbols looks up every word. The first unknown word fails the
// whole conversion and is reported with its position.
func (c *Codec) WordsToSymbols(words []string) ([]uint16, error) {
	symbols := make([]uint16, len(words))
	for i, word := range words {
		s, err := c.wordlist.Index(word)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i+1, err)
		}
		symbols[i] = s
	}
	return symbols, nil
}

// SymbolsToWords returns the word for every symbol.
func (c *Codec) SymbolsToWords(symbols []uint16) ([]string, error) {
	words := make([]string, len(symbols))
	for i, s := range symbols {
		word, err := c.wordlist.Word(s)
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i+1, err)
		}
		words[i] = word
	}
	return words, nil
}

// Fields splits a mnemonic sentence into words on any run of whitespace.
func Fields(sentence string) []string {
	return strings.Fields(sentence)
}

// Join renders words as a single space separated sentence.
func Join(words []string) string {
	return strings.Join(words, " ")
}
