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

package cli

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-seedshare/internal/password"
	"github.com/jeremyhahn/go-seedshare/pkg/mnemonic"
	"github.com/jeremyhahn/go-seedshare/pkg/seedshare"
)

const mergeHelp = `Reads shares from stdin, one per line, until enough shares have been
accepted. Lines that fail to decode, repeat an index or disagree with the
first share are reported on stderr and skipped.`

func newMergeCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "mergehex",
			Short: "Merge shares into hex encoded entropy",
			Long:  mergeHelp,
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				return a.merge(cmd, func(s *seedshare.Session) (string, string, error) {
					secret, err := s.Secret()
					if err != nil {
						return "", "", err
					}
					defer clear(secret)
					return "hex", hex.EncodeToString(secret), nil
				})
			}),
		},
		newMergeSeedCommand(a),
		{
			Use:   "mergeascii",
			Short: "Merge shares and print the result as text",
			Long:  mergeHelp,
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				return a.merge(cmd, func(s *seedshare.Session) (string, string, error) {
					text, err := s.Text()
					return "text", text, err
				})
			}),
		},
		{
			Use:   "mergemnemonic",
			Short: "Merge shares into a BIP-39 mnemonic",
			Long:  mergeHelp,
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				return a.merge(cmd, func(s *seedshare.Session) (string, string, error) {
					words, err := s.Mnemonic()
					if err != nil {
						return "", "", err
					}
					return "mnemonic", mnemonic.Join(words), nil
				})
			}),
		},
	}
}

func newMergeSeedCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mergeseed [passphrase]",
		Short: "Merge shares and derive the seed with PBKDF2-SHA256",
		Long: mergeHelp + `

The reconstructed secret is stretched with PBKDF2-SHA256 over the salt
"SLIP0039" followed by the passphrase (20000 iterations, 32 bytes).
` + passphraseHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			pass, err := passphrase(cmd, args)
			if err != nil {
				return err
			}
			defer pass.Clear()
			return a.merge(cmd, func(s *seedshare.Session) (string, string, error) {
				p := pass.Bytes()
				defer clear(p)
				seed, err := s.Seed(p)
				if err != nil {
					return "", "", err
				}
				defer clear(seed)
				return "seed", hex.EncodeToString(seed), nil
			})
		}),
	}
	addPassphraseFlag(cmd)
	return cmd
}

const passphraseFileFlag = "passphrase-file"

const passphraseHelp = `
A passphrase given as an argument is visible to other local users and
lands in shell history. --passphrase-file reads it from the first line of
a file instead; /dev/fd/N reads an inherited descriptor.`

// ErrPassphraseSources is returned when a passphrase is given both as an
// argument and through --passphrase-file.
var ErrPassphraseSources = errors.New("passphrase given both as argument and --" + passphraseFileFlag)

func addPassphraseFlag(cmd *cobra.Command) {
	cmd.Flags().String(passphraseFileFlag, "", "read the passphrase from the first line of this file")
}

// passphrase returns the passphrase from --passphrase-file or the optional
// argument. Neither yields the empty passphrase.
func passphrase(cmd *cobra.Command, args []string) (password.Password, error) {
	path, _ := cmd.Flags().GetString(passphraseFileFlag)
	switch {
	case path != "" && len(args) > 0:
		return nil, ErrPassphraseSources
	case path != "":
		// #nosec G304 - passphrase file path is provided by the user
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open passphrase file: %w", err)
		}
		defer f.Close()
		pass, err := password.ReadLine(f)
		if err != nil {
			return nil, err
		}
		return pass, nil
	case len(args) > 0:
		return password.NewClearPasswordFromString(args[0]), nil
	default:
		return password.NewClearPasswordFromString(""), nil
	}
}

// merge collects shares from stdin and prints what render produces.
func (a *app) merge(cmd *cobra.Command, render func(*seedshare.Session) (kind, value string, err error)) error {
	session, err := a.collect(cmd)
	if err != nil {
		return err
	}
	defer session.Reset()

	kind, value, err := render(session)
	if err != nil {
		return err
	}
	return a.printer(cmd).PrintSecret(kind, value)
}

// collect feeds stdin lines into a new session until it is ready or the
// input ends.
func (a *app) collect(cmd *cobra.Command) (*seedshare.Session, error) {
	session := a.engine.NewSession()
	stderr := cmd.ErrOrStderr()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	line := 0
	for session.State() != seedshare.StateReady && scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		sh, err := session.Add(words(text))
		if err != nil {
			fmt.Fprintf(stderr, "line %d rejected: %v\n", line, err)
			continue
		}
		a.printVerbose(cmd, "share %d accepted, %d of %d entered",
			sh.Index, session.Accepted(), session.Threshold())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shares: %w", err)
	}
	return session, nil
}
