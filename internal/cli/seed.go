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
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-seedshare/pkg/mnemonic"
)

func newSeedCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [passphrase]",
		Short: "Derive the seed of a BIP-39 mnemonic",
		Long: `Reads a BIP-39 mnemonic from stdin, verifies its checksum and prints
the 64-byte seed: PBKDF2-SHA512 over the salt "mnemonic" followed by the
passphrase, 2048 iterations.
` + passphraseHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			pass, err := passphrase(cmd, args)
			if err != nil {
				return err
			}
			defer pass.Clear()

			line, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			p := pass.Bytes()
			defer clear(p)
			seed, err := a.engine.MnemonicSeed(words(line), p)
			if err != nil {
				return err
			}
			defer clear(seed)
			return a.printer(cmd).PrintSecret("seed", hex.EncodeToString(seed))
		}),
	}
	addPassphraseFlag(cmd)
	return cmd
}

func newGenerateCommand(a *app) *cobra.Command {
	var (
		size  int
		asHex bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new BIP-39 mnemonic",
		Long: `Generates fresh entropy from the configured random source and prints
it as a BIP-39 mnemonic, or as hex with --hex. Pipe the result into
distmnemonic or disthex to split it.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if asHex {
				entropy, err := a.engine.GenerateEntropy(size)
				if err != nil {
					return err
				}
				defer clear(entropy)
				return a.printer(cmd).PrintSecret("hex", hex.EncodeToString(entropy))
			}
			words, err := a.engine.GenerateMnemonic(size)
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintSecret("mnemonic", mnemonic.Join(words))
		}),
	}
	cmd.Flags().IntVarP(&size, "bytes", "b", 32, "entropy size in bytes (16, 20, 24, 28 or 32)")
	cmd.Flags().BoolVar(&asHex, "hex", false, "print hex entropy instead of words")
	return cmd
}
