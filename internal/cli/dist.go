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
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// splitFunc splits the secret read from one line of input.
type splitFunc func(line string, threshold, count int) ([][]string, error)

func newDistCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		a.distCommand("disthex",
			"Split hex encoded entropy into shares",
			`Reads one line of hex encoded entropy from stdin and prints <count>
shares, one per line. Any <threshold> of them reconstruct the entropy.
The entropy must have an even number of bytes.`,
			func(line string, threshold, count int) ([][]string, error) {
				secret, err := hex.DecodeString(strings.TrimSpace(line))
				if err != nil {
					return nil, fmt.Errorf("invalid hex entropy: %w", err)
				}
				defer clear(secret)
				return a.engine.SplitEntropy(secret, threshold, count)
			}),
		a.distCommand("distraw",
			"Split ASCII text into shares",
			`Reads one line of text from stdin and prints <count> shares, one per
line. The text is padded with NUL bytes to a multiple of 4 bytes.`,
			func(line string, threshold, count int) ([][]string, error) {
				return a.engine.SplitText(line, threshold, count)
			}),
		a.distCommand("distmnemonic",
			"Split a BIP-39 mnemonic into shares",
			`Reads a BIP-39 mnemonic from stdin, verifies its checksum and prints
<count> shares of its entropy, one per line. Merge them with mergemnemonic.`,
			func(line string, threshold, count int) ([][]string, error) {
				return a.engine.SplitMnemonic(words(line), threshold, count)
			}),
	}
}

func (a *app) distCommand(name, short, long string, split splitFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <count> <threshold>",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			count, threshold, err := parseCountThreshold(args)
			if err != nil {
				return err
			}
			line, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			shares, err := split(line, threshold, count)
			if err != nil {
				return err
			}
			a.printVerbose(cmd, "split into %d shares with threshold %d", count, threshold)
			return a.printer(cmd).PrintShares(threshold, shares)
		}),
	}
}
