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
	"strings"

	"github.com/spf13/cobra"
)

// EnvPrefix prefixes environment variables bound to global flags, for
// example SEEDSHARE_OUTPUT or SEEDSHARE_METRICS_TEXTFILE.
const EnvPrefix = "SEEDSHARE"

// NewRootCommand builds the seedshare command tree.
func NewRootCommand() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *app) {
	a := newApp()

	root := &cobra.Command{
		Use:   "seedshare",
		Short: "seedshare - split wallet seeds into mnemonic shares",
		Long: `seedshare splits a secret into shares with Shamir's secret sharing
over GF(256) and renders each share as words from a 1024-word list.
Any threshold of the shares reconstructs the secret; fewer reveal nothing.

Secrets can be given as hex entropy, ASCII text or a BIP-39 mnemonic.
Shares are read from stdin one per line when merging; bad lines are
reported and skipped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.ConfigFile, "config", "",
		"config file (YAML)")
	flags.StringVarP(&a.cfg.OutputFormat, "output", "o", string(OutputFormatText),
		"output format (text, json)")
	flags.BoolVarP(&a.cfg.Verbose, "verbose", "v", false,
		"verbose output")
	flags.StringVar(&a.cfg.RNG, "rng", "",
		"random source (auto, software, tpm2, pkcs11), overrides the config file")
	flags.StringVar(&a.cfg.MetricsTextfile, "metrics-textfile", "",
		"write Prometheus metrics to this file when the command finishes")

	a.viper.SetEnvPrefix(EnvPrefix)
	a.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.viper.AutomaticEnv()
	_ = a.viper.BindPFlags(flags) // flags are non-nil

	root.AddCommand(newDistCommands(a)...)
	root.AddCommand(newMergeCommands(a)...)
	root.AddCommand(newSeedCommand(a))
	root.AddCommand(newGenerateCommand(a))
	root.AddCommand(newVersionCommand(a))
	return root, a
}

// Execute runs the root command and prints any error to stderr in the
// selected output format.
func Execute() error {
	root, a := newRootCommand()
	err := root.Execute()
	if err != nil {
		_ = NewPrinter(a.cfg.OutputFormat, root.ErrOrStderr()).PrintError(err) // best-effort
	}
	return err
}
