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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-seedshare/internal/config"
	"github.com/jeremyhahn/go-seedshare/pkg/crypto/rand"
	"github.com/jeremyhahn/go-seedshare/pkg/logging"
	"github.com/jeremyhahn/go-seedshare/pkg/metrics"
	"github.com/jeremyhahn/go-seedshare/pkg/mnemonic/wordlists"
	"github.com/jeremyhahn/go-seedshare/pkg/seedshare"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// OutputFormat controls output formatting (text, json)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool

	// RNG overrides the configured random source mode
	RNG string

	// MetricsTextfile overrides the configured metrics textfile path
	MetricsTextfile string
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: string(OutputFormatText),
	}
}

// app carries the state shared by every command of one invocation.
type app struct {
	cfg      *Config
	viper    *viper.Viper
	settings *config.Config
	logger   *logging.Logger
	rng      rand.Resolver
	engine   *seedshare.Engine
}

func newApp() *app {
	return &app{
		cfg:   NewConfig(),
		viper: viper.New(),
	}
}

// resolveFlags copies flag values, or their SEEDSHARE_* environment
// equivalents, into the CLI config.
func (a *app) resolveFlags() error {
	a.cfg.ConfigFile = a.viper.GetString("config")
	a.cfg.OutputFormat = a.viper.GetString("output")
	a.cfg.Verbose = a.viper.GetBool("verbose")
	a.cfg.RNG = a.viper.GetString("rng")
	a.cfg.MetricsTextfile = a.viper.GetString("metrics-textfile")

	switch OutputFormat(a.cfg.OutputFormat) {
	case OutputFormatText, OutputFormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", a.cfg.OutputFormat)
	}
}

// loadSettings reads the config file and applies command line overrides.
func (a *app) loadSettings() (*config.Config, error) {
	settings, err := config.Load(a.cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if a.cfg.RNG != "" {
		mode, err := rand.ParseMode(a.cfg.RNG)
		if err != nil {
			return nil, err
		}
		settings.Random.Mode = mode
	}
	if a.cfg.MetricsTextfile != "" {
		settings.Metrics.Enabled = true
		settings.Metrics.Textfile = a.cfg.MetricsTextfile
	}
	if a.cfg.Verbose {
		settings.Logging.Level = "debug"
	}
	return settings, nil
}

// setup builds the engine for cmd.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.resolveFlags(); err != nil {
		return err
	}
	settings, err := a.loadSettings()
	if err != nil {
		return err
	}
	a.settings = settings

	if settings.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	opts := settings.LoggingOptions()
	opts.Writer = cmd.ErrOrStderr()
	a.logger = logging.New(opts)
	for _, w := range settings.Warnings() {
		a.logger.Warn("ignored environment override", "error", w)
	}

	shareWords, err := wordlists.LoadOrDefault(settings.Wordlists.Share, wordlists.SLIP39)
	if err != nil {
		return fmt.Errorf("failed to load share wordlist: %w", err)
	}
	mnemonicWords, err := wordlists.LoadOrDefault(settings.Wordlists.Mnemonic, wordlists.English)
	if err != nil {
		return fmt.Errorf("failed to load mnemonic wordlist: %w", err)
	}

	a.rng, err = rand.NewResolver(&settings.Random)
	if err != nil {
		return fmt.Errorf("failed to open random source: %w", err)
	}
	a.logger.Debug("random source ready", "mode", string(settings.Random.Mode))

	a.engine, err = seedshare.NewEngine(&seedshare.Config{
		ShareWordlist:    shareWords,
		MnemonicWordlist: mnemonicWords,
		Random:           a.rng,
		Logger:           a.logger,
	})
	return err
}

// finish releases the random source and exports metrics. Its failures are
// logged rather than returned: the command has already produced its output.
func (a *app) finish() {
	logger := a.logger
	if logger == nil {
		logger = logging.Discard()
	}
	if a.rng != nil {
		logger.MaybeError(a.rng.Close(), "component", "random source")
		a.rng = nil
	}
	if a.settings == nil || !metrics.IsEnabled() {
		return
	}
	if path := a.settings.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Error(err, "path", path)
			return
		}
		logger.Debug("metrics written", "path", path)
	}
}

// run wraps a command body with setup and finish.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.finish()
		if err := a.setup(cmd); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

// printer returns a Printer writing to the command's stdout.
func (a *app) printer(cmd *cobra.Command) *Printer {
	return NewPrinter(a.cfg.OutputFormat, cmd.OutOrStdout())
}

// printVerbose prints a message to stderr if verbose mode is enabled
func (a *app) printVerbose(cmd *cobra.Command, format string, args ...any) {
	if a.cfg.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[VERBOSE] "+format+"\n", args...)
	}
}
