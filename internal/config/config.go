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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-seedshare/pkg/crypto/rand"
	"github.com/jeremyhahn/go-seedshare/pkg/logging"
)

// Environment variables that override file settings.
const (
	EnvLogLevel         = "SEEDSHARE_LOG_LEVEL"
	EnvLogFormat        = "SEEDSHARE_LOG_FORMAT"
	EnvRNGMode          = "SEEDSHARE_RNG_MODE"
	EnvRNGFallback      = "SEEDSHARE_RNG_FALLBACK"
	EnvShareWordlist    = "SEEDSHARE_SHARE_WORDLIST"
	EnvMnemonicWordlist = "SEEDSHARE_MNEMONIC_WORDLIST"
	EnvMetricsEnabled   = "SEEDSHARE_METRICS_ENABLED"
	EnvMetricsTextfile  = "SEEDSHARE_METRICS_TEXTFILE"
	EnvTPMDevice        = "TPM_DEVICE_PATH"
	EnvPKCS11Library    = "PKCS11_LIBRARY"
	EnvPKCS11PIN        = "PKCS11_PIN"
)

// Config represents the complete seedshare configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Random    rand.Config     `yaml:"random"`
	Wordlists WordlistsConfig `yaml:"wordlists"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// warnings collects environment overrides that were ignored.
	warnings []error
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WordlistsConfig replaces the built-in wordlists with files holding one
// word per line. Empty paths keep the defaults.
type WordlistsConfig struct {
	Share    string `yaml:"share"`    // 1024 words
	Mnemonic string `yaml:"mnemonic"` // 2048 words
}

// MetricsConfig controls metrics collection
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Textfile is written in Prometheus text format after each command,
	// for pickup by the node_exporter textfile collector.
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Random: rand.Config{
			Mode: rand.ModeAuto,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from a YAML file and applies environment variable overrides.
// An empty path starts from Default.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	// Logging
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		cfg.Logging.Format = format
	}

	// Randomness
	if mode := os.Getenv(EnvRNGMode); mode != "" {
		cfg.Random.Mode = rand.Mode(strings.ToLower(mode))
	}
	if fallback := os.Getenv(EnvRNGFallback); fallback != "" {
		cfg.Random.FallbackMode = rand.Mode(strings.ToLower(fallback))
	}
	if device := os.Getenv(EnvTPMDevice); device != "" {
		if cfg.Random.TPM2Config == nil {
			cfg.Random.TPM2Config = &rand.TPM2Config{}
		}
		cfg.Random.TPM2Config.Device = device
	}
	if pkcs11 := cfg.Random.PKCS11Config; pkcs11 != nil {
		if library := os.Getenv(EnvPKCS11Library); library != "" {
			pkcs11.Module = library
		}
		if pin := os.Getenv(EnvPKCS11PIN); pin != "" {
			pkcs11.PIN = pin
		}
	}

	// Wordlists
	if path := os.Getenv(EnvShareWordlist); path != "" {
		cfg.Wordlists.Share = path
	}
	if path := os.Getenv(EnvMnemonicWordlist); path != "" {
		cfg.Wordlists.Mnemonic = path
	}

	// Metrics
	if enabled := os.Getenv(EnvMetricsEnabled); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			cfg.warnings = append(cfg.warnings,
				fmt.Errorf("ignoring %s=%q, metrics enabled=%t: %w", EnvMetricsEnabled, enabled, cfg.Metrics.Enabled, err))
		} else {
			cfg.Metrics.Enabled = v
		}
	}
	if path := os.Getenv(EnvMetricsTextfile); path != "" {
		cfg.Metrics.Textfile = path
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	validFormats := map[string]bool{
		logging.FormatText: true, logging.FormatJSON: true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	if _, err := rand.ParseMode(string(c.Random.Mode)); err != nil {
		return fmt.Errorf("random mode: %w", err)
	}
	if c.Random.FallbackMode != "" {
		if _, err := rand.ParseMode(string(c.Random.FallbackMode)); err != nil {
			return fmt.Errorf("random fallback_mode: %w", err)
		}
		if c.Random.FallbackMode == rand.ModeAuto {
			return fmt.Errorf("random fallback_mode cannot be %q", rand.ModeAuto)
		}
	}
	if c.Random.Mode == rand.ModePKCS11 && (c.Random.PKCS11Config == nil || c.Random.PKCS11Config.Module == "") {
		return fmt.Errorf("random pkcs11.module is required when mode is %q", rand.ModePKCS11)
	}
	if p := c.Random.PKCS11Config; p != nil && p.PINRequired && p.PIN == "" {
		return fmt.Errorf("random pkcs11: %w (set %s)", rand.ErrPINRequired, EnvPKCS11PIN)
	}

	if c.Metrics.Textfile != "" && !c.Metrics.Enabled {
		return fmt.Errorf("metrics textfile requires metrics to be enabled")
	}
	return nil
}

// Warnings returns the environment overrides Load ignored.
func (c *Config) Warnings() []error {
	return c.warnings
}

// LoggingOptions converts the logging section for logging.New. The level
// has already been checked by Validate; an unparsable level yields info.
func (c *Config) LoggingOptions() logging.Options {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return logging.Options{
		Level:  level,
		Format: strings.ToLower(c.Logging.Format),
	}
}
