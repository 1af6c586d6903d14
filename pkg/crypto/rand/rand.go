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

// Package rand selects the entropy source used for polynomial coefficients
// and generated secrets.
//
// A Resolver wraps one of several sources:
//   - Auto: the best available source (PKCS#11 > TPM2 > software)
//   - Software: crypto/rand
//   - TPM2: TPM2_GetRandom on a TPM device or simulator (build tag tpm2)
//   - PKCS11: C_GenerateRandom on an HSM slot (build tag pkcs11)
//
// A FallbackMode can be configured so that a failing hardware source does
// not abort a split. Every Resolver implements io.Reader and can be passed
// wherever crypto/rand.Reader is accepted:
//
//	rng, _ := rand.NewResolver(&rand.Config{
//	    Mode:         rand.ModeTPM2,
//	    FallbackMode: rand.ModeSoftware,
//	})
//	defer rng.Close()
//	shares, _ := secretsharing.Split(secret, 2, 3, rng)
//
// All Resolver implementations are safe for concurrent use.
package rand

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
)

// Mode specifies which RNG source to use.
type Mode string

const (
	// ModeAuto automatically selects the best available RNG.
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand
	ModeSoftware Mode = "software"

	// ModeTPM2 uses Trusted Platform Module 2.0 hardware RNG
	ModeTPM2 Mode = "tpm2"

	// ModePKCS11 uses PKCS#11 hardware security module RNG
	ModePKCS11 Mode = "pkcs11"
)

var (
	// ErrUnknownMode is returned for an unrecognized Mode.
	ErrUnknownMode = errors.New("rand: unknown mode")

	// ErrNotCompiled is returned when a hardware mode was excluded by
	// build tags.
	ErrNotCompiled = errors.New("rand: source not compiled")

	// ErrClosed is returned by a hardware source after Close.
	ErrClosed = errors.New("rand: source closed")

	// ErrPINRequired is returned when a PKCS#11 slot requires a PIN and
	// none is configured.
	ErrPINRequired = errors.New("rand: PKCS#11 PIN required")

	// ErrShortRandom is returned when a source returns fewer bytes than
	// requested.
	ErrShortRandom = errors.New("rand: short random read")
)

// ParseMode parses a mode name. An empty string selects ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeSoftware, ModeTPM2, ModePKCS11:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Config contains RNG configuration.
type Config struct {
	// Mode specifies the primary RNG source to use.
	// Defaults to ModeAuto if not specified.
	Mode Mode `yaml:"mode"`

	// FallbackMode specifies the RNG source to use if primary mode fails.
	// If not specified, failures are returned as errors.
	FallbackMode Mode `yaml:"fallback_mode"`

	// TPM2Config contains TPM2-specific configuration (if Mode=ModeTPM2).
	TPM2Config *TPM2Config `yaml:"tpm2"`

	// PKCS11Config contains PKCS#11-specific configuration (if Mode=ModePKCS11).
	PKCS11Config *PKCS11Config `yaml:"pkcs11"`
}

// TPM2Config contains configuration for TPM2 RNG.
type TPM2Config struct {
	// Device path to the TPM device (default: "/dev/tpm0")
	Device string `yaml:"device"`

	// MaxRequestSize limits the bytes requested per TPM2_GetRandom call.
	// Default: 32
	MaxRequestSize int `yaml:"max_request_size"`

	// UseSimulator connects to a TPM simulator over TCP instead of Device.
	UseSimulator bool `yaml:"use_simulator"`

	// SimulatorHost is the simulator host. Default: "localhost"
	SimulatorHost string `yaml:"simulator_host"`

	// SimulatorPort is the simulator command port; the platform port is
	// SimulatorPort+1. Default: 2321
	SimulatorPort int `yaml:"simulator_port"`
}

// PKCS11Config contains configuration for PKCS#11 RNG.
type PKCS11Config struct {
	// Module path to the PKCS#11 library (e.g., /usr/lib/softhsm/libsofthsm2.so)
	Module string `yaml:"module"`

	// SlotID specifies the PKCS#11 slot containing the RNG
	SlotID uint `yaml:"slot_id"`

	// PINRequired indicates if the slot requires PIN authentication
	PINRequired bool `yaml:"pin_required"`

	// PIN is the authentication PIN (if PINRequired is true). It is never
	// read from the config file; set it through PKCS11_PIN.
	PIN string `yaml:"-"`
}

// Source represents a random number generator.
type Source interface {
	// Rand returns n random bytes.
	Rand(n int) ([]byte, error)

	// Available returns true if this RNG source is available and ready.
	Available() bool

	// Close closes the RNG and releases any resources.
	Close() error
}

// Resolver provides the main interface for generating random numbers.
// Applications should create a Resolver at startup and reuse it.
type Resolver interface {
	// Rand returns n random bytes, trying the fallback source if the
	// primary fails.
	Rand(n int) ([]byte, error)

	// Fill overwrites every byte of buf with random data.
	Fill(buf []byte) error

	// Read implements io.Reader. It either fills p completely or returns
	// an error.
	Read(p []byte) (n int, err error)

	// Source returns the underlying RNG Source being used.
	Source() Source

	// Available returns true if at least one RNG source is available.
	Available() bool

	// Close closes the resolver and releases any resources.
	Close() error
}

// NewResolver creates a new RNG resolver. config may be nil, a Mode or a
// *Config; nil and empty configurations select auto mode.
func NewResolver(config interface{}) (Resolver, error) {
	cfg := normalizeConfig(config)
	return newResolver(cfg)
}

// normalizeConfig converts various config types to *Config.
func normalizeConfig(config interface{}) *Config {
	if config == nil {
		return &Config{Mode: ModeAuto}
	}

	switch v := config.(type) {
	case Mode:
		return &Config{Mode: v}
	case *Config:
		if v == nil {
			return &Config{Mode: ModeAuto}
		}
		cfg := *v
		if cfg.Mode == "" {
			cfg.Mode = ModeAuto
		}
		return &cfg
	default:
		return &Config{Mode: ModeAuto}
	}
}

// newResolver creates the resolver for cfg.Mode and wraps it with the
// fallback source when one is configured.
func newResolver(cfg *Config) (Resolver, error) {
	var (
		primary Resolver
		err     error
	)
	switch cfg.Mode {
	case ModeAuto, "":
		return newAutoResolver(cfg)
	case ModeSoftware:
		primary, err = newSoftwareResolver()
	case ModeTPM2:
		primary, err = newTPM2Resolver(cfg.TPM2Config)
	case ModePKCS11:
		primary, err = newPKCS11Resolver(cfg.PKCS11Config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, cfg.Mode)
	}

	if cfg.FallbackMode == "" || cfg.FallbackMode == cfg.Mode {
		return primary, err
	}
	fallback, fbErr := newResolver(&Config{
		Mode:         cfg.FallbackMode,
		TPM2Config:   cfg.TPM2Config,
		PKCS11Config: cfg.PKCS11Config,
	})
	if err != nil {
		if fbErr != nil {
			return nil, errors.Join(err, fbErr)
		}
		return fallback, nil
	}
	if fbErr != nil {
		return primary, nil
	}
	return &fallbackResolver{resolver: primary, fallback: fallback}, nil
}

// fill copies len(buf) bytes from next into buf.
func fill(next func(n int) ([]byte, error), buf []byte) error {
	data, err := next(len(buf))
	if err != nil {
		return err
	}
	if len(data) < len(buf) {
		return fmt.Errorf("%w: got %d of %d bytes", ErrShortRandom, len(data), len(buf))
	}
	copy(buf, data)
	clear(data)
	return nil
}

// read adapts fill to io.Reader semantics.
func read(next func(n int) ([]byte, error), p []byte) (int, error) {
	if err := fill(next, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SoftwareResolver uses crypto/rand from the Go standard library.
type SoftwareResolver struct{}

var _ Resolver = (*SoftwareResolver)(nil)

func newSoftwareResolver() (Resolver, error) {
	return &SoftwareResolver{}, nil
}

func (s *SoftwareResolver) Rand(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := s.Fill(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *SoftwareResolver) Fill(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

// Read implements io.Reader for compatibility with crypto/rand.Reader.
func (s *SoftwareResolver) Read(p []byte) (n int, err error) {
	return rand.Read(p)
}

func (s *SoftwareResolver) Source() Source {
	return s
}

func (s *SoftwareResolver) Available() bool {
	return true
}

func (s *SoftwareResolver) Close() error {
	return nil
}
