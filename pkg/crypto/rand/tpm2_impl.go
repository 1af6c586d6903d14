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

//go:build tpm2

package rand

import (
	"fmt"
	"math"
	"net"
	"strconv"
	"sync"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
	"github.com/google/go-tpm/tpm2/transport/tcp"
	"github.com/google/go-tpm/tpmutil"
)

const (
	defaultTPMDevice        = "/dev/tpm0"
	defaultTPMChunk         = 32
	defaultSimulatorHost    = "localhost"
	defaultSimulatorCmdPort = 2321
)

// tpm2Resolver draws entropy from TPM2_GetRandom. The TPM caps each
// response at its digest size, so requests are issued in chunks.
type tpm2Resolver struct {
	mu    sync.RWMutex
	tpm   transport.TPMCloser
	chunk int
}

var _ Resolver = (*tpm2Resolver)(nil)

func newTPM2Resolver(config *TPM2Config) (Resolver, error) {
	var cfg TPM2Config
	if config != nil {
		cfg = *config
	}
	tpm, err := openTPM(&cfg)
	if err != nil {
		return nil, err
	}
	return &tpm2Resolver{tpm: tpm, chunk: chunkSize(cfg.MaxRequestSize)}, nil
}

// chunkSize bounds one TPM2_GetRandom request. BytesRequested is a
// uint16 and TPMs answer with at most one digest anyway.
func chunkSize(n int) int {
	switch {
	case n <= 0:
		return defaultTPMChunk
	case n > math.MaxUint16:
		return math.MaxUint16
	default:
		return n
	}
}

// openTPM opens either the character device or a swtpm/mssim simulator.
// The simulator platform port is the command port plus one.
func openTPM(cfg *TPM2Config) (transport.TPMCloser, error) {
	if !cfg.UseSimulator {
		device := cfg.Device
		if device == "" {
			device = defaultTPMDevice
		}
		rwc, err := tpmutil.OpenTPM(device)
		if err != nil {
			return nil, fmt.Errorf("failed to open TPM2 device %s: %w", device, err)
		}
		return transport.FromReadWriteCloser(rwc), nil
	}

	host := cfg.SimulatorHost
	if host == "" {
		host = defaultSimulatorHost
	}
	port := cfg.SimulatorPort
	if port <= 0 {
		port = defaultSimulatorCmdPort
	}
	cmdAddr := net.JoinHostPort(host, strconv.Itoa(port))
	platAddr := net.JoinHostPort(host, strconv.Itoa(port+1))
	tpm, err := tcp.Open(tcp.Config{
		CommandAddress:  cmdAddr,
		PlatformAddress: platAddr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TPM simulator at %s: %w", cmdAddr, err)
	}
	return tpm, nil
}

func tpm2Available() bool {
	return true
}

// Fill writes TPM entropy into buf in place.
func (t *tpm2Resolver) Fill(buf []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.tpm == nil {
		return fmt.Errorf("%w: TPM2", ErrClosed)
	}
	for off := 0; off < len(buf); {
		want := min(len(buf)-off, t.chunk)
		rsp, err := tpm2.GetRandom{BytesRequested: uint16(want)}.Execute(t.tpm)
		if err != nil {
			return fmt.Errorf("TPM2_GetRandom: %w", err)
		}
		got := rsp.RandomBytes.Buffer
		if len(got) == 0 {
			return fmt.Errorf("%w: TPM2_GetRandom returned no bytes", ErrShortRandom)
		}
		off += copy(buf[off:], got)
	}
	return nil
}

func (t *tpm2Resolver) Rand(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := t.Fill(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Read implements io.Reader over TPM2_GetRandom.
func (t *tpm2Resolver) Read(p []byte) (int, error) {
	if err := t.Fill(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (t *tpm2Resolver) Source() Source {
	return t
}

func (t *tpm2Resolver) Available() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tpm != nil
}

func (t *tpm2Resolver) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tpm == nil {
		return nil
	}
	err := t.tpm.Close()
	t.tpm = nil
	return err
}
