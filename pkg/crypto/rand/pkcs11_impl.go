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

//go:build pkcs11

package rand

import (
	"errors"
	"fmt"
	"sync"

	"github.com/miekg/pkcs11"
)

var errPKCS11Module = errors.New("PKCS#11 module path is required")

// pkcs11Resolver draws entropy from C_GenerateRandom on a single
// read-only session held for the resolver's lifetime.
type pkcs11Resolver struct {
	mu       sync.RWMutex
	ctx      *pkcs11.Ctx
	session  pkcs11.SessionHandle
	loggedIn bool
}

var _ Resolver = (*pkcs11Resolver)(nil)

func newPKCS11Resolver(config *PKCS11Config) (Resolver, error) {
	if config == nil || config.Module == "" {
		return nil, errPKCS11Module
	}
	if config.PINRequired && config.PIN == "" {
		return nil, ErrPINRequired
	}

	ctx := pkcs11.New(config.Module)
	if ctx == nil {
		return nil, fmt.Errorf("failed to load PKCS#11 module: %s", config.Module)
	}
	if err := ctx.Initialize(); err != nil {
		ctx.Destroy()
		return nil, fmt.Errorf("failed to initialize PKCS#11 module %s: %w", config.Module, err)
	}

	r := &pkcs11Resolver{ctx: ctx}
	if err := r.open(config); err != nil {
		r.release()
		return nil, err
	}
	return r, nil
}

// open activates the slot list, opens the session and logs in when the
// slot requires a PIN. Some tokens (YubiKey) expose no slots until
// C_GetSlotList has been called.
func (p *pkcs11Resolver) open(config *PKCS11Config) error {
	if _, err := p.ctx.GetSlotList(true); err != nil {
		return fmt.Errorf("failed to list PKCS#11 slots: %w", err)
	}
	session, err := p.ctx.OpenSession(config.SlotID, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		return fmt.Errorf("failed to open PKCS#11 session on slot %d: %w", config.SlotID, err)
	}
	p.session = session

	if config.PINRequired {
		if err := p.ctx.Login(session, pkcs11.CKU_USER, config.PIN); err != nil {
			_ = p.ctx.CloseSession(session)
			p.session = 0
			return fmt.Errorf("PKCS#11 login failed: %w", err)
		}
		p.loggedIn = true
	}
	return nil
}

// release tears down whatever open managed to establish.
func (p *pkcs11Resolver) release() {
	if p.ctx == nil {
		return
	}
	if p.loggedIn {
		_ = p.ctx.Logout(p.session)
		p.loggedIn = false
	}
	if p.session != 0 {
		_ = p.ctx.CloseSession(p.session)
		p.session = 0
	}
	_ = p.ctx.Finalize()
	p.ctx.Destroy()
	p.ctx = nil
}

func pkcs11Available() bool {
	return true
}

func (p *pkcs11Resolver) Rand(n int) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.ctx == nil {
		return nil, fmt.Errorf("%w: PKCS#11", ErrClosed)
	}
	out, err := p.ctx.GenerateRandom(p.session, n)
	if err != nil {
		return nil, fmt.Errorf("C_GenerateRandom: %w", err)
	}
	return out, nil
}

func (p *pkcs11Resolver) Fill(buf []byte) error {
	return fill(p.Rand, buf)
}

// Read implements io.Reader over C_GenerateRandom.
func (p *pkcs11Resolver) Read(b []byte) (int, error) {
	return read(p.Rand, b)
}

func (p *pkcs11Resolver) Source() Source {
	return p
}

func (p *pkcs11Resolver) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ctx != nil
}

func (p *pkcs11Resolver) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release()
	return nil
}
