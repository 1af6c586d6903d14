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

package seedshare

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-seedshare/pkg/logging"
	"github.com/jeremyhahn/go-seedshare/pkg/metrics"
	"github.com/jeremyhahn/go-seedshare/pkg/share"
)

// State is the phase of a reconstruction Session.
type State int

const (
	// StateEmpty holds no shares.
	StateEmpty State = iota

	// StateCollecting holds fewer shares than the threshold.
	StateCollecting

	// StateReady holds threshold shares and can produce the secret.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCollecting:
		return "collecting"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session accumulates shares entered one at a time.
//
//	Empty --valid share--> Collecting --threshold-th share--> Ready
//
// The first accepted share fixes the threshold and payload length; a
// threshold of 1 moves straight to Ready. Rejected entries (malformed
// words, failed checksum, threshold or length mismatch, duplicate index)
// return an error and leave the session unchanged. A Session is not safe
// for concurrent use.
type Session struct {
	id     uuid.UUID
	engine *Engine
	logger *logging.Logger
	shares []*share.Share
}

// NewSession starts an empty reconstruction session.
func (e *Engine) NewSession() *Session {
	id := uuid.New()
	return &Session{
		id:     id,
		engine: e,
		logger: e.logger.With("session", id.String()),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id.String()
}

// State returns the current state.
func (s *Session) State() State {
	switch {
	case len(s.shares) == 0:
		return StateEmpty
	case len(s.shares) < s.shares[0].Threshold:
		return StateCollecting
	default:
		return StateReady
	}
}

// Threshold returns the threshold fixed by the first accepted share, or 0.
func (s *Session) Threshold() int {
	if len(s.shares) == 0 {
		return 0
	}
	return s.shares[0].Threshold
}

// Accepted returns the number of accepted shares.
func (s *Session) Accepted() int {
	return len(s.shares)
}

// Remaining returns how many more shares are needed, or 0 when the
// threshold is not yet known or has been reached.
func (s *Session) Remaining() int {
	if len(s.shares) == 0 {
		return 0
	}
	return s.Threshold() - len(s.shares)
}

// Indices returns the accepted share indices in ascending order.
func (s *Session) Indices() []int {
	out := make([]int, len(s.shares))
	for i, sh := range s.shares {
		out[i] = sh.Index
	}
	sort.Ints(out)
	return out
}

// Add decodes share words and offers the share to the session.
func (s *Session) Add(words []string) (*share.Share, error) {
	if s.State() == StateReady {
		return nil, s.reject(ErrSessionComplete)
	}
	sh, err := s.engine.DecodeShare(words)
	if err != nil {
		return nil, s.reject(err)
	}
	if err := s.AddShare(sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// AddShare offers a decoded share to the session. The session keeps its
// own copy of the payload.
func (s *Session) AddShare(sh *share.Share) error {
	if s.State() == StateReady {
		return s.reject(ErrSessionComplete)
	}
	if err := compatible(s.shares, sh); err != nil {
		return s.reject(err)
	}

	accepted := *sh
	accepted.Payload = append([]byte(nil), sh.Payload...)
	s.shares = append(s.shares, &accepted)

	metrics.RecordShareAccepted()
	s.logger.Debug("accepted share",
		"index", sh.Index, "threshold", sh.Threshold, "state", s.State().String())
	return nil
}

func (s *Session) reject(err error) error {
	reason := errorType(err)
	metrics.RecordShareRejected(reason)
	metrics.RecordError(metrics.OpSessionAdd, reason)
	s.logger.Warn("rejected share", "reason", reason, "accepted", len(s.shares))
	return err
}

// Secret reconstructs the secret. The session must be Ready.
func (s *Session) Secret() (secret []byte, err error) {
	defer func(start time.Time) { s.engine.observe(metrics.OpCombine, start, err) }(time.Now())

	if s.State() != StateReady {
		return nil, fmt.Errorf("%w: have %d of %d shares", ErrSessionNotReady, len(s.shares), s.Threshold())
	}
	return interpolate(s.shares)
}

// Mnemonic reconstructs the secret and renders it as a BIP-39 mnemonic.
func (s *Session) Mnemonic() ([]string, error) {
	secret, err := s.Secret()
	if err != nil {
		return nil, err
	}
	defer clear(secret)
	return s.engine.EncodeMnemonic(secret)
}

// Text reconstructs a text secret without its NUL padding.
func (s *Session) Text() (string, error) {
	secret, err := s.Secret()
	if err != nil {
		return "", err
	}
	defer clear(secret)
	return Text(secret), nil
}

// Seed reconstructs the secret and derives its SLIP39 seed.
func (s *Session) Seed(passphrase []byte) ([]byte, error) {
	secret, err := s.Secret()
	if err != nil {
		return nil, err
	}
	defer clear(secret)
	return s.engine.DeriveSeed(secret, passphrase)
}

// Reset wipes accepted shares and returns the session to Empty.
func (s *Session) Reset() {
	for _, sh := range s.shares {
		clear(sh.Payload)
	}
	s.shares = nil
	s.logger.Debug("session reset")
}
