// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package providerfake implements a scriptable in-memory Adapter for tests.
package providerfake

import (
	"context"
	"sync"

	"logistiq/cli/internal/provider"
)

// Fake is a provider.Adapter whose snapshot and token are set by the test.
type Fake struct {
	mu       sync.Mutex
	kind     provider.Kind
	snap     provider.Snapshot
	token    string
	tokenErr error
	tokenSeq []string

	TokenCalls   int
	SignOutCalls int
}

// New returns a Fake reporting the given provider kind.
func New(kind provider.Kind) *Fake {
	return &Fake{kind: kind}
}

func (f *Fake) Kind() provider.Kind { return f.kind }

// SetSnapshot scripts the next Snapshot result.
func (f *Fake) SetSnapshot(s provider.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = s
}

// SetToken scripts the next Token result.
func (f *Fake) SetToken(token string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token, f.tokenErr = token, err
}

// SetTokenSequence scripts successive Token results; the last entry repeats
// once the sequence is exhausted.
func (f *Fake) SetTokenSequence(tokens ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenSeq = tokens
}

func (f *Fake) Snapshot(ctx context.Context) provider.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *Fake) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TokenCalls++
	if len(f.tokenSeq) > 0 {
		tok := f.tokenSeq[0]
		if len(f.tokenSeq) > 1 {
			f.tokenSeq = f.tokenSeq[1:]
		}
		return tok, nil
	}
	return f.token, f.tokenErr
}

func (f *Fake) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignOutCalls++
	f.snap = provider.Snapshot{}
	f.token, f.tokenErr = "", nil
	return nil
}
