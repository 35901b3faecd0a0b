// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package provider abstracts the third-party identity provider behind a small
// capability interface. The session machine never talks to Clerk or Kinde
// directly; it consumes Snapshots and token fetches from an Adapter. This is
// what lets one bootstrap machine serve both providers.
package provider

import "context"

// Kind identifies which identity provider an adapter wraps.
type Kind string

const (
	KindClerk Kind = "clerk"
	KindKinde Kind = "kinde"
)

// Identity is the signed-in principal as reported by the provider.
// It is distinct from the backend-synchronized application user.
type Identity struct {
	ExternalID  string `json:"external_id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Snapshot is the provider's current view of the session, taken at a single
// point in time. The session machine evaluates one snapshot per pass.
type Snapshot struct {
	// Loading is true while the adapter has not yet determined sign-in state
	// (e.g. a stored token is being validated).
	Loading bool
	// Authenticated reports whether the provider currently has a signed-in
	// principal. Identity is populated iff Authenticated is true.
	Authenticated bool
	Identity      Identity
	// Err carries a provider-level failure (broken stored credentials,
	// unreachable token endpoint on an established session). The machine
	// treats it as terminal for the session.
	Err error
}

// Adapter is the capability surface the session machine requires from an
// identity provider. Implementations must be safe for concurrent use.
type Adapter interface {
	// Kind reports which provider this adapter wraps.
	Kind() Kind
	// Snapshot returns the provider's current session view. It must not
	// block on network longer than the ambient HTTP timeout.
	Snapshot(ctx context.Context) Snapshot
	// Token returns a bearer token for backend calls, refreshing if the
	// provider supports it. Returns empty string when no session exists.
	Token(ctx context.Context) (string, error)
	// SignOut revokes the provider session (best-effort remotely) and
	// clears locally stored credentials.
	SignOut(ctx context.Context) error
}
