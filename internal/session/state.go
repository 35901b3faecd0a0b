// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session implements the client-side session bootstrap core: the
// state machine that reconciles identity-provider state with the locally
// persisted application user record, synchronizes that record against the
// backend exactly once per identity transition, and decides where the web
// application should route.
package session

import (
	"time"

	"logistiq/cli/internal/provider"
)

// AuthStatus is the session's authentication state.
type AuthStatus string

const (
	StatusUnauthenticated AuthStatus = "unauthenticated"
	StatusAuthenticating  AuthStatus = "authenticating"
	StatusAuthenticated   AuthStatus = "authenticated"
	StatusError           AuthStatus = "error"
)

// AppUser is the backend-synchronized application user record, distinct from
// the provider identity.
type AppUser struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	FullName           string `json:"fullName"`
	HasActiveCompany   bool   `json:"hasActiveCompany"`
	CurrentCompanyID   string `json:"currentCompanyId,omitempty"`
	CurrentCompanyName string `json:"currentCompanyName,omitempty"`
}

// Company is one tenant membership of the current identity.
type Company struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	IsActive bool      `json:"isActive"`
	JoinedAt time.Time `json:"joinedAt"`
}

// State is the session state owned by the Store. It is mutated only by the
// bootstrap machine and by explicit logout.
//
// Invariants:
//   - AppUser is non-nil only when AuthStatus is authenticated and a sync has
//     completed since the last identity change.
//   - LastSyncedEmail equals Identity.Email whenever IsInitialized is true;
//     an identity email change resets IsInitialized first.
//   - AppUser and Token share a lifetime: both set or both empty.
//   - AppUser.CurrentCompanyID is non-empty iff HasActiveCompany is true.
type State struct {
	AuthStatus  AuthStatus         `json:"authStatus"`
	ErrorReason string             `json:"errorReason,omitempty"`
	Identity    *provider.Identity `json:"identity,omitempty"`
	AppUser     *AppUser           `json:"user,omitempty"`
	Token       string             `json:"token,omitempty"`
	Companies   []Company          `json:"companies,omitempty"`

	// Init cursor: prevents redundant sync calls for the same signed-in
	// identity across evaluations and restarts.
	IsInitialized   bool   `json:"isInitialized"`
	LastSyncedEmail string `json:"lastInitializedEmail,omitempty"`
}

// Authenticated reports whether the session has a signed-in identity.
func (s State) Authenticated() bool { return s.AuthStatus == StatusAuthenticated }

// Synced reports whether the backend user record is populated for the
// current identity.
func (s State) Synced() bool { return s.AppUser != nil && s.Token != "" }

// HasActiveCompany reports whether the synced user has an active company.
// False while no sync has completed.
func (s State) HasActiveCompany() bool {
	return s.AppUser != nil && s.AppUser.HasActiveCompany
}
