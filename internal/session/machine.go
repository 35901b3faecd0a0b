// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"

	"github.com/rs/zerolog"

	"logistiq/cli/internal/backend"
	errs "logistiq/cli/internal/errors"
	"logistiq/cli/internal/httperrors"
	"logistiq/cli/internal/provider"
)

// Phase is the machine's terminal state for one evaluation.
type Phase string

const (
	// PhaseLoading: the provider has not settled yet, or a sync started by a
	// concurrent evaluation is still in flight. Render a wait state.
	PhaseLoading Phase = "loading"
	// PhaseUnauthenticated: no signed-in identity, or the session was just
	// cleared by a provider or auth error.
	PhaseUnauthenticated Phase = "unauthenticated"
	// PhaseSynced: the backend user record is current for this identity.
	PhaseSynced Phase = "synced"
	// PhaseErrored: a transient sync failure; retryable on the next
	// evaluation, cached state untouched.
	PhaseErrored Phase = "errored"
)

// Outcome is what one evaluation of the machine produces: a phase, a routing
// decision for the current path, and the error behind an errored phase.
// Every evaluation terminates in a defined Outcome; nothing escapes to the
// caller as a panic or unclassified error.
type Outcome struct {
	Phase      Phase
	Route      RouteDecision
	Err        error
	JustSynced bool
}

// Machine is the session bootstrap machine. Given the provider's latest
// snapshot it decides the next session state, performs the backend user sync
// at most once per identity transition, and emits a routing decision.
//
// Evaluate may be called from overlapping goroutines (re-entrant renders);
// the store's sync phase guarantees at most one sync call is in flight.
type Machine struct {
	provider provider.Adapter
	backend  backend.API
	store    *Store
	log      zerolog.Logger
}

// NewMachine wires the bootstrap machine to its collaborators.
func NewMachine(p provider.Adapter, be backend.API, store *Store, log zerolog.Logger) *Machine {
	return &Machine{provider: p, backend: be, store: store, log: log}
}

// Evaluate runs one pass of the decision function against the provider's
// current snapshot and the store, for the given current path.
func (m *Machine) Evaluate(ctx context.Context, currentPath string) Outcome {
	snap := m.provider.Snapshot(ctx)
	return m.evaluate(ctx, snap, currentPath)
}

// evaluate is Evaluate with an explicit snapshot; tests drive it directly.
func (m *Machine) evaluate(ctx context.Context, snap provider.Snapshot, currentPath string) Outcome {
	// 1. Provider still resolving: no side effects, render loading.
	if snap.Loading {
		return Outcome{Phase: PhaseLoading, Route: renderLoading()}
	}

	// 2-3. Provider error or signed out: the session is gone either way.
	if snap.Err != nil {
		m.log.Warn().Err(snap.Err).Msg("identity provider failed; clearing session")
		m.store.Clear()
		return Outcome{
			Phase: PhaseUnauthenticated,
			Route: redirectToLoginUnlessThere(currentPath),
			Err:   errs.Wrap(errs.ProviderFailed, "identity provider failed", snap.Err),
		}
	}
	if !snap.Authenticated {
		m.store.Clear()
		return Outcome{Phase: PhaseUnauthenticated, Route: redirectToLoginUnlessThere(currentPath)}
	}

	// Authenticated. Record the identity; an email change resets the init
	// cursor before any routing decision is made for the new identity.
	m.store.SetIdentity(snap.Identity)

	st := m.store.Snapshot()
	email := snap.Identity.Email

	// 4. Three-way short-circuit: skip the sync when the cursor already
	// covers this identity, or when user+token are both cached.
	shouldSync := !(st.State.IsInitialized && st.State.LastSyncedEmail == email) &&
		!st.State.Synced()

	if !shouldSync {
		return Outcome{Phase: PhaseSynced, Route: DecideRoute(st.State, currentPath)}
	}

	// 5. Single-flight: acquire the guard or yield to the sync in flight.
	gen, ok := m.store.BeginSync(email)
	if !ok {
		return Outcome{Phase: PhaseLoading, Route: renderLoading()}
	}
	return m.runSync(ctx, gen, snap.Identity, currentPath)
}

// runSync performs the token fetch and backend user sync under the guard
// acquired by evaluate. The guard is released on every exit path.
func (m *Machine) runSync(ctx context.Context, gen uint64, id provider.Identity, currentPath string) Outcome {
	// Release the guard unless FinishSync already did.
	released := false
	defer func() {
		if !released {
			m.store.FailSync(gen)
		}
	}()

	token, err := m.provider.Token(ctx)
	if err != nil || token == "" {
		// Token-not-ready race: the provider reports authenticated but has
		// no token yet. Transient; shouldSync stays true for the next pass.
		if err == nil {
			m.log.Debug().Str("email", id.Email).Msg("token not ready; will retry on next evaluation")
			return Outcome{Phase: PhaseLoading, Route: renderLoading()}
		}
		m.store.SetError(err.Error())
		return Outcome{
			Phase: PhaseErrored,
			Route: renderLoading(),
			Err:   errs.Wrap(errs.SyncTransient, "fetch token", err),
		}
	}

	user, err := m.backend.SyncUser(ctx, token, backend.SyncUserRequest{
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
	})
	if err != nil {
		if httperrors.IsAuthStatus(err) {
			// Backend says the session is invalid despite the provider
			// believing otherwise. Terminal: full clear and back to login.
			m.log.Warn().Err(err).Str("email", id.Email).Msg("user sync rejected; clearing session")
			m.store.FailSync(gen)
			released = true
			m.store.Clear()
			return Outcome{
				Phase: PhaseUnauthenticated,
				Route: redirectToLoginUnlessThere(currentPath),
				Err:   errs.Wrap(errs.SyncRejected, "backend rejected session", err),
			}
		}
		// Transient: leave state untouched, retry lazily on next evaluation.
		m.log.Warn().Err(err).Str("email", id.Email).Msg("user sync failed; will retry on next evaluation")
		m.store.SetError(err.Error())
		return Outcome{
			Phase: PhaseErrored,
			Route: renderLoading(),
			Err:   errs.Wrap(errs.SyncTransient, "sync user", err),
		}
	}

	applied := m.store.FinishSync(gen, id.Email, AppUser{
		ID:                 user.UserID,
		Email:              user.Email,
		FullName:           user.FullName,
		HasActiveCompany:   user.HasActiveCompany,
		CurrentCompanyID:   user.CurrentCompanyID,
		CurrentCompanyName: user.CurrentCompanyName,
	}, token, nil)
	released = true
	if !applied {
		// Identity changed or logged out while the sync was in flight; the
		// result was discarded and the next evaluation starts fresh.
		return Outcome{Phase: PhaseLoading, Route: renderLoading()}
	}

	m.log.Info().
		Str("email", id.Email).
		Bool("has_active_company", user.HasActiveCompany).
		Msg("user synchronized")

	st := m.store.Snapshot()
	return Outcome{
		Phase:      PhaseSynced,
		Route:      postSyncRoute(st.State, currentPath),
		JustSynced: true,
	}
}

// postSyncRoute is the routing signal for a sync that just succeeded:
// onboarding when no company is active, dashboard when onboarding is stale.
func postSyncRoute(s State, currentPath string) RouteDecision {
	if !s.HasActiveCompany() && currentPath != RouteOnboarding {
		return RouteDecision{Action: ActionRedirect, RedirectTo: RouteOnboarding}
	}
	if s.HasActiveCompany() && currentPath == RouteOnboarding {
		return RouteDecision{Action: ActionRedirect, RedirectTo: RouteDashboard}
	}
	return DecideRoute(s, currentPath)
}
