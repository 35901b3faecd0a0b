// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"logistiq/cli/internal/backend"
	"logistiq/cli/internal/backend/backendfake"
	"logistiq/cli/internal/httperrors"
	"logistiq/cli/internal/provider"
	"logistiq/cli/internal/provider/providerfake"
	"logistiq/cli/internal/session"
)

const (
	testEmailA = "a@x.com"
	testEmailB = "b@x.com"
	testToken  = "tok-aaaa-1111"
)

// memPersister is an in-memory session.Persister.
type memPersister struct {
	mu   sync.Mutex
	blob []byte
}

func (m *memPersister) SaveSessionBlob(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), data...)
	return nil
}

func (m *memPersister) LoadSessionBlob() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blob, nil
}

func (m *memPersister) ClearSessionBlob() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = nil
	return nil
}

// fixture holds the machine and its scriptable collaborators.
type fixture struct {
	prov  *providerfake.Fake
	be    *backendfake.Fake
	store *session.Store
	mach  *session.Machine
}

func setup(t *testing.T) *fixture {
	t.Helper()
	prov := providerfake.New(provider.KindClerk)
	be := backendfake.New()
	store := session.NewStore(&memPersister{}, zerolog.Nop())
	mach := session.NewMachine(prov, be, store, zerolog.Nop())
	return &fixture{prov: prov, be: be, store: store, mach: mach}
}

func authenticatedSnap(email string) provider.Snapshot {
	return provider.Snapshot{
		Authenticated: true,
		Identity:      provider.Identity{ExternalID: "ext-1", Email: email, FirstName: "Jane", LastName: "Doe"},
	}
}

func (f *fixture) scriptSyncedUser(email string, hasCompany bool) {
	f.prov.SetToken(testToken, nil)
	f.be.SyncUserResult = backend.SyncedUser{
		UserID:           "u-1",
		Email:            email,
		FullName:         "Jane Doe",
		HasActiveCompany: hasCompany,
	}
	if hasCompany {
		f.be.SyncUserResult.CurrentCompanyID = "c-1"
		f.be.SyncUserResult.CurrentCompanyName = "Acme"
	}
}

func TestProviderLoadingEmitsLoading(t *testing.T) {
	f := setup(t)
	f.prov.SetSnapshot(provider.Snapshot{Loading: true})

	out := f.mach.Evaluate(context.Background(), session.RouteDashboard)

	require.Equal(t, session.PhaseLoading, out.Phase)
	require.Equal(t, session.ActionLoading, out.Route.Action)
	require.Zero(t, f.be.SyncUserCalls)
}

func TestUnauthenticatedOnProtectedPathRedirectsToLogin(t *testing.T) {
	// Scenario: anonymous visitor on /dashboard.
	f := setup(t)
	f.prov.SetSnapshot(provider.Snapshot{})

	out := f.mach.Evaluate(context.Background(), session.RouteDashboard)

	require.Equal(t, session.PhaseUnauthenticated, out.Phase)
	require.Equal(t, session.ActionRedirect, out.Route.Action)
	require.Equal(t, session.RouteLogin, out.Route.RedirectTo)
}

func TestUnauthenticatedOnLoginRenders(t *testing.T) {
	f := setup(t)
	f.prov.SetSnapshot(provider.Snapshot{})

	out := f.mach.Evaluate(context.Background(), session.RouteLogin)

	require.Equal(t, session.ActionRender, out.Route.Action)
}

func TestProviderErrorClearsSessionAndRedirects(t *testing.T) {
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.scriptSyncedUser(testEmailA, true)
	f.mach.Evaluate(context.Background(), session.RouteDashboard)
	require.True(t, f.store.Snapshot().State.Synced())

	f.prov.SetSnapshot(provider.Snapshot{Err: errors.New("sdk init failed")})
	out := f.mach.Evaluate(context.Background(), session.RouteDashboard)

	require.Equal(t, session.PhaseUnauthenticated, out.Phase)
	require.Equal(t, session.RouteLogin, out.Route.RedirectTo)
	require.Error(t, out.Err)
	st := f.store.Snapshot().State
	require.Nil(t, st.AppUser)
	require.Empty(t, st.Token)
	require.False(t, st.IsInitialized)
}

func TestFirstSyncWithoutCompanyRedirectsToOnboarding(t *testing.T) {
	// Scenario: authenticated user, first sync says no active company.
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.scriptSyncedUser(testEmailA, false)

	out := f.mach.Evaluate(context.Background(), session.RouteDashboard)

	require.Equal(t, session.PhaseSynced, out.Phase)
	require.True(t, out.JustSynced)
	require.Equal(t, session.ActionRedirect, out.Route.Action)
	require.Equal(t, session.RouteOnboarding, out.Route.RedirectTo)
}

func TestFirstSyncWithCompanyOnOnboardingRedirectsToDashboard(t *testing.T) {
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.scriptSyncedUser(testEmailA, true)

	out := f.mach.Evaluate(context.Background(), session.RouteOnboarding)

	require.Equal(t, session.ActionRedirect, out.Route.Action)
	require.Equal(t, session.RouteDashboard, out.Route.RedirectTo)
}

func TestRepeatedEvaluationSyncsOnce(t *testing.T) {
	// Idempotent sync: same snapshot, repeated evaluations, one sync call.
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.scriptSyncedUser(testEmailA, true)

	for i := 0; i < 5; i++ {
		out := f.mach.Evaluate(context.Background(), session.RouteDashboard)
		require.Equal(t, session.PhaseSynced, out.Phase)
	}

	require.Equal(t, 1, f.be.SyncUserCalls)
	st := f.store.Snapshot().State
	require.True(t, st.IsInitialized)
	require.Equal(t, testEmailA, st.LastSyncedEmail)
}

func TestSyncAppliesUserAndTokenTogether(t *testing.T) {
	// No intermediate view may see user without token or vice versa.
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.scriptSyncedUser(testEmailA, true)
	f.be.SyncUserBlock = make(chan struct{})

	done := make(chan session.Outcome, 1)
	go func() {
		done <- f.mach.Evaluate(context.Background(), session.RouteDashboard)
	}()

	// While the sync is in flight neither field may be set.
	require.Eventually(t, func() bool {
		return f.store.Snapshot().Phase == session.PhaseSyncing
	}, time.Second, 5*time.Millisecond)
	st := f.store.Snapshot().State
	require.Nil(t, st.AppUser)
	require.Empty(t, st.Token)

	close(f.be.SyncUserBlock)
	out := <-done
	require.Equal(t, session.PhaseSynced, out.Phase)

	st = f.store.Snapshot().State
	require.NotNil(t, st.AppUser)
	require.Equal(t, testToken, st.Token)
	require.True(t, st.IsInitialized)
}

func TestConcurrentEvaluationsSingleFlight(t *testing.T) {
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.scriptSyncedUser(testEmailA, true)
	f.be.SyncUserBlock = make(chan struct{})

	first := make(chan session.Outcome, 1)
	go func() {
		first <- f.mach.Evaluate(context.Background(), session.RouteDashboard)
	}()
	require.Eventually(t, func() bool {
		return f.store.Snapshot().Phase == session.PhaseSyncing
	}, time.Second, 5*time.Millisecond)

	// A re-entrant evaluation while the sync is in flight must not fire a
	// second backend call.
	out := f.mach.Evaluate(context.Background(), session.RouteDashboard)
	require.Equal(t, session.PhaseLoading, out.Phase)

	close(f.be.SyncUserBlock)
	require.Equal(t, session.PhaseSynced, (<-first).Phase)
	require.Equal(t, 1, f.be.SyncUserCalls)
}

func TestIdentityChangeResetsCursorAndResyncs(t *testing.T) {
	// Identity A synced, then the provider reports identity B.
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.scriptSyncedUser(testEmailA, true)
	f.mach.Evaluate(context.Background(), session.RouteDashboard)
	require.Equal(t, 1, f.be.SyncUserCalls)

	f.prov.SetSnapshot(authenticatedSnap(testEmailB))
	f.scriptSyncedUser(testEmailB, true)
	f.be.SyncUserBlock = make(chan struct{})

	done := make(chan session.Outcome, 1)
	go func() {
		done <- f.mach.Evaluate(context.Background(), session.RouteDashboard)
	}()

	// Until B's sync resolves the cursor must be reset.
	require.Eventually(t, func() bool {
		return f.store.Snapshot().Phase == session.PhaseSyncing
	}, time.Second, 5*time.Millisecond)
	st := f.store.Snapshot().State
	require.False(t, st.IsInitialized)
	require.Nil(t, st.AppUser)

	close(f.be.SyncUserBlock)
	require.Equal(t, session.PhaseSynced, (<-done).Phase)
	require.Equal(t, 2, f.be.SyncUserCalls)
	require.Equal(t, testEmailB, f.be.LastSyncUser.Email)
	st = f.store.Snapshot().State
	require.True(t, st.IsInitialized)
	require.Equal(t, testEmailB, st.LastSyncedEmail)
}

func TestLogoutDuringSyncDiscardsLateResult(t *testing.T) {
	// A sync for identity A is in flight when the user logs out; the late
	// result must not repopulate the cleared session.
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.scriptSyncedUser(testEmailA, true)
	f.be.SyncUserBlock = make(chan struct{})

	done := make(chan session.Outcome, 1)
	go func() {
		done <- f.mach.Evaluate(context.Background(), session.RouteDashboard)
	}()
	require.Eventually(t, func() bool {
		return f.store.Snapshot().Phase == session.PhaseSyncing
	}, time.Second, 5*time.Millisecond)

	f.store.Clear()
	close(f.be.SyncUserBlock)

	out := <-done
	require.NotEqual(t, session.PhaseSynced, out.Phase)
	st := f.store.Snapshot().State
	require.Equal(t, session.StatusUnauthenticated, st.AuthStatus)
	require.Nil(t, st.AppUser)
	require.Empty(t, st.Token)
	require.False(t, st.IsInitialized)
}

func TestSyncRejectedClearsSessionAndRedirects(t *testing.T) {
	// Scenario: backend answers 403 despite the provider being signed in.
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.prov.SetToken(testToken, nil)
	f.be.SyncUserErr = httperrors.NewStatus(403, "forbidden")

	out := f.mach.Evaluate(context.Background(), session.RouteDashboard)

	require.Equal(t, session.PhaseUnauthenticated, out.Phase)
	require.Equal(t, session.RouteLogin, out.Route.RedirectTo)
	require.Error(t, out.Err)
	st := f.store.Snapshot().State
	require.Equal(t, session.StatusUnauthenticated, st.AuthStatus)
	require.Nil(t, st.AppUser)
	require.False(t, st.IsInitialized)
}

func TestTransientFailureKeepsStateAndRetriesLazily(t *testing.T) {
	// Scenario: network error during sync; next evaluation retries.
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.prov.SetToken(testToken, nil)
	f.be.SyncUserErr = errors.New("connection refused")

	out := f.mach.Evaluate(context.Background(), session.RouteDashboard)
	require.Equal(t, session.PhaseErrored, out.Phase)
	require.Error(t, out.Err)
	st := f.store.Snapshot().State
	require.Nil(t, st.AppUser)
	require.False(t, st.IsInitialized)
	require.Equal(t, session.PhaseIdle, f.store.Snapshot().Phase) // guard released

	// shouldSync stays true: the next evaluation retries and succeeds.
	f.be.SyncUserErr = nil
	f.scriptSyncedUser(testEmailA, true)
	out = f.mach.Evaluate(context.Background(), session.RouteDashboard)
	require.Equal(t, session.PhaseSynced, out.Phase)
	require.Equal(t, 2, f.be.SyncUserCalls)
}

func TestTokenNotReadyRetriesOnNextEvaluation(t *testing.T) {
	// Provider authenticated but token not issued yet.
	f := setup(t)
	f.prov.SetSnapshot(authenticatedSnap(testEmailA))
	f.prov.SetToken("", nil)

	out := f.mach.Evaluate(context.Background(), session.RouteDashboard)
	require.Equal(t, session.PhaseLoading, out.Phase)
	require.Zero(t, f.be.SyncUserCalls)

	f.scriptSyncedUser(testEmailA, true)
	out = f.mach.Evaluate(context.Background(), session.RouteDashboard)
	require.Equal(t, session.PhaseSynced, out.Phase)
	require.Equal(t, 1, f.be.SyncUserCalls)
}

func TestRehydratedSessionSkipsSync(t *testing.T) {
	// A persisted session for the same identity must not trigger a new sync.
	p := &memPersister{}
	prov := providerfake.New(provider.KindClerk)
	be := backendfake.New()
	store := session.NewStore(p, zerolog.Nop())
	mach := session.NewMachine(prov, be, store, zerolog.Nop())

	prov.SetSnapshot(authenticatedSnap(testEmailA))
	prov.SetToken(testToken, nil)
	be.SyncUserResult = backend.SyncedUser{UserID: "u-1", Email: testEmailA, HasActiveCompany: true, CurrentCompanyID: "c-1"}
	mach.Evaluate(context.Background(), session.RouteDashboard)
	require.Equal(t, 1, be.SyncUserCalls)

	// New process: fresh store over the same persisted blob.
	store2 := session.NewStore(p, zerolog.Nop())
	mach2 := session.NewMachine(prov, be, store2, zerolog.Nop())
	out := mach2.Evaluate(context.Background(), session.RouteDashboard)

	require.Equal(t, session.PhaseSynced, out.Phase)
	require.Equal(t, 1, be.SyncUserCalls)
	require.Equal(t, session.ActionRender, out.Route.Action)
}
