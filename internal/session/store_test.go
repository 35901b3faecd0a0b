// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"logistiq/cli/internal/provider"
	"logistiq/cli/internal/session"
)

func TestStoreRehydrationRoundTrip(t *testing.T) {
	p := &memPersister{}
	s1 := session.NewStore(p, zerolog.Nop())
	s1.SetIdentity(provider.Identity{Email: testEmailA})
	gen, ok := s1.BeginSync(testEmailA)
	require.True(t, ok)
	applied := s1.FinishSync(gen, testEmailA, session.AppUser{
		ID: "u-1", Email: testEmailA, HasActiveCompany: true, CurrentCompanyID: "c-1",
	}, testToken, []session.Company{{ID: "c-1", Name: "Acme", Role: "owner", IsActive: true}})
	require.True(t, applied)

	s2 := session.NewStore(p, zerolog.Nop())
	st := s2.Snapshot().State
	require.Equal(t, session.StatusAuthenticated, st.AuthStatus)
	require.True(t, st.IsInitialized)
	require.Equal(t, testEmailA, st.LastSyncedEmail)
	require.Equal(t, testToken, st.Token)
	require.Len(t, st.Companies, 1)
	require.True(t, st.HasActiveCompany())
}

func TestStoreCorruptBlobStartsEmpty(t *testing.T) {
	p := &memPersister{}
	require.NoError(t, p.SaveSessionBlob([]byte("{not json")))

	s := session.NewStore(p, zerolog.Nop())
	st := s.Snapshot().State
	require.Equal(t, session.StatusUnauthenticated, st.AuthStatus)
	require.False(t, st.IsInitialized)

	// The corrupt blob is dropped so the next start is clean too.
	raw, err := p.LoadSessionBlob()
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestBeginSyncSingleFlight(t *testing.T) {
	s := session.NewStore(&memPersister{}, zerolog.Nop())
	s.SetIdentity(provider.Identity{Email: testEmailA})

	gen, ok := s.BeginSync(testEmailA)
	require.True(t, ok)
	_, ok = s.BeginSync(testEmailA)
	require.False(t, ok)

	s.FailSync(gen)
	_, ok = s.BeginSync(testEmailA)
	require.True(t, ok)
}

func TestFinishSyncDiscardsAfterClear(t *testing.T) {
	s := session.NewStore(&memPersister{}, zerolog.Nop())
	s.SetIdentity(provider.Identity{Email: testEmailA})
	gen, ok := s.BeginSync(testEmailA)
	require.True(t, ok)

	s.Clear()

	applied := s.FinishSync(gen, testEmailA, session.AppUser{ID: "u-1", Email: testEmailA}, testToken, nil)
	require.False(t, applied)
	st := s.Snapshot()
	require.Equal(t, session.PhaseIdle, st.Phase) // guard still released
	require.Nil(t, st.State.AppUser)
}

func TestFinishSyncDiscardsAfterIdentitySwitch(t *testing.T) {
	s := session.NewStore(&memPersister{}, zerolog.Nop())
	s.SetIdentity(provider.Identity{Email: testEmailA})
	gen, ok := s.BeginSync(testEmailA)
	require.True(t, ok)

	s.SetIdentity(provider.Identity{Email: testEmailB})

	applied := s.FinishSync(gen, testEmailA, session.AppUser{ID: "u-1", Email: testEmailA}, testToken, nil)
	require.False(t, applied)
	require.False(t, s.Snapshot().State.IsInitialized)
}

func TestSetIdentitySameEmailKeepsCursor(t *testing.T) {
	s := session.NewStore(&memPersister{}, zerolog.Nop())
	s.SetIdentity(provider.Identity{Email: testEmailA})
	gen, _ := s.BeginSync(testEmailA)
	s.FinishSync(gen, testEmailA, session.AppUser{ID: "u-1", Email: testEmailA}, testToken, nil)

	s.SetIdentity(provider.Identity{Email: testEmailA, DisplayName: "Jane"})

	st := s.Snapshot().State
	require.True(t, st.IsInitialized)
	require.NotNil(t, st.AppUser)
}

func TestSetActiveCompanyUpdatesMemberships(t *testing.T) {
	s := session.NewStore(&memPersister{}, zerolog.Nop())
	s.SetIdentity(provider.Identity{Email: testEmailA})
	gen, _ := s.BeginSync(testEmailA)
	s.FinishSync(gen, testEmailA, session.AppUser{ID: "u-1", Email: testEmailA}, testToken, []session.Company{
		{ID: "c-1", Name: "Acme", IsActive: true},
		{ID: "c-2", Name: "Globex"},
	})

	s.SetActiveCompany("c-2", "Globex")

	st := s.Snapshot().State
	require.Equal(t, "c-2", st.AppUser.CurrentCompanyID)
	require.True(t, st.HasActiveCompany())
	require.False(t, st.Companies[0].IsActive)
	require.True(t, st.Companies[1].IsActive)
}
