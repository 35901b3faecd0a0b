// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"logistiq/cli/internal/provider"
	"logistiq/cli/internal/session"
)

func syncedState(hasCompany bool) session.State {
	u := &session.AppUser{ID: "u-1", Email: testEmailA, FullName: "Jane Doe", HasActiveCompany: hasCompany}
	if hasCompany {
		u.CurrentCompanyID = "c-1"
		u.CurrentCompanyName = "Acme"
	}
	return session.State{
		AuthStatus:      session.StatusAuthenticated,
		Identity:        &provider.Identity{Email: testEmailA},
		AppUser:         u,
		Token:           testToken,
		IsInitialized:   true,
		LastSyncedEmail: testEmailA,
	}
}

func TestDecideRouteTable(t *testing.T) {
	authLoading := session.State{AuthStatus: session.StatusAuthenticating}
	anon := session.State{AuthStatus: session.StatusUnauthenticated}
	errored := session.State{AuthStatus: session.StatusError, ErrorReason: "sdk failed"}
	authedUnsynced := session.State{
		AuthStatus: session.StatusAuthenticated,
		Identity:   &provider.Identity{Email: testEmailA},
	}

	tests := []struct {
		name     string
		state    session.State
		path     string
		action   session.RouteAction
		redirect string
	}{
		{"auth loading renders placeholder", authLoading, session.RouteDashboard, session.ActionLoading, ""},
		{"anonymous on dashboard", anon, session.RouteDashboard, session.ActionRedirect, session.RouteLogin},
		{"anonymous on settings-like path", anon, "/settings", session.ActionRedirect, session.RouteLogin},
		{"anonymous on login renders", anon, session.RouteLogin, session.ActionRender, ""},
		{"anonymous on register renders", anon, session.RouteRegister, session.ActionRender, ""},
		{"errored treated as anonymous", errored, session.RouteDashboard, session.ActionRedirect, session.RouteLogin},
		{"authenticated awaiting sync", authedUnsynced, session.RouteDashboard, session.ActionLoading, ""},
		{"no company on dashboard", syncedState(false), session.RouteDashboard, session.ActionRedirect, session.RouteOnboarding},
		{"no company on onboarding renders", syncedState(false), session.RouteOnboarding, session.ActionRender, ""},
		{"no company on login goes to onboarding", syncedState(false), session.RouteLogin, session.ActionRedirect, session.RouteOnboarding},
		{"company on onboarding goes to dashboard", syncedState(true), session.RouteOnboarding, session.ActionRedirect, session.RouteDashboard},
		{"company on login goes to dashboard", syncedState(true), session.RouteLogin, session.ActionRedirect, session.RouteDashboard},
		{"company on register goes to dashboard", syncedState(true), session.RouteRegister, session.ActionRedirect, session.RouteDashboard},
		{"company on dashboard renders", syncedState(true), session.RouteDashboard, session.ActionRender, ""},
		{"company on arbitrary page renders", syncedState(true), "/products", session.ActionRender, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := session.DecideRoute(tt.state, tt.path)
			require.Equal(t, tt.action, d.Action)
			require.Equal(t, tt.redirect, d.RedirectTo)
		})
	}
}

// Every (authStatus, hasActiveCompany, path) triple must land on exactly one
// defined action; no combination may fall through undecided.
func TestDecideRouteTotal(t *testing.T) {
	states := []session.State{
		{AuthStatus: session.StatusAuthenticating},
		{AuthStatus: session.StatusUnauthenticated},
		{AuthStatus: session.StatusError},
		{AuthStatus: session.StatusAuthenticated, Identity: &provider.Identity{Email: testEmailA}},
		syncedState(false),
		syncedState(true),
	}
	paths := []string{
		session.RouteLogin, session.RouteRegister, session.RouteOnboarding,
		session.RouteDashboard, "/products", "/settings",
	}

	for _, st := range states {
		for _, p := range paths {
			d := session.DecideRoute(st, p)
			switch d.Action {
			case session.ActionRender, session.ActionLoading:
				require.Empty(t, d.RedirectTo)
			case session.ActionRedirect:
				require.NotEmpty(t, d.RedirectTo)
				require.NotEqual(t, p, d.RedirectTo, "redirect to current path would loop")
			default:
				t.Fatalf("undecided route for state %+v path %s", st, p)
			}
		}
	}
}
