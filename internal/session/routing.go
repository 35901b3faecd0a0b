// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

// Well-known web application paths the route guard decides between.
const (
	RouteLogin      = "/login"
	RouteRegister   = "/register"
	RouteOnboarding = "/onboarding"
	RouteDashboard  = "/dashboard"
)

// RouteAction is what the surrounding surface should do for the current path.
type RouteAction string

const (
	// ActionRender: the path is allowed; render it.
	ActionRender RouteAction = "render"
	// ActionLoading: session state is still settling; render a wait state.
	ActionLoading RouteAction = "loading"
	// ActionRedirect: navigate to RedirectTo instead.
	ActionRedirect RouteAction = "redirect"
)

// RouteDecision is the route guard's verdict for one (state, path) pair.
type RouteDecision struct {
	Action     RouteAction
	RedirectTo string
}

func renderLoading() RouteDecision { return RouteDecision{Action: ActionLoading} }

func redirectToLoginUnlessThere(currentPath string) RouteDecision {
	if isPublicPath(currentPath) {
		return RouteDecision{Action: ActionRender}
	}
	return RouteDecision{Action: ActionRedirect, RedirectTo: RouteLogin}
}

// isPublicPath reports whether the path is reachable without a session.
func isPublicPath(path string) bool {
	return path == RouteLogin || path == RouteRegister
}

// DecideRoute encodes the page-access matrix. Rows are evaluated in order;
// each row assumes all earlier conditions are false.
func DecideRoute(s State, currentPath string) RouteDecision {
	// Auth still resolving.
	if s.AuthStatus == StatusAuthenticating {
		return renderLoading()
	}

	// Not signed in (or errored out) on a protected path.
	if !s.Authenticated() {
		return redirectToLoginUnlessThere(currentPath)
	}

	// Signed in but the backend record has not arrived yet.
	if !s.Synced() {
		return renderLoading()
	}

	// Needs onboarding anywhere but the onboarding page. This row comes
	// before the public-route row, so a synced user without a company who
	// lands on /login is sent to onboarding, not the dashboard.
	if !s.HasActiveCompany() && currentPath != RouteOnboarding {
		return RouteDecision{Action: ActionRedirect, RedirectTo: RouteOnboarding}
	}

	// Onboarding is stale once a company is active.
	if s.HasActiveCompany() && currentPath == RouteOnboarding {
		return RouteDecision{Action: ActionRedirect, RedirectTo: RouteDashboard}
	}

	// Public pages are pointless for a signed-in, synced user.
	if isPublicPath(currentPath) {
		if s.HasActiveCompany() {
			return RouteDecision{Action: ActionRedirect, RedirectTo: RouteDashboard}
		}
		return RouteDecision{Action: ActionRedirect, RedirectTo: RouteOnboarding}
	}

	return RouteDecision{Action: ActionRender}
}
