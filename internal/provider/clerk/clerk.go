// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package clerk adapts a Clerk instance to the provider.Adapter interface.
// Clerk exposes standard OIDC per-instance; only the claim names and the
// organization-claim key differ from Kinde.
package clerk

import (
	"fmt"
	"strings"

	"logistiq/cli/internal/keychain"
	"logistiq/cli/internal/provider"
)

// OrgClaim is the token claim Clerk uses for the active organization.
const OrgClaim = "org_id"

// Config identifies a Clerk instance.
type Config struct {
	// Domain is the instance frontend API domain, e.g. "clerk.logistiq.io".
	Domain   string
	ClientID string
}

// New builds a Clerk-backed Adapter.
func New(cfg Config, km *keychain.Manager) *provider.OIDCAdapter {
	issuer := cfg.Domain
	if !strings.HasPrefix(issuer, "https://") {
		issuer = fmt.Sprintf("https://%s", issuer)
	}
	scopes := []string{"openid", "profile", "email", "offline_access"}
	return provider.NewOIDC(provider.KindClerk, issuer, cfg.ClientID, scopes, km, identityFromClaims)
}

// identityFromClaims maps Clerk's ID-token claims to an Identity.
func identityFromClaims(claims map[string]any) provider.Identity {
	id := provider.Identity{
		ExternalID: provider.StringClaim(claims, "sub"),
		Email:      provider.StringClaim(claims, "email"),
		FirstName:  provider.StringClaim(claims, "first_name"),
		LastName:   provider.StringClaim(claims, "last_name"),
	}
	if id.Email == "" {
		// Clerk instances configured with username-first auth put the
		// primary email under a different key.
		id.Email = provider.StringClaim(claims, "primary_email_address")
	}
	id.DisplayName = strings.TrimSpace(id.FirstName + " " + id.LastName)
	if id.DisplayName == "" {
		id.DisplayName = provider.StringClaim(claims, "name")
	}
	return id
}
