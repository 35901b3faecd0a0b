// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package kinde adapts a Kinde business to the provider.Adapter interface.
package kinde

import (
	"fmt"
	"strings"

	"logistiq/cli/internal/keychain"
	"logistiq/cli/internal/provider"
)

// OrgClaim is the token claim Kinde uses for the active organization.
const OrgClaim = "org_code"

// Config identifies a Kinde business.
type Config struct {
	// Domain is the business domain, e.g. "logistiq.kinde.com".
	Domain   string
	ClientID string
}

// New builds a Kinde-backed Adapter.
func New(cfg Config, km *keychain.Manager) *provider.OIDCAdapter {
	issuer := cfg.Domain
	if !strings.HasPrefix(issuer, "https://") {
		issuer = fmt.Sprintf("https://%s", issuer)
	}
	scopes := []string{"openid", "profile", "email", "offline"}
	return provider.NewOIDC(provider.KindKinde, issuer, cfg.ClientID, scopes, km, identityFromClaims)
}

// identityFromClaims maps Kinde's ID-token claims to an Identity.
func identityFromClaims(claims map[string]any) provider.Identity {
	id := provider.Identity{
		ExternalID: provider.StringClaim(claims, "sub"),
		Email:      provider.StringClaim(claims, "email"),
		FirstName:  provider.StringClaim(claims, "given_name"),
		LastName:   provider.StringClaim(claims, "family_name"),
	}
	id.DisplayName = strings.TrimSpace(id.FirstName + " " + id.LastName)
	if id.DisplayName == "" {
		id.DisplayName = provider.StringClaim(claims, "name")
	}
	return id
}
