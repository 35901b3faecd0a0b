// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package provider

import (
	"crypto/rand"
	"encoding/base64"
)

// randomState produces the CSRF state parameter for the authorization flow.
func randomState() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// StringClaim returns the named claim as a string, or "" when absent or not
// a string. Shared by the provider claim mappings.
func StringClaim(claims map[string]any, name string) string {
	if v, ok := claims[name].(string); ok {
		return v
	}
	return ""
}
