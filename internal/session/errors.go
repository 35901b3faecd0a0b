// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import "errors"

var (
	// ErrOrgClaimNotReady means the issued token's organization claim has
	// not propagated yet after organization creation. Recoverable: retry
	// shortly.
	ErrOrgClaimNotReady = errors.New("organization claim not ready")
	// ErrNoToken means the provider reported a signed-in identity but could
	// not produce a bearer token.
	ErrNoToken = errors.New("no bearer token available")
)
