// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"
)

// SyncUser calls POST /api/users/sync with the provider identity.
// The backend upserts the application user and returns the synchronized
// record including the active-company linkage.
func (h *HTTP) SyncUser(ctx context.Context, token string, req SyncUserRequest) (SyncedUser, error) {
	if req.Email == "" {
		return SyncedUser{}, errors.New("sync user: email is required")
	}
	var out SyncedUser
	if err := h.doJSON(ctx, http.MethodPost, h.endpoints.SyncUser, token, req, &out); err != nil {
		return SyncedUser{}, err
	}
	// Be liberal: older backends omit email in the response.
	if out.Email == "" {
		out.Email = req.Email
	}
	return out, nil
}
