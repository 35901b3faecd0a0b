// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"
)

// SyncOrganization calls POST /api/organizations/sync, linking the provider
// organization claim to a backend tenant.
func (h *HTTP) SyncOrganization(ctx context.Context, token string, req SyncOrganizationRequest) (Organization, error) {
	if req.OrgClaim == "" {
		return Organization{}, errors.New("sync organization: org claim is required")
	}
	var out Organization
	if err := h.doJSON(ctx, http.MethodPost, h.endpoints.SyncOrganization, token, req, &out); err != nil {
		return Organization{}, err
	}
	return out, nil
}
