// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"
)

// ListCompanies calls GET /api/companies and returns the user's memberships.
func (h *HTTP) ListCompanies(ctx context.Context, token string) ([]Company, error) {
	var out struct {
		Companies []Company `json:"companies"`
	}
	if err := h.doJSON(ctx, http.MethodGet, h.endpoints.Companies, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Companies, nil
}

// SetActiveCompany calls POST /api/companies/active to switch the user's
// active company, and returns the updated user record.
func (h *HTTP) SetActiveCompany(ctx context.Context, token, companyID string) (SyncedUser, error) {
	if companyID == "" {
		return SyncedUser{}, errors.New("set active company: company id is required")
	}
	body := map[string]string{"companyId": companyID}
	var out SyncedUser
	if err := h.doJSON(ctx, http.MethodPost, h.endpoints.SetActiveCompany, token, body, &out); err != nil {
		return SyncedUser{}, err
	}
	return out, nil
}
