// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating
// with the Logistiq backend service. It defines the API contract for user and
// organization synchronization and company membership operations.
// The package includes both interface definitions and HTTP-based implementations.
package backend

import (
	"context"
	"time"
)

// SyncUserRequest carries the provider identity fields the backend needs to
// create or update the application user record.
type SyncUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// SyncedUser is the backend-synchronized application user record.
type SyncedUser struct {
	UserID             string `json:"userId"`
	Email              string `json:"email"`
	FullName           string `json:"fullName"`
	HasActiveCompany   bool   `json:"hasActiveCompany"`
	CurrentCompanyID   string `json:"currentCompanyId,omitempty"`
	CurrentCompanyName string `json:"currentCompanyName,omitempty"`
}

// SyncOrganizationRequest mirrors the provider organization being linked.
type SyncOrganizationRequest struct {
	OrgClaim string `json:"orgClaim"`
	Name     string `json:"name,omitempty"`
	Slug     string `json:"slug,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Organization is the backend's tenant record.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Company is one membership of the current user.
type Company struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	IsActive bool      `json:"isActive"`
	JoinedAt time.Time `json:"joinedAt"`
}

// API defines backend operations the client depends on. All calls attach the
// given bearer token; non-2xx responses surface as *httperrors.StatusError.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	// SyncUser creates or updates the application user for the signed-in
	// identity and returns the synchronized record.
	SyncUser(ctx context.Context, token string, req SyncUserRequest) (SyncedUser, error)
	// SyncOrganization links the provider organization (by its token claim)
	// to a backend tenant.
	SyncOrganization(ctx context.Context, token string, req SyncOrganizationRequest) (Organization, error)
	// ListCompanies returns the current user's memberships.
	ListCompanies(ctx context.Context, token string) ([]Company, error)
	// SetActiveCompany switches the user's active company.
	SetActiveCompany(ctx context.Context, token, companyID string) (SyncedUser, error)
	// GetVersion reports the backend version. No authentication required;
	// also used as a connectivity check.
	GetVersion(ctx context.Context) (string, error)
}
