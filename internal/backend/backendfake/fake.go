// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backendfake implements a scriptable in-memory backend.API for tests.
package backendfake

import (
	"context"
	"sync"

	"logistiq/cli/internal/backend"
)

// Fake is a backend.API whose results are set by the test. Each operation
// records its call count and the last request it received.
type Fake struct {
	mu sync.Mutex

	SyncUserResult backend.SyncedUser
	SyncUserErr    error
	SyncUserCalls  int
	LastSyncUser   backend.SyncUserRequest
	// SyncUserBlock, when non-nil, is closed by the test to release an
	// in-flight SyncUser call. Used to exercise overlapping evaluations.
	SyncUserBlock chan struct{}

	SyncOrgResult backend.Organization
	SyncOrgErr    error
	SyncOrgCalls  int
	LastSyncOrg   backend.SyncOrganizationRequest

	Companies    []backend.Company
	CompaniesErr error

	SetActiveResult backend.SyncedUser
	SetActiveErr    error
	LastActiveID    string

	Version string
}

// New returns an empty Fake.
func New() *Fake { return &Fake{} }

func (f *Fake) SyncUser(ctx context.Context, token string, req backend.SyncUserRequest) (backend.SyncedUser, error) {
	f.mu.Lock()
	f.SyncUserCalls++
	f.LastSyncUser = req
	block := f.SyncUserBlock
	res, err := f.SyncUserResult, f.SyncUserErr
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return backend.SyncedUser{}, ctx.Err()
		}
		// Re-read results: the test may re-script them while blocked.
		f.mu.Lock()
		res, err = f.SyncUserResult, f.SyncUserErr
		f.mu.Unlock()
	}
	return res, err
}

func (f *Fake) SyncOrganization(ctx context.Context, token string, req backend.SyncOrganizationRequest) (backend.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SyncOrgCalls++
	f.LastSyncOrg = req
	return f.SyncOrgResult, f.SyncOrgErr
}

func (f *Fake) ListCompanies(ctx context.Context, token string) ([]backend.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Companies, f.CompaniesErr
}

func (f *Fake) SetActiveCompany(ctx context.Context, token, companyID string) (backend.SyncedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastActiveID = companyID
	return f.SetActiveResult, f.SetActiveErr
}

func (f *Fake) GetVersion(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Version == "" {
		return "unknown", nil
	}
	return f.Version, nil
}
