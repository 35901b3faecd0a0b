// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package manifest handles dynamic backend endpoint configuration.
package manifest

import "strings"

// Manifest represents the REST endpoint configuration from the server.
type Manifest struct {
	Version int           `json:"version"`
	APIBase string        `json:"api_base"` // e.g. "https://api.logistiq.io"
	WebBase string        `json:"web_base"` // e.g. "https://app.logistiq.io"
	HTTP    HTTPEndpoints `json:"http"`
}

// HTTPEndpoints contains REST API endpoint paths.
type HTTPEndpoints struct {
	SyncUser         string `json:"user_sync"`          // e.g. "/api/users/sync"
	SyncOrganization string `json:"organization_sync"`  // e.g. "/api/organizations/sync"
	Companies        string `json:"companies_list"`     // e.g. "/api/companies"
	SetActiveCompany string `json:"company_set_active"` // e.g. "/api/companies/active"
	Health           string `json:"health"`             // e.g. "/api/health"
	Version          string `json:"version"`            // e.g. "/api/version"
}

// HTTPBaseURL returns the API base URL without a trailing slash.
func (m *Manifest) HTTPBaseURL() string {
	return strings.TrimRight(m.APIBase, "/")
}

// WebBaseURL returns the web application base URL without a trailing slash.
func (m *Manifest) WebBaseURL() string {
	return strings.TrimRight(m.WebBase, "/")
}

// defaultManifest is used when the server catalog cannot be fetched or the
// base URL is supplied directly via config/env.
func defaultManifest(apiBase, webBase string) *Manifest {
	return &Manifest{
		Version: 1,
		APIBase: apiBase,
		WebBase: webBase,
		HTTP: HTTPEndpoints{
			SyncUser:         "/api/users/sync",
			SyncOrganization: "/api/organizations/sync",
			Companies:        "/api/companies",
			SetActiveCompany: "/api/companies/active",
			Health:           "/api/health",
			Version:          "/api/version",
		},
	}
}
