// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const manifestPath = "/cli-endpoints.json"

// fetchFromServer retrieves the endpoint catalog published by the backend.
// Missing or malformed catalogs fall back to the built-in defaults so the CLI
// keeps working against backends that predate the catalog.
func fetchFromServer(ctx context.Context, apiBase, webBase string) (*Manifest, error) {
	client := &http.Client{Timeout: 15 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+manifestPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "logistiq-cli/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return defaultManifest(apiBase, webBase), nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parse manifest JSON: %w", err)
	}

	if m.Version == 0 {
		return nil, fmt.Errorf("invalid manifest: missing version field")
	}
	if m.APIBase == "" {
		m.APIBase = apiBase
	}
	if m.WebBase == "" {
		m.WebBase = webBase
	}
	fillEmptyPaths(&m, apiBase, webBase)

	return &m, nil
}

// fillEmptyPaths backfills any endpoint path the catalog omitted.
func fillEmptyPaths(m *Manifest, apiBase, webBase string) {
	def := defaultManifest(apiBase, webBase)
	if m.HTTP.SyncUser == "" {
		m.HTTP.SyncUser = def.HTTP.SyncUser
	}
	if m.HTTP.SyncOrganization == "" {
		m.HTTP.SyncOrganization = def.HTTP.SyncOrganization
	}
	if m.HTTP.Companies == "" {
		m.HTTP.Companies = def.HTTP.Companies
	}
	if m.HTTP.SetActiveCompany == "" {
		m.HTTP.SetActiveCompany = def.HTTP.SetActiveCompany
	}
	if m.HTTP.Health == "" {
		m.HTTP.Health = def.HTTP.Health
	}
	if m.HTTP.Version == "" {
		m.HTTP.Version = def.HTTP.Version
	}
}
