// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"logistiq/cli/internal/backend"
	"logistiq/cli/internal/config"
	"logistiq/cli/internal/keychain"
	"logistiq/cli/internal/logging"
	"logistiq/cli/internal/manifest"
	"logistiq/cli/internal/provider"
	"logistiq/cli/internal/provider/clerk"
	"logistiq/cli/internal/provider/kinde"
	"logistiq/cli/internal/session"
)

// Provider instance defaults; overridable via environment for self-hosted
// and staging setups.
const (
	defaultClerkDomain   = "clerk.logistiq.io"
	defaultClerkClientID = "logistiq-cli"
	defaultKindeDomain   = "logistiq.kinde.com"
	defaultKindeClientID = "logistiq-cli"
)

// sessionEnv bundles the wired session core for command handlers.
type sessionEnv struct {
	cfg      config.Config
	man      *manifest.Manifest
	km       *keychain.Manager
	prov     *provider.OIDCAdapter
	be       backend.API
	store    *session.Store
	mach     *session.Machine
	orgClaim string
	log      zerolog.Logger
}

// newSessionEnv constructs the session machine with the configured identity
// provider and backend endpoints.
func newSessionEnv(ctx context.Context) (*sessionEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logging.Setup(cfg.LogLevel)

	m, err := manifest.GetEndpoints(ctx)
	if err != nil {
		return nil, err
	}

	km, err := keychain.GetManager()
	if err != nil {
		return nil, fmt.Errorf("open keychain: %w", err)
	}

	prov, orgClaim, err := buildProvider(cfg, km)
	if err != nil {
		return nil, err
	}

	be := backend.New(m.HTTPBaseURL(), m.HTTP)
	store := session.NewStore(km, log)
	mach := session.NewMachine(prov, be, store, log)

	return &sessionEnv{
		cfg:      cfg,
		man:      m,
		km:       km,
		prov:     prov,
		be:       be,
		store:    store,
		mach:     mach,
		orgClaim: orgClaim,
		log:      log,
	}, nil
}

// buildProvider selects the configured identity provider adapter. Both
// adapters drive the same session machine; only claim mapping differs.
func buildProvider(cfg config.Config, km *keychain.Manager) (*provider.OIDCAdapter, string, error) {
	switch provider.Kind(cfg.Provider) {
	case provider.KindKinde:
		domain := envOr("LOGISTIQ_KINDE_DOMAIN", defaultKindeDomain)
		clientID := envOr("LOGISTIQ_KINDE_CLIENT_ID", defaultKindeClientID)
		return kinde.New(kinde.Config{Domain: domain, ClientID: clientID}, km), kinde.OrgClaim, nil
	case provider.KindClerk, "":
		domain := envOr("LOGISTIQ_CLERK_DOMAIN", defaultClerkDomain)
		clientID := envOr("LOGISTIQ_CLERK_CLIENT_ID", defaultClerkClientID)
		return clerk.New(clerk.Config{Domain: domain, ClientID: clientID}, km), clerk.OrgClaim, nil
	default:
		return nil, "", fmt.Errorf("unknown provider %q (want clerk or kinde)", cfg.Provider)
	}
}

// orgGuard builds the organization sync guard for this environment.
func (e *sessionEnv) orgGuard() *session.OrgSyncGuard {
	return session.NewOrgSyncGuard(e.prov, e.be, e.store, e.orgClaim, e.log)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
