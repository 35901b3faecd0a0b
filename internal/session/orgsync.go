// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"logistiq/cli/internal/backend"
	errs "logistiq/cli/internal/errors"
	"logistiq/cli/internal/httperrors"
	"logistiq/cli/internal/provider"
)

// OrgSyncGuard handles the race where the provider issues a token whose
// organization claim has not propagated yet after organization creation.
// The claim name differs per provider (Clerk "org_id", Kinde "org_code").
type OrgSyncGuard struct {
	provider  provider.Adapter
	backend   backend.API
	store     *Store
	claimName string
	log       zerolog.Logger
}

// NewOrgSyncGuard builds the guard for the given provider org-claim name.
func NewOrgSyncGuard(p provider.Adapter, be backend.API, store *Store, claimName string, log zerolog.Logger) *OrgSyncGuard {
	return &OrgSyncGuard{provider: p, backend: be, store: store, claimName: claimName, log: log}
}

// AttemptSync fetches a token, inspects its organization claim, and when the
// claim is usable calls the backend organization sync and applies the result
// to the store. Returns ErrOrgClaimNotReady when the claim is absent, empty,
// or a literal unresolved template placeholder.
func (g *OrgSyncGuard) AttemptSync(ctx context.Context, name string) (backend.Organization, error) {
	token, err := g.provider.Token(ctx)
	if err != nil {
		return backend.Organization{}, errs.Wrap(errs.SyncTransient, "fetch token", err)
	}
	if token == "" {
		return backend.Organization{}, ErrNoToken
	}

	claim, err := orgClaimFromToken(token, g.claimName)
	if err != nil {
		return backend.Organization{}, err
	}

	org, err := g.backend.SyncOrganization(ctx, token, backend.SyncOrganizationRequest{
		OrgClaim: claim,
		Name:     name,
	})
	if err != nil {
		if httperrors.IsAuthStatus(err) {
			return backend.Organization{}, errs.Wrap(errs.SyncRejected, "organization sync rejected", err)
		}
		return backend.Organization{}, errs.Wrap(errs.SyncTransient, "sync organization", err)
	}

	g.store.SetActiveCompany(org.ID, org.Name)
	g.log.Info().Str("org_id", org.ID).Str("org_name", org.Name).Msg("organization synchronized")
	return org, nil
}

// AttemptSyncWithRetry retries AttemptSync with a short exponential backoff,
// but only while the failure is the claim-propagation race. Four attempts at
// most: the claim is eventually consistent and the caller can always retry
// manually, so the guard must not loop indefinitely.
func (g *OrgSyncGuard) AttemptSyncWithRetry(ctx context.Context, name string) (backend.Organization, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 4 * time.Second

	var org backend.Organization
	op := func() error {
		var err error
		org, err = g.AttemptSync(ctx, name)
		if err == nil {
			return nil
		}
		if isClaimNotReady(err) {
			g.log.Debug().Msg("organization claim not propagated yet; retrying")
			return err
		}
		return backoff.Permanent(err)
	}
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx))
	return org, err
}

// orgClaimFromToken decodes the token without signature verification (the
// backend verifies; we only need to look at the claim) and extracts the
// organization claim. An unresolved template placeholder like "{{org.id}}"
// counts as not ready: some providers emit the literal template text while
// claim propagation is pending.
func orgClaimFromToken(token, claimName string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	raw, ok := claims[claimName]
	if !ok {
		return "", ErrOrgClaimNotReady
	}
	val, ok := raw.(string)
	if !ok || strings.TrimSpace(val) == "" {
		return "", ErrOrgClaimNotReady
	}
	if isTemplatePlaceholder(val) {
		return "", ErrOrgClaimNotReady
	}
	return val, nil
}

// isTemplatePlaceholder reports whether the claim value is a literal
// unresolved templating artifact rather than a real identifier.
func isTemplatePlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return strings.HasPrefix(v, "{{") && strings.HasSuffix(v, "}}")
}

func isClaimNotReady(err error) bool {
	return errors.Is(err, ErrOrgClaimNotReady)
}
