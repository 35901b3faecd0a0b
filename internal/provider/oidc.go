// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"logistiq/cli/internal/keychain"
)

// storedToken is the oauth2 token material persisted in the keychain,
// including the raw ID token we derive the identity from.
type storedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// OIDCAdapter implements Adapter over a standard OIDC issuer. Clerk and Kinde
// both expose OIDC, so each provider package only supplies issuer metadata and
// a claim mapping.
type OIDCAdapter struct {
	kind     Kind
	issuer   string
	clientID string
	scopes   []string
	identity func(claims map[string]any) Identity

	km *keychain.Manager

	mu       sync.Mutex
	oidcProv *oidc.Provider
}

// NewOIDC builds an adapter for the given issuer. The identity function maps
// verified ID-token claims to an Identity; providers differ in claim names.
func NewOIDC(kind Kind, issuer, clientID string, scopes []string, km *keychain.Manager, identity func(map[string]any) Identity) *OIDCAdapter {
	return &OIDCAdapter{
		kind:     kind,
		issuer:   issuer,
		clientID: clientID,
		scopes:   scopes,
		identity: identity,
		km:       km,
	}
}

// Kind reports which provider this adapter wraps.
func (a *OIDCAdapter) Kind() Kind { return a.kind }

// discover resolves the issuer's OIDC metadata once per process.
func (a *OIDCAdapter) discover(ctx context.Context) (*oidc.Provider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.oidcProv != nil {
		return a.oidcProv, nil
	}
	p, err := oidc.NewProvider(ctx, a.issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	a.oidcProv = p
	return p, nil
}

func (a *OIDCAdapter) oauthConfig(p *oidc.Provider, redirectURL string) oauth2.Config {
	return oauth2.Config{
		ClientID:    a.clientID,
		Endpoint:    p.Endpoint(),
		RedirectURL: redirectURL,
		Scopes:      a.scopes,
	}
}

// Snapshot reports the current sign-in state derived from stored credentials.
// A missing token is plain unauthenticated; a token that fails verification
// and cannot be refreshed surfaces as a provider error.
func (a *OIDCAdapter) Snapshot(ctx context.Context) Snapshot {
	st, err := a.loadToken()
	if err != nil {
		return Snapshot{Err: fmt.Errorf("load credentials: %w", err)}
	}
	if st == nil {
		return Snapshot{}
	}

	p, err := a.discover(ctx)
	if err != nil {
		// Cannot verify without issuer metadata. Treat as still loading so a
		// transient network blip does not destroy the session.
		return Snapshot{Loading: true}
	}

	verifier := p.Verifier(&oidc.Config{ClientID: a.clientID})
	idt, err := verifier.Verify(ctx, st.IDToken)
	if err != nil {
		// Expired or invalid ID token; try a refresh before giving up.
		st, rerr := a.refresh(ctx, p, st)
		if rerr != nil {
			return Snapshot{Err: fmt.Errorf("session expired: %w", rerr)}
		}
		idt, err = verifier.Verify(ctx, st.IDToken)
		if err != nil {
			return Snapshot{Err: fmt.Errorf("verify refreshed id token: %w", err)}
		}
	}

	var claims map[string]any
	if err := idt.Claims(&claims); err != nil {
		return Snapshot{Err: fmt.Errorf("decode id token claims: %w", err)}
	}

	return Snapshot{Authenticated: true, Identity: a.identity(claims)}
}

// Token returns the current access token, refreshing it when expired.
// Returns "" with no error when the user is simply not signed in.
func (a *OIDCAdapter) Token(ctx context.Context) (string, error) {
	st, err := a.loadToken()
	if err != nil {
		return "", err
	}
	if st == nil {
		return "", nil
	}
	if time.Until(st.Expiry) > 30*time.Second {
		return st.AccessToken, nil
	}

	p, err := a.discover(ctx)
	if err != nil {
		// Offline: hand back the stored token and let the backend decide.
		return st.AccessToken, nil
	}
	st, err = a.refresh(ctx, p, st)
	if err != nil {
		return "", err
	}
	return st.AccessToken, nil
}

// refresh exchanges the refresh token for new credentials and persists them.
func (a *OIDCAdapter) refresh(ctx context.Context, p *oidc.Provider, st *storedToken) (*storedToken, error) {
	if st.RefreshToken == "" {
		return nil, errors.New("no refresh token")
	}
	cfg := a.oauthConfig(p, "")
	ts := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: st.RefreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	next := &storedToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      st.IDToken,
		Expiry:       tok.Expiry,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = st.RefreshToken
	}
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		next.IDToken = raw
	}
	if err := a.saveToken(next); err != nil {
		return nil, err
	}
	return next, nil
}

// SignOut clears locally stored credentials. OIDC end-session endpoints vary
// between Clerk and Kinde, so remote revocation is left to the caller opening
// the provider's logout URL.
func (a *OIDCAdapter) SignOut(ctx context.Context) error {
	return a.km.ClearAll()
}

// Login runs the authorization-code flow with PKCE: it serves a one-shot
// localhost callback, returns the URL the user must open, and completes when
// the provider redirects back with a code.
func (a *OIDCAdapter) Login(ctx context.Context) (authURL string, wait func(context.Context) (Identity, error), err error) {
	p, err := a.discover(ctx)
	if err != nil {
		return "", nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen for callback: %w", err)
	}
	redirect := fmt.Sprintf("http://%s/callback", ln.Addr().String())

	cfg := a.oauthConfig(p, redirect)
	state := randomState()
	pkce := oauth2.GenerateVerifier()
	authURL = cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(pkce))

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- errors.New("state mismatch in callback")
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, e, http.StatusBadRequest)
			errCh <- fmt.Errorf("provider returned %q", e)
			return
		}
		fmt.Fprintln(w, "Login complete. You can close this tab and return to the terminal.")
		codeCh <- q.Get("code")
	})}
	go func() { _ = srv.Serve(ln) }()

	wait = func(ctx context.Context) (Identity, error) {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		var code string
		select {
		case <-ctx.Done():
			return Identity{}, ctx.Err()
		case err := <-errCh:
			return Identity{}, err
		case code = <-codeCh:
		}

		tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(pkce))
		if err != nil {
			return Identity{}, fmt.Errorf("exchange code: %w", err)
		}
		rawID, _ := tok.Extra("id_token").(string)
		if rawID == "" {
			return Identity{}, errors.New("provider response missing id_token")
		}

		verifier := p.Verifier(&oidc.Config{ClientID: a.clientID})
		idt, err := verifier.Verify(ctx, rawID)
		if err != nil {
			return Identity{}, fmt.Errorf("verify id token: %w", err)
		}
		var claims map[string]any
		if err := idt.Claims(&claims); err != nil {
			return Identity{}, fmt.Errorf("decode id token claims: %w", err)
		}

		st := &storedToken{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			IDToken:      rawID,
			Expiry:       tok.Expiry,
		}
		if err := a.saveToken(st); err != nil {
			return Identity{}, err
		}
		return a.identity(claims), nil
	}

	return authURL, wait, nil
}

// loadToken reads the persisted token blob; absent credentials yield nil.
func (a *OIDCAdapter) loadToken() (*storedToken, error) {
	raw, err := a.km.LoadAccessToken()
	if err != nil || raw == "" {
		return nil, nil // no session
	}
	var st storedToken
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("corrupt stored token: %w", err)
	}
	return &st, nil
}

func (a *OIDCAdapter) saveToken(st *storedToken) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return a.km.SaveTokens(string(b), "")
}
