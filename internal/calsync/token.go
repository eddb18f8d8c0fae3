package calsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/gcalendar"
	"calendar-autobot/pkg/log"
)

const (
	DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	defaultProbeTimeout = 10 * time.Second
)

// TokenConfig configures the OAuth client used for probing and refreshing grants.
type TokenConfig struct {
	ClientID      string
	ClientSecret  string
	TokenURL      string
	TokenInfoURL  string
	RequiredScope string
	ProbeTimeout  time.Duration
	HTTPClient    *http.Client
}

// TokenManager keeps a user's calendar grant usable.
type TokenManager struct {
	l     log.Logger
	store CredentialStore
	oauth *oauth2.Config
	hc    *http.Client
	cfg   TokenConfig
	now   func() time.Time
}

func NewTokenManager(l log.Logger, store CredentialStore, cfg TokenConfig) *TokenManager {
	if cfg.TokenInfoURL == "" {
		cfg.TokenInfoURL = DefaultTokenInfoURL
	}
	if cfg.RequiredScope == "" {
		cfg.RequiredScope = gcalendar.Scope
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	return &TokenManager{
		l:     l,
		store: store,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{cfg.RequiredScope},
		},
		hc:  hc,
		cfg: cfg,
		now: time.Now,
	}
}

type tokenInfo struct {
	Scope     string `json:"scope"`
	ExpiresIn string `json:"expires_in"`
}

type probeResult int

const (
	probeValid probeResult = iota
	probeMissingScope
	probeRejected
)

// EnsureValidAccessToken returns an access token carrying the required scope,
// refreshing and persisting the grant when needed. user.Credential is updated in place.
func (m *TokenManager) EnsureValidAccessToken(ctx context.Context, user *model.User) (string, error) {
	cred := user.Credential
	if !cred.HasAccessToken() {
		return "", ErrNotAuthenticated
	}

	result, err := m.probe(ctx, cred.AccessToken)
	if err != nil {
		return "", err
	}
	if result == probeValid {
		return cred.AccessToken, nil
	}

	if cred.RefreshToken == "" {
		m.l.Warnf(ctx, "calsync.TokenManager: user_id=%s token unusable and no refresh token", user.ID)
		return "", &ReauthenticationRequired{Reason: ReasonNoRefreshToken}
	}

	tok, err := m.refresh(ctx, cred)
	if err != nil {
		return "", err
	}

	cred.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry
		cred.Expiry = &expiry
	}
	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		cred.Scope = scope
	}

	if err := m.store.SaveCredential(ctx, user.ID, cred); err != nil {
		m.l.Errorf(ctx, "calsync.TokenManager.SaveCredential: user_id=%s: %v", user.ID, err)
		return "", fmt.Errorf("persist refreshed credential: %w", err)
	}
	user.Credential = cred

	m.l.Infof(ctx, "calsync.TokenManager: refreshed access token for user_id=%s", user.ID)
	return cred.AccessToken, nil
}

func (m *TokenManager) probe(ctx context.Context, accessToken string) (probeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.TokenInfoURL+"?access_token="+url.QueryEscape(accessToken), nil)
	if err != nil {
		return probeRejected, fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := m.hc.Do(req)
	if err != nil {
		return probeRejected, fmt.Errorf("%w: tokeninfo: %w", ErrTransientUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return probeRejected, fmt.Errorf("%w: tokeninfo status %d", ErrTransientUnavailable, resp.StatusCode)
	default:
		return probeRejected, nil
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		if isTimeout(err) {
			return probeRejected, fmt.Errorf("%w: tokeninfo: %w", ErrTransientUnavailable, err)
		}
		return probeRejected, nil
	}
	if !hasScope(info.Scope, m.cfg.RequiredScope) {
		return probeMissingScope, nil
	}
	return probeValid, nil
}

func (m *TokenManager) refresh(ctx context.Context, cred model.SyncCredential) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.hc)

	// A past expiry forces the token source to hit the token endpoint.
	current := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       m.now().Add(-time.Hour),
	}
	tok, err := m.oauth.TokenSource(ctx, current).Token()
	if err == nil {
		return tok, nil
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode < 500 {
		return nil, &ReauthenticationRequired{Reason: ReasonRefreshRejected, Err: err}
	}
	return nil, fmt.Errorf("%w: refresh: %w", ErrTransientUnavailable, err)
}

func hasScope(granted, required string) bool {
	for _, s := range strings.Fields(granted) {
		if s == required {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
