package calsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/gcalendar"
	"calendar-autobot/pkg/log"
)

type oauthServer struct {
	// tokeninfo
	validTokens map[string]string // access token -> granted scopes
	infoDelay   time.Duration
	// token endpoint
	refreshStatus int
	refreshBody   string
	refreshCalls  int
}

func (s *oauthServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tokeninfo":
			if s.infoDelay > 0 {
				select {
				case <-r.Context().Done():
					return
				case <-time.After(s.infoDelay):
				}
			}
			scope, ok := s.validTokens[r.URL.Query().Get("access_token")]
			if !ok {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_token"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"scope":"` + scope + `","expires_in":"3599"}`))
		case "/token":
			s.refreshCalls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(s.refreshStatus)
			w.Write([]byte(s.refreshBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTokenManager(t *testing.T, s *oauthServer, store CredentialStore) *TokenManager {
	t.Helper()
	ts := httptest.NewServer(s.handler())
	t.Cleanup(ts.Close)
	return NewTokenManager(log.NewNop(), store, TokenConfig{
		ClientID:      "client",
		ClientSecret:  "secret",
		TokenURL:      ts.URL + "/token",
		TokenInfoURL:  ts.URL + "/tokeninfo",
		RequiredScope: gcalendar.Scope,
		ProbeTimeout:  200 * time.Millisecond,
		HTTPClient:    ts.Client(),
	})
}

func userWith(access, refresh string) *model.User {
	return &model.User{ID: "user-1", Credential: model.SyncCredential{AccessToken: access, RefreshToken: refresh}}
}

func TestEnsureValidAccessToken_Valid(t *testing.T) {
	s := &oauthServer{validTokens: map[string]string{"good": "openid " + gcalendar.Scope}}
	store := newMemoryUserStore()
	m := newTokenManager(t, s, store)

	tok, err := m.EnsureValidAccessToken(context.Background(), userWith("good", "refresh"))
	require.NoError(t, err)
	assert.Equal(t, "good", tok)
	assert.Zero(t, s.refreshCalls)
	assert.Empty(t, store.creds)
}

func TestEnsureValidAccessToken_RefreshesExpiredToken(t *testing.T) {
	s := &oauthServer{
		validTokens:   map[string]string{},
		refreshStatus: http.StatusOK,
		refreshBody:   `{"access_token":"fresh","token_type":"Bearer","expires_in":3600,"scope":"` + gcalendar.Scope + `"}`,
	}
	store := newMemoryUserStore()
	m := newTokenManager(t, s, store)
	user := userWith("expired", "refresh-1")

	tok, err := m.EnsureValidAccessToken(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Equal(t, 1, s.refreshCalls)

	saved := store.creds["user-1"]
	assert.Equal(t, "fresh", saved.AccessToken)
	assert.Equal(t, "refresh-1", saved.RefreshToken, "refresh token kept when not reissued")
	assert.Equal(t, gcalendar.Scope, saved.Scope)
	require.NotNil(t, saved.Expiry)
	assert.True(t, saved.Expiry.After(time.Now()))
	assert.Equal(t, "fresh", user.Credential.AccessToken)
}

func TestEnsureValidAccessToken_ReplacesReissuedRefreshToken(t *testing.T) {
	s := &oauthServer{
		validTokens:   map[string]string{"narrow": "openid"},
		refreshStatus: http.StatusOK,
		refreshBody:   `{"access_token":"fresh","refresh_token":"refresh-2","token_type":"Bearer","expires_in":3600}`,
	}
	store := newMemoryUserStore()
	m := newTokenManager(t, s, store)

	_, err := m.EnsureValidAccessToken(context.Background(), userWith("narrow", "refresh-1"))
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", store.creds["user-1"].RefreshToken)
}

func TestEnsureValidAccessToken_Failures(t *testing.T) {
	t.Run("no access token", func(t *testing.T) {
		m := newTokenManager(t, &oauthServer{}, newMemoryUserStore())
		_, err := m.EnsureValidAccessToken(context.Background(), userWith("", ""))
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("rejected without refresh token", func(t *testing.T) {
		m := newTokenManager(t, &oauthServer{validTokens: map[string]string{}}, newMemoryUserStore())
		_, err := m.EnsureValidAccessToken(context.Background(), userWith("expired", ""))
		var reauth *ReauthenticationRequired
		require.ErrorAs(t, err, &reauth)
		assert.Equal(t, ReasonNoRefreshToken, reauth.Reason)
	})

	t.Run("refresh rejected", func(t *testing.T) {
		s := &oauthServer{validTokens: map[string]string{}, refreshStatus: http.StatusBadRequest, refreshBody: `{"error":"invalid_grant"}`}
		m := newTokenManager(t, s, newMemoryUserStore())
		_, err := m.EnsureValidAccessToken(context.Background(), userWith("expired", "revoked"))
		var reauth *ReauthenticationRequired
		require.ErrorAs(t, err, &reauth)
		assert.Equal(t, ReasonRefreshRejected, reauth.Reason)
		assert.ErrorIs(t, err, ErrReauthenticationRequired)
	})

	t.Run("token endpoint down", func(t *testing.T) {
		s := &oauthServer{validTokens: map[string]string{}, refreshStatus: http.StatusServiceUnavailable, refreshBody: `{}`}
		m := newTokenManager(t, s, newMemoryUserStore())
		_, err := m.EnsureValidAccessToken(context.Background(), userWith("expired", "refresh"))
		assert.ErrorIs(t, err, ErrTransientUnavailable)
	})

	t.Run("probe timeout", func(t *testing.T) {
		s := &oauthServer{validTokens: map[string]string{"good": gcalendar.Scope}, infoDelay: 2 * time.Second}
		m := newTokenManager(t, s, newMemoryUserStore())
		_, err := m.EnsureValidAccessToken(context.Background(), userWith("good", "refresh"))
		assert.ErrorIs(t, err, ErrTransientUnavailable)
	})
}

func TestHasScope(t *testing.T) {
	assert.True(t, hasScope("openid "+gcalendar.Scope, gcalendar.Scope))
	assert.False(t, hasScope("openid https://www.googleapis.com/auth/calendar.readonly", gcalendar.Scope))
	assert.False(t, hasScope("", gcalendar.Scope))
}
