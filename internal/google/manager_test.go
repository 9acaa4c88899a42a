package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/assistant/internal/logging"
)

// memoryStore is an in-memory TokenStore that counts saves.
type memoryStore struct {
	tok     *oauth2.Token
	loadErr error
	saves   int
}

func (s *memoryStore) Load() (*oauth2.Token, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.tok == nil {
		return nil, ErrTokenNotFound
	}
	cp := *s.tok
	return &cp, nil
}

func (s *memoryStore) Save(tok *oauth2.Token) error {
	cp := *tok
	s.tok = &cp
	s.saves++
	return nil
}

type fakeAuthorizer struct {
	tok   *oauth2.Token
	err   error
	calls int
}

func (a *fakeAuthorizer) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	a.calls++
	return a.tok, a.err
}

// tokenServer is a fake OAuth token endpoint. When fail is set it rejects
// refreshes with invalid_grant.
func tokenServer(t *testing.T, fail bool) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		fmt.Fprintf(w, `{"access_token":"refreshed-%d","token_type":"Bearer","expires_in":3600}`, n)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenURL},
		Scopes:       DefaultOAuthScopes,
	}
}

func TestManager_Obtain_ReusesValidToken(t *testing.T) {
	srv, hits := tokenServer(t, false)
	store := &memoryStore{tok: &oauth2.Token{
		AccessToken:  "cached",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}}
	auth := &fakeAuthorizer{}
	m := NewManager(testConfig(srv.URL), store, WithAuthorizer(auth), WithLogger(logging.Discard()))

	tok, err := m.Obtain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cached", tok.AccessToken)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits), "no network call expected")
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, 0, auth.calls)
}

func TestManager_Obtain_RefreshesExpiredToken(t *testing.T) {
	srv, hits := tokenServer(t, false)
	store := &memoryStore{tok: &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Hour),
	}}
	auth := &fakeAuthorizer{}
	m := NewManager(testConfig(srv.URL), store, WithAuthorizer(auth), WithLogger(logging.Discard()))

	tok, err := m.Obtain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "refreshed-1", tok.AccessToken)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, "refreshed-1", store.tok.AccessToken)
	assert.Equal(t, "refresh", store.tok.RefreshToken, "refresh token must survive the refresh")
	assert.Equal(t, 0, auth.calls)
}

func TestManager_Obtain_Interactive(t *testing.T) {
	srv, _ := tokenServer(t, true)

	tests := []struct {
		name  string
		store *memoryStore
	}{
		{"no cached token", &memoryStore{}},
		{"unreadable cache", &memoryStore{loadErr: errors.New("corrupt")}},
		{"expired without refresh token", &memoryStore{tok: &oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Minute)}}},
		{"refresh rejected", &memoryStore{tok: &oauth2.Token{AccessToken: "old", RefreshToken: "revoked", Expiry: time.Now().Add(-time.Minute)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthorizer{tok: &oauth2.Token{AccessToken: "fresh", RefreshToken: "new-refresh", Expiry: time.Now().Add(time.Hour)}}
			m := NewManager(testConfig(srv.URL), tt.store, WithAuthorizer(auth), WithLogger(logging.Discard()))

			tok, err := m.Obtain(context.Background())
			require.NoError(t, err)

			assert.Equal(t, "fresh", tok.AccessToken)
			assert.Equal(t, 1, auth.calls)
			assert.Equal(t, 1, tt.store.saves)
			assert.Equal(t, "fresh", tt.store.tok.AccessToken)
		})
	}
}

func TestManager_Obtain_AuthorizationFailure(t *testing.T) {
	store := &memoryStore{}
	auth := &fakeAuthorizer{err: errors.New("user closed the tab")}
	m := NewManager(testConfig("http://127.0.0.1:1"), store, WithAuthorizer(auth), WithLogger(logging.Discard()))

	_, err := m.Obtain(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthorization)
	assert.Equal(t, 0, store.saves)
}

func TestManager_TokenSource_PersistsOnChange(t *testing.T) {
	srv, _ := tokenServer(t, false)
	store := &memoryStore{tok: &oauth2.Token{
		AccessToken:  "cached",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}}
	m := NewManager(testConfig(srv.URL), store, WithAuthorizer(&fakeAuthorizer{}), WithLogger(logging.Discard()))

	ts, err := m.TokenSource(context.Background())
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)
	assert.Equal(t, 0, store.saves, "unchanged token must not be rewritten")

	// Swap the underlying source for one that yields a new token.
	pts := ts.(*persistingTokenSource)
	pts.base = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "rotated", Expiry: time.Now().Add(time.Hour)})

	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "rotated", tok.AccessToken)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, "refresh", store.tok.RefreshToken)

	_, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves, "same token must be saved only once")
}

func TestNewManagerFromFile(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte(`{"installed":{
		"client_id":"abc.apps.googleusercontent.com",
		"client_secret":"secret",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":"https://oauth2.googleapis.com/token",
		"redirect_uris":["http://localhost"]}}`), 0600))

	m, err := NewManagerFromFile(creds, filepath.Join(dir, "token.json"))
	require.NoError(t, err)
	assert.Equal(t, "abc.apps.googleusercontent.com", m.conf.ClientID)
	assert.ElementsMatch(t, DefaultOAuthScopes, m.conf.Scopes)

	_, err = NewManagerFromFile(filepath.Join(dir, "missing.json"), "token.json")
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"web":`), 0600))
	_, err = NewManagerFromFile(bad, "token.json")
	assert.Error(t, err)
}
