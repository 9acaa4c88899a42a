package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/teemow/assistant/internal/instrumentation"
	"github.com/teemow/assistant/internal/logging"
)

// ErrAuthorization marks failures of the interactive consent flow.
var ErrAuthorization = errors.New("google authorization failed")

// Manager decides whether the cached token can be reused, refreshed, or must
// be replaced through interactive consent, and persists every new token.
type Manager struct {
	conf       *oauth2.Config
	store      TokenStore
	authorizer Authorizer
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithMetrics sets the metrics recorder for OAuth counters.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithAuthorizer replaces the interactive flow. Defaults to a LoopbackAuthorizer.
func WithAuthorizer(a Authorizer) Option {
	return func(m *Manager) { m.authorizer = a }
}

// NewManager creates a Manager for an OAuth client config.
func NewManager(conf *oauth2.Config, store TokenStore, opts ...Option) *Manager {
	m := &Manager{
		conf:   conf,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.authorizer == nil {
		m.authorizer = &LoopbackAuthorizer{Logger: m.logger}
	}
	m.logger = logging.WithService(m.logger, "google-oauth")
	return m
}

// NewManagerFromFile reads a Google client secret JSON (the "installed" app
// credentials downloaded from the cloud console) and creates a Manager that
// caches tokens in tokenFile.
func NewManagerFromFile(credentialsFile, tokenFile string, opts ...Option) (*Manager, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	conf, err := googleoauth.ConfigFromJSON(data, DefaultOAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", credentialsFile, err)
	}
	return NewManager(conf, NewFileTokenStore(tokenFile), opts...), nil
}

// Obtain returns a usable token: the cached one if still valid, a refreshed
// one if it has expired and carries a refresh token, and otherwise one from
// the interactive flow. Any token that differs from the cache is saved.
func (m *Manager) Obtain(ctx context.Context) (*oauth2.Token, error) {
	cached, err := m.store.Load()
	switch {
	case errors.Is(err, ErrTokenNotFound):
		m.logger.Info("no cached Google token, starting authorization")
		return m.authorize(ctx)
	case err != nil:
		m.logger.Warn("cached Google token unusable, starting authorization", logging.Err(err))
		return m.authorize(ctx)
	}

	if cached.Valid() {
		m.logger.Debug("reusing cached Google token")
		return cached, nil
	}

	if cached.RefreshToken == "" {
		m.logger.Info("cached Google token expired without refresh token, starting authorization")
		return m.authorize(ctx)
	}

	refreshed, err := m.conf.TokenSource(ctx, cached).Token()
	if err != nil {
		m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		m.logger.Warn("Google token refresh rejected, starting authorization", logging.Err(err))
		return m.authorize(ctx)
	}
	m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)

	// Google omits the refresh token from refresh responses.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cached.RefreshToken
	}
	if err := m.store.Save(refreshed); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	m.logger.Info("refreshed Google token", logging.TokenLength("access_token", refreshed.AccessToken))
	return refreshed, nil
}

func (m *Manager) authorize(ctx context.Context) (*oauth2.Token, error) {
	tok, err := m.authorizer.Authorize(ctx, m.conf)
	if err != nil {
		m.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, err)
	}
	m.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

	if err := m.store.Save(tok); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	m.logger.Info("stored new Google token")
	return tok, nil
}

// TokenSource returns a source that refreshes as needed and writes every
// changed token back to the store.
func (m *Manager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := m.Obtain(ctx)
	if err != nil {
		return nil, err
	}
	return &persistingTokenSource{
		base:    m.conf.TokenSource(ctx, tok),
		store:   m.store,
		last:    tok.AccessToken,
		refresh: tok.RefreshToken,
		logger:  m.logger,
	}, nil
}

// HTTPClient returns an HTTP client that authenticates Google API requests.
func (m *Manager) HTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := m.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

type persistingTokenSource struct {
	base   oauth2.TokenSource
	store  TokenStore
	logger *slog.Logger

	mu      sync.Mutex
	last    string
	refresh string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken == s.last {
		return tok, nil
	}

	toSave := *tok
	if toSave.RefreshToken == "" {
		toSave.RefreshToken = s.refresh
	}
	if err := s.store.Save(&toSave); err != nil {
		// The request can still proceed with the fresh token.
		s.logger.Warn("failed to persist refreshed token", logging.Err(err))
	} else {
		s.last = tok.AccessToken
	}
	return tok, nil
}
