package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/gcalphotos/gcalphotos/internal/logging"
)

// OOB redirect for installed applications without a local callback server.
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// ConsentFunc completes the interactive part of the OAuth flow: it receives
// the consent URL and returns the authorization code the user obtained there.
type ConsentFunc func(ctx context.Context, authURL string) (string, error)

// AuthRecorder receives the outcome of authentication and token refresh
// attempts. *instrumentation.Metrics implements it.
type AuthRecorder interface {
	RecordOAuthAuth(ctx context.Context, result string)
	RecordOAuthTokenRefresh(ctx context.Context, result string)
}

// Store manages the OAuth client configuration and token for a single
// account. It loads the client secret document lazily, keeps the current
// token cached in memory, refreshes it when expired, runs the consent flow
// when no usable token exists, and persists every new token atomically.
//
// All methods are safe for concurrent use.
type Store struct {
	credentialsFile string
	tokenFile       string
	consent         ConsentFunc
	logger          *slog.Logger
	metrics         AuthRecorder

	mu    sync.Mutex
	conf  *oauth2.Config
	token *oauth2.Token
}

// Option configures a Store.
type Option func(*Store)

// WithConsent sets the consent callback used when no usable token exists.
func WithConsent(fn ConsentFunc) Option {
	return func(s *Store) {
		s.consent = fn
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics sets the recorder that receives auth and refresh outcomes.
func WithMetrics(rec AuthRecorder) Option {
	return func(s *Store) {
		s.metrics = rec
	}
}

// NewStore creates a credential store backed by the given client secret and
// token files. Empty paths fall back to the defaults under the user config
// and cache directories.
func NewStore(credentialsFile, tokenFile string, opts ...Option) *Store {
	if credentialsFile == "" {
		credentialsFile = DefaultCredentialsFile()
	}
	if tokenFile == "" {
		tokenFile = DefaultTokenFile()
	}

	s := &Store{
		credentialsFile: credentialsFile,
		tokenFile:       tokenFile,
		consent:         ServerConsent("gcalphotos auth"),
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CredentialsFile returns the path of the client secret document.
func (s *Store) CredentialsFile() string {
	return s.credentialsFile
}

// TokenFile returns the path of the persisted token.
func (s *Store) TokenFile() string {
	return s.tokenFile
}

// EnsureValid returns a usable OAuth token, going through at most one
// load / refresh / consent sequence:
//
//  1. A cached valid token is returned as-is.
//  2. Otherwise the persisted token is loaded from disk.
//  3. An expired token with a refresh token is refreshed.
//  4. As a last resort the consent flow runs and the code is exchanged.
//
// Every newly obtained token is persisted before it is returned. When the
// store already holds a valid token the call performs no I/O, so calling it
// again is free.
func (s *Store) EnsureValid(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.token.Valid() {
		return s.token, nil
	}

	if s.token == nil {
		if tok, err := s.loadToken(); err == nil {
			s.token = tok
		}
	}

	if s.token != nil && s.token.Valid() {
		return s.token, nil
	}

	conf, err := s.config()
	if err != nil {
		return nil, err
	}

	if s.token != nil && s.token.RefreshToken != "" {
		refreshed, err := conf.TokenSource(ctx, s.token).Token()
		s.recordRefresh(ctx, err)
		if err == nil {
			s.logger.Debug("refreshed OAuth token")
			s.setToken(refreshed)
			return refreshed, nil
		}
		s.logger.Warn("token refresh failed, falling back to consent flow", logging.Err(err))
	}

	authURL := conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
	code, err := s.consent(ctx, authURL)
	if err != nil {
		s.recordAuth(ctx, err)
		return nil, &FlowError{AuthURL: authURL, Err: err}
	}

	tok, err := conf.Exchange(ctx, code)
	s.recordAuth(ctx, err)
	if err != nil {
		return nil, &FlowError{AuthURL: authURL, Err: fmt.Errorf("failed to exchange auth code: %w", err)}
	}

	s.logger.Info("OAuth consent flow completed")
	s.setToken(tok)
	return tok, nil
}

// Invalidate marks the cached token as expired so the next EnsureValid call
// refreshes it (or re-runs the consent flow when no refresh token exists).
// Used when the remote side rejects a token that still looks valid locally.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil {
		s.token.Expiry = time.Unix(1, 0)
	}
}

func (s *Store) recordAuth(ctx context.Context, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOAuthAuth(ctx, resultOf(err))
}

func (s *Store) recordRefresh(ctx context.Context, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOAuthTokenRefresh(ctx, resultOf(err))
}

func resultOf(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// OAuthConfig returns the OAuth client configuration, loading the client
// secret document on first use.
func (s *Store) OAuthConfig() (*oauth2.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config()
}

// config returns the cached OAuth config, loading it from the client secret
// file if needed. Caller must hold s.mu.
func (s *Store) config() (*oauth2.Config, error) {
	if s.conf != nil {
		return s.conf, nil
	}

	data, err := os.ReadFile(s.credentialsFile)
	if err != nil {
		return nil, &ConfigError{Path: s.credentialsFile, Err: err}
	}

	conf, err := google.ConfigFromJSON(data, Scopes()...)
	if err != nil {
		return nil, &ConfigError{Path: s.credentialsFile, Err: fmt.Errorf("failed to parse client secret file: %w", err)}
	}

	if conf.RedirectURL == "" {
		conf.RedirectURL = oobRedirectURL
	}

	s.conf = conf
	return conf, nil
}

// setToken caches tok and persists it. Persistence failures are logged but do
// not invalidate the in-memory token. Caller must hold s.mu.
func (s *Store) setToken(tok *oauth2.Token) {
	s.token = tok
	if err := s.saveToken(tok); err != nil {
		s.logger.Warn("failed to persist OAuth token", logging.Err(err))
	}
}

func (s *Store) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokenFile)
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.tokenFile, err)
	}

	return &tok, nil
}

// saveToken writes tok to the token file via a temp file and rename so a
// crash mid-write never leaves a corrupt token behind.
func (s *Store) saveToken(tok *oauth2.Token) error {
	dir := filepath.Dir(s.tokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.tokenFile); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}

// DefaultCredentialsFile returns the default location of the OAuth client
// secret document.
func DefaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "gcalphotos", "credentials.json")
}

// DefaultTokenFile returns the default location of the persisted token.
func DefaultTokenFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "gcalphotos", "token.json")
}
