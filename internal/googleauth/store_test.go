package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newTokenEndpoint returns a test server that answers token requests the way
// Google's token endpoint does, handing out accessToken.
func newTokenEndpoint(t *testing.T, accessToken string) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":3600,"refresh_token":"refresh-1"}`, accessToken)
	}))
	t.Cleanup(ts.Close)

	return ts
}

func writeCredentials(t *testing.T, dir, tokenURL string) string {
	t.Helper()

	path := filepath.Join(dir, "credentials.json")
	doc := fmt.Sprintf(`{"installed":{"client_id":"client-id","client_secret":"client-secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":%q,"redirect_uris":["urn:ietf:wg:oauth:2.0:oob"]}}`, tokenURL)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	return path
}

func writeToken(t *testing.T, dir string, tok *oauth2.Token) string {
	t.Helper()

	path := filepath.Join(dir, "token.json")
	data, err := json.Marshal(tok)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	return path
}

func countingConsent(calls *int32, code string, err error) ConsentFunc {
	return func(_ context.Context, _ string) (string, error) {
		atomic.AddInt32(calls, 1)
		return code, err
	}
}

func TestEnsureValidUsesPersistedToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := writeToken(t, dir, &oauth2.Token{
		AccessToken:  "cached",
		TokenType:    "Bearer",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	})

	var consentCalls int32
	store := NewStore(filepath.Join(dir, "missing-credentials.json"), tokenFile,
		WithConsent(countingConsent(&consentCalls, "", nil)))

	tok, err := store.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)

	// A valid cached token means the second call touches nothing: removing
	// the file underneath the store must not matter.
	require.NoError(t, os.Remove(tokenFile))

	again, err := store.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", again.AccessToken)
	assert.Zero(t, atomic.LoadInt32(&consentCalls))
}

func TestEnsureValidMissingConfig(t *testing.T) {
	dir := t.TempDir()

	store := NewStore(filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json"))

	_, err := store.EnsureValid(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Path, "credentials.json")
}

func TestEnsureValidRefreshesExpiredToken(t *testing.T) {
	endpoint := newTokenEndpoint(t, "refreshed")
	dir := t.TempDir()
	credsFile := writeCredentials(t, dir, endpoint.URL)
	tokenFile := writeToken(t, dir, &oauth2.Token{
		AccessToken:  "stale",
		TokenType:    "Bearer",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	})

	var consentCalls int32
	store := NewStore(credsFile, tokenFile,
		WithConsent(countingConsent(&consentCalls, "", nil)))

	tok, err := store.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed", tok.AccessToken)
	assert.Zero(t, atomic.LoadInt32(&consentCalls))

	// The refreshed token must be persisted.
	data, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refreshed")

	info, err := os.Stat(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestEnsureValidRunsConsentFlow(t *testing.T) {
	endpoint := newTokenEndpoint(t, "brand-new")
	dir := t.TempDir()
	credsFile := writeCredentials(t, dir, endpoint.URL)
	tokenFile := filepath.Join(dir, "token.json")

	var consentCalls int32
	store := NewStore(credsFile, tokenFile,
		WithConsent(countingConsent(&consentCalls, "auth-code", nil)))

	tok, err := store.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "brand-new", tok.AccessToken)
	assert.Equal(t, int32(1), atomic.LoadInt32(&consentCalls))

	_, err = os.Stat(tokenFile)
	assert.NoError(t, err, "token from the consent flow must be persisted")

	// Token is now cached; no further consent.
	_, err = store.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&consentCalls))
}

func TestEnsureValidConsentFailure(t *testing.T) {
	endpoint := newTokenEndpoint(t, "unused")
	dir := t.TempDir()
	credsFile := writeCredentials(t, dir, endpoint.URL)

	store := NewStore(credsFile, filepath.Join(dir, "token.json"),
		WithConsent(ServerConsent("gcalphotos auth")))

	_, err := store.EnsureValid(context.Background())

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.NotEmpty(t, flowErr.AuthURL)
	assert.Contains(t, err.Error(), "gcalphotos auth")
}

func TestInvalidateForcesRefresh(t *testing.T) {
	endpoint := newTokenEndpoint(t, "refreshed")
	dir := t.TempDir()
	credsFile := writeCredentials(t, dir, endpoint.URL)
	tokenFile := writeToken(t, dir, &oauth2.Token{
		AccessToken:  "rejected-remotely",
		TokenType:    "Bearer",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	})

	store := NewStore(credsFile, tokenFile)

	tok, err := store.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rejected-remotely", tok.AccessToken)

	store.Invalidate()

	tok, err = store.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed", tok.AccessToken)
}

type countingAuthRecorder struct {
	auth    []string
	refresh []string
}

func (r *countingAuthRecorder) RecordOAuthAuth(_ context.Context, result string) {
	r.auth = append(r.auth, result)
}

func (r *countingAuthRecorder) RecordOAuthTokenRefresh(_ context.Context, result string) {
	r.refresh = append(r.refresh, result)
}

func TestEnsureValidRecordsMetrics(t *testing.T) {
	endpoint := newTokenEndpoint(t, "refreshed")
	dir := t.TempDir()
	credsFile := writeCredentials(t, dir, endpoint.URL)
	tokenFile := writeToken(t, dir, &oauth2.Token{
		AccessToken:  "stale",
		TokenType:    "Bearer",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	})

	rec := &countingAuthRecorder{}
	store := NewStore(credsFile, tokenFile, WithMetrics(rec))

	_, err := store.EnsureValid(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"success"}, rec.refresh)
	assert.Empty(t, rec.auth, "refresh succeeded, no consent flow ran")
}

func TestEnsureValidRecordsConsentFailure(t *testing.T) {
	endpoint := newTokenEndpoint(t, "unused")
	dir := t.TempDir()
	credsFile := writeCredentials(t, dir, endpoint.URL)

	rec := &countingAuthRecorder{}
	store := NewStore(credsFile, filepath.Join(dir, "token.json"),
		WithConsent(ServerConsent("gcalphotos auth")),
		WithMetrics(rec))

	_, err := store.EnsureValid(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"failure"}, rec.auth)
	assert.Empty(t, rec.refresh, "no refresh token existed")
}

func TestTerminalConsent(t *testing.T) {
	t.Run("reads trimmed code", func(t *testing.T) {
		var out strings.Builder
		consent := TerminalConsent(strings.NewReader("  the-code  \n"), &out)

		code, err := consent(context.Background(), "https://example.com/consent")
		require.NoError(t, err)
		assert.Equal(t, "the-code", code)
		assert.Contains(t, out.String(), "https://example.com/consent")
	})

	t.Run("empty input fails", func(t *testing.T) {
		var out strings.Builder
		consent := TerminalConsent(strings.NewReader(""), &out)

		_, err := consent(context.Background(), "https://example.com/consent")
		assert.Error(t, err)
	})
}

func TestSaveTokenReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json"))

	require.NoError(t, store.saveToken(&oauth2.Token{AccessToken: "first"}))
	require.NoError(t, store.saveToken(&oauth2.Token{AccessToken: "second"}))

	data, err := os.ReadFile(store.TokenFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "second")

	// No temp files may be left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".token-"), "leftover temp file %s", entry.Name())
	}
}
