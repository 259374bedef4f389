package auth_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/app"
	"github.com/aussiebroadwan/designer/pkg/authsdk"
	"github.com/aussiebroadwan/designer/pkg/httpx"
	"github.com/stretchr/testify/require"
)

/*
 * Common helpers for designer end-to-end tests. Each test gets its own
 * application instance on a fresh data directory, served in-process.
 */

const (
	adminUsername = "admin"
	jwtKey        = "e2e-secret-0123456789abcdef012345"
)

// relaxedLimits keeps the credential limiter out of the way of tests that
// make many rapid requests.
var relaxedLimits = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}

type testServer struct {
	BaseURL string
	DataDir string
	App     *app.Application
}

// testConfig returns a valid configuration rooted in a temporary directory.
func testConfig(t *testing.T) app.Config {
	t.Helper()
	dir := t.TempDir()

	return app.Config{
		Env: "test",
		App: app.AppConfig{
			DataDir:            dir,
			LockTimeout:        5 * time.Second,
			JWTKey:             jwtKey,
			JWTIssuer:          "designer",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
			PepperFile:         filepath.Join(dir, "pepper"),
			AdminUser:          adminUsername,
			AdminPasswordFile:  filepath.Join(dir, "admin-password"),
		},
		Server:    app.ServerConfig{Port: 8080, ShutdownGracePeriod: time.Second},
		Log:       app.LogConfig{Level: "info", Format: "json"},
		Heartbeat: app.HeartbeatConfig{Interval: 20 * time.Millisecond},
		RateLimit: app.RateLimitConfig{Credential: relaxedLimits, Lenient: relaxedLimits},
	}
}

// setupServer starts the service with relaxed rate limits.
func setupServer(t *testing.T) *testServer {
	t.Helper()
	return startServer(t, testConfig(t))
}

// setupServerWithDefaultRateLimits starts the service with the production
// credential limit. Use it only to check that limiting works.
func setupServerWithDefaultRateLimits(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig(t)
	cfg.RateLimit.Credential = httpx.CredentialLimit
	return startServer(t, cfg)
}

func startServer(t *testing.T, cfg app.Config) *testServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	application, err := app.NewWithLogger(cfg, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, application.Shutdown())
	})

	return &testServer{BaseURL: srv.URL, DataDir: cfg.App.DataDir, App: application}
}

// adminPassword reads the generated first-run admin password.
func (s *testServer) adminPassword(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.DataDir, "admin-password"))
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}

// registerAndLogin creates a plain user and returns a logged in session.
func registerAndLogin(t *testing.T, client *authsdk.SDKClient, username, password string) *authsdk.Session {
	t.Helper()

	msg, err := client.Register(t.Context(), username, password)
	require.NoError(t, err, "Register should succeed")
	require.Contains(t, msg, username)

	session, err := client.Login(t.Context(), username, password)
	require.NoError(t, err, "Login should succeed")
	require.NotNil(t, session)
	return session
}

// assertTokenResponse verifies a login response has all required fields.
func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse, username string) {
	t.Helper()
	require.NotNil(t, resp)
	require.Equal(t, username, resp.UserName)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.True(t, resp.AccessTokenExpiry.After(time.Now()), "Access token should not be expired")
	require.True(t, resp.RefreshTokenExpiry.After(resp.AccessTokenExpiry), "Refresh token should outlive access token")
}

// assertStatus checks that err is an API error with the given status.
func assertStatus(t *testing.T, err error, code int, context string) {
	t.Helper()
	require.Error(t, err, context)
	require.True(t, authsdk.IsStatus(err, code), "%s - expected HTTP %d, got: %v", context, code, err)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
