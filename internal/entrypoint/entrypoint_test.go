package entrypoint

import (
	"context"
	"encoding/hex"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(dbPath string) *config.Config {
	return &config.Config{
		HTTP:     config.HTTP{Host: "127.0.0.1", Port: 0},
		Global:   config.Global{ShutdownTimeoutInSeconds: 2},
		Log:      config.Log{Level: "info", Format: "console"},
		Database: config.Database{Path: dbPath},
		Auth: config.Auth{
			SessionSecret:    "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
			SessionLifetime:  time.Hour,
			BcryptCost:       bcrypt.MinCost,
			SecureCookies:    false,
			MaxLoginAttempts: 5,
			RateLimitWindow:  time.Minute,
			LockoutDuration:  time.Minute,
		},
		Loans: config.Loans{PeriodDays: 15},
		Seed:  config.Seed{OnStart: true},
		Audit: config.Audit{RetentionDays: 30, CleanupSchedule: "0 3 * * *"},
		Tasks: config.Tasks{Enabled: true, Workers: 1},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(cfg, "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		app.Close(ctx)
	})
	return app
}

func TestNewApp_InMemory(t *testing.T) {
	app := newTestApp(t, testConfig(database.MemoryPath))

	assert.Nil(t, app.taskClient, "task queue needs a file database")
	assert.Nil(t, app.scheduler)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewApp_SeedsAndServes(t *testing.T) {
	app := newTestApp(t, testConfig(filepath.Join(t.TempDir(), "library.db")))

	require.NotNil(t, app.taskClient)
	require.NotNil(t, app.scheduler)
	assert.True(t, app.scheduler.IsRunning())

	// CSRF is on, so fetch a token with the login page first.
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	token := extractCSRFToken(t, w.Body.String())
	cookies := w.Result().Cookies()

	form := url.Values{
		"username":           {"admin"},
		"password":           {"admin123"},
		"role":               {"admin"},
		"gorilla.csrf.Token": {token},
	}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
}

func TestNewApp_SeedDisabled(t *testing.T) {
	cfg := testConfig(database.MemoryPath)
	cfg.Seed.OnStart = false
	app := newTestApp(t, cfg)

	var count int64
	require.NoError(t, app.DB.DB.Table("books").Count(&count).Error)
	assert.Zero(t, count)
}

func TestNewApp_TasksDisabled(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "library.db"))
	cfg.Tasks.Enabled = false
	app := newTestApp(t, cfg)

	assert.Nil(t, app.taskClient)
}

func TestCSRFSecretFromConfig(t *testing.T) {
	t.Run("hex secret is decoded", func(t *testing.T) {
		secret, err := csrfSecretFromConfig("00ff")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0xff}, secret)
	})

	t.Run("non-hex secret is used as is", func(t *testing.T) {
		secret, err := csrfSecretFromConfig("not hex at all")
		require.NoError(t, err)
		assert.Equal(t, []byte("not hex at all"), secret)
	})

	t.Run("empty secret is generated", func(t *testing.T) {
		a, err := csrfSecretFromConfig("")
		require.NoError(t, err)
		b, err := csrfSecretFromConfig("")
		require.NoError(t, err)
		assert.Len(t, a, 32)
		assert.NotEqual(t, hex.EncodeToString(a), hex.EncodeToString(b))
	})
}

func extractCSRFToken(t *testing.T, body string) string {
	t.Helper()
	const marker = `name="gorilla.csrf.Token" value="`
	start := strings.Index(body, marker)
	require.NotEqual(t, -1, start, "csrf field missing from login page")
	rest := body[start+len(marker):]
	end := strings.Index(rest, `"`)
	require.NotEqual(t, -1, end)
	// html/template escapes "+" in attribute values.
	return html.UnescapeString(rest[:end])
}
