package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"loanapply/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePinger simulates the database handle.
type fakePinger struct {
	err error
}

func (p fakePinger) Ping() error {
	return p.err
}

func newHealthApp(db Pinger) *fiber.App {
	app := fiber.New()
	handler := NewHealthHandler(db)
	app.Get("/", handler.Root)
	app.Get("/health", handler.HealthCheck)
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string) map[string]interface{} {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck_Healthy(t *testing.T) {
	app := newHealthApp(fakePinger{})

	body := getJSON(t, app, "/health")
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "healthy", checks["database"])
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	app := newHealthApp(fakePinger{err: errors.New("connection refused")})

	body := getJSON(t, app, "/health")
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "unhealthy", checks["database"])
}

func TestHealthCheck_NilHandle(t *testing.T) {
	app := newHealthApp(nil)

	body := getJSON(t, app, "/health")
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "unhealthy", checks["database"])
}

func TestRoot_ReportsMode(t *testing.T) {
	config.AppConfig = &config.Config{AppMode: "dev"}
	app := newHealthApp(fakePinger{})

	body := getJSON(t, app, "/")
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "dev", body["mode"])
}
