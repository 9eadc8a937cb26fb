package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-lifecycle-api/config"
	"github.com/oksasatya/user-lifecycle-api/internal/container"
	"github.com/oksasatya/user-lifecycle-api/internal/events"
	"github.com/oksasatya/user-lifecycle-api/internal/infrastructure/memory"
	"github.com/oksasatya/user-lifecycle-api/pkg/helpers"
)

type nopEmitter struct{}

func (nopEmitter) Emit(events.UserEvent) {}

func setup(t *testing.T, basePath string, metrics bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	container.Reset()
	t.Cleanup(container.Reset)

	container.SetConfig(&config.Config{
		Env:                "test",
		APIBasePath:        basePath,
		MetricsEnabled:     metrics,
		RateLimitPerMinute: 10,
	})
	container.SetLogger(helpers.NewNopLogger())
	container.SetUserRepository(memory.NewUserRepository())
	container.SetEmitter(nopEmitter{})
	return NewEngine()
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEngineRoutes(t *testing.T) {
	r := setup(t, "", true)

	w := serve(r, http.MethodPost, "/users", `{"name":"a","email":"a@test.com","age":3}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/users/1", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodDelete, "/users/1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/users/1", "").Code)
}

func TestEngineBasePath(t *testing.T) {
	r := setup(t, "/api", false)

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/api/users", `{"name":"a","email":"a@test.com","age":3}`).Code)

	w := serve(r, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "route not found", body["message"])
}

func TestOpsRoutes(t *testing.T) {
	t.Run("HealthWithoutDependencies", func(t *testing.T) {
		r := setup(t, "", true)
		w := serve(r, http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("MetricsEnabled", func(t *testing.T) {
		r := setup(t, "", true)
		serve(r, http.MethodGet, "/users/5", "")
		w := serve(r, http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user_api_http_requests_total")
	})

	t.Run("MetricsDisabled", func(t *testing.T) {
		r := setup(t, "", false)
		assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/metrics", "").Code)
	})
}

func TestOpenAPIDocument(t *testing.T) {
	r := setup(t, "/api", false)

	w := serve(r, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	body := w.Body.String()
	for _, want := range []string{"openapi: 3.0.3", "/users:", "/users/{id}:", "User not found by ID"} {
		assert.Contains(t, body, want)
	}
}
