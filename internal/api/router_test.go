package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/placeit-be/internal/auth"
	"github.com/isdelr/placeit-be/internal/models"
	"github.com/isdelr/placeit-be/internal/observability"
	"github.com/isdelr/placeit-be/internal/services"
	"github.com/isdelr/placeit-be/internal/store"
	"github.com/isdelr/placeit-be/internal/web"
	"github.com/isdelr/placeit-be/internal/websocket"
)

type stubAnalysis struct{}

func (stubAnalysis) Search(_ context.Context, q string) (models.SearchResult, error) {
	return models.SearchResult{Location: models.Location{Lat: 20.29, Lng: 85.82, Name: q}}, nil
}

func (stubAnalysis) Analyze(_ context.Context, _ string, req models.PredictionRequest) (models.AnalysisResult, error) {
	return models.AnalysisResult{RadiusKm: req.RadiusKm, SuitableCount: 1, Total: 1}, nil
}

type stubHealth struct{}

func (stubHealth) Check(context.Context) models.Health { return models.Health{Status: "ok", Store: "memory"} }

func newTestRouter(t *testing.T, analyzeLimit int) http.Handler {
	t.Helper()
	tokens := auth.NewTokenManager("router-secret", time.Hour)
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	return NewRouter(RouterParams{
		Hub:              websocket.NewHub(),
		Tokens:           tokens,
		UserService:      services.NewUserService(store.NewMemoryStore(), tokens, 4),
		AnalysisService:  stubAnalysis{},
		HealthChecker:    stubHealth{},
		Renderer:         renderer,
		Metrics:          observability.NewMetrics(),
		AllowedOrigins:   []string{"http://localhost:5173"},
		AnalyzeRateLimit: analyzeLimit,
	})
}

func do(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(h, http.MethodPost, "/api/auth/register", `{"email":"R@X.io ","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodPost, "/api/auth/login", `{"email":"r@x.io","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var result services.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result.Token
}

func TestAuthFlowThroughRouter(t *testing.T) {
	h := newTestRouter(t, 0)
	token := login(t, h)

	rec := do(h, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"r@x.io"`)

	rec = do(h, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newTestRouter(t, 0)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/geocode?q=Puri", ""},
		{http.MethodPost, "/api/analyze", `{"latitude":20,"longitude":85,"radius_km":1}`},
		{http.MethodGet, "/api/ws", ""},
	} {
		rec := do(h, tc.method, tc.path, tc.body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)

		rec = do(h, tc.method, tc.path, tc.body, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}

	token := login(t, h)
	rec := do(h, http.MethodGet, "/api/geocode?q=Puri", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(h, http.MethodPost, "/api/analyze", `{"latitude":20,"longitude":85,"radius_km":1}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeRateLimit(t *testing.T) {
	h := newTestRouter(t, 1)
	token := login(t, h)

	body := `{"latitude":20,"longitude":85,"radius_km":1}`
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/analyze", body, token).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/api/analyze", body, token).Code)
}

func TestAuthRoutesAreNotRateLimited(t *testing.T) {
	h := newTestRouter(t, 1)
	for i := 0; i < 5; i++ {
		rec := do(h, http.MethodPost, "/api/auth/login", `{"email":"x@x.io","password":"secret1"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestWebShellGate(t *testing.T) {
	h := newTestRouter(t, 0)

	rec := do(h, http.MethodGet, "/home", "", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	for _, path := range []string{"/", "/login", "/register", "/about"} {
		rec = do(h, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
	}
}

func TestCORSAllowList(t *testing.T) {
	h := newTestRouter(t, 0)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = preflight("https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsAndHealth(t *testing.T) {
	h := newTestRouter(t, 0)

	rec := do(h, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/health"`)
}

func TestNotFoundIsJSON(t *testing.T) {
	h := newTestRouter(t, 0)
	rec := do(h, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message"`)
}
