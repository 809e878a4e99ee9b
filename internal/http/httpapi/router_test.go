package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/http/handlers"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/infra"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/middleware"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/templates"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg, err := templates.NewRegistry("")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	app := &handlers.App{Templates: reg}
	return NewRouter(app, Options{
		Logger:             *infra.NopLogger(),
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		RateLimitPerMin:    30,
		MaxInFlight:        2,
	})
}

func TestRouterHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Fatalf("body = %q", got)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}
}

func TestRouterGenerateMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generate", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Method not allowed"}` {
		t.Fatalf("body = %q", got)
	}
}

func TestRouterTemplates(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"id":"gaming"`) {
		t.Fatalf("body missing gaming: %s", rec.Body.String())
	}
}

func TestRouterPresets(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/presets", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"name":"Happy"`) {
		t.Fatalf("body missing Happy: %s", rec.Body.String())
	}
}

func TestRouterPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRouterUnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
