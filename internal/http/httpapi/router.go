package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/http/handlers"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/infra"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/middleware"
)

// Options tunes the protective middleware on the generate route.
type Options struct {
	Logger             infra.Logger
	CORSAllowedOrigins []string
	RateLimitPerMin    int
	MaxInFlight        int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	// Base middleware
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSAllowedOrigins),
	)
	r.MethodNotAllowed(app.MethodNotAllowed)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}` + "\n"))
	})

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", app.ListTemplates)
		r.Get("/presets", app.ListPresets)
		r.With(
			middleware.RateLimit(opts.RateLimitPerMin, time.Minute),
			middleware.ConcurrencyLimit(int64(opts.MaxInFlight)),
		).Post("/generate", app.Generate)
	})

	r.Get("/templates/{id}", app.TemplateImage)

	return r
}
