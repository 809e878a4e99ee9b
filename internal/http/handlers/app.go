package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/infra"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/middleware"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/pipeline"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/storage"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/templates"
)

const genericFailure = "Failed to generate thumbnail"

type App struct {
	Pipeline  *pipeline.Pipeline
	Templates *templates.Registry
	Spool     *storage.Spool
	Logger    *infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}

// MethodNotAllowed is the JSON 405 used by every route.
func (a *App) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	a.error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// fail maps a domain error to its status and logs it with the request id.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	logger := a.logger()
	ev := logger.Info()
	if code >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Int("status", code).
		Msg("request failed")
	a.error(w, code, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, domain.PublicMessage(err)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.PublicMessage(err)
	default:
		return http.StatusInternalServerError, genericFailure
	}
}

func (a *App) logger() *infra.Logger {
	if a.Logger == nil {
		return infra.NopLogger()
	}
	return a.Logger
}

func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
