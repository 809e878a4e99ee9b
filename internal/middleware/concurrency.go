package middleware

import (
	"net/http"

	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimit caps in-flight requests at limit. Requests over the cap are
// refused with 503 immediately rather than queued.
func ConcurrencyLimit(limit int64) func(http.Handler) http.Handler {
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sem.TryAcquire(1) {
				writeJSONError(w, http.StatusServiceUnavailable, "server busy")
				return
			}
			defer sem.Release(1)
			next.ServeHTTP(w, r)
		})
	}
}
