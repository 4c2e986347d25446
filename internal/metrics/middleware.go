package metrics

import (
	"net/http"
	"time"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// UnmatchedRoute labels every request that no route in the mux serves.
const UnmatchedRoute = "other"

// Middleware counts requests and observes their latency per route pattern of
// routes. Paths the mux does not serve share the UnmatchedRoute label so the
// series count stays fixed by the route table.
func Middleware(rec Recorder, routes *http.ServeMux, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		route := routeLabel(routes, r)

		next.ServeHTTP(sw, r)

		rec.IncRequestsTotal(route, sw.status)
		rec.ObserveRequestDuration(route, time.Since(start))
	})
}

func routeLabel(routes *http.ServeMux, r *http.Request) string {
	if routes == nil {
		return UnmatchedRoute
	}
	if _, pattern := routes.Handler(r); pattern != "" {
		return pattern
	}
	return UnmatchedRoute
}
