package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/pkg/httpx"
)

type routable interface {
	Routes(r chi.Router)
}

// readiness reports whether a dependency can take traffic.
type readiness func(ctx context.Context) error

func newRouter(log *slog.Logger, verifier *auth.Verifier, timeout time.Duration, ready readiness, handlers ...routable) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if ready != nil {
			if err := ready(req.Context()); err != nil {
				log.Warn("not ready", slog.Any("err", err))
				httpx.Error(w, http.StatusServiceUnavailable, "unavailable", "not ready")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(verifier.Middleware)
		for _, h := range handlers {
			h.Routes(r)
		}
	})

	return otelhttp.NewHandler(r, "nomino-api")
}
