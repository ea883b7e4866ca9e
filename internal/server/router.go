// Package server assembles the storefront HTTP API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	identityhttp "github.com/dmehra2102/storefront/internal/identity/infrastructure/http"
	"github.com/dmehra2102/storefront/internal/platform/httpapi"
	"github.com/dmehra2102/storefront/pkg/health"
	"github.com/dmehra2102/storefront/pkg/metrics"
)

// Routes is implemented by every bounded context's HTTP handler.
type Routes interface {
	Routes(r chi.Router)
}

type Options struct {
	Log      *slog.Logger
	Metrics  *metrics.ServerMetrics
	Gatherer prometheus.Gatherer
	// Ready backs /healthz; nil always reports ok.
	Ready health.Probe
}

func NewRouter(opts Options, handlers ...Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				opts.Log.Warn("readiness check failed", "err", err)
				httpapi.Message(w, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		httpapi.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(identityhttp.Middleware)
		for _, h := range handlers {
			h.Routes(r)
		}
	})
	return r
}
