package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kpinetwork/backend-sub000/internal/observability"
	quartershttp "github.com/kpinetwork/backend-sub000/internal/quarters/http"
)

// Pinger reports database liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	QuartersHandler *quartershttp.Handler
	DB              Pinger
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if params.DB == nil {
			writeStatus(w, http.StatusOK, "ok")
			return
		}
		if err := params.DB.Ping(r.Context()); err != nil {
			if params.Logger != nil {
				params.Logger.Warn("readiness ping failed", slog.Any("error", err))
			}
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	if params.QuartersHandler != nil {
		params.QuartersHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"status":"` + status + `"}`))
}
