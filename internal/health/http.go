package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/econ-bot/internal/middleware"
	"github.com/Proton-105/econ-bot/pkg/logger"
)

// Probes answers liveness and readiness.
type Probes interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) (map[string]string, error)
}

type response struct {
	Status     string            `json:"status"`
	Error      string            `json:"error,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// NewRouter serves /healthz, /readyz and /metrics.
func NewRouter(probes Probes, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logger.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.HTTP(log))
	r.Use(chimw.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := probes.Liveness(req.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, response{Status: "down", Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, response{Status: "up"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		components, err := probes.Readiness(req.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, response{Status: "not ready", Error: err.Error(), Components: components})
			return
		}
		writeJSON(w, http.StatusOK, response{Status: "ready", Components: components})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
