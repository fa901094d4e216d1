// Package httpapi assembles the HTTP surface from the domain handlers.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"moodfeed/internal/common"
	"moodfeed/internal/config"
)

// Registrar mounts a handler's routes on the shared router.
type Registrar interface {
	Register(r *mux.Router, auth *common.HTTPAuth)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Router struct {
	*mux.Router
}

func NewRouter(auth *common.HTTPAuth, log *logrus.Logger, health HealthCheck, registrars ...Registrar) *Router {
	r := mux.NewRouter()
	r.Use(common.RequestLogger(log), common.CORS)

	r.HandleFunc("/health", healthHandler(health, log)).Methods(http.MethodGet)
	for _, reg := range registrars {
		reg.Register(r, auth)
	}

	// Unmatched routes still answer CORS preflight.
	r.NotFoundHandler = common.CORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteError(w, log, common.NotFound("route not found"))
	}))
	r.MethodNotAllowedHandler = common.CORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSON(w, http.StatusMethodNotAllowed, common.Envelope{Message: "method not allowed"})
	}))
	return &Router{Router: r}
}

func healthHandler(check HealthCheck, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				log.WithError(err).Warn("health check failed")
				common.WriteJSON(w, http.StatusServiceUnavailable, common.Envelope{Message: "unhealthy"})
				return
			}
		}
		common.WriteOK(w, "ok", map[string]string{"status": "healthy"})
	}
}

func NewServer(cfg *config.Config, router *Router) *http.Server {
	return &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
