package server

import (
	"encoding/json"
	"net/http"

	"github.com/almadegranja/alma-backend/internal/config"
	"github.com/almadegranja/alma-backend/internal/logging"
	"github.com/almadegranja/alma-backend/internal/modules/auth"
	"github.com/almadegranja/alma-backend/internal/modules/catalog"
	"github.com/almadegranja/alma-backend/internal/modules/media"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter wires every module onto one chi router. host may be nil when
// the image host is not configured.
func NewRouter(cfg config.Config, repo catalog.Repository, host media.ImageHost, log *zap.Logger) *chi.Mux {
	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(logging.RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.HTTP.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// ── Auth gate ───────────────────────────────────────────
	authHandler := auth.NewHandler(auth.NewService(cfg.Auth, log), log)
	authHandler.RegisterRoutes(router)

	// ── Catalog ─────────────────────────────────────────────
	catalogService := catalog.NewService(repo)
	catalog.NewHandler(catalogService, log).RegisterRoutes(router, authHandler.RequireAuth)

	// ── Media ───────────────────────────────────────────────
	media.NewHandler(host, cfg.Media.MaxUploadBytes, log).RegisterRoutes(router, authHandler.RequireAuth)

	return router
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
