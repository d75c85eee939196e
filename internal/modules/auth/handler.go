package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/almadegranja/alma-backend/internal/apperr"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type usernameKey struct{}

// Handler exposes the admin login endpoints and the bearer middleware.
type Handler struct {
	service Service
	log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/login", h.login)
	r.With(h.RequireAuth).Get("/admin/me", h.me)
}

// RequireAuth rejects requests without a valid bearer token. Every failure
// gets the same 401 body.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respond(w, http.StatusUnauthorized, map[string]string{"error": msgUnauthorized})
			return
		}
		claims, err := h.service.Verify(strings.TrimSpace(token))
		if err != nil {
			respond(w, http.StatusUnauthorized, map[string]string{"error": msgUnauthorized})
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey{}, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}

// UsernameFrom returns the admin username stored by RequireAuth.
func UsernameFrom(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey{}).(string)
	return username, ok
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username any `json:"username"`
		Password any `json:"password"`
	}
	// Unreadable bodies and non-string fields are just bad credentials.
	_ = json.NewDecoder(r.Body).Decode(&req)
	username, okUser := req.Username.(string)
	password, okPass := req.Password.(string)
	if !okUser || !okPass {
		respond(w, http.StatusUnauthorized, map[string]string{"error": msgInvalidCredentials})
		return
	}

	token, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		status := apperr.Status(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("admin login failed", zap.Error(err))
		} else {
			h.log.Warn("admin login rejected", zap.String("remote", r.RemoteAddr))
		}
		respond(w, status, apperr.Body(err, "server configuration incomplete"))
		return
	}

	h.log.Info("admin logged in", zap.String("username", username))
	respond(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	username, _ := UsernameFrom(r.Context())
	respond(w, http.StatusOK, map[string]string{"username": username})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
