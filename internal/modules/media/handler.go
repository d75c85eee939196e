package media

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/almadegranja/alma-backend/internal/apperr"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes the admin image upload endpoint.
type Handler struct {
	host     ImageHost
	maxBytes int64
	log      *zap.Logger
}

// NewHandler accepts a nil host for an unconfigured image host.
func NewHandler(host ImageHost, maxBytes int64, log *zap.Logger) *Handler {
	return &Handler{host: host, maxBytes: maxBytes, log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.With(requireAuth).Post("/admin/upload", h.upload) // POST /admin/upload (multipart "file")
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.host == nil {
		err := apperr.Configuration("image host not configured: CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET", nil)
		h.log.Error("upload rejected", zap.Error(err))
		respond(w, http.StatusInternalServerError, apperr.Body(err, "image host not configured"))
		return
	}

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		verr := apperr.Validation("file", apperr.ReasonMissing, "a file is required")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			verr = apperr.Validation("file", apperr.ReasonInvalid, "file too large")
		}
		respond(w, http.StatusBadRequest, apperr.Body(verr, ""))
		return
	}
	defer file.Close()

	res, err := h.host.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.log.Error("image upload failed", zap.String("filename", header.Filename), zap.Error(err))
		respond(w, http.StatusInternalServerError, apperr.Body(apperr.Upstream("upload", err), "could not upload image"))
		return
	}

	h.log.Info("image uploaded", zap.String("public_id", res.PublicID))
	respond(w, http.StatusOK, res)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
