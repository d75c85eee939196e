package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/almadegranja/alma-backend/internal/apperr"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service Service
	log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the public catalog and the admin product routes;
// requireAuth guards every admin route.
func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/products", h.listProducts)                  // GET    /products
	r.Get("/products/featured", h.listFeaturedProducts) // GET    /products/featured

	r.Route("/admin/products", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.listProducts)         // GET    /admin/products
		r.Post("/", h.createProduct)       // POST   /admin/products
		r.Delete("/{id}", h.deleteProduct) // DELETE /admin/products/{id}
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.fail(w, err, "could not load products")
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) listFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.FeaturedProducts(r.Context())
	if err != nil {
		h.fail(w, err, "could not load featured products")
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, apperr.Validation("", apperr.ReasonInvalid, "request body must be a JSON object"), "")
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.fail(w, err, "could not create product")
		return
	}
	h.log.Info("product created", zap.String("id", p.ID), zap.String("category", p.Category))
	respond(w, http.StatusCreated, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.fail(w, err, "could not delete product")
		return
	}
	h.log.Info("product deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error, fallback string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(fallback, zap.Error(err))
	}
	respond(w, status, apperr.Body(err, fallback))
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
