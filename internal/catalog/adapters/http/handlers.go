package http

import (
	"encoding/json"
	"net/http"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/catalog/app"
)

// Handler exposes HTTP endpoints for the product catalog.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the catalog handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /products", h.createProduct)
	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("GET /products/{productId}", h.getProduct)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload app.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperr.Write(w, r, apperr.BadRequest("invalid JSON payload"))
		return
	}

	product, err := h.service.CreateProduct(r.Context(), payload)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), r.PathValue("productId"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
