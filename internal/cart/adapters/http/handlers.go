package http

import (
	"encoding/json"
	"net/http"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/cart/app"
)

// Handler exposes HTTP endpoints for cart operations.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the cart handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /cart/add", h.addToCart)
	mux.HandleFunc("GET /cart/{userId}", h.listCart)
	mux.HandleFunc("DELETE /cart/{userId}/clear", h.clearCart)
	mux.HandleFunc("DELETE /cart/{userId}/item/{productId}", h.removeItem)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var payload app.AddToCartInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperr.Write(w, r, apperr.BadRequest("invalid JSON payload"))
		return
	}

	item, err := h.service.AddToCart(r.Context(), payload)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) listCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCart(r.Context(), r.PathValue("userId"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), r.PathValue("userId")); err != nil {
		apperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared successfully"})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	productID := r.PathValue("productId")

	if err := h.service.RemoveItem(r.Context(), userID, productID); err != nil {
		apperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart item removed successfully"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
