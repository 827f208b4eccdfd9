package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/orders/app"
	"github.com/dkovacevic/storefront/internal/orders/ports"
)

// Handler exposes HTTP endpoints for order operations.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders/{orderId}", h.getOrder)
	mux.HandleFunc("GET /orders/user/{userId}", h.listUserOrders)
	mux.HandleFunc("POST /orders/{orderId}/cancel", h.cancelOrder)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Placement is retry-safe when the client supplies an Idempotency-Key:
	// a repeated key replays the recorded response instead of placing a
	// second order.
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey != "" {
		stored, err := h.service.GetIdempotentResponse(ctx, idemKey)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		if stored != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(stored.StatusCode)
			_, _ = w.Write(stored.Body)
			return
		}
	}

	var payload app.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperr.Write(w, r, apperr.BadRequest("invalid JSON payload"))
		return
	}

	order, err := h.service.CreateOrder(ctx, payload)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	body, err := json.Marshal(order)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	if idemKey != "" {
		stored := ports.StoredResponse{
			StatusCode: http.StatusCreated,
			Body:       body,
			OrderID:    order.ID,
		}
		if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
			apperr.Write(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("orderId")
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, mapNotFound(err, id))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListUserOrders(r.Context(), r.PathValue("userId"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("orderId")
	order, err := h.service.CancelOrder(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, mapNotFound(err, id))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// mapNotFound translates the repository sentinel into the shared error type.
func mapNotFound(err error, id string) error {
	if errors.Is(err, ports.ErrNotFound) {
		return apperr.NotFound("order", "id", id)
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
