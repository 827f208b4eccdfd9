package http

import (
	"encoding/json"
	"net/http"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/payments/app"
)

// Handler exposes HTTP endpoints for payment operations, including the
// gateway's settlement webhook.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the payment handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /payments/create", h.createPayment)
	mux.HandleFunc("GET /payments/{paymentId}", h.getPayment)
	mux.HandleFunc("GET /payments/order/{orderId}", h.getOrderPayment)
	mux.HandleFunc("POST /webhooks/payment", h.handleWebhook)
}

type createPaymentRequest struct {
	OrderID string `json:"orderId"`
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var payload createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperr.Write(w, r, apperr.BadRequest("invalid JSON payload"))
		return
	}

	correlationID, err := h.service.InitiatePayment(r.Context(), payload.OrderID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	payment, err := h.service.PaymentByCorrelationID(r.Context(), correlationID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.GetPayment(r.Context(), r.PathValue("paymentId"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload app.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperr.Write(w, r, apperr.BadRequest("invalid JSON payload"))
		return
	}

	if err := h.service.ProcessWebhook(r.Context(), payload); err != nil {
		apperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *Handler) getOrderPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.PaymentByOrder(r.Context(), r.PathValue("orderId"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
