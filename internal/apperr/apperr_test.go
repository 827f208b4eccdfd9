package apperr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkovacevic/storefront/internal/apperr"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFound("Order", "id", "order-1"), http.StatusNotFound},
		{"bad request", apperr.BadRequest("userId is required"), http.StatusBadRequest},
		{"insufficient stock", apperr.InsufficientStock("prod-1", "Widget", 5, 2), http.StatusBadRequest},
		{"invalid order state", apperr.InvalidOrderState("order-1", "PAID", "order is in a terminal state"), http.StatusBadRequest},
		{"validation", apperr.Validation(apperr.FieldError{Field: "quantity", Message: "must be positive"}), http.StatusBadRequest},
		{"payment processing", apperr.PaymentProcessing("gateway unavailable", nil), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("load order: %w", apperr.NotFound("Order", "id", "order-1")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTypeChecks(t *testing.T) {
	wrapped := fmt.Errorf("reserve: %w", apperr.InsufficientStock("prod-1", "Widget", 5, 2))
	if !apperr.IsInsufficientStock(wrapped) {
		t.Error("IsInsufficientStock must see through wrapping")
	}
	if apperr.IsNotFound(wrapped) {
		t.Error("IsNotFound must not match an insufficient stock error")
	}
}

func TestWrite(t *testing.T) {
	t.Run("classified error keeps its message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/order-1", nil)

		apperr.Write(rec, req, apperr.NotFound("Order", "id", "order-1"))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}

		var resp apperr.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != http.StatusNotFound {
			t.Errorf("body status = %d, want %d", resp.Status, http.StatusNotFound)
		}
		if resp.Message != "Order not found with id: order-1" {
			t.Errorf("message = %q", resp.Message)
		}
		if resp.Path != "/orders/order-1" {
			t.Errorf("path = %q", resp.Path)
		}
		if resp.Timestamp.IsZero() {
			t.Error("timestamp must be set")
		}
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)

		apperr.Write(rec, req, errors.New("pq: connection refused"))

		var resp apperr.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", resp.Status)
		}
		if resp.Message != "An unexpected error occurred" {
			t.Errorf("message = %q, internal detail must not leak", resp.Message)
		}
	})

	t.Run("validation errors carry field details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cart", nil)

		apperr.Write(rec, req, apperr.Validation(
			apperr.FieldError{Field: "quantity", Message: "must be positive"},
		))

		var resp apperr.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.FieldErrors) != 1 || resp.FieldErrors[0].Field != "quantity" {
			t.Errorf("fieldErrors = %+v", resp.FieldErrors)
		}
	})
}
