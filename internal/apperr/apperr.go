// Package apperr defines the error taxonomy shared across the service and its
// mapping onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a referenced resource does not exist.
type NotFoundError struct {
	Resource string
	Field    string
	Value    string
}

func NotFound(resource, field, value string) *NotFoundError {
	return &NotFoundError{Resource: resource, Field: field, Value: value}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %s", e.Resource, e.Field, e.Value)
}

// BadRequestError indicates the request cannot be served as submitted.
type BadRequestError struct {
	Message string
}

func BadRequest(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// InsufficientStockError carries enough detail for the client to explain which
// product fell short.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func InsufficientStock(productID, productName string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   productID,
		ProductName: productName,
		Requested:   requested,
		Available:   available,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (%s): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

// InvalidOrderStateError rejects a transition attempted from the wrong state.
type InvalidOrderStateError struct {
	OrderID      string
	CurrentState string
	Message      string
}

func InvalidOrderState(orderID, currentState, message string) *InvalidOrderStateError {
	return &InvalidOrderStateError{OrderID: orderID, CurrentState: currentState, Message: message}
}

func (e *InvalidOrderStateError) Error() string {
	return fmt.Sprintf("order %s is in state %s: %s", e.OrderID, e.CurrentState, e.Message)
}

// PaymentProcessingError wraps failures while talking to the payment gateway.
type PaymentProcessingError struct {
	Message string
	Err     error
}

func PaymentProcessing(message string, err error) *PaymentProcessingError {
	return &PaymentProcessingError{Message: message, Err: err}
}

func (e *PaymentProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PaymentProcessingError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsBadRequest(err error) bool {
	var target *BadRequestError
	return errors.As(err, &target)
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

func IsInvalidOrderState(err error) bool {
	var target *InvalidOrderStateError
	return errors.As(err, &target)
}
