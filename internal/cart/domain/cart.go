package domain

import (
	"errors"
	"strings"
	"time"
)

// Item is a single cart line. A user holds at most one line per product;
// adding the same product again merges quantities.
type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures the line adheres to cart constraints.
func (i Item) Validate() error {
	if strings.TrimSpace(i.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(i.ProductID) == "" {
		return errors.New("product_id is required")
	}
	if i.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	return nil
}
