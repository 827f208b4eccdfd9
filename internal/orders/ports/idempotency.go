package ports

import "context"

// StoredResponse is the recorded outcome of a completed order placement,
// replayed verbatim when the same Idempotency-Key is presented again.
type StoredResponse struct {
	StatusCode int
	Body       []byte
	OrderID    string
}

// IdempotencyStore makes order placement safe to retry: the first request
// under a key records its response, later requests replay it.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, response StoredResponse) error
}
