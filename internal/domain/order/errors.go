// internal/domain/order/errors.go
package order

import (
	"errors"
	"fmt"
	"time"
)

// Guard rejections. These are surfaced to the caller immediately and never
// retried automatically.
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrAlreadyInFlight  = errors.New("an order submission is already in progress")
	ErrTooSoon          = errors.New("please wait a moment before submitting again")
	ErrDuplicateContent = errors.New("an identical order was submitted moments ago")
)

// RateLimitedError rejects a submission until the cooldown deadline passes.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many order attempts, retry in %d seconds", int(e.RetryAfter.Seconds()+0.5))
}

// ValidationError reports malformed line data detected locally before any
// network call. The whole submission aborts; there is no partial submission.
type ValidationError struct {
	Line   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order line %q: %s", e.Line, e.Reason)
}

// TransportError means no usable response was received from the order service.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("order service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is a 4xx/5xx response with a body from the order service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("order service returned %d: %s", e.StatusCode, e.Message)
}
