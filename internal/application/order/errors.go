package order

import (
	"errors"
	"fmt"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
)

var (
	ErrNotFound   = domain.ErrNotFound
	ErrValidation = errors.New("order: validation failed")
	// ErrInventoryUnavailable wraps any stock reservation failure. It has no
	// dedicated status code at the edge, unlike payment failures which end up
	// as PAYMENT_FAILED orders.
	ErrInventoryUnavailable = errors.New("order: inventory reservation failed")
	ErrRepository           = errors.New("order: repository failure")
	ErrProductLookup        = errors.New("order: product lookup failed")
)

// NotFoundError reports an unknown order identifier. It matches ErrNotFound.
type NotFoundError struct {
	OrderID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Order not found for the order Id %d", e.OrderID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}

func newValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
