package order

import "context"

// Repository owns order rows. Create assigns o.ID; FindByID returns
// ErrNotFound for unknown identifiers.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	FindByID(ctx context.Context, id int64) (*Order, error)
}
