package postgres

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id          BIGSERIAL PRIMARY KEY,
	product_id  BIGINT      NOT NULL,
	quantity    BIGINT      NOT NULL,
	amount      BIGINT      NOT NULL,
	status      TEXT        NOT NULL,
	order_date  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Querier is the subset of *pgxpool.Pool the repository uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type OrderRepository struct {
	db Querier
}

var _ domain.Repository = (*OrderRepository)(nil)

func NewOrderRepository(db Querier) *OrderRepository {
	return &OrderRepository{db: db}
}

// EnsureSchema creates the orders table when it does not exist yet.
func EnsureSchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("postgres: order is required")
	}
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO orders(product_id, quantity, amount, status, order_date) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		order.ProductID, order.Quantity, order.Amount, order.Status.String(), order.OrderDate,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("postgres: insert order: %w", err)
	}
	order.ID = id
	return nil
}

// UpdateStatus moves a CREATED order to a terminal status. The guard lives in
// the WHERE clause so concurrent writers cannot both win.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	if err := domain.CheckTransition(domain.StatusCreated, status); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1 AND status=$3`,
		id, status.String(), domain.StatusCreated.String(),
	)
	if err != nil {
		return fmt.Errorf("postgres: update order %d: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("postgres: select order %d: %w", id, err)
	}
	return fmt.Errorf("postgres: order %d %s -> %s: %w", id, current, status, domain.ErrInvalidStateTransition)
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, product_id, quantity, amount, status, order_date FROM orders WHERE id=$1`, id,
	).Scan(&o.ID, &o.ProductID, &o.Quantity, &o.Amount, &status, &o.OrderDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: select order %d: %w", id, err)
	}

	if o.Status, err = domain.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("postgres: order %d: %w", id, err)
	}
	o.OrderDate = o.OrderDate.UTC()
	return &o, nil
}
