package order

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrInvalidProduct         = errors.New("order: product id must be greater than zero")
	ErrInvalidQuantity        = errors.New("order: quantity must be greater than zero")
	ErrInvalidAmount          = errors.New("order: amount must be zero or greater")
	ErrInvalidStatus          = errors.New("order: unknown status")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
)

// Status is the closed set of order lifecycle states. The zero value is not a
// valid status.
type Status uint8

const (
	StatusCreated Status = iota + 1
	StatusPlaced
	StatusPaymentFailed
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "CREATED"
	case StatusPlaced:
		return "PLACED"
	case StatusPaymentFailed:
		return "PAYMENT_FAILED"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

func (s Status) Valid() bool {
	return s >= StatusCreated && s <= StatusPaymentFailed
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusPlaced || s == StatusPaymentFailed
}

func ParseStatus(v string) (Status, error) {
	switch v {
	case "CREATED":
		return StatusCreated, nil
	case "PLACED":
		return StatusPlaced, nil
	case "PAYMENT_FAILED":
		return StatusPaymentFailed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Order is a single-product purchase. ID is assigned by the Repository on
// Create; callers never choose it.
type Order struct {
	ID        int64
	ProductID int64
	Quantity  int64
	Amount    int64
	Status    Status
	OrderDate time.Time
}

// New returns an unsaved order in StatusCreated.
func New(productID, quantity, amount int64, orderDate time.Time) (*Order, error) {
	if productID <= 0 {
		return nil, ErrInvalidProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	return &Order{
		ProductID: productID,
		Quantity:  quantity,
		Amount:    amount,
		Status:    StatusCreated,
		OrderDate: orderDate.UTC(),
	}, nil
}

func (o *Order) PaymentSucceeded() error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.OnPaymentSucceeded() })
}

func (o *Order) PaymentFailed() error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.OnPaymentFailed() })
}

func (o *Order) transition(apply func(OrderState) (OrderState, error)) error {
	current, err := stateOf(o.Status)
	if err != nil {
		return err
	}
	next, err := apply(current)
	if err != nil {
		return fmt.Errorf("%w: from %s", err, o.Status)
	}
	o.Status = next.Status()
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}
