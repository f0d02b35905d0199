package order

import "time"

const (
	EventOrderPlaced        = "order.placed"
	EventOrderPaymentFailed = "order.payment_failed"
)

// OutcomeEvent is emitted once an order reaches a terminal status. Reason is
// only set for payment failures; it is never stored on the order itself.
type OutcomeEvent struct {
	OrderID    int64     `json:"orderId"`
	ProductID  int64     `json:"productId"`
	Quantity   int64     `json:"quantity"`
	Amount     int64     `json:"amount"`
	Status     Status    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (e OutcomeEvent) EventName() string {
	if e.Status == StatusPlaced {
		return EventOrderPlaced
	}
	return EventOrderPaymentFailed
}

func NewOutcomeEvent(o *Order, reason string) OutcomeEvent {
	return OutcomeEvent{
		OrderID:    o.ID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		Amount:     o.Amount,
		Status:     o.Status,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
