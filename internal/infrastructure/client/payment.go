package client

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
)

type paymentRequest struct {
	OrderID     int64        `json:"orderId"`
	Amount      int64        `json:"amount"`
	PaymentMode payment.Mode `json:"paymentMode"`
}

// PaymentClient calls the payment service. Every failure, including transport
// errors, is reported as a failed Result.
type PaymentClient struct {
	base
}

var _ payment.Processor = (*PaymentClient)(nil)

func NewPaymentClient(baseURL string, timeout time.Duration, hc *http.Client) *PaymentClient {
	return &PaymentClient{base: newBase(baseURL, timeout, hc)}
}

func (c *PaymentClient) Pay(ctx context.Context, req payment.Request) payment.Result {
	if !req.Mode.Valid() {
		return payment.Failed(payment.ReasonInvalidRequest)
	}
	body := paymentRequest{OrderID: req.OrderID, Amount: req.Amount, PaymentMode: req.Mode}
	if err := c.doJSON(ctx, http.MethodPost, "/payment", body, nil); err != nil {
		return payment.Failed(classify(err))
	}
	return payment.Succeeded()
}

func classify(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		if se.StatusCode == http.StatusBadRequest {
			return payment.ReasonInvalidRequest
		}
		return payment.ReasonDeclined
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return payment.ReasonTimeout
	default:
		var te interface{ Timeout() bool }
		if errors.As(err, &te) && te.Timeout() {
			return payment.ReasonTimeout
		}
		return payment.ReasonTransportError
	}
}
