package payment

import (
	"errors"
	"fmt"
)

var ErrUnknownMode = errors.New("payment: unknown payment mode")

// Mode is the closed set of payment instruments accepted at placement.
type Mode uint8

const (
	ModeCash Mode = iota + 1
	ModePaypal
	ModeCard
	ModeDebitCard
	ModeCreditCard
	ModeApplePay
)

var modeNames = map[Mode]string{
	ModeCash:       "CASH",
	ModePaypal:     "PAYPAL",
	ModeCard:       "CARD",
	ModeDebitCard:  "DEBIT_CARD",
	ModeCreditCard: "CREDIT_CARD",
	ModeApplePay:   "APPLE_PAY",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

func ParseMode(v string) (Mode, error) {
	for m, name := range modeNames {
		if name == v {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, v)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Request is derived from a persisted order; it is never stored on its own.
type Request struct {
	OrderID int64
	Amount  int64
	Mode    Mode
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Failure reasons reported by processors.
const (
	ReasonDeclined       = "payment_declined"
	ReasonTimeout        = "payment_timeout"
	ReasonTransportError = "payment_transport_error"
	ReasonInvalidRequest = "payment_invalid_request"
)

// Result is the outcome of a payment attempt: Success, or Failure with a
// reason kept for diagnostics.
type Result struct {
	Status Status
	Reason string
}

func Succeeded() Result { return Result{Status: StatusSuccess} }

func Failed(reason string) Result {
	if reason == "" {
		reason = ReasonDeclined
	}
	return Result{Status: StatusFailed, Reason: reason}
}
