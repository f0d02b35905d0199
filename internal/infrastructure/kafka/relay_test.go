package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domoutbox "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/outbox"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type directSubscriber map[string][]domoutbox.Handler

func (s directSubscriber) Subscribe(name string, h domoutbox.Handler) { s[name] = append(s[name], h) }

func (s directSubscriber) publish(t *testing.T, e domoutbox.Event) error {
	t.Helper()
	hs := s[e.EventName()]
	if len(hs) == 0 {
		t.Fatalf("no subscriber for %s", e.EventName())
	}
	for _, h := range hs {
		if err := h(context.Background(), e); err != nil {
			return err
		}
	}
	return nil
}

func outcome(status domain.Status, reason string) domain.OutcomeEvent {
	return domain.OutcomeEvent{
		OrderID:    7,
		ProductID:  10,
		Quantity:   2,
		Amount:     500,
		Status:     status,
		Reason:     reason,
		OccurredAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRelay_ForwardsBothOutcomes(t *testing.T) {
	w := &fakeWriter{}
	sub := directSubscriber{}
	NewRelay(w, sub, nil).Start()

	if err := sub.publish(t, outcome(domain.StatusPlaced, "")); err != nil {
		t.Fatalf("placed: %v", err)
	}
	if err := sub.publish(t, outcome(domain.StatusPaymentFailed, "payment_declined")); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(w.msgs))
	}

	msg := w.msgs[1]
	if string(msg.Key) != "7" {
		t.Fatalf("key = %q, want 7", msg.Key)
	}
	var body map[string]any
	if err := json.Unmarshal(msg.Value, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "PAYMENT_FAILED" || body["reason"] != "payment_declined" || body["orderId"] != float64(7) {
		t.Fatalf("unexpected payload: %v", body)
	}
	if msg.Headers[0].Key != headerEvent || string(msg.Headers[0].Value) != domain.EventOrderPaymentFailed {
		t.Fatalf("unexpected headers: %v", msg.Headers)
	}
}

func TestRelay_WriteErrorIsReturned(t *testing.T) {
	boom := errors.New("broker down")
	sub := directSubscriber{}
	NewRelay(&fakeWriter{err: boom}, sub, nil).Start()

	if err := sub.publish(t, outcome(domain.StatusPlaced, "")); !errors.Is(err, boom) {
		t.Fatalf("expected broker error, got %v", err)
	}
}

func TestRelay_Close(t *testing.T) {
	w := &fakeWriter{}
	if err := NewRelay(w, directSubscriber{}, nil).Close(); err != nil || !w.closed {
		t.Fatalf("close: err=%v closed=%v", err, w.closed)
	}
}

func TestParseBrokers(t *testing.T) {
	got := ParseBrokers(" a:9092, ,b:9092 ")
	if want := []string{"a:9092", "b:9092"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := ParseBrokers(""); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
