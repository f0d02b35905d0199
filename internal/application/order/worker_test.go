package order

import (
	"context"
	"sync"
	"testing"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domoutbox "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/outbox"
	domainPayment "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
)

type syncSubscriber struct {
	handlers map[string][]domoutbox.Handler
}

func (s *syncSubscriber) Subscribe(name string, h domoutbox.Handler) {
	if s.handlers == nil {
		s.handlers = map[string][]domoutbox.Handler{}
	}
	s.handlers[name] = append(s.handlers[name], h)
}

func (s *syncSubscriber) Publish(ctx context.Context, e domoutbox.Event) error {
	for _, h := range s.handlers[e.EventName()] {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

type recordingCounter struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (c *recordingCounter) Add(delta float64, labels ...observability.Label) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]float64{}
	}
	for _, l := range labels {
		if l.Key == "status" {
			c.counts[l.Value] += delta
		}
	}
}

type outcomeMetrics struct {
	outcomes *recordingCounter
}

func (m outcomeMetrics) Counter(name observability.MetricKey) observability.Counter {
	if name == observability.MOrderOutcomes {
		return m.outcomes
	}
	return observability.NopCounter()
}

func (outcomeMetrics) Histogram(observability.MetricKey) observability.Histogram {
	return observability.NopHistogram()
}

type testObservability struct {
	metrics observability.Metrics
}

func (testObservability) Tracer() observability.Tracer     { return observability.NopTracer() }
func (testObservability) Logger() observability.Logger     { return observability.NopLogger() }
func (o testObservability) Metrics() observability.Metrics { return o.metrics }

func TestOutcomeWorker_CountsPlacementOutcomes(t *testing.T) {
	bus := &syncSubscriber{}
	counter := &recordingCounter{}
	w := NewOutcomeWorker(bus, testObservability{metrics: outcomeMetrics{outcomes: counter}})
	w.Start()

	fx := newFixture()
	deps := fx.deps()
	deps.Publisher = bus
	uc := NewPlaceOrderUseCase(deps, nil)

	ctx := context.Background()
	in := PlaceOrderInput{ProductID: 10, TotalAmount: 500, Quantity: 2, PaymentMode: domainPayment.ModeCard}
	if _, err := uc.Execute(ctx, in); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	fx.payments.result = domainPayment.Failed(domainPayment.ReasonDeclined)
	if _, err := uc.Execute(ctx, in); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := counter.counts["PLACED"]; got != 1 {
		t.Fatalf("PLACED count = %v, want 1", got)
	}
	if got := counter.counts["PAYMENT_FAILED"]; got != 1 {
		t.Fatalf("PAYMENT_FAILED count = %v, want 1", got)
	}
}

type otherEvent struct{}

func (otherEvent) EventName() string { return domain.EventOrderPlaced }

func TestOutcomeWorker_IgnoresForeignPayloads(t *testing.T) {
	bus := &syncSubscriber{}
	counter := &recordingCounter{}
	NewOutcomeWorker(bus, testObservability{metrics: outcomeMetrics{outcomes: counter}}).Start()

	if err := bus.Publish(context.Background(), otherEvent{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(counter.counts) != 0 {
		t.Fatalf("foreign payload must not be counted: %v", counter.counts)
	}
}

func TestOutcomeWorker_NilSubscriber(t *testing.T) {
	NewOutcomeWorker(nil, nil).Start()
}
