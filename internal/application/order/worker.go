package order

import (
	"context"
	"time"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domoutbox "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/outbox"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	workerService   = "order-worker"
	useCaseOutcome  = "order.worker.outcome"
	outcomeIgnored  = "ignored"
	outcomeRecorded = "success"
)

// OutcomeWorker tallies terminal order outcomes published on the outbox bus.
type OutcomeWorker struct {
	subscriber domoutbox.Subscriber
	tracer     observability.Tracer

	log            observability.Logger
	reqCounter     observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram   observability.Histogram // usecase_duration_seconds{use_case}
	outcomeCounter observability.Counter   // order_outcomes_total{status}
}

func NewOutcomeWorker(subscriber domoutbox.Subscriber, tel observability.Observability) *OutcomeWorker {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()

	return &OutcomeWorker{
		subscriber:     subscriber,
		tracer:         tel.Tracer(),
		log:            tel.Logger().With(observability.F("service", workerService)),
		reqCounter:     metrics.Counter(observability.MUsecaseRequests),
		durHistogram:   metrics.Histogram(observability.MUsecaseDuration),
		outcomeCounter: metrics.Counter(observability.MOrderOutcomes),
	}
}

func (w *OutcomeWorker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(domain.EventOrderPlaced, w.handleOutcome)
	w.subscriber.Subscribe(domain.EventOrderPaymentFailed, w.handleOutcome)
}

func (w *OutcomeWorker) handleOutcome(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domain.OutcomeEvent)
	if !ok {
		w.reqCounter.Add(1,
			observability.L("use_case", useCaseOutcome),
			observability.L("outcome", outcomeIgnored),
		)
		return nil
	}

	ctx, span := w.tracer.Start(ctx, spanPrefix+"OrderOutcome",
		attribute.String("use_case", useCaseOutcome),
		attribute.String("event", e.EventName()),
		attribute.Int64("order.id", evt.OrderID),
	)
	start := time.Now()

	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("use_case", useCaseOutcome),
		observability.F("event", e.EventName()),
	)

	w.outcomeCounter.Add(1, observability.L("status", evt.Status.String()))

	fields := []observability.Field{
		observability.F("order_id", evt.OrderID),
		observability.F("product_id", evt.ProductID),
		observability.F("order_status", evt.Status.String()),
		observability.F("amount", evt.Amount),
	}
	if evt.Reason != "" {
		fields = append(fields, observability.F("reason", evt.Reason))
	}

	lat := time.Since(start).Seconds()
	w.reqCounter.Add(1,
		observability.L("use_case", useCaseOutcome),
		observability.L("outcome", outcomeRecorded),
	)
	w.durHistogram.Observe(lat, observability.L("use_case", useCaseOutcome))
	logger.Info("order_outcome_recorded", append(fields, observability.F("latency_seconds", lat))...)

	span.SetStatus(codes.Ok, "OK")
	span.End()
	return nil
}
