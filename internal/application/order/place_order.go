package order

import (
	"context"
	"fmt"
	"time"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domoutbox "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/outbox"
	domainPayment "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService      = "order-service"
	useCasePlaceOrder = "order.place"
	spanPrefix        = "UC."

	peerInventory    = "inventory"
	endpointReserve  = "reduce_quantity"
	peerPayment      = "payment"
	endpointPay      = "pay"
	peerOutbox       = "outbox"
	endpointOutcome  = "order.outcome"
	publishTimeout    = 300 * time.Millisecond
	completionTimeout = 30 * time.Second
	unknownPayStatus  = "payment_unknown_status"
)

type PlaceOrderInput struct {
	ProductID   int64
	TotalAmount int64
	Quantity    int64
	PaymentMode domainPayment.Mode
}

// PlaceOrderResult is returned whenever the order record exists, whatever the
// payment outcome. Status is PLACED or PAYMENT_FAILED.
type PlaceOrderResult struct {
	OrderID              int64
	Status               domain.Status
	PaymentFailureReason string
}

// PlaceOrderUseCase drives placement: reserve stock, persist the order as
// CREATED, attempt payment, persist the terminal status.
//
// Reserved stock is not released when payment fails. Orders whose process dies
// between Create and UpdateStatus stay CREATED.
type PlaceOrderUseCase struct {
	orders    domain.Repository
	inventory InventoryPort
	payments  PaymentPort
	publisher domoutbox.Publisher
	now       func() time.Time
	tracer    observability.Tracer

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewPlaceOrderUseCase(deps Deps, tel observability.Observability) *PlaceOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()

	return &PlaceOrderUseCase{
		orders:       deps.Orders,
		inventory:    deps.Inventory,
		payments:     deps.Payments,
		publisher:    deps.Publisher,
		now:          deps.now,
		tracer:       tel.Tracer(),
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// Execute performs the placement flow. An error means either the request was
// invalid, stock could not be reserved, or the order store failed; a declined
// payment is not an error.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderInput) (_ *PlaceOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCasePlaceOrder))

	ctx, span := uc.tracer.Start(ctx, spanPrefix+"PlaceOrder",
		attribute.String("use_case", useCasePlaceOrder),
		attribute.Int64("order.product_id", cmd.ProductID),
		attribute.Int64("order.quantity", cmd.Quantity),
		attribute.String("payment.mode", cmd.PaymentMode.String()),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	var (
		orderID       int64
		failureReason string
		publishErr    error
	)

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.reqCounter.Add(1,
			observability.L("use_case", useCasePlaceOrder),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat, observability.L("use_case", useCasePlaceOrder))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("product_id", cmd.ProductID),
			observability.F("quantity", cmd.Quantity),
		}
		if orderID != 0 {
			fields = append(fields, observability.F("order_id", orderID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if failureReason != "" {
			fields = append(fields, observability.F("payment_failure_reason", failureReason))
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("use_case_done", fields...)
	}()

	if verr := validatePlacement(cmd); verr != nil {
		outcome, statusText = "error", "VALIDATION_FAILED"
		return nil, verr
	}

	reserveStart := time.Now()
	if rerr := uc.inventory.Reserve(ctx, cmd.ProductID, cmd.Quantity); rerr != nil {
		uc.observeExternal(peerInventory, endpointReserve, "error", reserveStart)
		outcome, statusText = "error", "INVENTORY_UNAVAILABLE"
		return nil, fmt.Errorf("%w: %w", ErrInventoryUnavailable, rerr)
	}
	uc.observeExternal(peerInventory, endpointReserve, "success", reserveStart)
	span.AddEvent("inventory.reserved")

	// Stock is held from here on, so the caller going away must not strand
	// the order in CREATED or leave a reservation with no order.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completionTimeout)
	defer cancel()

	entity, derr := domain.New(cmd.ProductID, cmd.Quantity, cmd.TotalAmount, uc.now())
	if derr != nil {
		outcome, statusText = "error", "DOMAIN_CONSTRUCTION_FAILED"
		return nil, fmt.Errorf("order: construct: %w", derr)
	}
	if cerr := uc.orders.Create(wctx, entity); cerr != nil {
		outcome, statusText = "error", "REPO_CREATE_FAILED"
		logger.Warn("stock_reserved_without_order",
			observability.F("product_id", cmd.ProductID),
			observability.F("quantity", cmd.Quantity),
		)
		return nil, fmt.Errorf("%w: create: %v", ErrRepository, cerr)
	}
	orderID = entity.ID
	span.SetAttributes(attribute.Int64("order.id", orderID))
	span.AddEvent("order.created")

	result := uc.pay(wctx, domainPayment.Request{
		OrderID: entity.ID,
		Amount:  entity.Amount,
		Mode:    cmd.PaymentMode,
	})

	var terr error
	switch result.Status {
	case domainPayment.StatusSuccess:
		terr = entity.PaymentSucceeded()
	case domainPayment.StatusFailed:
		failureReason = result.Reason
		if failureReason == "" {
			failureReason = domainPayment.ReasonDeclined
		}
		terr = entity.PaymentFailed()
	default:
		failureReason = unknownPayStatus
		terr = entity.PaymentFailed()
	}
	if terr != nil {
		outcome, statusText = "error", "STATE_TRANSITION_FAILED"
		return nil, fmt.Errorf("order: payment outcome: %w", terr)
	}
	if failureReason != "" {
		statusText = "PAYMENT_FAILED"
		logger.Warn("payment_declined",
			observability.F("order_id", orderID),
			observability.F("reason", failureReason),
		)
	}

	if uerr := uc.orders.UpdateStatus(wctx, entity.ID, entity.Status); uerr != nil {
		outcome, statusText = "error", "REPO_UPDATE_FAILED"
		return nil, fmt.Errorf("%w: update status: %v", ErrRepository, uerr)
	}
	span.SetAttributes(attribute.String("order.status", entity.Status.String()))
	span.AddEvent("order.status_updated")

	publishErr = uc.publishOutcome(wctx, entity, failureReason)
	if publishErr != nil {
		span.RecordError(publishErr)
	}

	return &PlaceOrderResult{
		OrderID:              entity.ID,
		Status:               entity.Status,
		PaymentFailureReason: failureReason,
	}, nil
}

func (uc *PlaceOrderUseCase) pay(ctx context.Context, req domainPayment.Request) domainPayment.Result {
	start := time.Now()
	result := uc.payments.Pay(ctx, req)

	outcome := "success"
	if result.Status != domainPayment.StatusSuccess {
		outcome = "declined"
	}
	uc.observeExternal(peerPayment, endpointPay, outcome, start)
	return result
}

// publishOutcome is best-effort: a failed publish is reported but never
// changes the placement result.
func (uc *PlaceOrderUseCase) publishOutcome(ctx context.Context, entity *domain.Order, reason string) error {
	if uc.publisher == nil {
		return nil
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err := uc.publisher.Publish(pubCtx, domain.NewOutcomeEvent(entity, reason))
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	uc.observeExternal(peerOutbox, endpointOutcome, outcome, start)
	return err
}

func (uc *PlaceOrderUseCase) observeExternal(peer, endpoint, outcome string, start time.Time) {
	uc.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	uc.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
}

func validatePlacement(cmd PlaceOrderInput) error {
	switch {
	case cmd.ProductID <= 0:
		return newValidation("product id must be greater than zero")
	case cmd.Quantity <= 0:
		return newValidation("quantity must be greater than zero")
	case cmd.TotalAmount < 0:
		return newValidation("total amount must be zero or greater")
	case !cmd.PaymentMode.Valid():
		return newValidation("payment mode is required")
	}
	return nil
}
