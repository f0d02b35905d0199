package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/domain/product"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	useCaseOrderDetails = "order.details"
	peerProduct         = "product"
	endpointProduct     = "get_product"
)

// OrderView is the order joined with live product metadata.
type OrderView struct {
	OrderID   int64
	Status    domain.Status
	Amount    int64
	OrderDate time.Time
	Product   product.Snapshot
}

type GetOrderDetailsUseCase struct {
	orders   domain.Repository
	products ProductCatalog
	tracer   observability.Tracer

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewGetOrderDetailsUseCase(deps Deps, tel observability.Observability) *GetOrderDetailsUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()

	return &GetOrderDetailsUseCase{
		orders:       deps.Orders,
		products:     deps.Products,
		tracer:       tel.Tracer(),
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// Execute loads the order and joins it with the product's current name and
// price. The product service is not called for unknown orders.
func (uc *GetOrderDetailsUseCase) Execute(ctx context.Context, orderID int64) (_ *OrderView, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseOrderDetails),
		observability.F("order_id", orderID),
	)

	ctx, span := uc.tracer.Start(ctx, spanPrefix+"GetOrderDetails",
		attribute.String("use_case", useCaseOrderDetails),
		attribute.Int64("order.id", orderID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

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
			observability.L("use_case", useCaseOrderDetails),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat, observability.L("use_case", useCaseOrderDetails))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	entity, ferr := uc.orders.FindByID(ctx, orderID)
	if ferr != nil {
		if errors.Is(ferr, domain.ErrNotFound) {
			outcome, statusText = "not_found", "NOT_FOUND"
			return nil, &NotFoundError{OrderID: orderID}
		}
		outcome, statusText = "error", "REPO_READ_FAILED"
		return nil, wrapRepositoryError(ferr)
	}
	span.AddEvent("order.loaded")

	lookupStart := time.Now()
	p, perr := uc.products.Product(ctx, entity.ProductID)
	if perr != nil {
		uc.observeExternal("error", lookupStart)
		outcome, statusText = "error", "PRODUCT_LOOKUP_FAILED"
		return nil, fmt.Errorf("%w: product %d: %w", ErrProductLookup, entity.ProductID, perr)
	}
	uc.observeExternal("success", lookupStart)

	return &OrderView{
		OrderID:   entity.ID,
		Status:    entity.Status,
		Amount:    entity.Amount,
		OrderDate: entity.OrderDate,
		Product:   product.SnapshotOf(p, entity.Quantity),
	}, nil
}

func (uc *GetOrderDetailsUseCase) observeExternal(outcome string, start time.Time) {
	uc.extCounter.Add(1,
		observability.L("peer", peerProduct),
		observability.L("endpoint", endpointProduct),
		observability.L("outcome", outcome),
	)
	uc.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peerProduct),
		observability.L("endpoint", endpointProduct),
	)
}
