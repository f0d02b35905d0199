package order

import (
	"context"
	"errors"
	"testing"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domainPayment "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/domain/product"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/memory"
	paymentsim "github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/payment"
)

func newInProcessDeps(t *testing.T, successRate float64) (Deps, *memory.Catalog) {
	t.Helper()
	catalog, err := memory.NewCatalog(product.Product{ID: 10, Name: "Keyboard", Price: 250, Quantity: 100})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return Deps{
		Orders:    memory.NewOrderRepository(),
		Inventory: catalog,
		Payments:  paymentsim.NewSimulator(successRate, nil),
		Products:  catalog,
	}, catalog
}

func TestPlacementFlow_PlaceThenReadDetails(t *testing.T) {
	ctx := context.Background()
	deps, catalog := newInProcessDeps(t, 1)
	place := NewPlaceOrderUseCase(deps, nil)
	details := NewGetOrderDetailsUseCase(deps, nil)

	res, err := place.Execute(ctx, PlaceOrderInput{
		ProductID:   10,
		TotalAmount: 500,
		Quantity:    2,
		PaymentMode: domainPayment.ModeCard,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if res.OrderID != 1 || res.Status != domain.StatusPlaced {
		t.Fatalf("unexpected placement result: %+v", res)
	}

	view, err := details.Execute(ctx, res.OrderID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if view.OrderID != res.OrderID || view.Status != domain.StatusPlaced || view.Amount != 500 {
		t.Fatalf("unexpected view: %+v", view)
	}
	want := product.Snapshot{ProductID: 10, Name: "Keyboard", Price: 250, Quantity: 2}
	if view.Product != want {
		t.Fatalf("snapshot = %+v, want %+v", view.Product, want)
	}

	p, err := catalog.Product(ctx, 10)
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if p.Quantity != 98 {
		t.Fatalf("stock = %d, want 98", p.Quantity)
	}

	var nf *NotFoundError
	if _, err := details.Execute(ctx, 999); !errors.As(err, &nf) || nf.OrderID != 999 {
		t.Fatalf("expected NotFoundError for 999, got %v", err)
	}
}

func TestPlacementFlow_DeclinedPaymentIsStored(t *testing.T) {
	ctx := context.Background()
	deps, catalog := newInProcessDeps(t, 0)
	place := NewPlaceOrderUseCase(deps, nil)
	details := NewGetOrderDetailsUseCase(deps, nil)

	res, err := place.Execute(ctx, PlaceOrderInput{ProductID: 10, TotalAmount: 500, Quantity: 2, PaymentMode: domainPayment.ModeCash})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if res.Status != domain.StatusPaymentFailed || res.PaymentFailureReason != domainPayment.ReasonDeclined {
		t.Fatalf("unexpected placement result: %+v", res)
	}

	view, err := details.Execute(ctx, res.OrderID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if view.Status != domain.StatusPaymentFailed {
		t.Fatalf("stored status = %s, want PAYMENT_FAILED", view.Status)
	}

	// stock stays reserved after a decline
	if p, _ := catalog.Product(ctx, 10); p.Quantity != 98 {
		t.Fatalf("stock = %d, want 98", p.Quantity)
	}
}

func TestPlacementFlow_InsufficientStockCreatesNoOrder(t *testing.T) {
	ctx := context.Background()
	deps, _ := newInProcessDeps(t, 1)
	place := NewPlaceOrderUseCase(deps, nil)

	_, err := place.Execute(ctx, PlaceOrderInput{ProductID: 10, TotalAmount: 500, Quantity: 101, PaymentMode: domainPayment.ModeCard})
	if !errors.Is(err, ErrInventoryUnavailable) {
		t.Fatalf("expected ErrInventoryUnavailable, got %v", err)
	}
	if _, err := deps.Orders.FindByID(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("no order expected, got %v", err)
	}
}
