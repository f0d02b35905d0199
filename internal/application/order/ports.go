package order

import (
	"context"
	"time"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domoutbox "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/outbox"
	domainPayment "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/domain/product"
)

// InventoryPort reduces stock for a product. It has no payload beyond
// success or failure.
type InventoryPort interface {
	Reserve(ctx context.Context, productID, quantity int64) error
}

type PaymentPort interface {
	domainPayment.Processor
}

// ProductCatalog is the read-only product-information collaborator.
type ProductCatalog interface {
	Product(ctx context.Context, productID int64) (product.Product, error)
}

// Deps is built once at process start and handed to the use case
// constructors. Publisher and Clock are optional.
type Deps struct {
	Orders    domain.Repository
	Inventory InventoryPort
	Payments  PaymentPort
	Products  ProductCatalog
	Publisher domoutbox.Publisher
	Clock     func() time.Time
}

func (d Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}
