package product

import "errors"

var ErrNotFound = errors.New("product: not found")

// Product is the live view published by the product service. Quantity is the
// current stock level.
type Product struct {
	ID       int64
	Name     string
	Price    int64
	Quantity int64
}

// Snapshot describes a product as it was bought: the name and price are live,
// the quantity is the ordered amount.
type Snapshot struct {
	ProductID int64
	Name      string
	Price     int64
	Quantity  int64
}

func SnapshotOf(p Product, orderedQuantity int64) Snapshot {
	return Snapshot{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  orderedQuantity,
	}
}
