package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/HacAtac/Ecom-Order-Microservice/internal/domain/inventory"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/domain/product"
)

type catalogEntry struct {
	name  string
	price int64
	stock *inventory.Item
}

// Catalog stands in for the product service when no PRODUCT_SERVICE_URL is
// configured. It serves both stock reservation and product metadata.
type Catalog struct {
	mu      sync.RWMutex
	entries map[int64]*catalogEntry
}

func NewCatalog(products ...product.Product) (*Catalog, error) {
	c := &Catalog{entries: make(map[int64]*catalogEntry, len(products))}
	for _, p := range products {
		if err := c.Put(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Put inserts or replaces a product; p.Quantity becomes the stock level.
func (c *Catalog) Put(p product.Product) error {
	if p.ID <= 0 {
		return fmt.Errorf("catalog: product id must be greater than zero, got %d", p.ID)
	}
	item, err := inventory.NewItem(p.ID, p.Quantity)
	if err != nil {
		return fmt.Errorf("catalog: product %d: %w", p.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[p.ID] = &catalogEntry{name: p.Name, price: p.Price, stock: item}
	return nil
}

func (c *Catalog) Reserve(ctx context.Context, productID, quantity int64) error {
	_ = ctx

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[productID]
	if !ok {
		return inventory.ErrNotFound
	}
	if err := entry.stock.Deduct(quantity); err != nil {
		return fmt.Errorf("product %d: %w", productID, err)
	}
	return nil
}

func (c *Catalog) Product(ctx context.Context, productID int64) (product.Product, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[productID]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return product.Product{
		ID:       productID,
		Name:     entry.name,
		Price:    entry.price,
		Quantity: entry.stock.Quantity,
	}, nil
}

// ParseCatalogSeed reads "id:name:price:stock" entries separated by commas.
// Blank input yields no products.
func ParseCatalogSeed(raw string) ([]product.Product, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var out []product.Product
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("catalog seed %q: want id:name:price:stock", entry)
		}

		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("catalog seed %q: id: %w", entry, err)
		}
		price, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("catalog seed %q: price: %w", entry, err)
		}
		stock, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("catalog seed %q: stock: %w", entry, err)
		}

		out = append(out, product.Product{
			ID:       id,
			Name:     strings.TrimSpace(parts[1]),
			Price:    price,
			Quantity: stock,
		})
	}
	return out, nil
}
