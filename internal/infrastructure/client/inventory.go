package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// InventoryClient reduces stock through the product service.
type InventoryClient struct {
	base
}

func NewInventoryClient(baseURL string, timeout time.Duration, hc *http.Client) *InventoryClient {
	return &InventoryClient{base: newBase(baseURL, timeout, hc)}
}

func (c *InventoryClient) Reserve(ctx context.Context, productID, quantity int64) error {
	q := url.Values{"quantity": {strconv.FormatInt(quantity, 10)}}
	path := fmt.Sprintf("/product/reduceQuantity/%d?%s", productID, q.Encode())
	if err := c.doJSON(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("reduce quantity for product %d: %w", productID, err)
	}
	return nil
}
