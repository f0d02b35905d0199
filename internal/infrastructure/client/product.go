package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HacAtac/Ecom-Order-Microservice/internal/domain/product"
)

type productResponse struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
}

// ProductClient reads live product metadata.
type ProductClient struct {
	base
}

func NewProductClient(baseURL string, timeout time.Duration, hc *http.Client) *ProductClient {
	return &ProductClient{base: newBase(baseURL, timeout, hc)}
}

func (c *ProductClient) Product(ctx context.Context, productID int64) (product.Product, error) {
	var resp productResponse
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/product/%d", productID), nil, &resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return product.Product{}, fmt.Errorf("%w: %d", product.ErrNotFound, productID)
		}
		return product.Product{}, fmt.Errorf("get product %d: %w", productID, err)
	}

	id := resp.ProductID
	if id == 0 {
		id = productID
	}
	return product.Product{
		ID:       id,
		Name:     resp.ProductName,
		Price:    resp.Price,
		Quantity: resp.Quantity,
	}, nil
}
