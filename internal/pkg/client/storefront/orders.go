package storefront

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/pkg/listquery"
	"storefront/internal/pkg/model"
)

// OrdersAPI covers the customer order history.
type OrdersAPI struct{ c *Client }

// List fetches one page of orders. Its signature matches
// listquery.FetchFunc so it can back an Executor directly.
func (a *OrdersAPI) List(ctx context.Context, snap listquery.Snapshot) (listquery.PageResult[model.Order], error) {
	return fetchPage[model.Order](ctx, a.c, "list orders", "/api/orders", "orders", snap)
}

// Get fetches a single order.
func (a *OrdersAPI) Get(ctx context.Context, id string) (*model.Order, error) {
	var resp struct {
		Order *model.Order `json:"order"`
	}
	if err := a.c.doJSON(ctx, "get order", http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, notFound("get order", id)
	}
	return resp.Order, nil
}
