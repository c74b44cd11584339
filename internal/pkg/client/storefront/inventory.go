package storefront

import (
	"context"
	"net/http"

	"storefront/internal/pkg/listquery"
	"storefront/internal/pkg/model"
)

type InventoryAPI struct{ c *Client }

// List fetches one page of stock rows.
func (a *InventoryAPI) List(ctx context.Context, snap listquery.Snapshot) (listquery.PageResult[model.InventoryItem], error) {
	return fetchPage[model.InventoryItem](ctx, a.c, "list inventory", "/api/inventory", "items", snap)
}

// Overview returns the stock alert counters.
func (a *InventoryAPI) Overview(ctx context.Context) (*model.InventoryOverview, error) {
	var o model.InventoryOverview
	if err := a.c.doJSON(ctx, "inventory overview", http.MethodGet, "/api/inventory/overview", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
