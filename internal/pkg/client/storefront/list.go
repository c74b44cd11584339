package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/pkg/common/apperr"
	"storefront/internal/pkg/common/paging"
	"storefront/internal/pkg/listquery"
)

// Resource names double as cache namespaces for listquery snapshots.
const (
	ResourceOrders    = "orders"
	ResourceProducts  = "products"
	ResourceInventory = "inventory"
)

// fetchPage GETs a paginated list endpoint. The response carries the rows
// under itemsKey (falling back to "items") next to a pagination block:
//
//	{"success": true, "orders": [...], "pagination": {...}}
func fetchPage[T any](ctx context.Context, c *Client, op, path, itemsKey string, snap listquery.Snapshot) (listquery.PageResult[T], error) {
	if q := snap.Values().Encode(); q != "" {
		path += "?" + q
	}
	var raw map[string]json.RawMessage
	if err := c.doJSON(ctx, op, http.MethodGet, path, nil, &raw); err != nil {
		return listquery.PageResult[T]{}, err
	}

	if s, ok := raw["success"]; ok {
		var success bool
		if json.Unmarshal(s, &success) == nil && !success {
			msg := "request was not successful"
			for _, k := range []string{"message", "error"} {
				var s string
				if json.Unmarshal(raw[k], &s) == nil && s != "" {
					msg = s
					break
				}
			}
			return listquery.PageResult[T]{}, apperr.NewUnknown(op, errors.New(msg))
		}
	}

	items := make([]T, 0)
	rows, ok := raw[itemsKey]
	if !ok {
		rows, ok = raw["items"]
	}
	if ok && string(rows) != "null" {
		if err := json.Unmarshal(rows, &items); err != nil {
			return listquery.PageResult[T]{}, apperr.NewUnknown(op, fmt.Errorf("decoding %s: %w", itemsKey, err))
		}
	}

	var p paging.Pagination
	if pr, ok := raw["pagination"]; ok && string(pr) != "null" {
		if err := json.Unmarshal(pr, &p); err != nil {
			return listquery.PageResult[T]{}, apperr.NewUnknown(op, fmt.Errorf("decoding pagination: %w", err))
		}
	} else {
		// 没有分页信息时，按单页处理：所有行都在第 1 页
		p = paging.Pagination{
			CurrentPage:  min(1, len(items)),
			TotalPages:   paging.TotalPagesFor(len(items), len(items)),
			TotalItems:   len(items),
			ItemsPerPage: max(len(items), snap.PageSize()),
		}
	}
	return listquery.PageResult[T]{Items: items, Pagination: p}, nil
}
