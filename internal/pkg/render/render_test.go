package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/common/apperr"
	"storefront/internal/pkg/common/paging"
	"storefront/internal/pkg/listquery"
	"storefront/internal/pkg/model"
)

var sampleOrders = []model.Order{
	{ID: "o001", Status: "Delivered", Fulfillment: "Delivered", Total: 1250,
		Items: []model.OrderItem{{ProductName: "Saree 05", Size: "M", Quantity: 2}}},
	{ID: "o002", Status: "in process", Fulfillment: "inprocess", Total: 600,
		Items: []model.OrderItem{{ProductName: "Kurta 01", Quantity: 1}, {ProductName: "Kurta 02", Quantity: 1}}},
}

func state(t *testing.T, status listquery.Status, items []model.Order, p paging.Pagination, err error) listquery.QueryState[model.Order] {
	t.Helper()
	snap, serr := listquery.NewSnapshot("orders", max(p.CurrentPage, 1), 10, "", nil)
	require.NoError(t, serr)
	st := listquery.QueryState[model.Order]{Status: status, Snapshot: snap, Err: err}
	if items != nil {
		st.Data = &listquery.PageResult[model.Order]{Items: items, Pagination: p}
	}
	return st
}

func render(t *testing.T, st listquery.QueryState[model.Order]) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Orders.Render(New(&buf), st))
	return buf.String()
}

func TestRenderIdle(t *testing.T) {
	assert.Empty(t, render(t, listquery.QueryState[model.Order]{}))
}

func TestRenderLoadingSkeleton(t *testing.T) {
	out := render(t, state(t, listquery.StatusLoading, nil, paging.Pagination{}, nil))
	assert.Contains(t, out, "ORDER")
	assert.Contains(t, out, "FULFILLMENT")
	assert.Contains(t, out, "░░░")
	assert.Contains(t, out, "Loading orders...")
}

func TestRenderEmpty(t *testing.T) {
	out := render(t, state(t, listquery.StatusSuccess, []model.Order{}, paging.Pagination{CurrentPage: 1, ItemsPerPage: 10}, nil))
	assert.Equal(t, "No orders found\n", out)
}

func TestRenderRowsAndNavigation(t *testing.T) {
	out := render(t, state(t, listquery.StatusSuccess, sampleOrders,
		paging.Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 23, ItemsPerPage: 10}, nil))

	assert.Contains(t, out, "Saree 05")
	assert.Contains(t, out, "Kurta 01 (+1 more)")
	assert.Contains(t, out, "₹1250.00")
	assert.Contains(t, out, "Write A Review")
	assert.Contains(t, out, "Cancel Order")
	assert.Contains(t, out, "Page 1 of 3")
	assert.Contains(t, out, "Previous (disabled)")
	assert.NotContains(t, out, "Next (disabled)")
	assert.Contains(t, out, "23 orders")
}

func TestRenderSinglePageHidesControls(t *testing.T) {
	out := render(t, state(t, listquery.StatusSuccess, sampleOrders,
		paging.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 2, ItemsPerPage: 10}, nil))
	assert.NotContains(t, out, "Page ")
	assert.Contains(t, out, "2 orders")
}

func TestRenderError(t *testing.T) {
	err := apperr.NewNetwork("list orders", errors.New("dial tcp: connection refused"))
	out := render(t, state(t, listquery.StatusError, nil, paging.Pagination{}, err))
	assert.Contains(t, out, "Could not load orders: network request failed")
	assert.Contains(t, out, "Type :refresh to retry.")
	assert.NotContains(t, out, "ORDER")

	kept := render(t, state(t, listquery.StatusError, sampleOrders,
		paging.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 2, ItemsPerPage: 10}, errors.New("timeout")))
	assert.Contains(t, kept, "Could not load orders: timeout")
	assert.Contains(t, kept, "Showing previous results:")
	assert.Contains(t, kept, "o002")
}

func TestCategoryTone(t *testing.T) {
	assert.Equal(t, ToneGood, CategoryTone(model.ClassifyStatus("Delivered")))
	assert.Equal(t, ToneWarn, CategoryTone(model.ClassifyStatus("inprocess")))
	assert.Equal(t, ToneBad, CategoryTone(model.ClassifyStatus("canceled")))
	assert.Equal(t, ToneNone, CategoryTone(model.ClassifyStatus("weird")))
}

func TestOverviewCards(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	require.NoError(t, p.Dashboard(model.DashboardOverview{TotalProducts: 24, Revenue: 1234.5, Growth: "+12.5%", UsersCount: 3}))
	require.NoError(t, p.InventoryOverview(model.InventoryOverview{LowStockItems: 2, OutOfStock: 1, RestockAlerts: 3}))

	out := buf.String()
	assert.Contains(t, out, "Dashboard")
	assert.Contains(t, out, "₹1234.50")
	assert.Contains(t, out, "Inventory alerts")
	assert.Contains(t, out, "Restock alerts:")
}
