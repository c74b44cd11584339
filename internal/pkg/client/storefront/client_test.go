package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/config"
	"storefront/internal/pkg/apitest"
	"storefront/internal/pkg/common/apperr"
	"storefront/internal/pkg/common/paging"
	"storefront/internal/pkg/listquery"
	"storefront/internal/pkg/model"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(config.API{BaseURL: baseURL, Token: "tok", Timeout: "5s"})
	require.NoError(t, err)
	return c
}

func snapshot(t *testing.T, resource string, page, size int, search string, filters map[string]any) listquery.Snapshot {
	t.Helper()
	s, err := listquery.NewSnapshot(resource, page, size, search, filters)
	require.NoError(t, err)
	return s
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(config.API{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
	_, err = New(config.API{BaseURL: "://"})
	assert.Error(t, err)
}

func TestOrdersList(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL)

	res, err := c.Orders.List(context.Background(), snapshot(t, ResourceOrders, 1, 10, "", nil))
	require.NoError(t, err)
	assert.Len(t, res.Items, 10)
	assert.Equal(t, paging.Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 23, ItemsPerPage: 10}, res.Pagination)

	assert.Equal(t, "Bearer tok", srv.LastHeader("Authorization"))
	_, err = uuid.Parse(srv.LastHeader("X-Request-ID"))
	assert.NoError(t, err, "request id is a uuid")

	last, err := c.Orders.List(context.Background(), snapshot(t, ResourceOrders, 3, 10, "", nil))
	require.NoError(t, err)
	assert.Len(t, last.Items, 3)
	assert.False(t, last.Nav().HasNext)

	ord, err := c.Orders.Get(context.Background(), res.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, res.Items[0], *ord)
}

func TestProductsListFilters(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	inactive, err := c.Products.List(ctx, snapshot(t, ResourceProducts, 1, 10, "", map[string]any{"status": "inactive"}))
	require.NoError(t, err)
	assert.Equal(t, 4, inactive.Pagination.TotalItems)
	for _, p := range inactive.Items {
		assert.Equal(t, "inactive", p.Status)
	}

	filters := model.ProductFilters{MinPrice: 3000, SortBy: "price", SortOrder: "desc"}
	require.NoError(t, filters.Validate())
	pricey, err := c.Products.List(ctx, snapshot(t, ResourceProducts, 1, 10, "", filters.Map()))
	require.NoError(t, err)
	require.Len(t, pricey.Items, 5)
	assert.Equal(t, 3500.0, pricey.Items[0].Price)

	_, err = c.Products.List(ctx, snapshot(t, ResourceProducts, 1, 10, "", map[string]any{"sort_by": "colour"}))
	assert.True(t, apperr.IsValidation(err), "server side 400 maps to validation: %v", err)

	all, err := c.Products.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 24)
}

func TestProductsMutationsInvalidateCache(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	exec := listquery.NewExecutor(c.Products.List,
		listquery.WithCache(listquery.NewCache[listquery.PageResult[model.Product]](16, time.Minute)))
	c.OnMutation(exec.Invalidate)

	snap := snapshot(t, ResourceProducts, 3, 10, "", nil)
	before, err := exec.Fetch(ctx, snap)
	require.NoError(t, err)
	assert.Len(t, before.Items, 4)
	_, cached := exec.Peek(snap)
	require.True(t, cached)

	created, err := c.Products.Create(ctx, model.Product{Name: "Silk Dupatta", Price: 899, Stock: 3, Colors: []string{"gold"}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "silk-dupatta", created.Slug)
	_, cached = exec.Peek(snap)
	assert.False(t, cached, "create invalidates product pages")

	after, err := exec.Fetch(ctx, snap)
	require.NoError(t, err)
	assert.Len(t, after.Items, 5)

	bySlug, err := c.Products.GetBySlug(ctx, "silk-dupatta")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	upd := *created
	upd.Price = 999
	updated, err := c.Products.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, 999.0, updated.Price)

	st, err := c.Products.UpdateStatus(ctx, created.ID, "active")
	require.NoError(t, err)
	assert.Equal(t, "active", st.Status)

	_, err = c.Products.UpdateStatus(ctx, created.ID, "archived")
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, c.Products.Delete(ctx, created.ID))
	_, err = c.Products.Get(ctx, created.ID)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusNotFound, ae.StatusCode)
	assert.Equal(t, "Product not found", ae.UserMessage())
}

func TestProductsCreateValidatesLocally(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL)

	_, err := c.Products.Create(context.Background(), model.Product{Price: -1})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 0, srv.Calls("/api/products"))
}

func TestOverviews(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	dash, err := c.Products.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, dash.TotalProducts)
	assert.Greater(t, dash.Revenue, 0.0)

	inv, err := c.Inventory.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Summarize(srv.Store.Inventory()), *inv)

	rows, err := c.Inventory.List(ctx, snapshot(t, ResourceInventory, 1, 5, "", map[string]any{"level": string(model.StockOut)}))
	require.NoError(t, err)
	assert.Equal(t, inv.OutOfStock, rows.Pagination.TotalItems)
	for _, r := range rows.Items {
		assert.Equal(t, model.StockOut, r.Level())
	}
}

func TestErrorMapping(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()
	snap := snapshot(t, ResourceOrders, 1, 10, "", nil)

	srv.FailNext("/api/orders", http.StatusInternalServerError, "db down")
	_, err := c.Orders.List(ctx, snap)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.Unknown, ae.Kind)
	assert.Equal(t, "db down", ae.UserMessage())
	assert.Equal(t, http.StatusInternalServerError, ae.StatusCode)

	srv.FailNext("/api/orders", http.StatusUnprocessableEntity, "bad page")
	_, err = c.Orders.List(ctx, snap)
	assert.True(t, apperr.IsValidation(err))

	srv.FailNext("/api/orders", http.StatusConflict, "busy")
	_, err = c.Orders.List(ctx, snap)
	assert.True(t, apperr.IsConflict(err))

	_, err = c.Orders.List(ctx, snap)
	assert.NoError(t, err, "failures are one-shot")

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	_, err = newTestClient(t, dead.URL).Orders.List(ctx, snap)
	assert.True(t, apperr.IsNetwork(err))
}

func TestListEnvelopeVariants(t *testing.T) {
	var body atomic.Value
	body.Store(`{"success":false,"message":"maintenance"}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL)
	snap := snapshot(t, ResourceOrders, 2, 10, "", nil)

	_, err := c.Orders.List(context.Background(), snap)
	assert.EqualError(t, err, "list orders: unknown: maintenance")

	body.Store(`{"items":[{"id":"o1","status":"Delivered"}]}`)
	res, err := c.Orders.List(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, paging.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1, ItemsPerPage: 10}, res.Pagination)
	assert.NoError(t, res.Validate())
	assert.False(t, res.Nav().HasPrevious, "the requested page 2 does not exist")

	body.Store(`{"items":[{"id":"o1"},{"id":"o2"},{"id":"o3"}]}`)
	res, err = c.Orders.List(context.Background(), snapshot(t, ResourceOrders, 3, 2, "", nil))
	require.NoError(t, err)
	assert.Equal(t, paging.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 3, ItemsPerPage: 3}, res.Pagination)
	assert.NoError(t, res.Validate())

	body.Store(`{"items":[]}`)
	res, err = c.Orders.List(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, paging.Pagination{ItemsPerPage: 10}, res.Pagination)
	assert.NoError(t, res.Validate())

	body.Store(`{"success":true,"orders":null,"pagination":{"currentPage":1,"totalPages":0,"totalItems":0,"itemsPerPage":10}}`)
	res, err = c.Orders.List(context.Background(), snap)
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.True(t, res.Empty())
}

func TestOrdersControllerAgainstAPI(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL)

	exec := listquery.NewExecutor(c.Orders.List)
	ctrl := listquery.NewController(exec, snapshot(t, ResourceOrders, 1, 10, "", nil),
		listquery.WithDebounce(10*time.Millisecond))
	defer ctrl.Close()
	ctrl.Start()

	require.Eventually(t, func() bool { return ctrl.State().Status == listquery.StatusSuccess }, 2*time.Second, 5*time.Millisecond)
	require.True(t, ctrl.Next())
	require.Eventually(t, func() bool {
		st := ctrl.State()
		return st.Status == listquery.StatusSuccess && st.Snapshot.Page() == 2
	}, 2*time.Second, 5*time.Millisecond)

	ctrl.SetSearch("o01")
	ctrl.FlushSearch()
	require.Eventually(t, func() bool {
		st := ctrl.State()
		return st.Status == listquery.StatusSuccess && st.Snapshot.Search() == "o01"
	}, 2*time.Second, 5*time.Millisecond)
	st := ctrl.State()
	assert.Equal(t, 1, st.Snapshot.Page(), "search resets the page")
	assert.Equal(t, 10, st.Data.Pagination.TotalItems, "o010 to o019")
}
