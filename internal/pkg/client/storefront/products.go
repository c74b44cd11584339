package storefront

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/pkg/common/apperr"
	"storefront/internal/pkg/listquery"
	"storefront/internal/pkg/model"
)

// ProductsAPI covers the catalogue, including the admin mutations.
type ProductsAPI struct{ c *Client }

type productEnvelope struct {
	Product *model.Product `json:"product"`
}

// List fetches one page of products. Filters on the snapshot are sent as
// query parameters; see model.ProductFilters.Map for the accepted names.
func (a *ProductsAPI) List(ctx context.Context, snap listquery.Snapshot) (listquery.PageResult[model.Product], error) {
	return fetchPage[model.Product](ctx, a.c, "list products", "/api/products", "products", snap)
}

// All returns the unpaginated catalogue.
func (a *ProductsAPI) All(ctx context.Context) (model.Products, error) {
	var resp struct {
		Products model.Products `json:"products"`
	}
	if err := a.c.doJSON(ctx, "list all products", http.MethodGet, "/api/products", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Products == nil {
		resp.Products = model.Products{}
	}
	return resp.Products, nil
}

func (a *ProductsAPI) Get(ctx context.Context, id string) (*model.Product, error) {
	return a.getOne(ctx, "get product", "/api/products/"+url.PathEscape(id), id)
}

func (a *ProductsAPI) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return a.getOne(ctx, "get product by slug", "/api/products/slug/"+url.PathEscape(slug), slug)
}

func (a *ProductsAPI) getOne(ctx context.Context, op, path, ref string) (*model.Product, error) {
	var resp productEnvelope
	if err := a.c.doJSON(ctx, op, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, notFound(op, ref)
	}
	return resp.Product, nil
}

// Create validates p and posts it. The created product (with its server
// assigned id) is returned.
func (a *ProductsAPI) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var resp productEnvelope
	if err := a.c.doJSON(ctx, "create product", http.MethodPost, "/api/products", p, &resp); err != nil {
		return nil, err
	}
	a.c.mutated(ResourceProducts)
	if resp.Product == nil {
		return &p, nil
	}
	return resp.Product, nil
}

// Update replaces product id with p.
func (a *ProductsAPI) Update(ctx context.Context, id string, p model.Product) (*model.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var resp struct {
		UpdatedProduct *model.Product `json:"updatedProduct"`
	}
	if err := a.c.doJSON(ctx, "update product", http.MethodPut, "/api/products/"+url.PathEscape(id), p, &resp); err != nil {
		return nil, err
	}
	a.c.mutated(ResourceProducts)
	a.c.mutated(ResourceInventory)
	if resp.UpdatedProduct == nil {
		p.ID = id
		return &p, nil
	}
	return resp.UpdatedProduct, nil
}

func (a *ProductsAPI) Delete(ctx context.Context, id string) error {
	if err := a.c.doJSON(ctx, "delete product", http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	a.c.mutated(ResourceProducts)
	a.c.mutated(ResourceInventory)
	return nil
}

// UpdateStatus sets the publication status of a product. The endpoint
// answers with the bare product object.
func (a *ProductsAPI) UpdateStatus(ctx context.Context, id, status string) (*model.Product, error) {
	if status == "" {
		return nil, validationError("update product status", "Status", "Status is required")
	}
	if err := (model.ProductFilters{Status: status}).Validate(); err != nil {
		return nil, err
	}
	var p model.Product
	body := map[string]string{"status": status}
	if err := a.c.doJSON(ctx, "update product status", http.MethodPut, "/api/products/status/"+url.PathEscape(id), body, &p); err != nil {
		return nil, err
	}
	a.c.mutated(ResourceProducts)
	return &p, nil
}

// Overview returns the admin dashboard summary.
func (a *ProductsAPI) Overview(ctx context.Context) (*model.DashboardOverview, error) {
	var o model.DashboardOverview
	if err := a.c.doJSON(ctx, "dashboard overview", http.MethodGet, "/api/products/overview", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func notFound(op, ref string) error {
	return apperr.FromStatus(op, http.StatusNotFound, ref+" not found")
}

func validationError(op, field, msg string) error {
	return apperr.NewValidation(op, map[string]string{field: msg})
}
