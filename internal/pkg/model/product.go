package model

import "strconv"

type Products []Product

// Product is a catalogue entry as returned by /api/products.
type Product struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name" validate:"required,max=200"`
	Slug        string   `json:"slug,omitempty" yaml:"slug,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Price       float64  `json:"price" yaml:"price" validate:"gte=0"`
	Stock       int      `json:"stock" yaml:"stock" validate:"gte=0"`
	Status      string   `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=active inactive draft"`
	Colors      []string `json:"colors,omitempty" yaml:"colors,omitempty"`
	Sizes       []string `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	Images      []string `json:"images,omitempty" yaml:"images,omitempty"`
}

// Validate checks a product before it is sent for create or update.
func (p Product) Validate() error { return validateStruct("product", p) }

// ProductFilters is the filter shape accepted by the product list endpoint.
// Zero values are omitted.
type ProductFilters struct {
	Status    string  `validate:"omitempty,oneof=active inactive draft"`
	MinPrice  float64 `validate:"gte=0"`
	MaxPrice  float64 `validate:"gte=0"`
	SortBy    string  `validate:"omitempty,oneof=name price createdAt stock"`
	SortOrder string  `validate:"omitempty,oneof=asc desc"`
	Color     string
	Size      string
	Category  string
}

// Validate checks the filter values and that the price range is ordered.
func (f ProductFilters) Validate() error {
	if err := validateStruct("product filters", f); err != nil {
		return err
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return validationError("product filters", "MaxPrice", "MaxPrice must be at least MinPrice")
	}
	return nil
}

// Map converts the filters to query parameter names used by the API.
func (f ProductFilters) Map() map[string]any {
	m := make(map[string]any)
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("status", f.Status)
	set("sort_by", f.SortBy)
	set("sort_order", f.SortOrder)
	set("color", f.Color)
	set("size", f.Size)
	set("category", f.Category)
	if f.MinPrice > 0 {
		m["min_price"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		m["max_price"] = f.MaxPrice
	}
	return m
}

// DashboardOverview is the admin landing page summary.
type DashboardOverview struct {
	TotalProducts int     `json:"totalProducts"`
	Revenue       float64 `json:"revenue"`
	Growth        string  `json:"growth"`
	UsersCount    int     `json:"usersCount"`
}

// FormatPrice renders a price the way the storefront shows it.
func FormatPrice(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', 2, 64)
}
