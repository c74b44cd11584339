package listquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/common/apperr"
)

func TestSnapshotKeyIsValueIdentity(t *testing.T) {
	a := mustSnapshot(t, "products", 2, 10, "kurta", map[string]any{"color": "red", "min_price": 100})
	b := mustSnapshot(t, "products", 2, 10, "kurta", map[string]any{"min_price": 100, "color": "red"})
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "products?color=red&limit=10&min_price=100&page=2&search=kurta", a.Key())

	c := mustSnapshot(t, "orders", 2, 10, "kurta", map[string]any{"min_price": 100, "color": "red"})
	assert.NotEqual(t, a.Key(), c.Key(), "resource is part of the key")
}

func TestSnapshotCopiesFilters(t *testing.T) {
	filters := map[string]any{"size": "M"}
	s := mustSnapshot(t, "products", 1, 10, "", filters)
	filters["size"] = "XL"

	v, ok := s.Filter("size")
	require.True(t, ok)
	assert.Equal(t, "M", v)

	out := s.Filters()
	out["size"] = "S"
	v, _ = s.Filter("size")
	assert.Equal(t, "M", v)
}

func TestSnapshotValidation(t *testing.T) {
	_, err := NewSnapshot("", 0, 0, "", map[string]any{"tags": []string{"a"}, "page": 3})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Len(t, ae.Fields, 4)
	assert.Contains(t, ae.Fields, "tags")
	assert.Contains(t, ae.Fields, "resource")
}

func TestSnapshotDerivedCopies(t *testing.T) {
	s := mustSnapshot(t, "orders", 3, 10, "", nil)

	assert.Equal(t, 1, s.WithSearch("saree").Page(), "search resets page")
	assert.Equal(t, 3, s.Page(), "original untouched")
	assert.Equal(t, 1, s.WithPageSize(20).Page())
	assert.Equal(t, 1, s.WithPage(0).Page())

	f, err := s.WithFilter("status", "delivered")
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page())
	_, ok := s.Filter("status")
	assert.False(t, ok)

	_, err = s.WithFilter("limit", 5)
	assert.Error(t, err)
	_, err = s.WithFilter("x", struct{}{})
	assert.Error(t, err)

	assert.Equal(t, s.Key(), f.WithoutFilter("status").WithPage(3).Key())
}

func TestSnapshotValuesOmitEmptySearch(t *testing.T) {
	s := mustSnapshot(t, "inventory", 1, 25, "", map[string]any{"in_stock": true, "ratio": 0.5})
	v := s.Values()
	assert.False(t, v.Has(ParamSearch))
	assert.Equal(t, "25", v.Get(ParamLimit))
	assert.Equal(t, "true", v.Get("in_stock"))
	assert.Equal(t, "0.5", v.Get("ratio"))
	assert.False(t, s.IsZero())
	assert.True(t, Snapshot{}.IsZero())
}
