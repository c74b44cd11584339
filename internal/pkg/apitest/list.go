package apitest

import (
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/pkg/common/apperr"
	"storefront/internal/pkg/common/paging"
	"storefront/internal/pkg/model"
)

// bindList reads page, limit and search from the query string. It writes a
// 400 and returns false when they are invalid.
func bindList(c *gin.Context) (model.ListQuery, bool) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid paging parameters")
		return q, false
	}
	q.SetDefaults(1, 10, 100)
	if err := q.Validate(); err != nil {
		badRequest(c, apperr.Message(err))
		return q, false
	}
	return q, true
}

// pageOf slices items to the requested page. A page past the end is served
// as the last page.
func pageOf[T any](items []T, q model.ListQuery) ([]T, paging.Pagination) {
	total := paging.TotalPagesFor(len(items), q.Limit)
	page := min(q.Page, max(total, 1))
	start, end := paging.Window(page, q.Limit, len(items))
	out := append(make([]T, 0, end-start), items[start:end]...)
	return out, paging.Pagination{
		CurrentPage:  page,
		TotalPages:   total,
		TotalItems:   len(items),
		ItemsPerPage: q.Limit,
	}
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := items[:0:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
