package apitest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/pkg/model"
)

type inventoryRouter struct{ a *API }

func (i inventoryRouter) Register(r gin.IRouter) {
	g := r.Group("/inventory")
	{
		g.GET("", i.list)              // GET /api/inventory
		g.GET("/overview", i.overview) // GET /api/inventory/overview
	}
}

func (i inventoryRouter) list(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}
	rows := i.a.Store.Inventory()
	if q.Search != "" {
		rows = filter(rows, func(it model.InventoryItem) bool {
			return containsFold(it.Name, q.Search) || containsFold(it.SKU, q.Search)
		})
	}
	if level := c.Query("level"); level != "" {
		rows = filter(rows, func(it model.InventoryItem) bool { return string(it.Level()) == level })
	}
	items, p := pageOf(rows, q)
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items, "pagination": p})
}

func (i inventoryRouter) overview(c *gin.Context) {
	c.JSON(http.StatusOK, model.Summarize(i.a.Store.Inventory()))
}
