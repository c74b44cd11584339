package apitest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/pkg/model"
)

type ordersRouter struct{ a *API }

func (o ordersRouter) Register(r gin.IRouter) {
	g := r.Group("/orders")
	{
		g.GET("", o.list)    // GET /api/orders
		g.GET("/:id", o.get) // GET /api/orders/:id
	}
}

// list 分页返回订单，search 匹配订单号或商品名，status 按分类过滤
func (o ordersRouter) list(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}
	orders := o.a.Store.Orders()
	if q.Search != "" {
		orders = filter(orders, func(ord model.Order) bool {
			if containsFold(ord.ID, q.Search) {
				return true
			}
			for _, it := range ord.Items {
				if containsFold(it.ProductName, q.Search) {
					return true
				}
			}
			return false
		})
	}
	if status := c.Query("status"); status != "" {
		want := model.ClassifyStatus(status)
		orders = filter(orders, func(ord model.Order) bool { return ord.StatusCategory() == want })
	}

	items, p := pageOf(orders, q)
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": items, "pagination": p})
}

func (o ordersRouter) get(c *gin.Context) {
	ord, ok := o.a.Store.order(c.Param("id"))
	if !ok {
		notFound(c, "Order not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": ord})
}
