package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/pkg/common/apperr"
	"storefront/internal/pkg/model"
)

type productsRouter struct{ a *API }

func (p productsRouter) Register(r gin.IRouter) {
	g := r.Group("/products")
	{
		g.GET("", p.list)
		g.POST("", p.create)
		g.GET("/overview", p.overview)
		g.GET("/slug/:slug", p.getBySlug)
		g.PUT("/status/:id", p.updateStatus)
		g.GET("/:id", p.get)
		g.PUT("/:id", p.update)
		g.DELETE("/:id", p.delete)
	}
}

// list returns the whole catalogue when no paging parameter is given,
// otherwise one filtered and sorted page.
func (p productsRouter) list(c *gin.Context) {
	products := p.a.Store.Products()
	if c.Query("page") == "" && c.Query("limit") == "" && c.Query("search") == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}
	f, err := productFilters(c)
	if err != nil {
		badRequest(c, apperr.Message(err))
		return
	}

	products = filter(products, func(pr model.Product) bool {
		switch {
		case q.Search != "" && !containsFold(pr.Name, q.Search) && !containsFold(pr.Category, q.Search):
			return false
		case f.Status != "" && pr.Status != f.Status:
			return false
		case f.Category != "" && !containsFold(pr.Category, f.Category):
			return false
		case f.Color != "" && !hasFold(pr.Colors, f.Color):
			return false
		case f.Size != "" && !hasFold(pr.Sizes, f.Size):
			return false
		case f.MinPrice > 0 && pr.Price < f.MinPrice:
			return false
		case f.MaxPrice > 0 && pr.Price > f.MaxPrice:
			return false
		}
		return true
	})
	sortProducts(products, f.SortBy, f.SortOrder == "desc")

	items, pg := pageOf(products, q)
	c.JSON(http.StatusOK, gin.H{"success": true, "products": items, "pagination": pg})
}

func productFilters(c *gin.Context) (model.ProductFilters, error) {
	f := model.ProductFilters{
		Status:    c.Query("status"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Color:     c.Query("color"),
		Size:      c.Query("size"),
		Category:  c.Query("category"),
	}
	for key, dst := range map[string]*float64{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		if v := c.Query(key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return f, apperr.NewValidation("product filters", map[string]string{key: key + " must be a number"})
			}
			*dst = n
		}
	}
	return f, f.Validate()
}

func sortProducts(ps []model.Product, by string, desc bool) {
	var less func(a, b model.Product) bool
	switch by {
	case "name":
		less = func(a, b model.Product) bool { return a.Name < b.Name }
	case "price":
		less = func(a, b model.Product) bool { return a.Price < b.Price }
	case "stock":
		less = func(a, b model.Product) bool { return a.Stock < b.Stock }
	default:
		// createdAt: ids are issued in creation order
		less = func(a, b model.Product) bool { return a.ID < b.ID }
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if desc {
			return less(ps[j], ps[i])
		}
		return less(ps[i], ps[j])
	})
}

func hasFold(vs []string, want string) bool {
	for _, v := range vs {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func (p productsRouter) get(c *gin.Context) {
	id := c.Param("id")
	p.respondOne(c, func(pr model.Product) bool { return pr.ID == id })
}

func (p productsRouter) getBySlug(c *gin.Context) {
	slug := c.Param("slug")
	p.respondOne(c, func(pr model.Product) bool { return pr.Slug == slug })
}

func (p productsRouter) respondOne(c *gin.Context, match func(model.Product) bool) {
	pr, ok := p.a.Store.product(match)
	if !ok {
		notFound(c, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": pr})
}

func (p productsRouter) create(c *gin.Context) {
	var in model.Product
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	if err := in.Validate(); err != nil {
		badRequest(c, apperr.Message(err))
		return
	}
	in.ID = ""
	created := p.a.Store.addProduct(in)
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": created})
}

func (p productsRouter) update(c *gin.Context) {
	var in model.Product
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	if err := in.Validate(); err != nil {
		badRequest(c, apperr.Message(err))
		return
	}
	updated, ok := p.a.Store.updateProduct(c.Param("id"), func(pr *model.Product) {
		slug := pr.Slug
		*pr = in
		if pr.Slug == "" {
			pr.Slug = slug
		}
	})
	if !ok {
		notFound(c, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updatedProduct": updated})
}

func (p productsRouter) delete(c *gin.Context) {
	if !p.a.Store.deleteProduct(c.Param("id")) {
		notFound(c, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted"})
}

func (p productsRouter) updateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		badRequest(c, "status is required")
		return
	}
	if err := (model.ProductFilters{Status: body.Status}).Validate(); err != nil {
		badRequest(c, apperr.Message(err))
		return
	}
	updated, ok := p.a.Store.updateProduct(c.Param("id"), func(pr *model.Product) { pr.Status = body.Status })
	if !ok {
		notFound(c, "Product not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// overview 汇总商品数、未取消订单的收入和注册用户数
func (p productsRouter) overview(c *gin.Context) {
	var revenue float64
	for _, o := range p.a.Store.Orders() {
		if o.StatusCategory() != model.StatusCancelled {
			revenue += o.Total
		}
	}
	c.JSON(http.StatusOK, model.DashboardOverview{
		TotalProducts: len(p.a.Store.Products()),
		Revenue:       revenue,
		Growth:        "+12.5%",
		UsersCount:    p.a.Store.userCount(),
	})
}
