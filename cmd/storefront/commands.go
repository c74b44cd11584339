package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	kingpin "github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"storefront/config"
	"storefront/internal/pkg/client/storefront"
	"storefront/internal/pkg/common/paging"
	"storefront/internal/pkg/listquery"
	"storefront/internal/pkg/model"
	"storefront/internal/pkg/render"
)

type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	printer *render.Printer
	in      io.Reader
	metrics listquery.Metrics
}

type runFunc func(ctx context.Context, e *env) error

// listFlags are the query flags shared by the list commands.
type listFlags struct {
	page   *int
	limit  *int
	search *string
}

func addListFlags(cmd *kingpin.CmdClause) listFlags {
	return listFlags{
		page:   cmd.Flag("page", "Page number, from 1").Default("1").Int(),
		limit:  cmd.Flag("limit", "Items per page (default list.pageSize)").Int(),
		search: cmd.Flag("search", "Search text").String(),
	}
}

func (f listFlags) snapshot(e *env, resource string, filters map[string]any) (listquery.Snapshot, error) {
	limit := *f.limit
	if limit <= 0 {
		limit = e.cfg.List.PageSize
	}
	limit = min(limit, e.cfg.List.MaxPageSize)
	return listquery.NewSnapshot(resource, *f.page, limit, *f.search, filters)
}

func registerCommands(app *kingpin.Application) map[string]runFunc {
	cmds := map[string]runFunc{}

	// orders
	orders := app.Command("orders", "Customer order history.")
	ordersList := orders.Command("list", "List orders.").Default()
	ordersFlags := addListFlags(ordersList)
	ordersStatus := ordersList.Flag("status", "Only orders in this status category").String()
	cmds[ordersList.FullCommand()] = func(ctx context.Context, e *env) error {
		filters := map[string]any{}
		if *ordersStatus != "" {
			filters["status"] = *ordersStatus
		}
		snap, err := ordersFlags.snapshot(e, storefront.ResourceOrders, filters)
		if err != nil {
			return err
		}
		return listOnce(ctx, e, ordersExecutor(e), snap, render.Orders)
	}
	ordersGet := orders.Command("get", "Show one order.")
	ordersGetID := ordersGet.Arg("id", "Order id").Required().String()
	cmds[ordersGet.FullCommand()] = func(ctx context.Context, e *env) error {
		o, err := storefront.Default().Orders.Get(ctx, *ordersGetID)
		if err != nil {
			return err
		}
		return render.Orders.Render(e.printer, single(storefront.ResourceOrders, *o))
	}

	// products
	products := app.Command("products", "Product catalogue.")
	productsList := products.Command("list", "List products.").Default()
	productsFlags := addListFlags(productsList)
	var pf model.ProductFilters
	productsList.Flag("status", "active, inactive or draft").StringVar(&pf.Status)
	productsList.Flag("min-price", "Minimum price").Float64Var(&pf.MinPrice)
	productsList.Flag("max-price", "Maximum price").Float64Var(&pf.MaxPrice)
	productsList.Flag("sort-by", "name, price, createdAt or stock").StringVar(&pf.SortBy)
	productsList.Flag("sort-order", "asc or desc").StringVar(&pf.SortOrder)
	productsList.Flag("color", "Color").StringVar(&pf.Color)
	productsList.Flag("size", "Size").StringVar(&pf.Size)
	productsList.Flag("category", "Category").StringVar(&pf.Category)
	cmds[productsList.FullCommand()] = func(ctx context.Context, e *env) error {
		if err := pf.Validate(); err != nil {
			return err
		}
		snap, err := productsFlags.snapshot(e, storefront.ResourceProducts, pf.Map())
		if err != nil {
			return err
		}
		return listOnce(ctx, e, productsExecutor(e), snap, render.Products)
	}

	productsGet := products.Command("get", "Show one product by id or slug.")
	productsGetID := productsGet.Arg("id", "Product id, or slug with --slug").Required().String()
	productsBySlug := productsGet.Flag("slug", "Look the product up by slug").Bool()
	cmds[productsGet.FullCommand()] = func(ctx context.Context, e *env) error {
		api := storefront.Default().Products
		var (
			p   *model.Product
			err error
		)
		if *productsBySlug {
			p, err = api.GetBySlug(ctx, *productsGetID)
		} else {
			p, err = api.Get(ctx, *productsGetID)
		}
		if err != nil {
			return err
		}
		return render.Products.Render(e.printer, single(storefront.ResourceProducts, *p))
	}

	productsCreate := products.Command("create", "Create a product from a YAML file.")
	productsCreateFile := productsCreate.Flag("file", "Product YAML file").Short('f').Required().ExistingFile()
	cmds[productsCreate.FullCommand()] = func(ctx context.Context, e *env) error {
		p, err := readProduct(*productsCreateFile)
		if err != nil {
			return err
		}
		created, err := storefront.Default().Products.Create(ctx, p)
		if err != nil {
			return err
		}
		e.logger.Info("product created", "id", created.ID, "slug", created.Slug)
		return render.Products.Render(e.printer, single(storefront.ResourceProducts, *created))
	}

	productsUpdate := products.Command("update", "Replace a product from a YAML file.")
	productsUpdateID := productsUpdate.Arg("id", "Product id").Required().String()
	productsUpdateFile := productsUpdate.Flag("file", "Product YAML file").Short('f').Required().ExistingFile()
	cmds[productsUpdate.FullCommand()] = func(ctx context.Context, e *env) error {
		p, err := readProduct(*productsUpdateFile)
		if err != nil {
			return err
		}
		updated, err := storefront.Default().Products.Update(ctx, *productsUpdateID, p)
		if err != nil {
			return err
		}
		return render.Products.Render(e.printer, single(storefront.ResourceProducts, *updated))
	}

	productsDelete := products.Command("delete", "Delete a product.")
	productsDeleteID := productsDelete.Arg("id", "Product id").Required().String()
	cmds[productsDelete.FullCommand()] = func(ctx context.Context, e *env) error {
		if err := storefront.Default().Products.Delete(ctx, *productsDeleteID); err != nil {
			return err
		}
		return e.printer.Message(render.ToneGood, "Product %s deleted", *productsDeleteID)
	}

	productsStatus := products.Command("status", "Set a product's status.")
	productsStatusID := productsStatus.Arg("id", "Product id").Required().String()
	productsStatusValue := productsStatus.Arg("status", "active, inactive or draft").Required().Enum("active", "inactive", "draft")
	cmds[productsStatus.FullCommand()] = func(ctx context.Context, e *env) error {
		p, err := storefront.Default().Products.UpdateStatus(ctx, *productsStatusID, *productsStatusValue)
		if err != nil {
			return err
		}
		return render.Products.Render(e.printer, single(storefront.ResourceProducts, *p))
	}

	productsOverview := products.Command("overview", "Admin dashboard summary.")
	cmds[productsOverview.FullCommand()] = func(ctx context.Context, e *env) error {
		o, err := storefront.Default().Products.Overview(ctx)
		if err != nil {
			return err
		}
		return e.printer.Dashboard(*o)
	}

	// inventory
	inventory := app.Command("inventory", "Stock levels.")
	inventoryList := inventory.Command("list", "List stock rows.").Default()
	inventoryFlags := addListFlags(inventoryList)
	inventoryLevel := inventoryList.Flag("level", "Only rows at this stock level").Enum(
		string(model.StockOut), string(model.StockLow), string(model.StockIn))
	cmds[inventoryList.FullCommand()] = func(ctx context.Context, e *env) error {
		filters := map[string]any{}
		if *inventoryLevel != "" {
			filters["level"] = *inventoryLevel
		}
		snap, err := inventoryFlags.snapshot(e, storefront.ResourceInventory, filters)
		if err != nil {
			return err
		}
		return listOnce(ctx, e, inventoryExecutor(e), snap, render.Inventory)
	}
	inventoryOverview := inventory.Command("overview", "Stock alert counters.")
	cmds[inventoryOverview.FullCommand()] = func(ctx context.Context, e *env) error {
		o, err := storefront.Default().Inventory.Overview(ctx)
		if err != nil {
			return err
		}
		return e.printer.InventoryOverview(*o)
	}

	registerAuthCommands(app, cmds)
	registerBrowseCommand(app, cmds)
	registerMockCommand(app, cmds)
	return cmds
}

func readProduct(path string) (model.Product, error) {
	var p model.Product
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// single wraps one item as a successful one-page state for rendering.
func single[T any](resource string, item T) listquery.QueryState[T] {
	snap, _ := listquery.NewSnapshot(resource, 1, 1, "", nil)
	return listquery.QueryState[T]{
		Status:   listquery.StatusSuccess,
		Snapshot: snap,
		Data: &listquery.PageResult[T]{
			Items:      []T{item},
			Pagination: paging.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1, ItemsPerPage: 1},
		},
		UpdatedAt: time.Now(),
	}
}
