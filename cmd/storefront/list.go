package main

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/pkg/client/storefront"
	"storefront/internal/pkg/listquery"
	"storefront/internal/pkg/model"
	"storefront/internal/pkg/render"
)

// logMetrics reports list query events as debug logs.
type logMetrics struct{ logger *slog.Logger }

func (m logMetrics) RecordFetch(resource string, d time.Duration, err error) {
	m.logger.Debug("list fetch", "resource", resource, "duration", d, "err", err)
}

func (m logMetrics) RecordCacheHit(resource string) {
	m.logger.Debug("list cache hit", "resource", resource)
}

func (m logMetrics) RecordSharedFetch(resource string) {
	m.logger.Debug("list fetch shared", "resource", resource)
}

func (m logMetrics) RecordStaleDrop(resource string) {
	m.logger.Debug("stale list response dropped", "resource", resource)
}

// newExecutor builds an executor with the configured cache and timeout and
// subscribes it to the client's mutation notifications.
func newExecutor[T any](e *env, fetch listquery.FetchFunc[T]) *listquery.Executor[T] {
	cache := listquery.NewCache[listquery.PageResult[T]](e.cfg.Cache.MaxEntries, e.cfg.Cache.TTLDuration())
	opts := []listquery.ExecutorOption[T]{
		listquery.WithCache(cache),
		listquery.WithExecutorLogger[T](e.logger),
		listquery.WithExecutorMetrics[T](e.metrics),
	}
	if d := e.cfg.API.RequestTimeout(); d > 0 {
		opts = append(opts, listquery.WithRequestTimeout[T](d))
	}
	exec := listquery.NewExecutor(fetch, opts...)
	storefront.Default().OnMutation(exec.Invalidate)
	return exec
}

func ordersExecutor(e *env) *listquery.Executor[model.Order] {
	return newExecutor[model.Order](e, storefront.Default().Orders.List)
}

func productsExecutor(e *env) *listquery.Executor[model.Product] {
	return newExecutor[model.Product](e, storefront.Default().Products.List)
}

func inventoryExecutor(e *env) *listquery.Executor[model.InventoryItem] {
	return newExecutor[model.InventoryItem](e, storefront.Default().Inventory.List)
}

func controllerOptions(e *env) []listquery.ControllerOption {
	return []listquery.ControllerOption{
		listquery.WithDebounce(e.cfg.List.DebounceDuration()),
		listquery.WithKeepPreviousDataOnError(e.cfg.List.KeepPreviousDataOnError),
		listquery.WithLogger(e.logger),
		listquery.WithMetrics(e.metrics),
	}
}

// listOnce runs a controller for snap until the first settled state, renders
// it and returns its error.
func listOnce[T any](ctx context.Context, e *env, exec *listquery.Executor[T], snap listquery.Snapshot, table render.Table[T]) error {
	ctrl := listquery.NewController(exec, snap, controllerOptions(e)...)
	defer ctrl.Close()

	settled := make(chan listquery.QueryState[T], 1)
	ctrl.Subscribe(func(st listquery.QueryState[T]) {
		if st.Status == listquery.StatusSuccess || st.Status == listquery.StatusError {
			select {
			case settled <- st:
			default:
			}
		}
	})
	ctrl.Start()

	select {
	case st := <-settled:
		if err := table.Render(e.printer, st); err != nil {
			return err
		}
		return st.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
