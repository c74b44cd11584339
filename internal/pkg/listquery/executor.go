package listquery

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads one page for a snapshot, normally over HTTP.
type FetchFunc[T any] func(ctx context.Context, snap Snapshot) (PageResult[T], error)

// Executor runs fetches for snapshots. Concurrent fetches of the same
// snapshot share one call and successful results are kept in the cache.
type Executor[T any] struct {
	fetch   FetchFunc[T]
	cache   *Cache[PageResult[T]]
	group   singleflight.Group
	epoch   atomic.Uint64
	timeout time.Duration
	logger  *slog.Logger
	metrics Metrics
}

type ExecutorOption[T any] func(*Executor[T])

// WithCache sets the cache results are stored in. Without one every fetch
// goes to the network, still deduplicated while in flight.
func WithCache[T any](c *Cache[PageResult[T]]) ExecutorOption[T] {
	return func(e *Executor[T]) { e.cache = c }
}

// WithRequestTimeout bounds a shared fetch. It applies even when every caller
// has given up waiting.
func WithRequestTimeout[T any](d time.Duration) ExecutorOption[T] {
	return func(e *Executor[T]) { e.timeout = d }
}

func WithExecutorLogger[T any](l *slog.Logger) ExecutorOption[T] {
	return func(e *Executor[T]) { e.logger = l }
}

func WithExecutorMetrics[T any](m Metrics) ExecutorOption[T] {
	return func(e *Executor[T]) { e.metrics = m }
}

func NewExecutor[T any](fetch FetchFunc[T], opts ...ExecutorOption[T]) *Executor[T] {
	e := &Executor[T]{
		fetch:   fetch,
		timeout: 30 * time.Second,
		logger:  slog.Default(),
		metrics: NoopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Peek returns a fresh cached result without fetching.
func (e *Executor[T]) Peek(snap Snapshot) (PageResult[T], bool) {
	if e.cache == nil {
		return PageResult[T]{}, false
	}
	return e.cache.Get(snap.Key())
}

// Fetch returns the page for snap from the cache, from an identical fetch
// already in flight, or from a new fetch. If ctx ends first Fetch returns
// ctx.Err() while the shared fetch carries on for the other callers.
func (e *Executor[T]) Fetch(ctx context.Context, snap Snapshot) (PageResult[T], error) {
	key := snap.Key()
	if res, ok := e.Peek(snap); ok {
		e.metrics.RecordCacheHit(snap.Resource())
		return res, nil
	}

	epoch := e.epoch.Load()
	flightKey := strconv.FormatUint(epoch, 10) + "|" + key
	ch := e.group.DoChan(flightKey, func() (any, error) {
		return e.run(ctx, snap, epoch)
	})

	select {
	case <-ctx.Done():
		return PageResult[T]{}, ctx.Err()
	case r := <-ch:
		if r.Shared {
			e.metrics.RecordSharedFetch(snap.Resource())
		}
		if r.Err != nil {
			return PageResult[T]{}, r.Err
		}
		return r.Val.(PageResult[T]), nil
	}
}

func (e *Executor[T]) run(ctx context.Context, snap Snapshot, epoch uint64) (PageResult[T], error) {
	// Detached from the first caller so its cancellation does not fail the
	// callers attached to the same flight.
	fctx := context.WithoutCancel(ctx)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(fctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := e.fetch(fctx, snap)
	e.metrics.RecordFetch(snap.Resource(), time.Since(start), err)
	if err != nil {
		e.logger.Debug("list fetch failed", "key", snap.Key(), "err", err)
		return PageResult[T]{}, err
	}
	if verr := res.Validate(); verr != nil {
		e.logger.Warn("list response breaks pagination invariants", "key", snap.Key(), "err", verr)
	}
	// A result started before an invalidation must not repopulate the cache.
	if e.cache != nil && e.epoch.Load() == epoch {
		e.cache.Set(snap.Key(), res)
	}
	return res, nil
}

// Forget drops the cached result of snap so the next Fetch goes to the network.
func (e *Executor[T]) Forget(snap Snapshot) {
	if e.cache != nil {
		e.cache.Delete(snap.Key())
	}
}

// Invalidate drops every cached page of resource and detaches later fetches
// from flights that started before the call.
func (e *Executor[T]) Invalidate(resource string) {
	e.epoch.Add(1)
	if e.cache != nil {
		n := e.cache.InvalidatePrefix(resource + "?")
		e.logger.Debug("list cache invalidated", "resource", resource, "entries", n)
	}
}
