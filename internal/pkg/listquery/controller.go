package listquery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/pkg/common/apperr"
	"storefront/internal/pkg/common/paging"
)

type controllerOptions struct {
	debounce    time.Duration
	keepOnError bool
	logger      *slog.Logger
	metrics     Metrics
}

type ControllerOption func(*controllerOptions)

// WithDebounce sets the quiet period applied to SetSearch.
func WithDebounce(d time.Duration) ControllerOption {
	return func(o *controllerOptions) { o.debounce = d }
}

// WithKeepPreviousDataOnError keeps the last successful page visible in the
// error state instead of clearing it.
func WithKeepPreviousDataOnError(keep bool) ControllerOption {
	return func(o *controllerOptions) { o.keepOnError = keep }
}

func WithLogger(l *slog.Logger) ControllerOption {
	return func(o *controllerOptions) { o.logger = l }
}

func WithMetrics(m Metrics) ControllerOption {
	return func(o *controllerOptions) { o.metrics = m }
}

// Controller drives one list screen. It owns the input state (page, page
// size, search, filters), debounces search text into the query, and publishes
// QueryState changes to subscribers. Only the result of the most recently
// issued snapshot is ever published.
type Controller[T any] struct {
	exec        *Executor[T]
	debouncer   *Debouncer
	keepOnError bool
	logger      *slog.Logger
	metrics     Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	params    Snapshot
	rawSearch string
	gen       uint64
	started   bool
	closed    bool
	state     QueryState[T]
	last      *PageResult[T]
	// lastSnap is the snapshot last was fetched for.
	lastSnap Snapshot

	subs       map[int]func(QueryState[T])
	nextSubID  int
	queue      []QueryState[T]
	delivering bool
}

// NewController creates a controller for the initial snapshot. Nothing is
// fetched until Start.
func NewController[T any](exec *Executor[T], initial Snapshot, opts ...ControllerOption) *Controller[T] {
	o := controllerOptions{
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		metrics:  NoopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		exec:        exec,
		debouncer:   NewDebouncer(o.debounce),
		keepOnError: o.keepOnError,
		logger:      o.logger,
		metrics:     o.metrics,
		ctx:         ctx,
		cancel:      cancel,
		params:      initial,
		rawSearch:   initial.Search(),
		state:       QueryState[T]{Status: StatusIdle, Snapshot: initial},
		subs:        make(map[int]func(QueryState[T])),
	}
}

// Start issues the initial query. Calling it again is a no-op.
func (c *Controller[T]) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.issueLocked()
	c.mu.Unlock()
	c.flush()
}

// Subscribe registers fn for every state change, delivered in commit order
// from a single goroutine at a time. fn may call back into the controller.
// The returned function unregisters fn.
func (c *Controller[T]) Subscribe(fn func(QueryState[T])) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// State returns the current state.
func (c *Controller[T]) State() QueryState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Params returns the snapshot currently requested.
func (c *Controller[T]) Params() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// RawSearch returns the undebounced search text.
func (c *Controller[T]) RawSearch() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rawSearch
}

// SearchPending reports whether typed search text is still waiting out the
// quiet period.
func (c *Controller[T]) SearchPending() bool { return c.debouncer.Pending() }

// SetSearch records raw search text. The query follows once the text has
// been stable for the debounce period.
func (c *Controller[T]) SetSearch(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.rawSearch = text
	c.mu.Unlock()

	c.debouncer.Debounce(func() { c.applySearch(text) })
}

// FlushSearch applies pending search text without waiting for the quiet
// period.
func (c *Controller[T]) FlushSearch() {
	c.debouncer.Immediate(func() { c.applySearch(c.RawSearch()) })
}

func (c *Controller[T]) applySearch(text string) {
	c.update(func(p Snapshot) (Snapshot, bool) {
		if p.Search() == text {
			return p, false
		}
		return p.WithSearch(text), true
	})
}

// SetPage requests page n, keeping search and filters.
func (c *Controller[T]) SetPage(n int) error {
	if n < 1 {
		return apperr.NewValidation("set page", map[string]string{ParamPage: "page must be at least 1"})
	}
	c.update(func(p Snapshot) (Snapshot, bool) {
		return p.WithPage(n), p.Page() != n
	})
	return nil
}

// SetPageSize changes the page size and returns to the first page.
func (c *Controller[T]) SetPageSize(n int) error {
	if n < 1 {
		return apperr.NewValidation("set page size", map[string]string{ParamLimit: "page size must be at least 1"})
	}
	c.update(func(p Snapshot) (Snapshot, bool) {
		return p.WithPageSize(n), p.PageSize() != n
	})
	return nil
}

// SetFilter sets one filter and returns to the first page.
func (c *Controller[T]) SetFilter(key string, value any) error {
	var ferr error
	c.update(func(p Snapshot) (Snapshot, bool) {
		next, err := p.WithFilter(key, value)
		if err != nil {
			ferr = err
			return p, false
		}
		return next, next.Key() != p.Key()
	})
	return ferr
}

// ClearFilter removes one filter.
func (c *Controller[T]) ClearFilter(key string) {
	c.update(func(p Snapshot) (Snapshot, bool) {
		next := p.WithoutFilter(key)
		return next, next.Key() != p.Key()
	})
}

// Previous requests the page before the current one. It is a no-op on the
// first page, and while no page of the current search and filters has loaded.
func (c *Controller[T]) Previous() bool {
	return c.navigate(paging.Nav.PreviousPage)
}

// Next requests the page after the current one. It is a no-op on the last
// page, and while no page of the current search and filters has loaded.
func (c *Controller[T]) Next() bool {
	return c.navigate(paging.Nav.NextPage)
}

func (c *Controller[T]) navigate(step func(paging.Nav) (int, bool)) bool {
	moved := false
	c.update(func(p Snapshot) (Snapshot, bool) {
		// 只在同一查询（仅页码不同）的结果上翻页
		if c.last == nil || !samePageSet(c.lastSnap, p) {
			return p, false
		}
		page, ok := step(c.last.Nav())
		if !ok || page == p.Page() {
			return p, false
		}
		moved = true
		return p.WithPage(page), true
	})
	return moved
}

// samePageSet reports whether a and b differ at most in their page.
func samePageSet(a, b Snapshot) bool {
	return !a.IsZero() && a.WithPage(1).Key() == b.WithPage(1).Key()
}

// Refresh drops the cached page for the current snapshot and fetches it again.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.exec.Forget(c.params)
	c.started = true
	c.issueLocked()
	c.mu.Unlock()
	c.flush()
}

// Close stops the debouncer, abandons in-flight fetches and drops all
// subscribers. No state committed after Close is published.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	clear(c.subs)
	c.queue = nil
	c.mu.Unlock()

	c.debouncer.Stop()
	c.cancel()
}

// update applies fn to the params under the lock and issues a new query when
// fn reports a change.
func (c *Controller[T]) update(fn func(Snapshot) (Snapshot, bool)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next, changed := fn(c.params)
	if !changed {
		c.mu.Unlock()
		return
	}
	c.params = next
	c.started = true
	c.issueLocked()
	c.mu.Unlock()
	c.flush()
}

// issueLocked starts a query for c.params. The caller holds c.mu and must
// call flush after unlocking.
func (c *Controller[T]) issueLocked() {
	c.gen++
	gen, snap := c.gen, c.params

	if res, ok := c.exec.Peek(snap); ok {
		c.metrics.RecordCacheHit(snap.Resource())
		c.commitSuccessLocked(snap, res)
		return
	}

	c.setStateLocked(QueryState[T]{Status: StatusLoading, Snapshot: snap})
	go func() {
		res, err := c.exec.Fetch(c.ctx, snap)
		c.commit(gen, snap, res, err)
	}()
}

func (c *Controller[T]) commit(gen uint64, snap Snapshot, res PageResult[T], err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if gen != c.gen {
		c.mu.Unlock()
		c.metrics.RecordStaleDrop(snap.Resource())
		c.logger.Debug("dropping stale list response", "key", snap.Key(), "err", err)
		return
	}
	if err != nil {
		st := QueryState[T]{Status: StatusError, Err: err, Snapshot: snap}
		if c.keepOnError {
			st.Data = c.last
		} else {
			c.last = nil
		}
		c.logger.Warn("list query failed", "key", snap.Key(), "kind", apperr.KindOf(err).String(), "err", err)
		c.setStateLocked(st)
	} else {
		c.commitSuccessLocked(snap, res)
	}
	c.mu.Unlock()
	c.flush()
}

func (c *Controller[T]) commitSuccessLocked(snap Snapshot, res PageResult[T]) {
	data := res
	c.last = &data
	c.lastSnap = snap
	c.setStateLocked(QueryState[T]{Status: StatusSuccess, Data: &data, Snapshot: snap})
}

func (c *Controller[T]) setStateLocked(st QueryState[T]) {
	st.UpdatedAt = time.Now()
	c.state = st
	c.queue = append(c.queue, st)
}

// flush delivers queued states. Only one goroutine delivers at a time, so
// subscribers observe states in the order they were committed; a goroutine
// that finds delivery in progress leaves its states to the active deliverer.
func (c *Controller[T]) flush() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for len(c.queue) > 0 && !c.closed {
		st := c.queue[0]
		c.queue = c.queue[1:]
		subs := make([]func(QueryState[T]), 0, len(c.subs))
		for _, fn := range c.subs {
			subs = append(subs, fn)
		}
		c.mu.Unlock()
		for _, fn := range subs {
			fn(st)
		}
		c.mu.Lock()
	}
	c.delivering = false
	c.mu.Unlock()
}
