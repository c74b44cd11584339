package listquery

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"storefront/internal/pkg/common/paging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type item struct {
	ID     int
	Search string
}

// fakeBackend serves pages of generated items. Fetches for a search term
// with a gate block until the gate is closed.
type fakeBackend struct {
	mu       sync.Mutex
	total    int
	calls    map[string]int
	searches map[string]int
	calledAt map[string]time.Time
	gates    map[string]chan struct{}
	fail     map[string]error
	done     atomic.Int64
}

func newFakeBackend(total int) *fakeBackend {
	return &fakeBackend{
		total:    total,
		calls:    make(map[string]int),
		searches: make(map[string]int),
		calledAt: make(map[string]time.Time),
		gates:    make(map[string]chan struct{}),
		fail:     make(map[string]error),
	}
}

func (b *fakeBackend) gate(search string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.gates[search] = ch
	return ch
}

func (b *fakeBackend) failOn(search string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[search] = err
}

func (b *fakeBackend) callCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

func (b *fakeBackend) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func (b *fakeBackend) searchedFor(search string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searches[search] > 0
}

func (b *fakeBackend) firstCallAt(key string) time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calledAt[key]
}

func (b *fakeBackend) fetch(ctx context.Context, snap Snapshot) (PageResult[item], error) {
	defer b.done.Add(1)

	b.mu.Lock()
	key := snap.Key()
	b.calls[key]++
	if _, ok := b.calledAt[key]; !ok {
		b.calledAt[key] = time.Now()
	}
	b.searches[snap.Search()]++
	gate := b.gates[snap.Search()]
	err := b.fail[snap.Search()]
	total := b.total
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return PageResult[item]{}, ctx.Err()
		}
	}
	if err != nil {
		return PageResult[item]{}, err
	}

	start, end := paging.Window(snap.Page(), snap.PageSize(), total)
	items := make([]item, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, item{ID: i + 1, Search: snap.Search()})
	}
	return PageResult[item]{
		Items: items,
		Pagination: paging.Pagination{
			CurrentPage:  snap.Page(),
			TotalPages:   paging.TotalPagesFor(total, snap.PageSize()),
			TotalItems:   total,
			ItemsPerPage: snap.PageSize(),
		},
	}, nil
}

type countingMetrics struct {
	fetches atomic.Int64
	hits    atomic.Int64
	shared  atomic.Int64
	stale   atomic.Int64
}

func (m *countingMetrics) RecordFetch(string, time.Duration, error) { m.fetches.Add(1) }
func (m *countingMetrics) RecordCacheHit(string)                     { m.hits.Add(1) }
func (m *countingMetrics) RecordSharedFetch(string)                  { m.shared.Add(1) }
func (m *countingMetrics) RecordStaleDrop(string)                    { m.stale.Add(1) }

// recorder collects every published state.
type recorder[T any] struct {
	mu     sync.Mutex
	states []QueryState[T]
}

func (r *recorder[T]) record(st QueryState[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder[T]) all() []QueryState[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]QueryState[T](nil), r.states...)
}

func mustSnapshot(t *testing.T, resource string, page, size int, search string, filters map[string]any) Snapshot {
	t.Helper()
	s, err := NewSnapshot(resource, page, size, search, filters)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return s
}

func describe(st QueryState[item]) string {
	if st.Data == nil {
		return fmt.Sprintf("%s %s", st.Status, st.Snapshot.Key())
	}
	return fmt.Sprintf("%s %s items=%d", st.Status, st.Snapshot.Key(), len(st.Data.Items))
}
