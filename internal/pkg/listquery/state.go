package listquery

import (
	"time"

	"storefront/internal/pkg/common/paging"
)

// PageResult is one page of items plus the server's pagination block.
type PageResult[T any] struct {
	Items      []T               `json:"items"`
	Pagination paging.Pagination `json:"pagination"`
}

// Empty reports whether the page carries no items.
func (r PageResult[T]) Empty() bool { return len(r.Items) == 0 }

// Validate checks the pagination invariants against the item count.
func (r PageResult[T]) Validate() error { return r.Pagination.Validate(len(r.Items)) }

func (r PageResult[T]) Nav() paging.Nav { return paging.Navigation(r.Pagination) }

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// QueryState is what a list screen renders. Data is shared between
// subscribers and must be treated as read-only.
type QueryState[T any] struct {
	Status    Status
	Data      *PageResult[T]
	Err       error
	Snapshot  Snapshot
	UpdatedAt time.Time
}

func (s QueryState[T]) IsLoading() bool { return s.Status == StatusLoading }

// IsEmpty is true for a successful query that returned no items.
func (s QueryState[T]) IsEmpty() bool {
	return s.Status == StatusSuccess && (s.Data == nil || s.Data.Empty())
}

// Nav derives the navigation controls; all disabled while there is no data.
func (s QueryState[T]) Nav() paging.Nav {
	if s.Data == nil {
		return paging.Nav{}
	}
	return s.Data.Nav()
}
