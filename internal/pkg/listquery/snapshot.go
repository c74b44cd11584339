// Package listquery implements the paginated, filterable and debounced list
// fetch used by every list screen of the storefront: a snapshot of query
// parameters, a deduplicating cached executor, and a controller that debounces
// search input and publishes only the newest result to its subscribers.
package listquery

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"

	"storefront/internal/pkg/common/apperr"
)

// Query parameter names shared with the REST backend.
const (
	ParamPage   = "page"
	ParamLimit  = "limit"
	ParamSearch = "search"
)

// Snapshot is an immutable set of parameters for one list query.
// Build it with NewSnapshot and derive changed copies with the With* methods.
type Snapshot struct {
	resource string
	page     int
	pageSize int
	search   string
	filters  map[string]any
}

// NewSnapshot validates and copies the parameters. Filter values must be
// scalars: string, bool, an integer or a float.
func NewSnapshot(resource string, page, pageSize int, search string, filters map[string]any) (Snapshot, error) {
	fields := map[string]string{}
	if resource == "" {
		fields["resource"] = "resource is required"
	}
	if page < 1 {
		fields[ParamPage] = "page must be at least 1"
	}
	if pageSize < 1 {
		fields[ParamLimit] = "page size must be at least 1"
	}
	for k, v := range filters {
		if isReserved(k) {
			fields[k] = fmt.Sprintf("filter %q shadows a paging parameter", k)
			continue
		}
		if _, ok := formatScalar(v); !ok {
			fields[k] = fmt.Sprintf("filter %q has non-scalar value of type %T", k, v)
		}
	}
	if len(fields) > 0 {
		return Snapshot{}, apperr.NewValidation("snapshot", fields)
	}
	return Snapshot{
		resource: resource,
		page:     page,
		pageSize: pageSize,
		search:   search,
		filters:  maps.Clone(filters),
	}, nil
}

func (s Snapshot) Resource() string { return s.resource }
func (s Snapshot) Page() int        { return s.page }
func (s Snapshot) PageSize() int    { return s.pageSize }
func (s Snapshot) Search() string   { return s.search }

// Filters returns a copy of the filter map.
func (s Snapshot) Filters() map[string]any {
	if s.filters == nil {
		return map[string]any{}
	}
	return maps.Clone(s.filters)
}

func (s Snapshot) Filter(key string) (any, bool) {
	v, ok := s.filters[key]
	return v, ok
}

// IsZero reports whether s was never initialised.
func (s Snapshot) IsZero() bool { return s.resource == "" }

// WithPage returns a copy requesting page. Pages below 1 are clamped to 1.
func (s Snapshot) WithPage(page int) Snapshot {
	if page < 1 {
		page = 1
	}
	s.page = page
	return s
}

// WithPageSize returns a copy with a new page size; the page resets to 1.
func (s Snapshot) WithPageSize(size int) Snapshot {
	if size < 1 {
		size = 1
	}
	s.pageSize = size
	s.page = 1
	return s
}

// WithSearch returns a copy with the new search text; the page resets to 1.
func (s Snapshot) WithSearch(search string) Snapshot {
	s.search = search
	s.page = 1
	return s
}

// WithFilter returns a copy with key set to value; the page resets to 1.
func (s Snapshot) WithFilter(key string, value any) (Snapshot, error) {
	if isReserved(key) {
		return s, apperr.NewValidation("snapshot", map[string]string{key: fmt.Sprintf("filter %q shadows a paging parameter", key)})
	}
	if _, ok := formatScalar(value); !ok {
		return s, apperr.NewValidation("snapshot", map[string]string{key: fmt.Sprintf("filter %q has non-scalar value of type %T", key, value)})
	}
	f := maps.Clone(s.filters)
	if f == nil {
		f = make(map[string]any, 1)
	}
	f[key] = value
	s.filters = f
	s.page = 1
	return s, nil
}

// WithoutFilter returns a copy without key.
func (s Snapshot) WithoutFilter(key string) Snapshot {
	if _, ok := s.filters[key]; !ok {
		return s
	}
	f := maps.Clone(s.filters)
	delete(f, key)
	s.filters = f
	s.page = 1
	return s
}

// Values encodes the snapshot as the query string sent to the backend.
// An empty search is omitted.
func (s Snapshot) Values() url.Values {
	v := url.Values{}
	for k, val := range s.filters {
		str, _ := formatScalar(val)
		v.Set(k, str)
	}
	v.Set(ParamPage, strconv.Itoa(s.page))
	v.Set(ParamLimit, strconv.Itoa(s.pageSize))
	if s.search != "" {
		v.Set(ParamSearch, s.search)
	}
	return v
}

// Key is the value identity of the snapshot. Two snapshots with equal
// parameters have equal keys regardless of how they were built.
func (s Snapshot) Key() string {
	return s.resource + "?" + s.Values().Encode()
}

func (s Snapshot) String() string { return s.Key() }

func isReserved(key string) bool {
	return key == ParamPage || key == ParamLimit || key == ParamSearch
}

func formatScalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.FormatInt(int64(t), 10), true
	case int8:
		return strconv.FormatInt(int64(t), 10), true
	case int16:
		return strconv.FormatInt(int64(t), 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint8:
		return strconv.FormatUint(uint64(t), 10), true
	case uint16:
		return strconv.FormatUint(uint64(t), 10), true
	case uint32:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}
