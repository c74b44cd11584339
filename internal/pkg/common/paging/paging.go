package paging

import "fmt"

// Pagination is the block every list endpoint returns next to its items.
type Pagination struct {
	CurrentPage  int `json:"currentPage" yaml:"currentPage"`
	TotalPages   int `json:"totalPages" yaml:"totalPages"`
	TotalItems   int `json:"totalItems" yaml:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage" yaml:"itemsPerPage"`
}

// Validate checks the invariants a server response must hold for itemCount
// items: 0 <= currentPage <= totalPages (any currentPage when totalPages is 0)
// and itemCount <= itemsPerPage.
func (p Pagination) Validate(itemCount int) error {
	if p.TotalPages < 0 || p.TotalItems < 0 || p.ItemsPerPage < 0 {
		return fmt.Errorf("negative pagination field: %+v", p)
	}
	if p.TotalPages > 0 && (p.CurrentPage < 0 || p.CurrentPage > p.TotalPages) {
		return fmt.Errorf("current page %d out of range [0, %d]", p.CurrentPage, p.TotalPages)
	}
	if p.ItemsPerPage > 0 && itemCount > p.ItemsPerPage {
		return fmt.Errorf("%d items exceed page size %d", itemCount, p.ItemsPerPage)
	}
	return nil
}

// Nav is the derived state of the previous/next controls.
type Nav struct {
	CurrentPage int
	TotalPages  int
	HasPrevious bool
	HasNext     bool
	// ShowControls is false when everything fits on one page.
	ShowControls bool
}

// Navigation derives the control state from a server reported pagination.
func Navigation(p Pagination) Nav {
	return Nav{
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		HasPrevious:  p.CurrentPage > 1,
		HasNext:      p.CurrentPage < p.TotalPages,
		ShowControls: p.TotalPages > 1,
	}
}

// PreviousPage returns the page to request for "previous", or false when
// already on the first page.
func (n Nav) PreviousPage() (int, bool) {
	if !n.HasPrevious {
		return 0, false
	}
	return n.CurrentPage - 1, true
}

// NextPage returns the page to request for "next", or false on the last page.
func (n Nav) NextPage() (int, bool) {
	if !n.HasNext {
		return 0, false
	}
	return n.CurrentPage + 1, true
}

// TotalPagesFor returns how many pages totalItems spans at pageSize.
func TotalPagesFor(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Window returns the [start, end) bounds of page within total items.
func Window(page, pageSize, total int) (int, int) {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
