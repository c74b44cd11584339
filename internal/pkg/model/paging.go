package model

// ListQuery represents common pagination parameters of a list screen.
// Bind from query parameters using Gin: page, limit, search.
type ListQuery struct {
	Page   int    `form:"page" json:"page" validate:"omitempty,gte=1"`
	Limit  int    `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=1000"`
	Search string `form:"search" json:"search" validate:"omitempty,max=200"`
}

// SetDefaults applies defaults and caps according to max size.
func (q *ListQuery) SetDefaults(defaultPage, defaultLimit, maxLimit int) {
	if q.Page <= 0 {
		q.Page = defaultPage
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
}

// Offset returns the item offset for the current page.
func (q ListQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Validate validates the paging parameters using go-playground/validator.
func (q ListQuery) Validate() error {
	return validateStruct("list query", q)
}
