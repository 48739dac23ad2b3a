package httpx

// Pagination defaults
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageQuery is embedded in list requests bound from the query string
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// Normalize clamps page to >= 1 and pageSize to [1, MaxPageSize]
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

// Offset returns the number of rows to skip for the current page
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// TotalPages returns ceil(total / pageSize), or 0 when there is nothing to show
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
