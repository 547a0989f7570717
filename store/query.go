package store

import "strings"

const (
	// DefaultPerPage is the page size used when per_page is absent or invalid.
	DefaultPerPage = 10
	// MaxPerPage caps per_page to keep result pages bounded.
	MaxPerPage = 100
	// DefaultSortField orders listings when sort_by is absent or unknown.
	DefaultSortField = "pub_date"
	// DefaultSortOrder is used when sort_order is absent or unrecognized.
	DefaultSortOrder = "asc"
)

// sortColumns whitelists the sort_by values a listing may order by. Sort
// fields are resolved through this map only; anything else falls back to
// DefaultSortField instead of reaching the SQL layer.
var sortColumns = map[string]string{
	"id":           "id",
	"title":        "title",
	"content":      "content",
	"author":       "author",
	"is_published": "is_published",
	"pub_date":     "pub_date",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
}

// ListQuery carries the filter, sort, and pagination parameters of one
// article listing. Zero values mean "use the default".
type ListQuery struct {
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
	Author    string
	Keyword   string
}

// Normalize returns a copy with pagination clamped, the sort column resolved
// through the whitelist, and filters trimmed. defaultPerPage <= 0 falls back
// to DefaultPerPage.
func (q ListQuery) Normalize(defaultPerPage int) ListQuery {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}

	if col, ok := sortColumns[strings.ToLower(strings.TrimSpace(q.SortBy))]; ok {
		q.SortBy = col
	} else {
		q.SortBy = DefaultSortField
	}

	switch strings.ToLower(strings.TrimSpace(q.SortOrder)) {
	case "desc":
		q.SortOrder = "desc"
	default:
		q.SortOrder = DefaultSortOrder
	}

	q.Author = strings.TrimSpace(q.Author)
	q.Keyword = strings.TrimSpace(q.Keyword)
	return q
}

// OrderClause renders the ORDER BY expression for a normalized query.
func (q ListQuery) OrderClause() string {
	return q.SortBy + " " + strings.ToUpper(q.SortOrder)
}

// Offset returns the number of rows to skip for a normalized query.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}
