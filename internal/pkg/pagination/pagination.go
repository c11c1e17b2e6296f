// Package pagination parses the listing query convention shared by every
// list endpoint (pageNum, pageSize, searchBy, keyword, sortBy, isAscending)
// and applies it to gorm queries.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Query is a parsed listing request
type Query struct {
	PageNum     int    `json:"pageNum"`
	PageSize    int    `json:"pageSize"`
	SearchBy    string `json:"searchBy,omitempty"`
	Keyword     string `json:"keyword,omitempty"`
	SortBy      string `json:"sortBy,omitempty"`
	IsAscending bool   `json:"isAscending"`
}

// Fields whitelists the columns a resource may be searched and sorted by.
// Keys are the API names, values the database columns.
type Fields struct {
	Search      map[string]string
	Sort        map[string]string
	DefaultSort string
}

// FromContext reads the listing parameters from the request query string
func FromContext(c *gin.Context) Query {
	return FromValues(c.Request.URL.Query())
}

// FromValues parses the listing parameters, clamping page and size
func FromValues(v url.Values) Query {
	q := Query{
		PageNum:  atoi(v.Get("pageNum"), 1),
		PageSize: atoi(v.Get("pageSize"), DefaultPageSize),
		SearchBy: strings.TrimSpace(v.Get("searchBy")),
		Keyword:  strings.TrimSpace(v.Get("keyword")),
		SortBy:   strings.TrimSpace(v.Get("sortBy")),
	}
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	q.IsAscending, _ = strconv.ParseBool(v.Get("isAscending"))
	return q
}

// Values renders the query back into URL parameters for API clients
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.PageNum > 0 {
		v.Set("pageNum", strconv.Itoa(q.PageNum))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.SearchBy != "" {
		v.Set("searchBy", q.SearchBy)
	}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		v.Set("isAscending", strconv.FormatBool(q.IsAscending))
	}
	return v
}

// Offset returns the row offset of the requested page
func (q Query) Offset() int {
	return (q.PageNum - 1) * q.PageSize
}

// Filter applies the keyword search. An unknown searchBy searches every
// whitelisted column.
func (q Query) Filter(db *gorm.DB, f Fields) *gorm.DB {
	if q.Keyword == "" || len(f.Search) == 0 {
		return db
	}
	pattern := "%" + strings.ToLower(q.Keyword) + "%"

	if col, ok := f.Search[q.SearchBy]; ok {
		return db.Where(fmt.Sprintf("LOWER(%s) LIKE ?", col), pattern)
	}

	clauses := make([]string, 0, len(f.Search))
	args := make([]any, 0, len(f.Search))
	for _, col := range f.Search {
		clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", col))
		args = append(args, pattern)
	}
	return db.Where(strings.Join(clauses, " OR "), args...)
}

// OrderClause returns a safe ORDER BY expression
func (q Query) OrderClause(f Fields) string {
	col, ok := f.Sort[q.SortBy]
	if !ok {
		if f.DefaultSort != "" {
			return f.DefaultSort
		}
		return "id DESC"
	}
	if q.IsAscending {
		return col + " ASC"
	}
	return col + " DESC"
}

// Page applies ordering, offset and limit
func (q Query) Page(db *gorm.DB, f Fields) *gorm.DB {
	return db.Order(q.OrderClause(f)).Offset(q.Offset()).Limit(q.PageSize)
}

func atoi(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}
