// Package table implements the search, filter, sort, paginate and CSV
// export behaviour shared by the admin back-office tables.  Rows are held
// in memory; a Schema describes how each column of a row type is read.
package table

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Kind selects how a column is compared when sorting.
type Kind int

const (
	Text Kind = iota
	Number
	Date
)

// Page size limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Column describes one column of T.  Text is required and is used for
// searching, filtering and CSV output; Num and Time back Number and Date
// sorting.
type Column[T any] struct {
	Name       string // query parameter / sort key
	Header     string // CSV header; empty keeps the column out of exports
	Kind       Kind
	Searchable bool
	Filterable bool
	Text       func(T) string
	Num        func(T) float64
	Time       func(T) time.Time
}

// Schema is the ordered set of columns of a table.  DateColumn names the
// column the from/to range applies to; empty disables range filtering.
type Schema[T any] struct {
	Columns    []Column[T]
	DateColumn string
}

// Query is a parsed table request.
type Query struct {
	Search   string
	Filters  map[string]string
	From     time.Time // inclusive; zero means unbounded
	Until    time.Time // exclusive; zero means unbounded
	Sort     string
	Desc     bool
	Page     int
	PageSize int
}

// Page is one page of a filtered and sorted table.
type Page[T any] struct {
	Rows       []T `json:"rows"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Column looks up a column by name.
func (s Schema[T]) Column(name string) (Column[T], bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Filter returns the rows matching the search term, every column filter and
// the date range, in their original order.
func (s Schema[T]) Filter(rows []T, q Query) []T {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	dateCol, hasDate := s.Column(s.DateColumn)
	hasDate = hasDate && dateCol.Time != nil && (!q.From.IsZero() || !q.Until.IsZero())

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if search != "" && !s.matchSearch(row, search) {
			continue
		}
		if !s.matchFilters(row, q.Filters) {
			continue
		}
		if hasDate {
			t := dateCol.Time(row)
			if !q.From.IsZero() && t.Before(q.From) {
				continue
			}
			if !q.Until.IsZero() && !t.Before(q.Until) {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

func (s Schema[T]) matchSearch(row T, term string) bool {
	for _, c := range s.Columns {
		if c.Searchable && strings.Contains(strings.ToLower(c.Text(row)), term) {
			return true
		}
	}
	return false
}

func (s Schema[T]) matchFilters(row T, filters map[string]string) bool {
	for name, want := range filters {
		want = strings.ToLower(strings.TrimSpace(want))
		if want == "" {
			continue
		}
		c, ok := s.Column(name)
		if !ok || !c.Filterable {
			continue
		}
		if !strings.Contains(strings.ToLower(c.Text(row)), want) {
			return false
		}
	}
	return true
}

// Sort returns a sorted copy of rows.  Ascending order is stable with
// respect to the input; descending order is exactly the reverse of the
// ascending one.  An unknown sort column leaves the order unchanged.
func (s Schema[T]) Sort(rows []T, q Query) []T {
	out := append([]T(nil), rows...)
	c, ok := s.Column(q.Sort)
	if !ok {
		return out
	}
	less := lessFunc(c)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if q.Desc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func lessFunc[T any](c Column[T]) func(a, b T) bool {
	switch {
	case c.Kind == Number && c.Num != nil:
		return func(a, b T) bool { return c.Num(a) < c.Num(b) }
	case c.Kind == Date && c.Time != nil:
		return func(a, b T) bool { return c.Time(a).Before(c.Time(b)) }
	default:
		return func(a, b T) bool {
			return strings.ToLower(c.Text(a)) < strings.ToLower(c.Text(b))
		}
	}
}

// Paginate cuts one page out of rows.  page is 1-based and clamped to at
// least 1; size falls back to DefaultPageSize and is capped at MaxPageSize.
// A page past the end is returned empty.
func Paginate[T any](rows []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(rows)
	p := Page[T]{
		Rows:       []T{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}
	start := (page - 1) * size
	if start >= total {
		return p
	}
	end := start + size
	if end > total {
		end = total
	}
	p.Rows = rows[start:end]
	return p
}

// Apply filters, sorts and paginates rows.
func (s Schema[T]) Apply(rows []T, q Query) Page[T] {
	return Paginate(s.Sort(s.Filter(rows, q), q), q.Page, q.PageSize)
}
