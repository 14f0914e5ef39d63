package table

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrBadDate is returned by ParseQuery for a from/to value that is neither
// YYYY-MM-DD nor RFC3339.
var ErrBadDate = errors.New("invalid date, use YYYY-MM-DD")

// ParseQuery reads a Query from URL parameters:
//
//	q / search            free-text search
//	filter[<col>], <col>  column filters (filterable columns only)
//	from, to              date range; a date-only "to" covers the whole day
//	sort, order           sort column and asc|desc
//	page, page_size       pagination
func (s Schema[T]) ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Search:  firstNonEmpty(v.Get("q"), v.Get("search")),
		Filters: map[string]string{},
		Sort:    v.Get("sort"),
		Desc:    strings.EqualFold(v.Get("order"), "desc"),
	}
	q.Page, _ = strconv.Atoi(v.Get("page"))
	q.PageSize, _ = strconv.Atoi(v.Get("page_size"))

	for _, c := range s.Columns {
		if !c.Filterable {
			continue
		}
		if f := firstNonEmpty(v.Get("filter["+c.Name+"]"), v.Get(c.Name)); f != "" {
			q.Filters[c.Name] = f
		}
	}

	var err error
	if from := v.Get("from"); from != "" {
		if q.From, _, err = parseDate(from); err != nil {
			return Query{}, err
		}
	}
	if to := v.Get("to"); to != "" {
		t, dateOnly, err := parseDate(to)
		if err != nil {
			return Query{}, err
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.Add(time.Nanosecond)
		}
		q.Until = t
	}
	return q, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, ErrBadDate
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
