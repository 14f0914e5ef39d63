// Package web holds the dashboard's HTML templates and the echo renderer
// that serves them.  Every page is parsed together with base.html and
// executed through its "base" template.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var files embed.FS

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template once.
func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, n := range names {
		name := strings.TrimSuffix(path.Base(n), ".html")
		if name == "base" {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(files, "templates/base.html", n)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", n, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page name.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}

var funcs = template.FuncMap{
	"rupiah":  Rupiah,
	"liters":  func(d decimal.Decimal) string { return d.StringFixed(2) },
	"when":    func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	"param":   withParam,
	"sortby":  sortBy,
	"add":     func(a, b int) int { return a + b },
	"upper":   strings.ToUpper,
	"keys":    func() []string { return []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "C", "0", "000"} },
	"percent": percent,
}

// Rupiah formats n as "Rp 1.250.000".
func Rupiah(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}
	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

// withParam returns the query string of v with key set to val.
func withParam(v url.Values, key string, val interface{}) string {
	out := url.Values{}
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	out.Set(key, fmt.Sprint(val))
	return "?" + out.Encode()
}

// sortBy links a column header: sort by col ascending, or descending when
// the table is already sorted by col ascending.  The page resets to 1.
func sortBy(v url.Values, col string) string {
	out := url.Values{}
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	order := "asc"
	if v.Get("sort") == col && v.Get("order") != "desc" {
		order = "desc"
	}
	out.Set("sort", col)
	out.Set("order", order)
	out.Del("page")
	return "?" + out.Encode()
}

// percent scales n against max for the chart bars.
func percent(n, max int64) int {
	if max <= 0 || n <= 0 {
		return 0
	}
	return int(n * 100 / max)
}
