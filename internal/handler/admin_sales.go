package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/repository"
)

// SalesLedger is the sales history as seen by the back office;
// *repository.SaleRepo implements it.
type SalesLedger interface {
	List(ctx context.Context) ([]model.Sale, error)
	DailyTotals(ctx context.Context, since time.Time) ([]repository.DailyTotal, error)
}

// chartRanges are the periods the sales chart offers, in days.
var chartRanges = map[string]int{"7d": 7, "30d": 30, "90d": 90}

// SalesHandler serves /v1/admin/sales.
type SalesHandler struct {
	Sales SalesLedger
	now   func() time.Time
}

func NewSalesHandler(s SalesLedger) *SalesHandler { return &SalesHandler{Sales: s, now: time.Now} }

func (h *SalesHandler) rows(c echo.Context) ([]SaleRow, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Sales.List(ctx)
	if err != nil {
		return nil, err
	}
	return saleRows(list), nil
}

// List returns one page of sales, newest first unless sorted otherwise.
func (h *SalesHandler) List(c echo.Context) error {
	rows, err := h.rows(c)
	if err != nil {
		return fail(c, err)
	}
	return listTable(c, saleSchema, rows)
}

// Export downloads the filtered sales as penjualan_bbm.csv.
func (h *SalesHandler) Export(c echo.Context) error {
	rows, err := h.rows(c)
	if err != nil {
		return fail(c, err)
	}
	return exportTable(c, saleSchema, rows, "penjualan_bbm.csv")
}

// SalesSummary totals a set of sales.
type SalesSummary struct {
	Transactions int             `json:"transactions"`
	Liters       decimal.Decimal `json:"liters"`
	Revenue      int64           `json:"revenue"`
	FuelTypes    []string        `json:"fuel_types"`
}

func summarize(rows []SaleRow) SalesSummary {
	s := SalesSummary{Transactions: len(rows), Liters: decimal.Zero, FuelTypes: []string{}}
	seen := map[string]bool{}
	for _, r := range rows {
		s.Liters = s.Liters.Add(r.Liters)
		s.Revenue += r.Nominal
		if !seen[r.FuelType] {
			seen[r.FuelType] = true
			s.FuelTypes = append(s.FuelTypes, r.FuelType)
		}
	}
	sort.Strings(s.FuelTypes)
	return s
}

// Summary totals the sales matching the same search, filters and date
// range as List.
func (h *SalesHandler) Summary(c echo.Context) error {
	rows, err := h.rows(c)
	if err != nil {
		return fail(c, err)
	}
	q, err := saleSchema.ParseQuery(c.QueryParams())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, summarize(saleSchema.Filter(rows, q)))
}

// Chart returns one point per day for the last 7, 30 or 90 days, oldest
// first, with zero points for days without sales.
func (h *SalesHandler) Chart(c echo.Context) error {
	rng := c.QueryParam("range")
	if rng == "" {
		rng = "7d"
	}
	days, ok := chartRanges[rng]
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "range must be 7d, 30d or 90d"})
	}
	today := h.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	ctx, cancel := reqCtx(c)
	defer cancel()
	totals, err := h.Sales.DailyTotals(ctx, since)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"range": rng, "points": fillDays(since, days, totals)})
}

// fillDays lays totals over a run of consecutive days.
func fillDays(since time.Time, days int, totals []repository.DailyTotal) []repository.DailyTotal {
	byDate := make(map[string]repository.DailyTotal, len(totals))
	for _, t := range totals {
		byDate[t.Date] = t
	}
	out := make([]repository.DailyTotal, days)
	for i := range out {
		d := since.AddDate(0, 0, i).Format("2006-01-02")
		if t, ok := byDate[d]; ok {
			out[i] = t
		} else {
			out[i] = repository.DailyTotal{Date: d, Liters: decimal.Zero}
		}
	}
	return out
}
