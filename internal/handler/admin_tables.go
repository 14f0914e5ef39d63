package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/table"
)

// Back-office rows carry a 1-based No in fetch order, so the number a
// user sees stays attached to the record through search and sort.

type AccountRow struct {
	No int `json:"no"`
	model.Account
}

type RecipientRow struct {
	No int `json:"no"`
	model.Recipient
}

type SaleRow struct {
	No int `json:"no"`
	model.Sale
}

// timeLayout is how timestamps appear in tables and CSV files.
const timeLayout = "2006-01-02 15:04:05"

func yesNo(b bool) string {
	if b {
		return "Ya"
	}
	return "Tidak"
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func numCol[T any](name, header string, text func(T) string, num func(T) float64) table.Column[T] {
	return table.Column[T]{Name: name, Header: header, Kind: table.Number, Text: text, Num: num}
}

var accountSchema = table.Schema[AccountRow]{
	DateColumn: "created_at",
	Columns: []table.Column[AccountRow]{
		numCol("no", "No", func(r AccountRow) string { return strconv.Itoa(r.No) }, func(r AccountRow) float64 { return float64(r.No) }),
		{Name: "name", Header: "Nama", Searchable: true, Text: func(r AccountRow) string { return r.Name }},
		{Name: "email", Header: "Email", Searchable: true, Text: func(r AccountRow) string { return r.Email }},
		{Name: "role", Header: "Peran", Searchable: true, Filterable: true, Text: func(r AccountRow) string { return r.Role }},
		{Name: "is_approved", Header: "Disetujui", Kind: table.Number, Filterable: true,
			Text: func(r AccountRow) string { return yesNo(r.IsApproved) },
			Num:  func(r AccountRow) float64 { return boolNum(r.IsApproved) }},
		{Name: "created_at", Header: "Dibuat", Kind: table.Date,
			Text: func(r AccountRow) string { return r.CreatedAt.Format(timeLayout) },
			Time: func(r AccountRow) time.Time { return r.CreatedAt }},
	},
}

var recipientSchema = table.Schema[RecipientRow]{
	Columns: []table.Column[RecipientRow]{
		numCol("no", "No", func(r RecipientRow) string { return strconv.Itoa(r.No) }, func(r RecipientRow) float64 { return float64(r.No) }),
		{Name: "plate", Header: "Plat", Searchable: true, Text: func(r RecipientRow) string { return r.Plate }},
		{Name: "owner", Header: "Nama", Searchable: true, Text: func(r RecipientRow) string { return r.Owner }},
		numCol("daily_quota", "Kuota", func(r RecipientRow) string { return r.DailyQuota.StringFixed(2) }, func(r RecipientRow) float64 { return r.DailyQuota.InexactFloat64() }),
		numCol("remaining_quota", "Sisa Kuota", func(r RecipientRow) string { return r.RemainingQuota.StringFixed(2) }, func(r RecipientRow) float64 { return r.RemainingQuota.InexactFloat64() }),
		{Name: "fuel_type", Header: "Jenis BBM", Searchable: true, Filterable: true, Text: func(r RecipientRow) string { return r.FuelType }},
		{Name: "vehicle_type", Header: "Kendaraan", Searchable: true, Filterable: true, Text: func(r RecipientRow) string { return r.VehicleType }},
		{Name: "brand", Header: "Merek", Searchable: true, Filterable: true, Text: func(r RecipientRow) string { return r.Brand }},
		{Name: "color", Header: "Warna", Searchable: true, Filterable: true, Text: func(r RecipientRow) string { return r.Color }},
		numCol("year", "Tahun", func(r RecipientRow) string { return r.Year }, func(r RecipientRow) float64 {
			n, _ := strconv.Atoi(r.Year)
			return float64(n)
		}),
	},
}

var saleSchema = table.Schema[SaleRow]{
	DateColumn: "sold_at",
	Columns: []table.Column[SaleRow]{
		numCol("no", "No", func(r SaleRow) string { return strconv.Itoa(r.No) }, func(r SaleRow) float64 { return float64(r.No) }),
		{Name: "id", Header: "ID Pembelian", Searchable: true, Text: func(r SaleRow) string { return r.ID }},
		{Name: "plate", Header: "Plat Nomor", Searchable: true, Filterable: true, Text: func(r SaleRow) string { return r.Plate }},
		{Name: "fuel_type", Header: "Jenis BBM", Searchable: true, Filterable: true, Text: func(r SaleRow) string { return r.FuelType }},
		numCol("liters", "Liter", func(r SaleRow) string { return r.Liters.StringFixed(2) }, func(r SaleRow) float64 { return r.Liters.InexactFloat64() }),
		numCol("nominal", "Nominal", func(r SaleRow) string { return strconv.FormatInt(r.Nominal, 10) }, func(r SaleRow) float64 { return float64(r.Nominal) }),
		{Name: "sold_at", Header: "Waktu Pembelian", Kind: table.Date, Searchable: true,
			Text: func(r SaleRow) string { return r.SoldAt.Format(timeLayout) },
			Time: func(r SaleRow) time.Time { return r.SoldAt }},
	},
}

func accountRows(in []model.Account) []AccountRow {
	out := make([]AccountRow, len(in))
	for i, a := range in {
		out[i] = AccountRow{No: i + 1, Account: a}
	}
	return out
}

func recipientRows(in []model.Recipient) []RecipientRow {
	out := make([]RecipientRow, len(in))
	for i, v := range in {
		out[i] = RecipientRow{No: i + 1, Recipient: v}
	}
	return out
}

func saleRows(in []model.Sale) []SaleRow {
	out := make([]SaleRow, len(in))
	for i, s := range in {
		out[i] = SaleRow{No: i + 1, Sale: s}
	}
	return out
}

// listTable answers a table request with one page as JSON.
func listTable[T any](c echo.Context, s table.Schema[T], rows []T) error {
	q, err := s.ParseQuery(c.QueryParams())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.Apply(rows, q))
}

// exportTable writes the whole filtered and sorted set as a CSV attachment.
func exportTable[T any](c echo.Context, s table.Schema[T], rows []T, filename string) error {
	q, err := s.ParseQuery(c.QueryParams())
	if err != nil {
		return fail(c, err)
	}
	rows = s.Sort(s.Filter(rows, q), q)
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	h.Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return s.WriteCSV(c.Response(), rows)
}
