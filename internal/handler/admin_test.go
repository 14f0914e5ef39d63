package handler

import (
	"encoding/csv"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/repository"
)

func adminEcho(a *fakeAccounts, r *fakeRecipients, s *SalesHandler, p *PricesHandler) *echo.Echo {
	e := echo.New()
	ah := NewAccountsHandler(a)
	e.GET("/accounts", ah.List)
	e.GET("/accounts/export.csv", ah.Export)
	e.PATCH("/accounts/:id/approve", ah.Approve)
	e.PUT("/accounts/:id", ah.Edit)
	e.DELETE("/accounts/:id", ah.Delete)

	rh := NewRecipientsHandler(r)
	e.GET("/recipients", rh.List)
	e.GET("/recipients/export.csv", rh.Export)
	e.POST("/recipients", rh.Create)
	e.PUT("/recipients/:plate", rh.Update)
	e.DELETE("/recipients/:plate", rh.Delete)
	e.POST("/recipients/reset-quota", rh.ResetQuota)

	e.GET("/sales", s.List)
	e.GET("/sales/export.csv", s.Export)
	e.GET("/sales/summary", s.Summary)
	e.GET("/sales/chart", s.Chart)

	e.GET("/prices", p.List)
	e.PUT("/prices/:fuel", p.Update)
	return e
}

func sampleSales() []model.Sale {
	at := func(d, h int) time.Time { return time.Date(2025, 10, d, h, 0, 0, 0, time.UTC) }
	return []model.Sale{
		{ID: "SPBU1-B1234XYZ-20251017-PLT-0002", Plate: "B1234XYZ", FuelType: "Pertalite", Liters: decimal.RequireFromString("2.50"), Nominal: 25000, SoldAt: at(17, 10)},
		{ID: "SPBU1-D4321AB-20251016-SLR-0001", Plate: "D4321AB", FuelType: "Solar", Liters: decimal.RequireFromString("10.00"), Nominal: 68000, SoldAt: at(16, 9)},
		{ID: "SPBU1-B1234XYZ-20251015-PLT-0001", Plate: "B1234XYZ", FuelType: "Pertalite", Liters: decimal.RequireFromString("1.00"), Nominal: 10000, SoldAt: at(15, 8)},
	}
}

type adminFixture struct {
	e     *echo.Echo
	acc   *fakeAccounts
	rec   *fakeRecipients
	sales *fakeSales
	cache *fakeCache
	price *fakePrices
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		acc: &fakeAccounts{list: []model.Account{
			{ID: "a", Name: "Ani", Email: "ani@spbu.id", Role: model.RoleAdmin, IsApproved: true},
			{ID: "b", Name: "Budi", Email: "budi@spbu.id", Role: model.RoleOperator},
		}},
		rec:   &fakeRecipients{list: []model.Recipient{budiCar}},
		sales: &fakeSales{list: sampleSales()},
		cache: &fakeCache{},
		price: &fakePrices{},
	}
	sh := NewSalesHandler(f.sales)
	sh.now = func() time.Time { return time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC) }
	f.e = adminEcho(f.acc, f.rec, sh, NewPricesHandler(f.price, f.cache))
	return f
}

func TestAccountsTable(t *testing.T) {
	f := newAdminFixture()
	rec := do(f.e, http.MethodGet, "/accounts?q=BUDI", "")
	m := decode(t, rec.Body.Bytes())
	rows := m["rows"].([]any)
	if rec.Code != http.StatusOK || len(rows) != 1 || rows[0].(map[string]any)["no"] != float64(2) {
		t.Fatalf("search: %d %s", rec.Code, rec.Body)
	}

	rec = do(f.e, http.MethodGet, "/accounts/export.csv?sort=name&order=desc", "")
	if rec.Header().Get(echo.HeaderContentDisposition) != `attachment; filename="akun_data.csv"` {
		t.Fatalf("disposition %q", rec.Header().Get(echo.HeaderContentDisposition))
	}
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(records[0], []string{"No", "Nama", "Email", "Peran", "Disetujui", "Dibuat"}) {
		t.Fatalf("header %v", records[0])
	}
	if len(records) != 3 || records[1][1] != "Budi" || records[1][4] != "Tidak" {
		t.Fatalf("records %v", records)
	}

	if rec := do(f.e, http.MethodPatch, "/accounts/b/approve", ""); rec.Code != http.StatusOK || !f.acc.list[1].IsApproved {
		t.Fatalf("approve: %d", rec.Code)
	}
	if rec := do(f.e, http.MethodPatch, "/accounts/zzz/approve", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("approve missing: %d", rec.Code)
	}
	if rec := do(f.e, http.MethodPut, "/accounts/b", `{"name":"Budi S"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("edit: %d", rec.Code)
	}
	if rec := do(f.e, http.MethodDelete, "/accounts/b", ""); rec.Code != http.StatusNoContent || len(f.acc.deleted) != 1 {
		t.Fatalf("delete: %d", rec.Code)
	}
}

func TestRecipientsTable(t *testing.T) {
	f := newAdminFixture()
	rec := do(f.e, http.MethodPost, "/recipients", `{"plate":"d 4321 ab","owner":"Siti","daily_quota":60,"fuel_type":"Solar","vehicle_type":"Truk","brand":"Hino","color":"Putih","year":"2019"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	got := f.rec.list[1]
	if got.Plate != "D4321AB" || !got.RemainingQuota.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("created %+v", got)
	}
	if rec := do(f.e, http.MethodPost, "/recipients", `{"plate":"D4321AB","owner":"Siti","daily_quota":60,"fuel_type":"Solar"}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: %d", rec.Code)
	}
	for _, body := range []string{
		`{"plate":"??","owner":"X","daily_quota":1,"fuel_type":"Solar"}`,
		`{"plate":"B1A","owner":"","daily_quota":1,"fuel_type":"Solar"}`,
		`{"plate":"B1A","owner":"X","daily_quota":0,"fuel_type":"Solar"}`,
	} {
		if rec := do(f.e, http.MethodPost, "/recipients", body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: %d", body, rec.Code)
		}
	}

	rec = do(f.e, http.MethodGet, "/recipients?fuel_type=solar", "")
	if m := decode(t, rec.Body.Bytes()); m["total"] != float64(1) {
		t.Fatalf("filter: %s", rec.Body)
	}

	rec = do(f.e, http.MethodPut, "/recipients/B1234XYZ", `{"owner":"Budi","daily_quota":20,"remaining_quota":35,"fuel_type":"Pertalite"}`)
	if rec.Code != http.StatusOK || !f.rec.list[0].RemainingQuota.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("update caps remaining: %d %+v", rec.Code, f.rec.list[0])
	}

	rec = do(f.e, http.MethodGet, "/recipients/export.csv", "")
	records, _ := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	want := []string{"No", "Plat", "Nama", "Kuota", "Sisa Kuota", "Jenis BBM", "Kendaraan", "Merek", "Warna", "Tahun"}
	if !reflect.DeepEqual(records[0], want) || len(records) != 3 {
		t.Fatalf("csv %v", records)
	}

	if rec := do(f.e, http.MethodPost, "/recipients/reset-quota", ""); rec.Code != http.StatusOK || f.rec.reset != 1 {
		t.Fatalf("reset: %d", rec.Code)
	}
	if rec := do(f.e, http.MethodDelete, "/recipients/d4321ab", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := do(f.e, http.MethodDelete, "/recipients/D4321AB", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete twice: %d", rec.Code)
	}
}

func TestSalesTable(t *testing.T) {
	f := newAdminFixture()

	rec := do(f.e, http.MethodGet, "/sales?from=2025-10-16&to=2025-10-17", "")
	m := decode(t, rec.Body.Bytes())
	rows := m["rows"].([]any)
	if len(rows) != 2 || rows[0].(map[string]any)["no"] != float64(1) {
		t.Fatalf("date range: %s", rec.Body)
	}

	rec = do(f.e, http.MethodGet, "/sales?sort=nominal&order=asc", "")
	rows = decode(t, rec.Body.Bytes())["rows"].([]any)
	if rows[0].(map[string]any)["nominal"] != float64(10000) {
		t.Fatalf("sort: %s", rec.Body)
	}

	rec = do(f.e, http.MethodGet, "/sales/summary?plate=b1234", "")
	m = decode(t, rec.Body.Bytes())
	if m["transactions"] != float64(2) || m["revenue"] != float64(35000) || m["liters"] != "3.5" {
		t.Fatalf("summary: %s", rec.Body)
	}

	rec = do(f.e, http.MethodGet, "/sales/export.csv?fuel_type=solar", "")
	records, _ := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	want := []string{"No", "ID Pembelian", "Plat Nomor", "Jenis BBM", "Liter", "Nominal", "Waktu Pembelian"}
	if !reflect.DeepEqual(records[0], want) || len(records) != 2 || records[1][4] != "10.00" {
		t.Fatalf("csv %v", records)
	}

	if rec := do(f.e, http.MethodGet, "/sales?from=17-10-2025", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", rec.Code)
	}
}

func TestSalesChart(t *testing.T) {
	f := newAdminFixture()
	f.sales.totals = []repository.DailyTotal{
		{Date: "2025-10-12", Transactions: 1, Liters: decimal.NewFromInt(1), Nominal: 10000},
		{Date: "2025-10-17", Transactions: 2, Liters: decimal.NewFromInt(3), Nominal: 30000},
	}
	rec := do(f.e, http.MethodGet, "/sales/chart?range=7d", "")
	m := decode(t, rec.Body.Bytes())
	points := m["points"].([]any)
	if rec.Code != http.StatusOK || len(points) != 7 {
		t.Fatalf("chart: %d %s", rec.Code, rec.Body)
	}
	first, last := points[0].(map[string]any), points[6].(map[string]any)
	if first["date"] != "2025-10-11" || first["nominal"] != float64(0) || last["nominal"] != float64(30000) {
		t.Fatalf("points: %v ... %v", first, last)
	}
	if !f.sales.since.Equal(time.Date(2025, 10, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("since = %v", f.sales.since)
	}
	if rec := do(f.e, http.MethodGet, "/sales/chart?range=1y", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad range: %d", rec.Code)
	}
}

func TestPricesUpdateInvalidatesCache(t *testing.T) {
	f := newAdminFixture()
	rec := do(f.e, http.MethodPut, "/prices/Pertalite", `{"price":10500}`)
	if rec.Code != http.StatusOK || f.cache.invalidated != 1 {
		t.Fatalf("update: %d %d", rec.Code, f.cache.invalidated)
	}
	if rec := do(f.e, http.MethodPut, "/prices/Pertalite", `{"price":0}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("zero price: %d", rec.Code)
	}
	rec = do(f.e, http.MethodGet, "/prices", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Pertalite") {
		t.Fatalf("list: %s", rec.Body)
	}
}
