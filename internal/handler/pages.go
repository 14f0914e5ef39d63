package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/middleware"
	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/service"
	"github.com/platif-ai/spbu-pos/internal/table"
	"github.com/platif-ai/spbu-pos/internal/terminal"
)

// Pages serves the server-rendered dashboard.  Forms post back to the same
// paths and are answered with a redirect, or with the page re-rendered
// around an error message.
type Pages struct {
	Auth       Authenticator
	Sessions   *middleware.Sessions
	Terminal   Terminal
	Accounts   *AccountsHandler
	Recipients *RecipientsHandler
	Sales      *SalesHandler
	Station    func(string) string
}

// pollEvery is the refresh interval, in seconds, of a terminal waiting for
// a plate.
const pollEvery = 2

func (p *Pages) render(c echo.Context, code int, name, title string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	data["Title"] = title
	data["Station"] = p.Station(c.QueryParam("station"))
	if u, ok := p.Sessions.Current(c); ok {
		data["User"] = u
	}
	for _, k := range []string{"Error", "Success", "Name", "Email", "Role"} {
		if _, ok := data[k]; !ok {
			data[k] = ""
		}
	}
	if data["Error"] == "" {
		data["Error"] = c.QueryParam("error")
	}
	return c.Render(code, name, data)
}

// userMessage is the text shown for err on a page.
func userMessage(c echo.Context, err error) (int, string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("page action failed", "path", c.Path(), "error", err)
		return code, "Terjadi kesalahan, coba lagi"
	}
	return code, err.Error()
}

// Feature is one card of the landing page.
type Feature struct {
	Title       string
	Description string
}

var landingFeatures = []Feature{
	{"Validasi Kendaraan Otomatis", "Sistem membaca plat nomor kendaraan dengan AI secara Real-time"},
	{"Terintegrasi Database Nasional", "Data kendaraan tersinkronisasi dengan basis data penerima subsidi"},
	{"Akurat & Transparan", "Memastikan hanya kendaraan berhak yang dapat mengakses BBM bersubsidi"},
	{"Efisiensi Operasional SPBU", "Mempercepat layanan tanpa pencatatan manual oleh petugas"},
}

// Home shows the landing page to visitors and sends a signed-in user to
// their role's page.
func (p *Pages) Home(c echo.Context) error {
	if u, ok := p.Sessions.Current(c); ok {
		return c.Redirect(http.StatusFound, model.LandingPath(u.Role))
	}
	return p.render(c, http.StatusOK, "landing", "Platif-AI", echo.Map{"Features": landingFeatures})
}

// ----- auth pages -----

func (p *Pages) LoginForm(c echo.Context) error {
	return p.render(c, http.StatusOK, "login", "Masuk", nil)
}

// Login checks the form and starts a session.  A rejected login writes no
// session and shows the reason.
func (p *Pages) Login(c echo.Context) error {
	var req loginReq
	_ = c.Bind(&req)
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := p.Auth.Authenticate(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		code, msg := userMessage(c, err)
		return p.render(c, code, "login", "Masuk", echo.Map{"Error": msg, "Email": req.Email, "Role": req.Role})
	}
	if err := p.Sessions.Save(c, middleware.SessionUser{
		ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role, IsApproved: a.IsApproved,
	}); err != nil {
		code, msg := userMessage(c, err)
		return p.render(c, code, "login", "Masuk", echo.Map{"Error": msg, "Email": req.Email, "Role": req.Role})
	}
	slog.Info("login", "user_id", a.ID, "role", a.Role)
	return c.Redirect(http.StatusSeeOther, model.LandingPath(a.Role))
}

func (p *Pages) SignupForm(c echo.Context) error {
	return p.render(c, http.StatusOK, "signup", "Daftar", nil)
}

// Signup creates an unapproved account and tells the user to wait for an
// admin.
func (p *Pages) Signup(c echo.Context) error {
	var in service.SignupInput
	_ = c.Bind(&in)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := p.Auth.Signup(ctx, in); err != nil {
		code, msg := userMessage(c, err)
		return p.render(c, code, "signup", "Daftar", echo.Map{
			"Error": msg, "Name": in.Name, "Email": in.Email, "Role": in.Role,
		})
	}
	return p.render(c, http.StatusOK, "signup", "Daftar", echo.Map{"Success": service.MsgSignupSuccess})
}

// Logout ends the session.
func (p *Pages) Logout(c echo.Context) error {
	if err := p.Sessions.Clear(c); err != nil {
		slog.Warn("clear session failed", "error", err)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// ----- operator terminal -----

func stationQuery(c echo.Context) string {
	if s := c.QueryParam("station"); s != "" {
		return "?station=" + url.QueryEscape(s)
	}
	return ""
}

// TerminalPage polls the relay and shows the purchase screen.  While waiting
// for a vehicle the page refreshes itself.
func (p *Pages) TerminalPage(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	data := echo.Map{}
	sess, err := p.Terminal.Poll(ctx, c.QueryParam("station"))
	if err != nil {
		_, data["Error"] = userMessage(c, err)
		sess, _ = p.Terminal.State(ctx, c.QueryParam("station"))
	}
	if sess.State == terminal.Idle || sess.State == terminal.PlateDetected || sess.State == "" {
		data["Refresh"] = pollEvery
	}
	data["Session"] = sess
	return p.render(c, http.StatusOK, "pembelian", "Pembelian", data)
}

// TerminalAction applies one form action: key, confirm, cancel, submit or
// reset.
func (p *Pages) TerminalAction(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	station := c.QueryParam("station")

	var err error
	switch c.FormValue("action") {
	case "key":
		_, err = p.Terminal.Key(ctx, station, c.FormValue("key"))
	case "confirm":
		_, err = p.Terminal.Confirm(ctx, station)
	case "cancel":
		_, err = p.Terminal.Cancel(ctx, station)
	case "submit":
		_, err = p.Terminal.Submit(ctx, station)
	case "reset":
		_, err = p.Terminal.Reset(ctx, station)
	default:
		err = terminal.ErrBadState
	}
	if err != nil {
		code, msg := userMessage(c, err)
		sess, _ := p.Terminal.State(ctx, station)
		return p.render(c, code, "pembelian", "Pembelian", echo.Map{"Error": msg, "Session": sess})
	}
	return c.Redirect(http.StatusSeeOther, "/pembelian"+stationQuery(c))
}

// ----- admin tables -----

// tableParams copies the request query without the page-only keys.
func tableParams(c echo.Context) url.Values {
	v := url.Values{}
	for k, vs := range c.QueryParams() {
		if k == "error" || k == "range" {
			continue
		}
		v[k] = vs
	}
	return v
}

func tablePage[T any](p *Pages, c echo.Context, name, title, export string, s table.Schema[T], rows []T, filters []string, extra echo.Map) error {
	status := http.StatusOK
	params := tableParams(c)
	q, err := s.ParseQuery(params)
	if err != nil {
		var msg string
		status, msg = userMessage(c, err)
		q, params = table.Query{}, url.Values{}
		extra["Error"] = msg
	}
	exportURL := export
	if enc := params.Encode(); enc != "" {
		exportURL += "?" + enc
	}
	extra["Params"] = params
	extra["Page"] = s.Apply(rows, q)
	extra["Filters"] = filters
	extra["DateRange"] = s.DateColumn != ""
	extra["ExportURL"] = exportURL
	return p.render(c, status, name, title, extra)
}

func (p *Pages) AccountsPage(c echo.Context) error {
	rows, err := p.Accounts.rows(c)
	if err != nil {
		return p.pageError(c, "akun", "Akun", err)
	}
	return tablePage(p, c, "akun", "Akun", "/v1/admin/accounts/export.csv", accountSchema, rows,
		[]string{"role"}, echo.Map{})
}

func (p *Pages) RecipientsPage(c echo.Context) error {
	rows, err := p.Recipients.rows(c)
	if err != nil {
		return p.pageError(c, "penerima", "Penerima", err)
	}
	return tablePage(p, c, "penerima", "Penerima", "/v1/admin/recipients/export.csv", recipientSchema, rows,
		[]string{"fuel_type", "vehicle_type", "brand", "color"}, echo.Map{})
}

// SalesPage shows the sales table with its summary and the daily chart.
func (p *Pages) SalesPage(c echo.Context) error {
	rows, err := p.Sales.rows(c)
	if err != nil {
		return p.pageError(c, "penjualan", "Penjualan", err)
	}
	extra := echo.Map{"Ranges": []string{"7d", "30d", "90d"}}

	if q, err := saleSchema.ParseQuery(tableParams(c)); err == nil {
		extra["Summary"] = summarize(saleSchema.Filter(rows, q))
	}

	rng := c.QueryParam("range")
	days, ok := chartRanges[rng]
	if !ok {
		rng, days = "7d", 7
	}
	since := p.Sales.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))
	ctx, cancel := reqCtx(c)
	defer cancel()
	totals, err := p.Sales.Sales.DailyTotals(ctx, since)
	if err != nil {
		_, extra["Error"] = userMessage(c, err)
	}
	chart := fillDays(since, days, totals)
	var max int64
	for _, pt := range chart {
		if pt.Nominal > max {
			max = pt.Nominal
		}
	}
	extra["Range"] = rng
	extra["Chart"] = chart
	extra["ChartMax"] = max
	return tablePage(p, c, "penjualan", "Penjualan", "/v1/admin/sales/export.csv", saleSchema, rows,
		[]string{"fuel_type", "plate"}, extra)
}

func (p *Pages) pageError(c echo.Context, name, title string, err error) error {
	code, msg := userMessage(c, err)
	return p.render(c, code, name, title, echo.Map{
		"Error": msg, "Params": url.Values{}, "Page": table.Page[struct{}]{Page: 1},
		"ExportURL": "#", "Ranges": []string{}, "Range": "",
	})
}

// adminAction runs fn and returns to page, carrying a failure as ?error=.
func adminAction(c echo.Context, page string, fn func() error) error {
	if err := fn(); err != nil {
		_, msg := userMessage(c, err)
		return c.Redirect(http.StatusSeeOther, page+"?error="+url.QueryEscape(msg))
	}
	return c.Redirect(http.StatusSeeOther, page)
}

func (p *Pages) ApproveAccount(c echo.Context) error {
	return adminAction(c, "/akun", func() error {
		ctx, cancel := reqCtx(c)
		defer cancel()
		return p.Accounts.Accounts.Approve(ctx, c.Param("id"))
	})
}

func (p *Pages) DeleteAccount(c echo.Context) error {
	return adminAction(c, "/akun", func() error {
		if c.Param("id") == callerID(c) {
			return errSelfDelete
		}
		ctx, cancel := reqCtx(c)
		defer cancel()
		return p.Accounts.Accounts.Delete(ctx, c.Param("id"))
	})
}

func (p *Pages) ResetQuotas(c echo.Context) error {
	return adminAction(c, "/penerima", func() error {
		ctx, cancel := reqCtx(c)
		defer cancel()
		_, err := p.Recipients.Recipients.ResetQuotas(ctx)
		return err
	})
}

var errSelfDelete = &service.ValidationError{Message: "tidak dapat menghapus akun sendiri"}
