package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/repository"
	"github.com/platif-ai/spbu-pos/internal/service"
	"github.com/platif-ai/spbu-pos/internal/utils"
	"github.com/platif-ai/spbu-pos/internal/web"
)

// fakeAuth accepts one operator and one admin with password "rahasia".
type fakeAuth struct {
	accounts map[string]model.Account
	revoked  []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{accounts: map[string]model.Account{
		"budi@spbu.id": {ID: "op-1", Name: "Budi", Email: "budi@spbu.id", Role: model.RoleOperator, IsApproved: true},
		"ani@spbu.id":  {ID: "ad-1", Name: "Ani", Email: "ani@spbu.id", Role: model.RoleAdmin, IsApproved: true},
		"new@spbu.id":  {ID: "op-2", Name: "Baru", Email: "new@spbu.id", Role: model.RoleOperator},
	}}
}

func (f *fakeAuth) Authenticate(_ context.Context, email, password, role string) (model.Account, error) {
	if role == "" {
		return model.Account{}, &service.LoginError{Message: service.MsgSelectRole}
	}
	a, ok := f.accounts[email]
	switch {
	case !ok:
		return model.Account{}, &service.LoginError{Message: service.MsgEmailNotFound}
	case password != "rahasia":
		return model.Account{}, &service.LoginError{Message: service.MsgWrongPassword}
	case a.Role != role:
		return model.Account{}, &service.LoginError{Message: "Akun ini tidak terdaftar sebagai " + strings.ToUpper(role) + "."}
	case !a.IsApproved:
		return model.Account{}, &service.LoginError{Message: service.MsgNotApproved}
	}
	return a, nil
}

func (f *fakeAuth) Signup(_ context.Context, in service.SignupInput) (model.Account, error) {
	if in.Name == "" {
		return model.Account{}, &service.ValidationError{Message: service.MsgNameRequired}
	}
	if _, ok := f.accounts[in.Email]; ok {
		return model.Account{}, &service.ValidationError{Message: service.MsgEmailTaken}
	}
	a := model.Account{ID: "new", Name: in.Name, Email: in.Email, Role: in.Role}
	f.accounts[in.Email] = a
	return a, nil
}

func (f *fakeAuth) IssueTokens(_ context.Context, a model.Account) (service.TokenPair, error) {
	return service.TokenPair{
		Access:  utils.AccessToken{Token: "access-" + a.ID, Exp: time.Now().Add(time.Hour)},
		Refresh: utils.RefreshToken{Raw: "refresh-" + a.ID, Exp: time.Now().Add(24 * time.Hour)},
	}, nil
}

func (f *fakeAuth) Refresh(_ context.Context, raw string) (model.Account, service.TokenPair, error) {
	for _, a := range f.accounts {
		if raw == "refresh-"+a.ID {
			p, _ := f.IssueTokens(context.Background(), a)
			return a, p, nil
		}
	}
	return model.Account{}, service.TokenPair{}, repository.ErrNotFound
}

func (f *fakeAuth) Logout(_ context.Context, userID, raw string) error {
	if raw == "" && userID == "" {
		return repository.ErrNotFound
	}
	f.revoked = append(f.revoked, userID+raw)
	return nil
}

type fakeAccounts struct {
	list    []model.Account
	deleted []string
}

func (f *fakeAccounts) List(context.Context) ([]model.Account, error) { return f.list, nil }

func (f *fakeAccounts) Approve(_ context.Context, id string) error {
	for i := range f.list {
		if f.list[i].ID == id {
			f.list[i].IsApproved = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (model.Account, error) {
	for _, a := range f.list {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Account{}, repository.ErrNotFound
}

func (f *fakeAccounts) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	for i, a := range f.list {
		if a.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			break
		}
	}
	return nil
}

type fakeRecipients struct {
	list  []model.Recipient
	reset int
}

func (f *fakeRecipients) List(context.Context) ([]model.Recipient, error) { return f.list, nil }

func (f *fakeRecipients) Create(_ context.Context, v model.Recipient) error {
	for _, r := range f.list {
		if r.Plate == v.Plate {
			return repository.ErrConflict
		}
	}
	f.list = append(f.list, v)
	return nil
}

func (f *fakeRecipients) Update(_ context.Context, v model.Recipient) error {
	for i := range f.list {
		if f.list[i].Plate == v.Plate {
			f.list[i] = v
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRecipients) Delete(_ context.Context, plate string) error {
	for i := range f.list {
		if f.list[i].Plate == plate {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRecipients) ResetQuotas(context.Context) (int64, error) {
	f.reset++
	for i := range f.list {
		f.list[i].RemainingQuota = f.list[i].DailyQuota
	}
	return int64(len(f.list)), nil
}

type fakeSales struct {
	list   []model.Sale
	totals []repository.DailyTotal
	since  time.Time
}

func (f *fakeSales) List(context.Context) ([]model.Sale, error) { return f.list, nil }

func (f *fakeSales) DailyTotals(_ context.Context, since time.Time) ([]repository.DailyTotal, error) {
	f.since = since
	return f.totals, nil
}

// fakeSeller sells Pertalite at 10000 to B1234XYZ only.
type fakeSeller struct {
	mu    sync.Mutex
	sales []model.Sale
	err   error
}

var budiCar = model.Recipient{
	Plate: "B1234XYZ", Owner: "Budi", FuelType: "Pertalite",
	DailyQuota: decimal.NewFromInt(20), RemainingQuota: decimal.NewFromInt(20),
}

func (f *fakeSeller) Quote(_ context.Context, plate string) (model.Recipient, decimal.Decimal, error) {
	if plate != budiCar.Plate {
		return model.Recipient{}, decimal.Zero, service.ErrNotRegistered
	}
	return budiCar, decimal.NewFromInt(10000), nil
}

func (f *fakeSeller) Purchase(_ context.Context, station, plate string, nominal int64) (model.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Sale{}, f.err
	}
	if plate != budiCar.Plate {
		return model.Sale{}, service.ErrNotRegistered
	}
	s := model.Sale{
		ID: station + "-" + plate + "-20251017-PLT-0001", Station: station, Plate: plate,
		FuelType: "Pertalite", Nominal: nominal, Liters: decimal.New(nominal, -4),
	}
	f.sales = append(f.sales, s)
	return s, nil
}

type fakePrices struct{ list []model.FuelPrice }

func (f *fakePrices) List(context.Context) ([]model.FuelPrice, error) { return f.list, nil }

func (f *fakePrices) Upsert(_ context.Context, fuel string, price decimal.Decimal) error {
	for i := range f.list {
		if f.list[i].FuelType == fuel {
			f.list[i].Price = price
			return nil
		}
	}
	f.list = append(f.list, model.FuelPrice{FuelType: fuel, Price: price})
	return nil
}

type fakeCache struct{ invalidated int }

func (f *fakeCache) Invalidate(context.Context) { f.invalidated++ }

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	r, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = r
	return e
}

func do(e *echo.Echo, method, target, body string, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		if strings.HasPrefix(body, "{") {
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		} else {
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		}
	}
	for _, m := range mods {
		m(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}
