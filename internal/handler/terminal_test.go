package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/purchase"
	"github.com/platif-ai/spbu-pos/internal/relay"
	"github.com/platif-ai/spbu-pos/internal/repository"
	"github.com/platif-ai/spbu-pos/internal/terminal"
)

func terminalEcho(seller *fakeSeller) (*echo.Echo, *relay.Relay) {
	r := relay.New(relay.NewMemoryStore(0), "SPBU1")
	h := NewTerminalHandler(terminal.New(terminal.NewMemoryStore(time.Hour), r, seller, seller, purchase.DefaultMaxNominal))
	e := echo.New()
	g := e.Group("/v1/terminal")
	g.GET("", h.State)
	g.POST("/poll", h.Poll)
	g.POST("/key", h.Key)
	g.POST("/confirm", h.Confirm)
	g.POST("/cancel", h.Cancel)
	g.POST("/submit", h.Submit)
	g.POST("/reset", h.Reset)
	return e, r
}

func state(t *testing.T, rec interface{ Bytes() []byte }) string {
	t.Helper()
	m := decode(t, rec.Bytes())
	if s, ok := m["session"].(map[string]any); ok {
		return s["state"].(string)
	}
	return m["state"].(string)
}

func TestTerminalEndpoints(t *testing.T) {
	seller := &fakeSeller{}
	e, r := terminalEcho(seller)
	if _, err := r.Post(context.Background(), "", "B1234XYZ"); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodPost, "/v1/terminal/poll", "")
	if rec.Code != http.StatusOK || state(t, rec.Body) != string(terminal.VehicleLoaded) {
		t.Fatalf("poll: %d %s", rec.Code, rec.Body)
	}

	rec = do(e, http.MethodPost, "/v1/terminal/confirm", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("confirm at zero: %d %s", rec.Code, rec.Body)
	}

	for _, k := range []string{"1", "0", "000"} {
		rec = do(e, http.MethodPost, "/v1/terminal/key", `{"key":"`+k+`"}`)
	}
	m := decode(t, rec.Body.Bytes())
	if m["nominal"] != float64(10000) || m["liters"] != "1" {
		t.Fatalf("after keys: %s", rec.Body)
	}
	if rec := do(e, http.MethodPost, "/v1/terminal/key", `{"key":"X"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown key: %d", rec.Code)
	}

	do(e, http.MethodPost, "/v1/terminal/confirm", "")
	seller.err = repository.ErrPriceNotFound
	rec = do(e, http.MethodPost, "/v1/terminal/submit", "")
	if rec.Code != http.StatusUnprocessableEntity || state(t, rec.Body) != string(terminal.ConfirmPending) {
		t.Fatalf("failed submit: %d %s", rec.Code, rec.Body)
	}

	seller.err = nil
	rec = do(e, http.MethodPost, "/v1/terminal/submit", "")
	m = decode(t, rec.Body.Bytes())
	if rec.Code != http.StatusOK || m["state"] != string(terminal.Idle) || m["message"] != terminal.MsgSaleOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body)
	}
	if rec := do(e, http.MethodPost, "/v1/terminal/submit", ""); rec.Code != http.StatusConflict {
		t.Fatalf("second submit: %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/v1/terminal/reset", "")
	if rec.Code != http.StatusOK || state(t, rec.Body) != string(terminal.Idle) {
		t.Fatalf("reset: %d", rec.Code)
	}
	if _, ok, _ := r.Latest(context.Background(), ""); ok {
		t.Fatal("reset left the plate in the relay")
	}
}

func TestTerminalUnexpectedErrorIsHidden(t *testing.T) {
	seller := &fakeSeller{err: errors.New("db exploded")}
	e, r := terminalEcho(seller)
	_, _ = r.Post(context.Background(), "", "B1234XYZ")
	do(e, http.MethodPost, "/v1/terminal/poll", "")
	do(e, http.MethodPost, "/v1/terminal/key", `{"key":"5"}`)
	do(e, http.MethodPost, "/v1/terminal/confirm", "")
	rec := do(e, http.MethodPost, "/v1/terminal/submit", "")
	if m := decode(t, rec.Body.Bytes()); rec.Code != http.StatusInternalServerError || m["error"] != "internal error" {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body)
	}
}
