package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/middleware"
	"github.com/platif-ai/spbu-pos/internal/service"
)

func authEcho(a *fakeAuth) *echo.Echo {
	h := NewAuthHandler(a)
	e := echo.New()
	e.POST("/v1/auth/login", h.Login)
	e.POST("/v1/auth/signup", h.Signup)
	e.POST("/v1/auth/refresh", h.Refresh)
	e.POST("/v1/auth/logout", h.Logout)
	e.GET("/v1/me", h.Me, middleware.Authenticate("secret", nil))
	return e
}

func TestAPILogin(t *testing.T) {
	e := authEcho(newFakeAuth())

	rec := do(e, http.MethodPost, "/v1/auth/login", `{"email":"budi@spbu.id","password":"rahasia","role":"operator"}`)
	m := decode(t, rec.Body.Bytes())
	if rec.Code != http.StatusOK || m["access"].(map[string]any)["token"] != "access-op-1" {
		t.Fatalf("login: %d %s", rec.Code, rec.Body)
	}
	if _, leaked := m["user"].(map[string]any)["PasswordHash"]; leaked {
		t.Fatal("password hash in response")
	}

	tests := []struct {
		body, msg string
	}{
		{`{"email":"budi@spbu.id","password":"rahasia"}`, service.MsgSelectRole},
		{`{"email":"x@spbu.id","password":"rahasia","role":"admin"}`, service.MsgEmailNotFound},
		{`{"email":"budi@spbu.id","password":"salah","role":"operator"}`, service.MsgWrongPassword},
		{`{"email":"budi@spbu.id","password":"rahasia","role":"admin"}`, "Akun ini tidak terdaftar sebagai ADMIN."},
		{`{"email":"new@spbu.id","password":"rahasia","role":"operator"}`, service.MsgNotApproved},
	}
	for _, tt := range tests {
		rec := do(e, http.MethodPost, "/v1/auth/login", tt.body)
		if m := decode(t, rec.Body.Bytes()); rec.Code != http.StatusUnauthorized || m["error"] != tt.msg {
			t.Errorf("%s: %d %s", tt.body, rec.Code, rec.Body)
		}
	}
}

func TestAPISignup(t *testing.T) {
	e := authEcho(newFakeAuth())
	rec := do(e, http.MethodPost, "/v1/auth/signup", `{"name":"Rina","email":"rina@spbu.id","password":"rahasia","role":"operator"}`)
	if m := decode(t, rec.Body.Bytes()); rec.Code != http.StatusCreated || m["message"] != service.MsgSignupSuccess {
		t.Fatalf("signup: %d %s", rec.Code, rec.Body)
	}
	rec = do(e, http.MethodPost, "/v1/auth/signup", `{"name":"Rina","email":"rina@spbu.id","password":"rahasia","role":"operator"}`)
	if m := decode(t, rec.Body.Bytes()); rec.Code != http.StatusConflict || m["error"] != service.MsgEmailTaken {
		t.Fatalf("duplicate: %d %s", rec.Code, rec.Body)
	}
	rec = do(e, http.MethodPost, "/v1/auth/signup", `{"email":"x@spbu.id","password":"rahasia","role":"operator"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("no name: %d %s", rec.Code, rec.Body)
	}
}

func TestAPIRefreshAndLogout(t *testing.T) {
	a := newFakeAuth()
	e := authEcho(a)
	rec := do(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"refresh-ad-1"}`)
	if m := decode(t, rec.Body.Bytes()); rec.Code != http.StatusOK || m["refresh"].(map[string]any)["token"] != "refresh-ad-1" {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body)
	}
	if rec := do(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"nope"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad refresh: %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/v1/auth/refresh", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing refresh: %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"refresh-ad-1"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/v1/auth/logout", `{}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous logout: %d", rec.Code)
	}
	if len(a.revoked) != 1 {
		t.Fatalf("revoked = %v", a.revoked)
	}
}

func TestMeRequiresIdentity(t *testing.T) {
	e := authEcho(newFakeAuth())
	if rec := do(e, http.MethodGet, "/v1/me", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me: %d", rec.Code)
	}
}
