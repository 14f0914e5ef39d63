package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/middleware"
	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/repository"
	"github.com/platif-ai/spbu-pos/internal/service"
)

// Authenticator is the auth flow behind both the JSON API and the pages;
// *service.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password, role string) (model.Account, error)
	Signup(ctx context.Context, in service.SignupInput) (model.Account, error)
	IssueTokens(ctx context.Context, a model.Account) (service.TokenPair, error)
	Refresh(ctx context.Context, raw string) (model.Account, service.TokenPair, error)
	Logout(ctx context.Context, userID, raw string) error
}

// AuthHandler serves /v1/auth for API clients (detector boxes, scripts).
type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    model.Account `json:"user"`
	Access  tokenPart     `json:"access"`
	Refresh tokenPart     `json:"refresh"`
}

func newAuthResp(a model.Account, p service.TokenPair) authResp {
	return authResp{
		User:    a,
		Access:  tokenPart{Token: p.Access.Token, Expires: p.Access.Exp},
		Refresh: tokenPart{Token: p.Refresh.Raw, Expires: p.Refresh.Exp},
	}
}

// Login checks credentials and role and returns a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Auth.Authenticate(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		return fail(c, err)
	}
	pair, err := h.Auth.IssueTokens(ctx, a)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newAuthResp(a, pair))
}

// Signup creates an unapproved account.  No tokens are issued until an
// admin approves it.
func (h *AuthHandler) Signup(c echo.Context) error {
	var in service.SignupInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Auth.Signup(ctx, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": service.MsgSignupSuccess, "user": a})
}

// Refresh rotates a refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, pair, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newAuthResp(a, pair))
}

// Logout revokes the refresh token in the body, or every refresh token of
// the caller when the body has none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := reqCtx(c)
	defer cancel()
	err := h.Auth.Logout(ctx, id.ID, req.RefreshToken)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, id)
}
