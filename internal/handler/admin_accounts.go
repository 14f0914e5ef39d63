package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/middleware"
	"github.com/platif-ai/spbu-pos/internal/model"
)

// AccountAdmin is the account store as seen by the back office;
// *repository.AccountRepo implements it.
type AccountAdmin interface {
	List(ctx context.Context) ([]model.Account, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// AccountsHandler serves /v1/admin/accounts.
type AccountsHandler struct {
	Accounts AccountAdmin
}

func NewAccountsHandler(a AccountAdmin) *AccountsHandler { return &AccountsHandler{Accounts: a} }

func (h *AccountsHandler) rows(c echo.Context) ([]AccountRow, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	return accountRows(list), nil
}

// List returns one page of accounts.
func (h *AccountsHandler) List(c echo.Context) error {
	rows, err := h.rows(c)
	if err != nil {
		return fail(c, err)
	}
	return listTable(c, accountSchema, rows)
}

// Export downloads the filtered accounts as akun_data.csv.
func (h *AccountsHandler) Export(c echo.Context) error {
	rows, err := h.rows(c)
	if err != nil {
		return fail(c, err)
	}
	return exportTable(c, accountSchema, rows, "akun_data.csv")
}

// Approve lets an account log in.
func (h *AccountsHandler) Approve(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.Approve(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	slog.Info("account approved", "id", c.Param("id"), "by", callerID(c))
	return c.JSON(http.StatusOK, echo.Map{"message": "Akun disetujui"})
}

// Delete removes an account.  Admins cannot delete themselves.
func (h *AccountsHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if id == callerID(c) {
		return fail(c, errSelfDelete)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	slog.Info("account deleted", "id", id, "by", callerID(c))
	return c.NoContent(http.StatusNoContent)
}

// Edit only records the request.  Account details are changed by the
// account owner, not from the back office.
func (h *AccountsHandler) Edit(c echo.Context) error {
	var body map[string]any
	_ = c.Bind(&body)
	slog.Info("account edit requested", "id", c.Param("id"), "by", callerID(c), "fields", body)
	return c.JSON(http.StatusAccepted, echo.Map{"message": "Permintaan edit dicatat"})
}

func callerID(c echo.Context) string {
	id, _ := middleware.CurrentIdentity(c)
	return id.ID
}
