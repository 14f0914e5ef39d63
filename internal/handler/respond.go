package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/purchase"
	"github.com/platif-ai/spbu-pos/internal/repository"
	"github.com/platif-ai/spbu-pos/internal/service"
	"github.com/platif-ai/spbu-pos/internal/table"
	"github.com/platif-ai/spbu-pos/internal/terminal"
)

// dbTimeout bounds every storage call made on behalf of a request.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// isPlateErr reports whether err is a rejected license plate.
func isPlateErr(err error) bool {
	return errors.Is(err, purchase.ErrPlateEmpty) ||
		errors.Is(err, purchase.ErrPlateRegion) ||
		errors.Is(err, purchase.ErrPlateNumber) ||
		errors.Is(err, purchase.ErrPlateLetters)
}

// statusFor maps domain errors to HTTP status codes; anything unknown is 500.
func statusFor(err error) int {
	var ve *service.ValidationError
	var le *service.LoginError
	switch {
	case errors.As(err, &le):
		return http.StatusUnauthorized
	case errors.As(err, &ve):
		if ve.Message == service.MsgEmailTaken {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case isPlateErr(err),
		errors.Is(err, purchase.ErrZeroNominal),
		errors.Is(err, purchase.ErrUnknownKey),
		errors.Is(err, table.ErrBadDate):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotRegistered),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrQuotaExceeded),
		errors.Is(err, terminal.ErrBadState),
		errors.Is(err, terminal.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, repository.ErrPriceNotFound),
		errors.Is(err, purchase.ErrInvalidPrice):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": ...}.  Unexpected errors are logged and
// hidden behind a generic message.
func fail(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(code, echo.Map{"error": "internal error"})
	}
	if isPlateErr(err) {
		return c.JSON(code, echo.Map{"error": "invalid plate", "reason": err.Error()})
	}
	return c.JSON(code, echo.Map{"error": err.Error()})
}
