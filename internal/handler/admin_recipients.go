package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/purchase"
)

// RecipientAdmin is the recipient store as seen by the back office;
// *repository.RecipientRepo implements it.
type RecipientAdmin interface {
	List(ctx context.Context) ([]model.Recipient, error)
	Create(ctx context.Context, v model.Recipient) error
	Update(ctx context.Context, v model.Recipient) error
	Delete(ctx context.Context, plate string) error
	ResetQuotas(ctx context.Context) (int64, error)
}

// RecipientsHandler serves /v1/admin/recipients.
type RecipientsHandler struct {
	Recipients RecipientAdmin
}

func NewRecipientsHandler(r RecipientAdmin) *RecipientsHandler {
	return &RecipientsHandler{Recipients: r}
}

type recipientReq struct {
	Plate          string           `json:"plate"`
	Owner          string           `json:"owner"`
	DailyQuota     decimal.Decimal  `json:"daily_quota"`
	RemainingQuota *decimal.Decimal `json:"remaining_quota"`
	FuelType       string           `json:"fuel_type"`
	VehicleType    string           `json:"vehicle_type"`
	Brand          string           `json:"brand"`
	Color          string           `json:"color"`
	Year           string           `json:"year"`
}

// recipient validates the request.  A missing remaining quota starts full;
// a remaining quota above the daily one is capped.
func (r recipientReq) recipient() (model.Recipient, string) {
	p, err := purchase.ParsePlate(r.Plate)
	if err != nil {
		return model.Recipient{}, "plat tidak valid: " + err.Error()
	}
	if strings.TrimSpace(r.Owner) == "" {
		return model.Recipient{}, "nama pemilik harus diisi"
	}
	if strings.TrimSpace(r.FuelType) == "" {
		return model.Recipient{}, "jenis BBM harus diisi"
	}
	if !r.DailyQuota.IsPositive() {
		return model.Recipient{}, "kuota harus lebih dari 0"
	}
	remaining := r.DailyQuota
	if r.RemainingQuota != nil {
		remaining = decimal.Max(decimal.Zero, decimal.Min(*r.RemainingQuota, r.DailyQuota))
	}
	return model.Recipient{
		Plate:          p.String(),
		Owner:          strings.TrimSpace(r.Owner),
		DailyQuota:     r.DailyQuota,
		RemainingQuota: remaining,
		FuelType:       strings.TrimSpace(r.FuelType),
		VehicleType:    strings.TrimSpace(r.VehicleType),
		Brand:          strings.TrimSpace(r.Brand),
		Color:          strings.TrimSpace(r.Color),
		Year:           strings.TrimSpace(r.Year),
	}, ""
}

func (h *RecipientsHandler) rows(c echo.Context) ([]RecipientRow, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Recipients.List(ctx)
	if err != nil {
		return nil, err
	}
	return recipientRows(list), nil
}

// List returns one page of recipients.
func (h *RecipientsHandler) List(c echo.Context) error {
	rows, err := h.rows(c)
	if err != nil {
		return fail(c, err)
	}
	return listTable(c, recipientSchema, rows)
}

// Export downloads the filtered recipients as penerima_data.csv.
func (h *RecipientsHandler) Export(c echo.Context) error {
	rows, err := h.rows(c)
	if err != nil {
		return fail(c, err)
	}
	return exportTable(c, recipientSchema, rows, "penerima_data.csv")
}

// Create registers a vehicle.
func (h *RecipientsHandler) Create(c echo.Context) error {
	var req recipientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	v, msg := req.recipient()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Recipients.Create(ctx, v); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Update overwrites the vehicle at :plate.
func (h *RecipientsHandler) Update(c echo.Context) error {
	var req recipientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Plate = c.Param("plate")
	v, msg := req.recipient()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Recipients.Update(ctx, v); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete unregisters the vehicle at :plate.
func (h *RecipientsHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Recipients.Delete(ctx, purchase.NormalizePlate(c.Param("plate"))); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetQuota refills every vehicle to its daily quota.
func (h *RecipientsHandler) ResetQuota(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	n, err := h.Recipients.ResetQuotas(ctx)
	if err != nil {
		return fail(c, err)
	}
	slog.Info("daily quotas reset", "rows", n, "by", callerID(c))
	return c.JSON(http.StatusOK, echo.Map{"message": "Kuota harian direset", "updated": n})
}
