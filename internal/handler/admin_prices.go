package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
)

// PriceBook is the fuel price table; *repository.FuelPriceRepo implements
// it.
type PriceBook interface {
	List(ctx context.Context) ([]model.FuelPrice, error)
	Upsert(ctx context.Context, fuelType string, price decimal.Decimal) error
}

// CacheInvalidator drops cached GET responses; *middleware.ResponseCache
// implements it.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// PricesHandler serves the price list and its admin update.
type PricesHandler struct {
	Prices PriceBook
	Cache  CacheInvalidator
}

func NewPricesHandler(p PriceBook, cache CacheInvalidator) *PricesHandler {
	return &PricesHandler{Prices: p, Cache: cache}
}

// List returns every fuel price.
func (h *PricesHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	prices, err := h.Prices.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	if prices == nil {
		prices = []model.FuelPrice{}
	}
	return c.JSON(http.StatusOK, prices)
}

type priceReq struct {
	Price decimal.Decimal `json:"price"`
}

// Update sets the price of :fuel and drops cached price lists.
func (h *PricesHandler) Update(c echo.Context) error {
	fuel := strings.TrimSpace(c.Param("fuel"))
	var req priceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fuel == "" || !req.Price.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "harga harus lebih dari 0"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Prices.Upsert(ctx, fuel, req.Price); err != nil {
		return fail(c, err)
	}
	if h.Cache != nil {
		h.Cache.Invalidate(ctx)
	}
	slog.Info("fuel price updated", "fuel_type", fuel, "price", req.Price.String(), "by", callerID(c))
	return c.JSON(http.StatusOK, model.FuelPrice{FuelType: fuel, Price: req.Price})
}
