package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/purchase"
)

// Seller records purchases and quotes vehicles; *service.PurchaseService
// implements it.
type Seller interface {
	Quote(ctx context.Context, plate string) (model.Recipient, decimal.Decimal, error)
	Purchase(ctx context.Context, station, plate string, nominal int64) (model.Sale, error)
}

// PurchaseHandler is the stateless purchase API for integrations that do
// not drive the terminal screen.
type PurchaseHandler struct {
	Seller  Seller
	Station func(string) string // resolves ?station= to a station key
	Pad     purchase.Keypad
}

func NewPurchaseHandler(s Seller, station func(string) string, maxNominal int64) *PurchaseHandler {
	return &PurchaseHandler{Seller: s, Station: station, Pad: purchase.Keypad{Max: maxNominal}}
}

type purchaseReq struct {
	Station string `json:"station"`
	Plate   string `json:"plate"`
	Nominal int64  `json:"nominal"`
}

// Create records one sale.
func (h *PurchaseHandler) Create(c echo.Context) error {
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Station == "" {
		req.Station = c.QueryParam("station")
	}
	if req.Nominal > h.Pad.Limit() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nominal exceeds the keypad limit"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	sale, err := h.Seller.Purchase(ctx, h.Station(req.Station), req.Plate, req.Nominal)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, sale)
}

// Vehicle returns the recipient registered for :plate with the price of
// its fuel type and the liters its remaining quota is worth.
func (h *PurchaseHandler) Vehicle(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, price, err := h.Seller.Quote(ctx, c.Param("plate"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"vehicle":     v,
		"price":       price,
		"max_nominal": price.Mul(v.RemainingQuota).Floor().IntPart(),
	})
}

type keypadReq struct {
	Nominal int64  `json:"nominal"`
	Key     string `json:"key"`
	Price   string `json:"price,omitempty"`
}

// Keypad applies one key to a nominal without touching any session.  With
// a price it also returns the liters.
func (h *PurchaseHandler) Keypad(c echo.Context) error {
	var req keypadReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	n, err := h.Pad.Press(req.Nominal, req.Key)
	if err != nil {
		return fail(c, err)
	}
	resp := echo.Map{"nominal": n}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price"})
		}
		liters := decimal.Zero
		if n > 0 {
			if liters, err = purchase.Liters(n, price); err != nil {
				return fail(c, err)
			}
		}
		resp["liters"] = liters
	}
	return c.JSON(http.StatusOK, resp)
}
