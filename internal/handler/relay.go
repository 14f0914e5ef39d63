package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// PlateRelay is the per-station detected-plate store; *relay.Relay
// implements it.
type PlateRelay interface {
	Station(s string) string
	Post(ctx context.Context, station, raw string) (string, error)
	Latest(ctx context.Context, station string) (string, bool, error)
	Reset(ctx context.Context, station string) error
}

// RelayHandler serves the detector bridge.  The response bodies keep the
// "plat" key the detector scripts already parse.
type RelayHandler struct {
	Relay PlateRelay
}

func NewRelayHandler(r PlateRelay) *RelayHandler { return &RelayHandler{Relay: r} }

type relayPostReq struct {
	Plate string `json:"plate"`
	Plat  string `json:"plat"`
}

// Post stores the plate sent by a detector.
func (h *RelayHandler) Post(c echo.Context) error {
	var req relayPostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	raw := req.Plate
	if strings.TrimSpace(raw) == "" {
		raw = req.Plat
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	plate, err := h.Relay.Post(ctx, c.QueryParam("station"), raw)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Plat diterima", "plat": plate})
}

// Get returns the station's last plate or null.
func (h *RelayHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	plate, ok, err := h.Relay.Latest(ctx, c.QueryParam("station"))
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"plat": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"plat": plate})
}

// Delete clears the station's plate.
func (h *RelayHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Relay.Reset(ctx, c.QueryParam("station")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Plat direset"})
}
