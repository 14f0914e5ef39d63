package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/terminal"
)

// Terminal is the per-station purchase screen; *terminal.Terminal
// implements it.
type Terminal interface {
	State(ctx context.Context, station string) (terminal.Session, error)
	Poll(ctx context.Context, station string) (terminal.Session, error)
	Key(ctx context.Context, station, key string) (terminal.Session, error)
	Confirm(ctx context.Context, station string) (terminal.Session, error)
	Cancel(ctx context.Context, station string) (terminal.Session, error)
	Submit(ctx context.Context, station string) (terminal.Session, error)
	Reset(ctx context.Context, station string) (terminal.Session, error)
}

// TerminalHandler exposes the terminal actions as JSON endpoints under
// /v1/terminal.  Every endpoint answers with the resulting session.
type TerminalHandler struct {
	Terminal Terminal
}

func NewTerminalHandler(t Terminal) *TerminalHandler { return &TerminalHandler{Terminal: t} }

type keyReq struct {
	Key string `json:"key" form:"key"`
}

// respondSession writes the session, or the error together with the session
// when the action left one behind (a failed submit).
func respondSession(c echo.Context, sess terminal.Session, err error) error {
	if err == nil {
		return c.JSON(http.StatusOK, sess)
	}
	code := statusFor(err)
	if sess.Station == "" || code == http.StatusInternalServerError {
		return fail(c, err)
	}
	return c.JSON(code, echo.Map{"error": err.Error(), "session": sess})
}

func (h *TerminalHandler) run(c echo.Context, fn func(ctx context.Context, station string) (terminal.Session, error)) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	sess, err := fn(ctx, c.QueryParam("station"))
	return respondSession(c, sess, err)
}

func (h *TerminalHandler) State(c echo.Context) error   { return h.run(c, h.Terminal.State) }
func (h *TerminalHandler) Poll(c echo.Context) error    { return h.run(c, h.Terminal.Poll) }
func (h *TerminalHandler) Confirm(c echo.Context) error { return h.run(c, h.Terminal.Confirm) }
func (h *TerminalHandler) Cancel(c echo.Context) error  { return h.run(c, h.Terminal.Cancel) }
func (h *TerminalHandler) Submit(c echo.Context) error  { return h.run(c, h.Terminal.Submit) }
func (h *TerminalHandler) Reset(c echo.Context) error   { return h.run(c, h.Terminal.Reset) }

// Key presses one keypad key: "0"-"9", "000", "C" or "DEL".
func (h *TerminalHandler) Key(c echo.Context) error {
	var req keyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.run(c, func(ctx context.Context, station string) (terminal.Session, error) {
		return h.Terminal.Key(ctx, station, req.Key)
	})
}
