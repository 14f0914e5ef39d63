package router

import (
	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/handler"
	"github.com/platif-ai/spbu-pos/internal/middleware"
	"github.com/platif-ai/spbu-pos/internal/model"
)

// RegisterTerminal registers the operator endpoints: the terminal screen
// actions, the stateless purchase API and the vehicle lookup.  Admins may
// use them too.
func RegisterTerminal(e *echo.Echo, t *handler.TerminalHandler, p *handler.PurchaseHandler, g Guards) {
	v1 := e.Group("/v1", g.Auth, middleware.RequireRole(model.RoleOperator, model.RoleAdmin))

	term := v1.Group("/terminal")
	term.GET("", t.State)
	term.POST("/poll", t.Poll)
	term.POST("/key", t.Key)
	term.POST("/confirm", t.Confirm)
	term.POST("/cancel", t.Cancel)
	term.POST("/submit", t.Submit)
	term.POST("/reset", t.Reset)
	term.POST("/keypad", p.Keypad)

	v1.POST("/purchases", p.Create)
	v1.GET("/vehicles/:plate", p.Vehicle)
}
