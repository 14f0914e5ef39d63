package router

import (
	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/handler"
	"github.com/platif-ai/spbu-pos/internal/middleware"
	"github.com/platif-ai/spbu-pos/internal/model"
)

// AdminHandlers groups the handlers behind /v1/admin.
type AdminHandlers struct {
	Accounts   *handler.AccountsHandler
	Recipients *handler.RecipientsHandler
	Sales      *handler.SalesHandler
	Prices     *handler.PricesHandler
}

// RegisterAdmin registers the admin tables under /v1/admin (ADMIN role
// only) and the cached price list at /v1/prices for any signed-in role.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, g Guards) {
	e.GET("/v1/prices", h.Prices.List,
		g.Auth, middleware.RequireRole(model.RoleAdmin, model.RoleOperator), g.Cache.Middleware())

	a := e.Group("/v1/admin", g.Auth, middleware.RequireRole(model.RoleAdmin))

	// ---- Accounts ----
	a.GET("/accounts", h.Accounts.List)
	a.GET("/accounts/export.csv", h.Accounts.Export)
	a.PATCH("/accounts/:id/approve", h.Accounts.Approve)
	a.PUT("/accounts/:id", h.Accounts.Edit)
	a.DELETE("/accounts/:id", h.Accounts.Delete)

	// ---- Recipients ----
	a.GET("/recipients", h.Recipients.List)
	a.GET("/recipients/export.csv", h.Recipients.Export)
	a.POST("/recipients", h.Recipients.Create)
	a.POST("/recipients/reset-quota", h.Recipients.ResetQuota)
	a.PUT("/recipients/:plate", h.Recipients.Update)
	a.DELETE("/recipients/:plate", h.Recipients.Delete)

	// ---- Sales ----
	a.GET("/sales", h.Sales.List)
	a.GET("/sales/export.csv", h.Sales.Export)
	a.GET("/sales/summary", h.Sales.Summary)
	a.GET("/sales/chart", h.Sales.Chart)

	// ---- Prices ----
	a.GET("/prices", h.Prices.List)
	a.PUT("/prices/:fuel", h.Prices.Update)
}
