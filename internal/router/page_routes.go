package router

import (
	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/handler"
	"github.com/platif-ai/spbu-pos/internal/middleware"
	"github.com/platif-ai/spbu-pos/internal/model"
)

// RegisterPages registers the server-rendered dashboard.  /pembelian is the
// operator terminal; /akun, /penerima and /penjualan are admin tables.
func RegisterPages(e *echo.Echo, p *handler.Pages) {
	s := p.Sessions
	e.GET("/", p.Home)
	e.GET("/login", p.LoginForm, middleware.PublicOnly(s))
	e.POST("/login", p.Login, middleware.PublicOnly(s))
	e.GET("/signup", p.SignupForm, middleware.PublicOnly(s))
	e.POST("/signup", p.Signup, middleware.PublicOnly(s))
	e.POST("/logout", p.Logout)

	op := e.Group("", middleware.RequirePage(s, model.RoleOperator))
	op.GET("/pembelian", p.TerminalPage)
	op.POST("/pembelian", p.TerminalAction)

	ad := e.Group("", middleware.RequirePage(s, model.RoleAdmin))
	ad.GET("/akun", p.AccountsPage)
	ad.POST("/akun/:id/approve", p.ApproveAccount)
	ad.POST("/akun/:id/delete", p.DeleteAccount)
	ad.GET("/penerima", p.RecipientsPage)
	ad.POST("/penerima/reset-quota", p.ResetQuotas)
	ad.GET("/penjualan", p.SalesPage)
}
