package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/handler"
	"github.com/platif-ai/spbu-pos/internal/middleware"
	"github.com/platif-ai/spbu-pos/internal/model"
)

// Guards bundles the middleware the route groups share.  Nil limiters and
// a nil cache are allowed and turn the corresponding feature off.
type Guards struct {
	Auth        echo.MiddlewareFunc // bearer JWT or session cookie
	Sessions    *middleware.Sessions
	AuthLimiter *middleware.Limiter
	RelayLimit  *middleware.Limiter
	Cache       *middleware.ResponseCache
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// signed-in endpoints /v1/me and /v1/logout.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	pub := e.Group("/v1/auth", middleware.RateLimit(g.AuthLimiter))
	pub.POST("/login", a.Login)
	pub.POST("/signup", a.Signup)
	pub.POST("/refresh", a.Refresh)

	auth := e.Group("/v1", g.Auth, middleware.RequireRole(model.RoleAdmin, model.RoleOperator))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout", a.Logout)
	auth.POST("/logout", a.Logout)
}

// RegisterRelay registers the detector endpoint at its legacy path and
// under /v1.  Detectors post without credentials, so only the rate
// limiter stands in front of it.
func RegisterRelay(e *echo.Echo, h *handler.RelayHandler, g Guards) {
	rl := middleware.RateLimit(g.RelayLimit)
	for _, path := range []string{"/api/darijetson", "/v1/relay/plate"} {
		e.POST(path, h.Post, rl)
		e.GET(path, h.Get)
		e.DELETE(path, h.Delete)
	}
}
