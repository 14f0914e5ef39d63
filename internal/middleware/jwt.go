package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/utils"
)

// Authenticate returns an Echo middleware for the JSON API.  A caller is
// accepted with either a Bearer access token signed with secret (detector
// boxes, scripts) or the page session cookie (the dashboard's own fetch
// calls).  When s has an account lookup, the
// account behind either credential must still be active.  On success the caller's id, role and name are stored in the
// context; see CurrentIdentity.
func Authenticate(secret string, s *Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				if s != nil && s.accounts != nil {
					if _, err := s.verify(c.Request().Context(), claims.Subject, claims.Role); err != nil {
						return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account no longer active"})
					}
				}
				setIdentity(c, Identity{ID: claims.Subject, Name: claims.Name, Role: claims.Role})
				return next(c)
			}
			if s != nil {
				if u, ok := s.Current(c); ok {
					setIdentity(c, Identity{ID: u.ID, Name: u.Name, Role: u.Role})
					return next(c)
				}
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token or session"})
		}
	}
}
