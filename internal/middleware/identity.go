package middleware

// identity.go holds the request identity shared by the API and page guards.
// Both the bearer token path and the session cookie path store the same
// three context values, so handlers never care how a caller signed in.

import "github.com/labstack/echo/v4"

// Context keys set by Authenticate and RequirePage.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxName   = "name"
)

// Identity is the signed-in caller.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func setIdentity(c echo.Context, id Identity) {
	c.Set(CtxUserID, id.ID)
	c.Set(CtxRole, id.Role)
	c.Set(CtxName, id.Name)
}

// CurrentIdentity returns the identity stored by the guards, ok=false for an
// anonymous request.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	uid, _ := c.Get(CtxUserID).(string)
	if uid == "" {
		return Identity{}, false
	}
	role, _ := c.Get(CtxRole).(string)
	name, _ := c.Get(CtxName).(string)
	return Identity{ID: uid, Name: name, Role: role}, true
}

// userID returns the caller's account id or "anon".
func userID(c echo.Context) string {
	if id, ok := CurrentIdentity(c); ok {
		return id.ID
	}
	return "anon"
}
