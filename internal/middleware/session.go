package middleware

import (
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/repository"
)

// SessionName is the page session cookie.
const SessionName = "spbu_session"

// SessionUser is the account snapshot kept in the session cookie.
type SessionUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsApproved bool   `json:"isApproved"`
}

// AccountLookup loads the account behind a session or token;
// *repository.AccountRepo implements it.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (model.Account, error)
}

// errRevoked marks a session whose account was deleted, unapproved or
// given another role after sign-in.
var errRevoked = errors.New("session revoked")

// Sessions wraps a signed and encrypted cookie store.
type Sessions struct {
	store    *sessions.CookieStore
	accounts AccountLookup
}

// NewSessions derives the signing and encryption keys from secret.  secure
// marks the cookie HTTPS-only.
func NewSessions(secret string, secure bool) *Sessions {
	h := sha256.Sum256([]byte("auth:" + secret))
	e := sha256.Sum256([]byte("enc:" + secret))
	store := sessions.NewCookieStore(h[:], e[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   12 * 60 * 60, // one shift
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	return &Sessions{store: store}
}

// Get returns the signed-in user, ok=false when there is no valid session.
func (s *Sessions) Get(r *http.Request) (SessionUser, bool) {
	sess, err := s.store.Get(r, SessionName)
	if err != nil || sess.IsNew {
		return SessionUser{}, false
	}
	var u SessionUser
	u.ID, _ = sess.Values["id"].(string)
	u.Name, _ = sess.Values["name"].(string)
	u.Email, _ = sess.Values["email"].(string)
	u.Role, _ = sess.Values["role"].(string)
	u.IsApproved, _ = sess.Values["is_approved"].(bool)
	if u.ID == "" || !model.ValidRole(u.Role) {
		return SessionUser{}, false
	}
	return u, true
}

// WithAccounts makes Current and Authenticate check every request against
// the stored account.
func (s *Sessions) WithAccounts(a AccountLookup) *Sessions {
	s.accounts = a
	return s
}

// verify loads account id and checks it may still act as role.
func (s *Sessions) verify(ctx context.Context, id, role string) (model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	a, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Account{}, errRevoked
	}
	if err != nil {
		return model.Account{}, err
	}
	if !a.IsApproved || a.Role != role {
		return model.Account{}, errRevoked
	}
	return a, nil
}

// Current returns the signed-in user.  With an account lookup configured
// the account must still exist, be approved and hold the session's role;
// a revoked session is cleared.  A failed lookup counts as signed out
// without clearing the cookie.
func (s *Sessions) Current(c echo.Context) (SessionUser, bool) {
	u, ok := s.Get(c.Request())
	if !ok || s.accounts == nil {
		return u, ok
	}
	a, err := s.verify(c.Request().Context(), u.ID, u.Role)
	if errors.Is(err, errRevoked) {
		_ = s.Clear(c)
		return SessionUser{}, false
	}
	if err != nil {
		slog.Warn("session account lookup failed", "user_id", u.ID, "error", err)
		return SessionUser{}, false
	}
	u.Name, u.Email, u.IsApproved = a.Name, a.Email, a.IsApproved
	return u, true
}

// Save writes u into the session cookie.
func (s *Sessions) Save(c echo.Context, u SessionUser) error {
	sess, _ := s.store.Get(c.Request(), SessionName)
	sess.Values["id"] = u.ID
	sess.Values["name"] = u.Name
	sess.Values["email"] = u.Email
	sess.Values["role"] = u.Role
	sess.Values["is_approved"] = u.IsApproved
	return sess.Save(c.Request(), c.Response())
}

// Clear expires the session cookie.
func (s *Sessions) Clear(c echo.Context) error {
	sess, _ := s.store.Get(c.Request(), SessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// RequirePage guards a server-rendered page.  Without a session the browser
// is sent to /login; a session whose role is not allowed is sent to that
// role's own landing page.
func RequirePage(s *Sessions, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := s.Current(c)
			if !ok {
				return c.Redirect(http.StatusFound, "/login")
			}
			if !allowed[u.Role] {
				return c.Redirect(http.StatusFound, model.LandingPath(u.Role))
			}
			setIdentity(c, Identity{ID: u.ID, Name: u.Name, Role: u.Role})
			return next(c)
		}
	}
}

// PublicOnly sends signed-in users away from the login and signup pages.
func PublicOnly(s *Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if u, ok := s.Current(c); ok {
				return c.Redirect(http.StatusFound, model.LandingPath(u.Role))
			}
			return next(c)
		}
	}
}
