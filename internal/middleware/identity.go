package middleware

// identity.go defines helpers shared across middleware files and handlers
// for reading the authenticated user out of the Echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contacts-api/internal/model"
)

const userContextKey = "current_user"

// CurrentUser returns the user resolved by BearerAuth.  The boolean is
// false on routes that never passed through the middleware.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}

// currentUserKey returns a stable identifier for rate-limit keying: the
// authenticated email, or "anon" for guests.
func currentUserKey(c echo.Context) string {
	if u, ok := CurrentUser(c); ok && u.Email != "" {
		return u.Email
	}
	return "anon"
}
