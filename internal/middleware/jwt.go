package middleware // reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contacts-api/internal/auth"
)

// BearerAuth returns an Echo middleware that validates a Bearer access
// token and resolves the full user record (cache first, store on a miss)
// into the request context.  Handlers downstream read it back with
// CurrentUser.  A store or cache outage is reported as 503, never as 401:
// the client's credentials are not the problem.
func BearerAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			u, err := svc.ResolveCurrentUser(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, auth.ErrInfrastructure) {
					return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
			}

			c.Set(userContextKey, u)
			return next(c)
		}
	}
}
