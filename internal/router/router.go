package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contacts-api/internal/auth"
	"github.com/iliyamo/contacts-api/internal/handler"
	"github.com/iliyamo/contacts-api/internal/middleware"
)

// Handlers collects the handler groups the router wires up.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Contacts *handler.ContactHandler
}

// RegisterRoutes registers every route of the API on the provided Echo
// instance.  The rate limiter wraps the whole /api group; protected routes
// additionally pass through BearerAuth, which resolves the current user
// (cache first) into the request context.
func RegisterRoutes(e *echo.Echo, h Handlers, svc *auth.Service, rateLimit echo.MiddlewareFunc) {
	api := e.Group("/api")
	api.Use(rateLimit)

	api.GET("/healthchecker", h.Health.Healthchecker)

	// Unauthenticated session endpoints.
	ag := api.Group("/auth")
	ag.POST("/signup", h.Auth.Signup)
	ag.POST("/login", h.Auth.Login)
	ag.GET("/refresh_token", h.Auth.RefreshToken)
	ag.GET("/confirmed_email/:token", h.Auth.ConfirmedEmail)
	ag.POST("/request_email", h.Auth.RequestEmail)

	protected := middleware.BearerAuth(svc)

	// Logout needs the resolved current user.
	ag.POST("/logout", h.Auth.Logout, protected)

	ug := api.Group("/users", protected)
	ug.GET("/me", h.Users.Me)
	ug.PATCH("/avatar", h.Users.UpdateAvatar)

	cg := api.Group("/contacts", protected)
	cg.GET("", h.Contacts.List)
	cg.POST("", h.Contacts.Create)
	cg.GET("/birthdays", h.Contacts.Birthdays)
	cg.GET("/find/:query", h.Contacts.Find)
	cg.GET("/:id", h.Contacts.Get)
	cg.PUT("/:id", h.Contacts.Update)
	cg.DELETE("/:id", h.Contacts.Delete)
}
