package handler // HTTP handlers for the contacts API

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness of the service and its database.
type HealthHandler struct{ DB *sql.DB }

func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

// Healthchecker verifies the database connection with a trivial query.
// Load balancers and monitoring call this endpoint.
func (h *HealthHandler) Healthchecker(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	var one int
	if err := h.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error connecting to the DB"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to the Contacts API"})
}
