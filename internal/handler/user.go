package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contacts-api/internal/auth"
	"github.com/iliyamo/contacts-api/internal/middleware"
	"github.com/iliyamo/contacts-api/internal/repository"
	"github.com/iliyamo/contacts-api/internal/storage"
)

// UserHandler serves the current-user profile endpoints.  Avatars may be
// nil when object storage is not configured; the avatar endpoint then
// reports the feature as unavailable.
type UserHandler struct {
	Users   *repository.UserRepo
	Auth    *auth.Service
	Avatars *storage.AvatarStore
}

func NewUserHandler(u *repository.UserRepo, a *auth.Service, av *storage.AvatarStore) *UserHandler {
	return &UserHandler{Users: u, Auth: a, Avatars: av}
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// UpdateAvatar handles PATCH /api/users/avatar: uploads the multipart
// "file" part to object storage, persists the new URL and rewrites the
// cached snapshot so subsequent requests see it immediately.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if h.Avatars == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "avatar storage not configured"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read file"})
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	url, err := h.Avatars.Upload(ctx, u.ID, fh.Header.Get("Content-Type"), src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	updated, err := h.Users.UpdateAvatar(ctx, u.Email, url)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save avatar failed"})
	}
	if err := h.Auth.RefreshCacheEntry(ctx, updated); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	return c.JSON(http.StatusOK, toUserResp(updated))
}
