package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contacts-api/internal/auth"
	"github.com/iliyamo/contacts-api/internal/config"
	"github.com/iliyamo/contacts-api/internal/middleware"
	"github.com/iliyamo/contacts-api/internal/model"
	"github.com/iliyamo/contacts-api/internal/queue"
	"github.com/iliyamo/contacts-api/internal/repository"
	queue_publisher "github.com/iliyamo/contacts-api/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Auth  *auth.Service
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, a *auth.Service) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Auth: a}
}

// ----- DTOs -----

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type requestEmailReq struct {
	Email string `json:"email"`
}

type userResp struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

func toUserResp(u model.User) userResp {
	return userResp{ID: u.ID, Username: u.Username, Email: u.Email, Avatar: u.Avatar}
}

// Signup creates an unconfirmed account and queues the verification email.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too short"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "account already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	h.queueVerificationEmail(req.Email, req.Username)

	return c.JSON(http.StatusCreated, userResp{ID: uid, Username: req.Username, Email: req.Email})
}

// Login verifies credentials and returns an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotConfirmed):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "email not confirmed"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		case errors.Is(err, auth.ErrInfrastructure):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, pair)
}

// RefreshToken exchanges a bearer refresh token for a new pair, rotating
// the stored token.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, raw)
	if err != nil {
		if errors.Is(err, auth.ErrInfrastructure) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout clears the caller's stored refresh token (protected).
func (h *AuthHandler) Logout(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"result": "Logout success"})
}

// ConfirmedEmail redeems the verification token from the email link.
func (h *AuthHandler) ConfirmedEmail(c echo.Context) error {
	token := c.Param("token")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.ConfirmEmail(ctx, token); err != nil {
		if errors.Is(err, auth.ErrInfrastructure) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "verification error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Email confirmed"})
}

// RequestEmail re-sends the verification email.  The response is the same
// whether or not the address exists, so the endpoint cannot be used to
// probe for accounts.
func (h *AuthHandler) RequestEmail(c echo.Context) error {
	var req requestEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"message": "Check your email for confirmation."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.Confirmed {
		return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
	}

	h.queueVerificationEmail(u.Email, u.Username)
	return c.JSON(http.StatusOK, echo.Map{"message": "Check your email for confirmation."})
}

// queueVerificationEmail issues the email token and publishes the event in
// the background.  Delivery failures are logged, not surfaced: the account
// exists either way and the client can re-request the email.
func (h *AuthHandler) queueVerificationEmail(email, username string) {
	token, err := h.Auth.IssueEmailToken(email)
	if err != nil {
		log.Printf("issue email token for %s failed: %v", email, err)
		return
	}
	ev := queue.EmailRequestedEvent{
		Email:    email,
		Username: username,
		Token:    token,
		BaseURL:  h.Cfg.BaseURL,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishEmailRequested(ctx, ev)
	}()
}
