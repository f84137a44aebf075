package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rustamli/newsdesk-admin/internal/auth"
	"github.com/rustamli/newsdesk-admin/internal/middleware"
	"github.com/rustamli/newsdesk-admin/internal/repository"
)

// AuthHandler bundles dependencies for the session endpoints.
type AuthHandler struct {
	Issuer *auth.Issuer
	Users  *repository.UserRepo
}

func NewAuthHandler(issuer *auth.Issuer, users *repository.UserRepo) *AuthHandler {
	if issuer == nil || users == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{Issuer: issuer, Users: users}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUser struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResp struct {
	User    sessionUser `json:"user"`
	Token   string      `json:"token"`
	Expires time.Time   `json:"expires"`
}

// Login verifies credentials and starts a session. The token is returned
// in the body for API clients and also set as an HTTP-only cookie so the
// dashboard works without client-side token handling. Unknown accounts,
// wrong passwords and deactivated accounts all produce the same 401 so the
// response does not leak which emails exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış sorğu"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "E-poçt və şifrə tələb olunur"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetForLogin(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "E-poçt və ya şifrə yanlışdır"})
		}
		return internalError(c, err)
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "E-poçt və ya şifrə yanlışdır"})
	}

	token, exp, err := h.Issuer.Issue(u)
	if err != nil {
		return internalError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, loginResp{
		User: sessionUser{
			ID:    u.ID,
			Name:  u.DisplayName(),
			Email: u.Email,
			Role:  u.Role.Label(),
		},
		Token:   token,
		Expires: exp,
	})
}

// Logout clears the session cookie. The JWT itself stays valid until it
// expires; the panel relies on short session TTLs rather than a token
// denylist.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated account as currently stored, not as cached
// in the token, so the panel shows role changes without a re-login.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.ActorID(c))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "İstifadəçi tapılmadı"})
		}
		return internalError(c, err)
	}
	if u.DeletedAt != nil || !u.Status {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "İstifadəçi tapılmadı"})
	}

	return c.JSON(http.StatusOK, sessionUser{
		ID:    u.ID,
		Name:  u.DisplayName(),
		Email: u.Email,
		Role:  u.Role.Label(),
	})
}
