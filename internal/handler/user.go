package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rustamli/newsdesk-admin/internal/auth"
	"github.com/rustamli/newsdesk-admin/internal/authz"
	"github.com/rustamli/newsdesk-admin/internal/middleware"
	"github.com/rustamli/newsdesk-admin/internal/model"
	"github.com/rustamli/newsdesk-admin/internal/repository"
)

// UserHandler implements account management. Every mutation goes through
// the authorizer, which re-reads the actor's row, so a demoted or
// deactivated admin's surviving token cannot keep changing accounts.
type UserHandler struct {
	Users      *repository.UserRepo
	Authz      *authz.Authorizer
	BcryptCost int
}

func NewUserHandler(users *repository.UserRepo, az *authz.Authorizer, bcryptCost int) *UserHandler {
	if users == nil || az == nil {
		panic("nil dependency passed to NewUserHandler")
	}
	return &UserHandler{Users: users, Authz: az, BcryptCost: bcryptCost}
}

type userReq struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     *int   `json:"role"`
	Status   *bool  `json:"status"`
}

type userResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Email:     u.Email,
		Role:      u.Role.Label(),
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// List returns non-deleted accounts, newest first. Supports ?q= (name,
// surname or email substring) and ?role= filters.
func (h *UserHandler) List(c echo.Context) error {
	f := repository.UserFilter{Query: strings.TrimSpace(c.QueryParam("q"))}
	if raw := c.QueryParam("role"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			r := model.ParseRank(n)
			f.Role = &r
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx, f)
	if err != nil {
		return internalError(c, err)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Get returns one account by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "İstifadəçi tapılmadı"})
		}
		return internalError(c, err)
	}
	if u.DeletedAt != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "İstifadəçi tapılmadı"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Create adds an account. Requires editor rank; granting a rank above
// editor requires admin.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış sorğu"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ad, e-poçt və şifrə tələb olunur"})
	}

	role := model.RankReporter
	if req.Role != nil {
		role = model.ParseRank(*req.Role)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	minRank := model.RankEditor
	if role.AtLeast(model.RankAdmin) {
		// Only admins can mint other admins.
		minRank = model.RankAdmin
	}
	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), minRank); err != nil {
		return authzError(c, err)
	}

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return internalError(c, err)
	}

	status := true
	if req.Status != nil {
		status = *req.Status
	}
	id, err := h.Users.Create(ctx, model.User{
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Bu e-poçt ünvanı artıq istifadə olunur"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Update edits an account. Editors may edit profile fields; changing the
// role needs admin. The password is re-hashed only when the request sends
// a new one.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış sorğu"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	minRank := model.RankEditor
	if req.Role != nil {
		minRank = model.RankAdmin
	}
	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), minRank); err != nil {
		return authzError(c, err)
	}

	up := repository.UserUpdate{}
	if req.Name != "" {
		up.Name = &req.Name
	}
	if req.Surname != "" {
		up.Surname = &req.Surname
	}
	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		taken, err := h.Users.EmailTaken(ctx, email, id)
		if err != nil {
			return internalError(c, err)
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Bu e-poçt ünvanı artıq istifadə olunur"})
		}
		up.Email = &email
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password, h.BcryptCost)
		if err != nil {
			return internalError(c, err)
		}
		up.PasswordHash = &hash
	}
	if req.Role != nil {
		r := model.ParseRank(*req.Role)
		up.Role = &r
	}
	up.Status = req.Status

	if err := h.Users.Update(ctx, id, up); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Bu e-poçt ünvanı artıq istifadə olunur"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// Delete soft-deletes an account. Admin only, and never your own account:
// the panel must always keep at least the acting admin alive.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.RequireOther(ctx, middleware.ActorID(c), model.RankAdmin, id); err != nil {
		return authzError(c, err)
	}
	if err := h.Users.SoftDelete(ctx, id); err != nil {
		return internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Patch applies one of the quick actions the user table exposes:
// ?action=toggle-status flips the active flag (editor+), and
// ?action=toggle-role cycles reporter→editor→admin→reporter (admin only,
// never on yourself).
func (h *UserHandler) Patch(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	switch c.QueryParam("action") {
	case "toggle-status":
		if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankEditor); err != nil {
			return authzError(c, err)
		}
		if err := h.Users.ToggleStatus(ctx, id); err != nil {
			return internalError(c, err)
		}
	case "toggle-role":
		if _, err := h.Authz.RequireOther(ctx, middleware.ActorID(c), model.RankAdmin, id); err != nil {
			return authzError(c, err)
		}
		target, err := h.Users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "İstifadəçi tapılmadı"})
			}
			return internalError(c, err)
		}
		next := model.ParseRank((int(target.Role) + 1) % 3)
		if err := h.Users.SetRole(ctx, id, next); err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": next.Label()})
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Naməlum əməliyyat"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}
