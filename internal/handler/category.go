package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rustamli/newsdesk-admin/internal/authz"
	"github.com/rustamli/newsdesk-admin/internal/middleware"
	"github.com/rustamli/newsdesk-admin/internal/model"
	"github.com/rustamli/newsdesk-admin/internal/repository"
	"github.com/rustamli/newsdesk-admin/internal/utils"
)

// CategoryHandler manages the site's category tree. These routes sit in
// the admin-only area, so the guard already keeps reporters out; the
// authorizer still re-checks on mutations.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
	Authz      *authz.Authorizer
}

func NewCategoryHandler(categories *repository.CategoryRepo, az *authz.Authorizer) *CategoryHandler {
	if categories == nil || az == nil {
		panic("nil dependency passed to NewCategoryHandler")
	}
	return &CategoryHandler{Categories: categories, Authz: az}
}

type categoryReq struct {
	Title   string  `json:"title"`
	Slug    string  `json:"slug"`
	Order   int     `json:"order"`
	Home    bool    `json:"home"`
	Content *string `json:"content"`
	Status  *bool   `json:"status"`
}

type categoryResp struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Order     int       `json:"order"`
	Home      bool      `json:"home"`
	Content   *string   `json:"content,omitempty"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type categoryLite struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// List returns active categories ordered by position. The post editor's
// category picker requests ?lite=true and gets {id,title} pairs only.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return internalError(c, err)
	}

	if c.QueryParam("lite") == "true" {
		out := make([]categoryLite, 0, len(cats))
		for _, cat := range cats {
			out = append(out, categoryLite{ID: cat.ID, Title: cat.Title})
		}
		return c.JSON(http.StatusOK, echo.Map{"categories": out})
	}

	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryResp{
			ID:        cat.ID,
			Title:     cat.Title,
			Slug:      cat.Slug,
			Order:     cat.Order,
			Home:      cat.Home,
			Content:   cat.Content,
			Status:    cat.Status,
			CreatedAt: cat.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

func (h *CategoryHandler) bind(c echo.Context) (model.Category, bool) {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return model.Category{}, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return model.Category{}, false
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}
	status := true
	if req.Status != nil {
		status = *req.Status
	}
	return model.Category{
		Title:   req.Title,
		Slug:    slug,
		Order:   req.Order,
		Home:    req.Home,
		Content: req.Content,
		Status:  status,
	}, true
}

// Create adds a category.
func (h *CategoryHandler) Create(c echo.Context) error {
	cat, ok := h.bind(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Başlıq tələb olunur"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankAdmin); err != nil {
		return authzError(c, err)
	}
	id, err := h.Categories.Create(ctx, cat)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Update edits a category.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}
	cat, ok := h.bind(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Başlıq tələb olunur"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankAdmin); err != nil {
		return authzError(c, err)
	}
	if err := h.Categories.Update(ctx, id, cat); err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// Delete soft-deletes a category. Posts keep their category_post rows so
// a restored category gets its posts back.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankAdmin); err != nil {
		return authzError(c, err)
	}
	if err := h.Categories.SoftDelete(ctx, id); err != nil {
		return internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
