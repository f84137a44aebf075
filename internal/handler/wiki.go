package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/rustamli/newsdesk-admin/internal/authz"
	"github.com/rustamli/newsdesk-admin/internal/middleware"
	"github.com/rustamli/newsdesk-admin/internal/model"
	"github.com/rustamli/newsdesk-admin/internal/repository"
	"github.com/rustamli/newsdesk-admin/internal/utils"
)

// WikiHandler manages the encyclopedia section. Entries share posts'
// sanitizing rules but have no publish workflow.
type WikiHandler struct {
	Wiki      *repository.WikiRepo
	Authz     *authz.Authorizer
	sanitizer *bluemonday.Policy
}

func NewWikiHandler(wiki *repository.WikiRepo, az *authz.Authorizer) *WikiHandler {
	if wiki == nil || az == nil {
		panic("nil dependency passed to NewWikiHandler")
	}
	return &WikiHandler{Wiki: wiki, Authz: az, sanitizer: bluemonday.UGCPolicy()}
}

type wikiReq struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Status  *bool  `json:"status"`
}

type wikiListItem struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns entries, newest first, in the narrow shape the table view
// renders.
func (h *WikiHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	entries, err := h.Wiki.List(ctx)
	if err != nil {
		return internalError(c, err)
	}
	out := make([]wikiListItem, 0, len(entries))
	for _, w := range entries {
		out = append(out, wikiListItem{ID: w.ID, Title: w.Title, Status: w.Status, CreatedAt: w.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"wiki": out})
}

// Get returns one entry with its full content.
func (h *WikiHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	w, err := h.Wiki.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Məqalə tapılmadı"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WikiHandler) bind(c echo.Context) (model.WikiPost, bool) {
	var req wikiReq
	if err := c.Bind(&req); err != nil {
		return model.WikiPost{}, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return model.WikiPost{}, false
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}
	status := true
	if req.Status != nil {
		status = *req.Status
	}
	return model.WikiPost{
		Title:   req.Title,
		Slug:    slug,
		Content: h.sanitizer.Sanitize(req.Content),
		Status:  status,
	}, true
}

// Create adds an entry.
func (h *WikiHandler) Create(c echo.Context) error {
	w, ok := h.bind(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Başlıq tələb olunur"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankAdmin); err != nil {
		return authzError(c, err)
	}
	id, err := h.Wiki.Create(ctx, w)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Update edits an entry.
func (h *WikiHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}
	w, ok := h.bind(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Başlıq tələb olunur"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankAdmin); err != nil {
		return authzError(c, err)
	}
	if err := h.Wiki.Update(ctx, id, w); err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// Delete soft-deletes an entry.
func (h *WikiHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankAdmin); err != nil {
		return authzError(c, err)
	}
	if err := h.Wiki.SoftDelete(ctx, id); err != nil {
		return internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
