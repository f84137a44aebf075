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
)

// AdHandler manages advertising campaigns.
type AdHandler struct {
	Ads   *repository.AdRepo
	Authz *authz.Authorizer
}

func NewAdHandler(ads *repository.AdRepo, az *authz.Authorizer) *AdHandler {
	if ads == nil || az == nil {
		panic("nil dependency passed to NewAdHandler")
	}
	return &AdHandler{Ads: ads, Authz: az}
}

type adReq struct {
	Title    string  `json:"title"`
	Link     *string `json:"link"`
	ImageURL *string `json:"image_url"`
	Status   *bool   `json:"status"`
	EndsAt   string  `json:"ends_at"`
}

type adResp struct {
	ID        uint64     `json:"id"`
	Title     string     `json:"title"`
	Link      *string    `json:"link"`
	ImageURL  *string    `json:"image_url"`
	Status    bool       `json:"status"`
	EndsAt    *time.Time `json:"ends_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// List returns campaigns, newest first.
func (h *AdHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ads, err := h.Ads.List(ctx)
	if err != nil {
		return internalError(c, err)
	}
	out := make([]adResp, 0, len(ads))
	for _, a := range ads {
		out = append(out, adResp{
			ID:        a.ID,
			Title:     a.Title,
			Link:      a.Link,
			ImageURL:  a.ImageURL,
			Status:    a.Status,
			EndsAt:    a.EndsAt,
			CreatedAt: a.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ads": out})
}

func (h *AdHandler) bind(c echo.Context) (model.Ad, bool) {
	var req adReq
	if err := c.Bind(&req); err != nil {
		return model.Ad{}, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return model.Ad{}, false
	}
	status := true
	if req.Status != nil {
		status = *req.Status
	}
	return model.Ad{
		Title:    req.Title,
		Link:     req.Link,
		ImageURL: req.ImageURL,
		Status:   status,
		EndsAt:   parsePublishedDate(req.EndsAt),
	}, true
}

// Create adds a campaign.
func (h *AdHandler) Create(c echo.Context) error {
	ad, ok := h.bind(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Başlıq tələb olunur"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankAdmin); err != nil {
		return authzError(c, err)
	}
	id, err := h.Ads.Create(ctx, ad)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Update edits a campaign.
func (h *AdHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}
	ad, ok := h.bind(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Başlıq tələb olunur"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankAdmin); err != nil {
		return authzError(c, err)
	}
	if err := h.Ads.Update(ctx, id, ad); err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// Delete soft-deletes a campaign.
func (h *AdHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Authz.Require(ctx, middleware.ActorID(c), model.RankAdmin); err != nil {
		return authzError(c, err)
	}
	if err := h.Ads.SoftDelete(ctx, id); err != nil {
		return internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
