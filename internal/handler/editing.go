package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rustamli/newsdesk-admin/internal/middleware"
	"github.com/rustamli/newsdesk-admin/internal/presence"
)

// EditingHandler exposes the collaborative-editing presence endpoints the
// post editor polls. All three operate on the in-memory registry and never
// touch the database; the post id is kept as an opaque string so presence
// works even for ids the posts table no longer has.
type EditingHandler struct {
	Presence presence.Registry
}

func NewEditingHandler(reg presence.Registry) *EditingHandler {
	if reg == nil {
		panic("nil registry passed to NewEditingHandler")
	}
	return &EditingHandler{Presence: reg}
}

// Begin marks the session user as editing the post and returns who else is
// there. The editor calls this on open and then periodically as a
// heartbeat; repeats refresh the entry.
func (h *EditingHandler) Begin(c echo.Context) error {
	postID := c.Param("id")
	if postID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}
	uid := middleware.ActorID(c)
	h.Presence.Begin(postID, uid, middleware.ActorName(c))
	return c.JSON(http.StatusOK, h.Presence.Status(postID, uid))
}

// Status reports presence without registering the caller, for the list
// views that show "being edited" badges.
func (h *EditingHandler) Status(c echo.Context) error {
	postID := c.Param("id")
	if postID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}
	return c.JSON(http.StatusOK, h.Presence.Status(postID, middleware.ActorID(c)))
}

// End removes the caller's entry. Fired from the editor's unload handler;
// ending a session that never began is a no-op.
func (h *EditingHandler) End(c echo.Context) error {
	postID := c.Param("id")
	if postID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Yanlış identifikator"})
	}
	h.Presence.End(postID, middleware.ActorID(c))
	return c.NoContent(http.StatusNoContent)
}
