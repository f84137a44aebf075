// Package handler contains the HTTP handlers of the admin panel.
package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rustamli/newsdesk-admin/internal/authz"
	"github.com/rustamli/newsdesk-admin/internal/database"
	"github.com/rustamli/newsdesk-admin/internal/middleware"
	"github.com/rustamli/newsdesk-admin/internal/model"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

// pathID parses a numeric path parameter into uint64.
func pathID(c echo.Context, name string) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// internalError logs the failure and answers with a generic Azerbaijani
// message. Admin sessions additionally get the MySQL error number appended
// so an operator on the phone can read the code off the screen; lower
// ranks never see it.
func internalError(c echo.Context, err error) error {
	log.Printf("handler: %s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
	msg := "Sistem xətası baş verdi."
	if middleware.ActorRank(c).AtLeast(model.RankAdmin) {
		if code := database.ErrorNumber(err); code != 0 {
			msg = fmt.Sprintf("%s (Xəta kodu: %d)", msg, code)
		}
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": msg})
}

// authzError translates authorization failures into the panel's responses.
// Unknown errors fall through to internalError.
func authzError(c echo.Context, err error) error {
	var rankErr *authz.RankError
	switch {
	case errors.Is(err, authz.ErrActorNotFound):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "İstifadəçi tapılmadı"})
	case errors.Is(err, authz.ErrSelfAction):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Öz hesabınızı silə bilməzsiniz"})
	case errors.As(err, &rankErr):
		msg := "Bu əməliyyat üçün Editor və ya Admin icazəsi lazımdır"
		if rankErr.Required == model.RankAdmin {
			msg = "Bu əməliyyat üçün Admin icazəsi lazımdır"
		}
		return c.JSON(http.StatusForbidden, echo.Map{"message": msg})
	}
	return internalError(c, err)
}
