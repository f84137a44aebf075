package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rustamli/newsdesk-admin/internal/auth"
	"github.com/rustamli/newsdesk-admin/internal/model"
)

// SessionCookieName is the cookie the login handler sets and the guard
// reads.  API clients may send the same token as a Bearer header instead.
const SessionCookieName = "newsdesk_session"

// Context keys under which the guard stores the verified session claims.
// Handlers access them through the ActorID/ActorRank/ActorName helpers.
const (
	ctxUserID = "user_id"
	ctxRank   = "rank"
	ctxName   = "display_name"
)

// GuardConfig wires the session guard.
type GuardConfig struct {
	Issuer    *auth.Issuer
	LoginPath string       // where unauthenticated navigations are sent
	OnDenial  func(string) // optional metrics hook: "unauthenticated" | "forbidden"
}

// SessionGuard returns the edge middleware protecting the dashboard and
// the admin API.  It runs before any handler and enforces two levels:
//
//  1. no valid session: navigations are redirected to the login page with
//     the original path preserved in ?callbackUrl=, API calls get a JSON
//     401.  Any error while decoding the token is treated the same way
//     (fail closed) and logged.
//  2. valid session, insufficient rank for an elevated area: everything
//     outside the posts section requires admin.  Navigations are softly
//     redirected to /dashboard/posts instead of dead-ending on an error
//     page; API calls get a JSON 403 with a human message.
//
// The check is prefix-based and deliberately coarse; per-resource rules
// (self-deletion, rank changes) live in the authz package.
func SessionGuard(cfg GuardConfig) echo.MiddlewareFunc {
	deny := func(kind string) {
		if cfg.OnDenial != nil {
			cfg.OnDenial(kind)
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			isAPI := strings.HasPrefix(path, "/api/")

			claims, err := verifySession(cfg.Issuer, c)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) {
					// Unexpected decode failure: still fail closed, but
					// leave a trace for the operators.
					log.Printf("guard: session verification error on %s: %v", path, err)
				}
				deny("unauthenticated")
				if isAPI {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
				}
				target := cfg.LoginPath + "?callbackUrl=" + url.QueryEscape(path)
				return c.Redirect(http.StatusFound, target)
			}

			SetActor(c, claims.UserID, claims.Rank, claims.DisplayName)

			if !claims.Rank.AtLeast(model.RankAdmin) {
				switch {
				case path == "/dashboard",
					strings.HasPrefix(path, "/dashboard/") && !strings.HasPrefix(path, "/dashboard/posts"):
					deny("forbidden")
					return c.Redirect(http.StatusFound, "/dashboard/posts")
				case strings.HasPrefix(path, "/api/admin/") && !strings.HasPrefix(path, "/api/admin/posts"):
					deny("forbidden")
					return c.JSON(http.StatusForbidden, echo.Map{"message": "Bu əməliyyat üçün icazəniz yoxdur."})
				}
			}

			return next(c)
		}
	}
}

// verifySession extracts the raw token (Bearer header first, then the
// session cookie) and verifies it.
func verifySession(issuer *auth.Issuer, c echo.Context) (auth.Claims, error) {
	raw := ""
	if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimPrefix(h, "Bearer ")
	} else if cookie, err := c.Cookie(SessionCookieName); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return issuer.Verify(raw)
}

// SetActor stores the verified session identity on the request context.
// The guard calls it after token verification; handler tests call it to
// simulate an authenticated request without minting a token.
func SetActor(c echo.Context, id uint64, rank model.Rank, name string) {
	c.Set(ctxUserID, id)
	c.Set(ctxRank, rank)
	c.Set(ctxName, name)
}

// ActorID returns the authenticated user's id stored by the guard.
func ActorID(c echo.Context) uint64 {
	if v, ok := c.Get(ctxUserID).(uint64); ok {
		return v
	}
	return 0
}

// ActorRank returns the rank cached in the session token.  Good enough
// for reads and display; mutations re-check through authz.
func ActorRank(c echo.Context) model.Rank {
	if v, ok := c.Get(ctxRank).(model.Rank); ok {
		return v
	}
	return model.RankReporter
}

// ActorName returns the display name carried by the session token.
func ActorName(c echo.Context) string {
	if v, ok := c.Get(ctxName).(string); ok {
		return v
	}
	return ""
}
