// Package router wires handlers, guards and middleware onto the Echo
// instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rustamli/newsdesk-admin/internal/handler"
)

// Deps carries everything the route table needs. Fields are grouped the
// way the routes are: session plumbing first, then one handler per area.
type Deps struct {
	Guard     echo.MiddlewareFunc // session guard (authn + coarse area gating)
	RateLimit echo.MiddlewareFunc // token-bucket limiter for the login endpoint
	Cache     echo.MiddlewareFunc // response cache for hot listing endpoints
	Metrics   echo.MiddlewareFunc // request counter/latency
	MetricsFn echo.HandlerFunc    // GET /metrics

	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Posts      *handler.PostHandler
	Categories *handler.CategoryHandler
	Ads        *handler.AdHandler
	Wiki       *handler.WikiHandler
	Editing    *handler.EditingHandler
}

// Register sets up the full route table.
//
// Layout: /healthz and /metrics are open (probes and the scraper carry no
// session). /api/auth/login is rate limited but unauthenticated; logout
// only clears a cookie so it stays open too. /dashboard navigations and
// everything under /api/admin run behind the session guard, which also
// confines non-admin ranks to the posts area; per-resource rules are
// enforced again inside handlers through the authorizer.
func Register(e *echo.Echo, d Deps) {
	if d.Metrics != nil {
		e.Use(d.Metrics)
	}

	e.GET("/healthz", handler.Health)
	if d.MetricsFn != nil {
		e.GET("/metrics", d.MetricsFn)
	}

	authGroup := e.Group("/api/auth")
	if d.RateLimit != nil {
		authGroup.POST("/login", d.Auth.Login, d.RateLimit)
	} else {
		authGroup.POST("/login", d.Auth.Login)
	}
	authGroup.POST("/logout", d.Auth.Logout)
	// Session introspection needs a valid session but must stay reachable
	// for every rank, so it lives outside the confined /api/admin area.
	authGroup.GET("/me", d.Auth.Me, d.Guard)

	dash := e.Group("/dashboard", d.Guard)
	dash.GET("", handler.Dashboard)
	dash.GET("/*", handler.Dashboard)

	admin := e.Group("/api/admin", d.Guard)

	admin.GET("/users", d.Users.List)
	admin.POST("/users", d.Users.Create)
	admin.GET("/users/:id", d.Users.Get)
	admin.PUT("/users/:id", d.Users.Update)
	admin.DELETE("/users/:id", d.Users.Delete)
	admin.PATCH("/users/:id", d.Users.Patch)

	if d.Cache != nil {
		admin.GET("/posts", d.Posts.List, d.Cache)
	} else {
		admin.GET("/posts", d.Posts.List)
	}
	admin.POST("/posts", d.Posts.Create)
	admin.GET("/posts/:id", d.Posts.Get)
	admin.PUT("/posts/:id", d.Posts.Update)
	admin.DELETE("/posts/:id", d.Posts.Delete)
	admin.PATCH("/posts/:id", d.Posts.Patch)

	admin.POST("/posts/:id/editing", d.Editing.Begin)
	admin.GET("/posts/:id/editing", d.Editing.Status)
	admin.DELETE("/posts/:id/editing", d.Editing.End)

	if d.Cache != nil {
		admin.GET("/categories", d.Categories.List, d.Cache)
	} else {
		admin.GET("/categories", d.Categories.List)
	}
	admin.POST("/categories", d.Categories.Create)
	admin.PUT("/categories/:id", d.Categories.Update)
	admin.DELETE("/categories/:id", d.Categories.Delete)

	admin.GET("/ads", d.Ads.List)
	admin.POST("/ads", d.Ads.Create)
	admin.PUT("/ads/:id", d.Ads.Update)
	admin.DELETE("/ads/:id", d.Ads.Delete)

	admin.GET("/wiki", d.Wiki.List)
	admin.POST("/wiki", d.Wiki.Create)
	admin.GET("/wiki/:id", d.Wiki.Get)
	admin.PUT("/wiki/:id", d.Wiki.Update)
	admin.DELETE("/wiki/:id", d.Wiki.Delete)
}
