package handler

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

// dashboardShell is served when no built frontend is present, so the
// server still answers dashboard navigations in development.
const dashboardShell = `<!doctype html>
<html lang="az">
<head><meta charset="utf-8"><title>Admin Panel</title></head>
<body><div id="root"></div><script src="/assets/app.js"></script></body>
</html>
`

// Dashboard serves the single-page app shell for every /dashboard
// navigation. Routing inside the panel is client-side; the server's job
// here is only to run the session guard and hand over the shell.
func Dashboard(c echo.Context) error {
	if body, err := os.ReadFile("web/index.html"); err == nil {
		return c.HTMLBlob(http.StatusOK, body)
	}
	return c.HTML(http.StatusOK, dashboardShell)
}
