package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers load balancer probes with a plain 200 "ok". It runs
// outside the session guard so probes need no credentials.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
