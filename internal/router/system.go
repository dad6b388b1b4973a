package router

import (
	"github.com/deppfellow/gpthub/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the routes outside /api: health, the docs
// page and the static assets it loads.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.Static("/static", "static")
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
