package tasks

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all task routes on the given Echo instance.
// Every route requires an authenticated session.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/tasks", requireAuth)

	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
