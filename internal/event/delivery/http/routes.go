package http

import (
	"calendar-autobot/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes maps the event endpoints under rg (normally /api/v1).
// Extraction routes are rate limited per user.
func RegisterRoutes(rg *gin.RouterGroup, h *handler, mw middleware.Middleware) {
	rg.POST("/events/preview", mw.RateLimit(), h.Preview)

	users := rg.Group("/users/:user_id")
	{
		users.POST("/events/extract", mw.RateLimit(), h.Extract)
		users.GET("/events", h.List)
		users.GET("/events.ics", h.ExportICS)
		users.PUT("/events/:id", h.Update)
		users.DELETE("/events/:id", h.Delete)
		users.POST("/events/:id/sync", h.Sync)
		users.POST("/sync-pending", h.SyncPending)
		users.POST("/remove-duplicates", h.RemoveDuplicates)
	}
}
