package httpserver

import (
	"context"

	eventHTTP "calendar-autobot/internal/event/delivery/http"
	"calendar-autobot/internal/middleware"

	"github.com/gin-gonic/gin"
)

// setupEventDomain builds the event handler and registers its routes.
// Repository, extraction and sync wiring happens in cmd/api; the server only
// receives the finished use case.
func (srv HTTPServer) setupEventDomain(ctx context.Context, api *gin.RouterGroup, mw middleware.Middleware) error {
	h := eventHTTP.New(srv.l, srv.eventUC, srv.jobs, srv.reporter)
	eventHTTP.RegisterRoutes(api, h, mw)

	if srv.jobs != nil {
		srv.l.Infof(ctx, "Event domain registered (async jobs enabled)")
	} else {
		srv.l.Infof(ctx, "Event domain registered")
	}
	return nil
}
