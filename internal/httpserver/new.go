package httpserver

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"calendar-autobot/internal/event"
	eventHTTP "calendar-autobot/internal/event/delivery/http"
	"calendar-autobot/pkg/errtrack"
	"calendar-autobot/pkg/log"
)

// Pinger reports whether a backing store is reachable. *sqlx.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	// Server
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string

	// Event domain
	eventUC         event.UseCase
	jobs            eventHTTP.Enqueuer
	reporter        errtrack.Reporter
	rateLimitPerMin int

	// Readiness
	db Pinger
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string

	EventUseCase    event.UseCase
	Jobs            eventHTTP.Enqueuer
	Reporter        errtrack.Reporter
	RateLimitPerMin int

	DB Pinger
}

// New creates a new HTTPServer instance and maps its routes.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:               logger,
		gin:             gin.New(),
		port:            cfg.Port,
		mode:            cfg.Mode,
		environment:     cfg.Environment,
		eventUC:         cfg.EventUseCase,
		jobs:            cfg.Jobs,
		reporter:        cfg.Reporter,
		rateLimitPerMin: cfg.RateLimitPerMin,
		db:              cfg.DB,
	}
	if srv.reporter == nil {
		srv.reporter = errtrack.Nop{}
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	if err := srv.mapHandlers(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (srv HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	if srv.eventUC == nil {
		return errors.New("event use case is required")
	}
	return nil
}
