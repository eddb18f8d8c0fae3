package postgre

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"calendar-autobot/internal/event/repository"
	"calendar-autobot/pkg/log"
)

type implRepository struct {
	db  *sqlx.DB
	l   log.Logger
	now func() time.Time
}

// New creates a sqlx-backed Repository for the event domain. Queries are
// written with ? placeholders and rebound for the connection's driver, so the
// same repository runs on Postgres and SQLite.
func New(db *sqlx.DB, l log.Logger) repository.Repository {
	if db == nil {
		panic("event/repository/postgre: db is required")
	}
	return &implRepository{db: db, l: l, now: func() time.Time { return time.Now().UTC() }}
}

// dsn is a helper to return a method-scoped context string for logging.
func (r *implRepository) dsn(method string) string {
	return fmt.Sprintf("event/repository/postgre.%s", method)
}
