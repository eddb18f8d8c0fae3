package postgre

import (
	"strings"

	repo "calendar-autobot/internal/event/repository"
)

// buildGetOneQuery builds the WHERE clause + args for a single event.
// All non-empty fields are applied as AND conditions.
func (r *implRepository) buildGetOneQuery(opt repo.GetEventOptions) (string, []any) {
	var conditions []string
	var args []any

	if opt.ID != "" {
		conditions = append(conditions, "id = ?")
		args = append(args, opt.ID)
	}
	if opt.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, opt.UserID)
	}

	if len(conditions) == 0 {
		return "1=0", args
	}
	return strings.Join(conditions, " AND "), args
}

// buildListFilter builds the WHERE clause shared by the count and page queries.
func (r *implRepository) buildListFilter(opt repo.ListEventsOptions) (string, []any) {
	var conditions []string
	var args []any

	if opt.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, opt.UserID)
	}
	if opt.UnsyncedOnly {
		conditions = append(conditions, "is_synced = ?")
		args = append(args, false)
	}
	if opt.From != "" {
		conditions = append(conditions, "start_date >= ?")
		args = append(args, opt.From)
	}
	if opt.To != "" {
		conditions = append(conditions, "start_date <= ?")
		args = append(args, opt.To)
	}

	if len(conditions) == 0 {
		return "1=1", args
	}
	return strings.Join(conditions, " AND "), args
}

// buildPagination returns the LIMIT/OFFSET suffix. OFFSET needs a LIMIT on SQLite.
func (r *implRepository) buildPagination(opt repo.ListEventsOptions) (string, []any) {
	if opt.Limit <= 0 {
		return "", nil
	}
	if opt.Offset > 0 {
		return " LIMIT ? OFFSET ?", []any{opt.Limit, opt.Offset}
	}
	return " LIMIT ?", []any{opt.Limit}
}
