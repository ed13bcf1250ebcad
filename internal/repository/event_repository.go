package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/events-api/internal/models"
)

const eventColumns = `id, type, uid, name, tagline, schedule, description, image,
       moderator, category, sub_category, rigor_rank, attendees, created_at, updated_at`

// updatableEventColumns whitelists columns a partial update may touch.
var updatableEventColumns = map[string]struct{}{
	"uid":          {},
	"name":         {},
	"tagline":      {},
	"schedule":     {},
	"description":  {},
	"image":        {},
	"moderator":    {},
	"category":     {},
	"sub_category": {},
	"rigor_rank":   {},
	"attendees":    {},
	"updated_at":   {},
}

// EventRepository handles event persistence.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event. The identifier is assigned here and is
// immutable afterwards.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.UpdatedAt.IsZero() {
		event.UpdatedAt = now
	}
	const query = `INSERT INTO events
	(id, type, uid, name, tagline, schedule, description, image, moderator, category, sub_category, rigor_rank, attendees, created_at, updated_at)
	VALUES (:id, :type, :uid, :name, :tagline, :schedule, :description, :image, :moderator, :category, :sub_category, :rigor_rank, :attendees, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetByID retrieves one event row. sql.ErrNoRows passes through so callers
// can classify absence as 404.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Count returns the total number of events.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}

// ListLatest returns a page of events ordered by schedule descending.
func (r *EventRepository) ListLatest(ctx context.Context, limit, offset int) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY schedule DESC LIMIT $1 OFFSET $2`
	events := make([]models.Event, 0, limit)
	if err := r.db.SelectContext(ctx, &events, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Update applies a partial column update atomically and returns the
// post-update row. sql.ErrNoRows passes through when no row matched.
func (r *EventRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Event, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("update event: no fields provided")
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		if _, ok := updatableEventColumns[column]; !ok {
			return nil, fmt.Errorf("update event: column %q not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	for _, column := range columns {
		args = append(args, fields[column])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d RETURNING `+eventColumns,
		strings.Join(assignments, ", "), len(args))

	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, args...); err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete removes an event permanently. Returns sql.ErrNoRows when nothing
// was removed.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check event delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
