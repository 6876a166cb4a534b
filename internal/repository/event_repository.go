package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const eventColumns = `id, title, date, description, start_time, end_time, class_id`

// EventRepository manages calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events; a class filter also keeps school-wide events.
func (r *EventRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Event, int, error) {
	var q listQuery
	if filter.ClassID > 0 {
		q.where("(class_id = ? OR class_id IS NULL)", filter.ClassID)
	}
	q.search(filter.Search, "title")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM events%s ORDER BY start_time DESC LIMIT %d OFFSET %d`, eventColumns, q.clause(), limit, offset)

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM events"+q.clause(), q.args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// FindByID fetches an event.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	if err := r.db.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// Create inserts an event and sets its generated id.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	const query = `INSERT INTO events (title, date, description, start_time, end_time, class_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, event.Title, event.Date, event.Description, event.StartTime, event.EndTime, event.ClassID).Scan(&event.ID); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update overwrites every event column.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	const query = `UPDATE events SET title = :title, date = :date, description = :description, start_time = :start_time, end_time = :end_time, class_id = :class_id WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an event row.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "events", id)
}
