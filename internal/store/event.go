package store

import (
	"context"
	"fmt"
	"time"

	"catcare/internal/utils"
	"catcare/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventTableName = "catcare.events"

var eventColumns = utils.Columns[types.EventRow]()

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Events returns every event in the order they were created.
func (r *EventRepository) Events(ctx context.Context) ([]*types.EventRow, error) {
	query, args, err := psql().
		Select(eventColumns...).
		From(eventTableName).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate events query: %w", err)
	}

	var events []*types.EventRow
	err = pgxscan.Select(ctx, r.pool, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	return events, nil
}

func (r *EventRepository) Event(ctx context.Context, eventID string) (*types.EventRow, error) {
	query, args, err := psql().
		Select(eventColumns...).
		From(eventTableName).
		Where(sq.Eq{"id": eventID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate event query: %w", err)
	}

	var event types.EventRow
	err = pgxscan.Get(ctx, r.pool, &event, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	return &event, nil
}

func (r *EventRepository) EventsByVolunteer(ctx context.Context, userID string) ([]*types.EventRow, error) {
	query, args, err := psql().
		Select(eventColumns...).
		From(eventTableName).
		Where(sq.Eq{"volunteer_id": userID}).
		OrderBy("scheduled_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate events-by-volunteer query: %w", err)
	}

	var events []*types.EventRow
	err = pgxscan.Select(ctx, r.pool, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events by volunteer: %w", err)
	}

	return events, nil
}

// CreateEvent inserts row, assigning its id and timestamps.
func (r *EventRepository) CreateEvent(ctx context.Context, row *types.EventRow) error {
	now := time.Now()
	if row.ID == "" {
		row.ID = utils.NewID()
	}
	row.CreatedAt = now
	row.UpdatedAt = now

	query, args, err := psql().
		Insert(eventTableName).
		SetMap(utils.Values(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create event query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// UpdateEvent writes only the given columns.
func (r *EventRepository) UpdateEvent(ctx context.Context, eventID string, columns map[string]any) error {
	set := make(map[string]any, len(columns)+1)
	for k, v := range columns {
		set[k] = v
	}
	set["updated_at"] = time.Now()

	return r.update(ctx, eventID, set, "update event")
}

func (r *EventRepository) AssignVolunteer(ctx context.Context, eventID, userID string) error {
	return r.update(ctx, eventID, map[string]any{
		"volunteer_id": userID,
		"available":    false,
		"updated_at":   time.Now(),
	}, "assign volunteer")
}

func (r *EventRepository) SetCompleted(ctx context.Context, eventID string, completed bool) error {
	return r.update(ctx, eventID, map[string]any{
		"completed":  completed,
		"updated_at": time.Now(),
	}, "set event completion")
}

func (r *EventRepository) update(ctx context.Context, eventID string, set map[string]any, action string) error {
	query, args, err := psql().
		Update(eventTableName).
		SetMap(set).
		Where(sq.Eq{"id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate %s query: %w", action, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrEventNotFound
	}

	return nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, eventID string) error {
	query, args, err := psql().
		Delete(eventTableName).
		Where(sq.Eq{"id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete event query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrEventNotFound
	}

	return nil
}
