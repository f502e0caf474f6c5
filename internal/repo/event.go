package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// EventRepo defines the persistence operations for Events.
// All write and single-read operations are scoped by voyageID to enforce ownership.
type EventRepo interface {
	// Create inserts a new event, including its segment metrics, and returns
	// the persisted record.
	Create(ctx context.Context, event domain.Event) (domain.Event, error)

	// GetByID retrieves a single event by its UUID, scoped to the given voyageID.
	// Returns domain.ErrNotFound if no event with that ID exists under that voyage.
	GetByID(ctx context.Context, voyageID, eventID uuid.UUID) (domain.Event, error)

	// ListByVoyageID returns all events of a voyage ordered by timestamp ascending.
	ListByVoyageID(ctx context.Context, voyageID uuid.UUID) ([]domain.Event, error)

	// ListByVoyageIDPaged returns one page of a voyage's events in timestamp
	// order together with the total event count for that voyage.
	ListByVoyageIDPaged(ctx context.Context, voyageID uuid.UUID, p domain.PaginationParams) ([]domain.Event, int64, error)

	// CountByVoyageID returns the number of events recorded for a voyage.
	CountByVoyageID(ctx context.Context, voyageID uuid.UUID) (int64, error)

	// Update overwrites the mutable fields of an event, including its segment
	// metrics, scoped to the given voyageID.
	// Returns domain.ErrNotFound if no event with that ID exists under that voyage.
	Update(ctx context.Context, event domain.Event) (domain.Event, error)

	// Delete removes an event by ID, scoped to the given voyageID.
	// Returns domain.ErrNotFound if no event with that ID exists under that voyage.
	Delete(ctx context.Context, voyageID, eventID uuid.UUID) error
}

// pgEventRepo is the Postgres implementation of EventRepo.
type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

const eventColumns = `
	id, voyage_id, occurred_at, latitude, longitude, description, weather,
	distance_from_prev_nm, elapsed_hours_since_prev, avg_speed_since_prev_kn,
	created_at, updated_at`

func (r *pgEventRepo) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	q := `
		INSERT INTO events (voyage_id, occurred_at, latitude, longitude, description, weather,
		                    distance_from_prev_nm, elapsed_hours_since_prev, avg_speed_since_prev_kn)
		VALUES (@voyage_id, @occurred_at, @latitude, @longitude, @description, @weather,
		        @distance_from_prev_nm, @elapsed_hours_since_prev, @avg_speed_since_prev_kn)
		RETURNING` + eventColumns

	row := r.db.QueryRow(ctx, q, eventArgs(event))
	result, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgEventRepo) GetByID(ctx context.Context, voyageID, eventID uuid.UUID) (domain.Event, error) {
	q := `SELECT` + eventColumns + ` FROM events WHERE id = @id AND voyage_id = @voyage_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": eventID, "voyage_id": voyageID})
	result, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgEventRepo) ListByVoyageID(ctx context.Context, voyageID uuid.UUID) ([]domain.Event, error) {
	q := `SELECT` + eventColumns + `
		FROM events
		WHERE voyage_id = @voyage_id
		ORDER BY occurred_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"voyage_id": voyageID})
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListByVoyageID: %w", err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListByVoyageID: %w", err)
	}
	return events, nil
}

func (r *pgEventRepo) ListByVoyageIDPaged(ctx context.Context, voyageID uuid.UUID, p domain.PaginationParams) ([]domain.Event, int64, error) {
	total, err := r.CountByVoyageID(ctx, voyageID)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.EventRepo.ListByVoyageIDPaged: %w", err)
	}

	q := `SELECT` + eventColumns + `
		FROM events
		WHERE voyage_id = @voyage_id
		ORDER BY occurred_at, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"voyage_id": voyageID,
		"limit":     p.Limit,
		"offset":    p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.EventRepo.ListByVoyageIDPaged: %w", err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.EventRepo.ListByVoyageIDPaged: %w", err)
	}
	return events, total, nil
}

func (r *pgEventRepo) CountByVoyageID(ctx context.Context, voyageID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM events WHERE voyage_id = @voyage_id`,
		pgx.NamedArgs{"voyage_id": voyageID},
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repo.EventRepo.CountByVoyageID: %w", err)
	}
	return n, nil
}

func (r *pgEventRepo) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	q := `
		UPDATE events
		SET occurred_at              = @occurred_at,
		    latitude                 = @latitude,
		    longitude                = @longitude,
		    description              = @description,
		    weather                  = @weather,
		    distance_from_prev_nm    = @distance_from_prev_nm,
		    elapsed_hours_since_prev = @elapsed_hours_since_prev,
		    avg_speed_since_prev_kn  = @avg_speed_since_prev_kn,
		    updated_at               = now()
		WHERE id = @id AND voyage_id = @voyage_id
		RETURNING` + eventColumns

	args := eventArgs(event)
	args["id"] = event.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgEventRepo) Delete(ctx context.Context, voyageID, eventID uuid.UUID) error {
	const q = `DELETE FROM events WHERE id = @id AND voyage_id = @voyage_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": eventID, "voyage_id": voyageID})
	if err != nil {
		return fmt.Errorf("repo.EventRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func eventArgs(e domain.Event) pgx.NamedArgs {
	lat, lng := splitPosition(e.Position)
	return pgx.NamedArgs{
		"voyage_id":                e.VoyageID,
		"occurred_at":              e.Timestamp,
		"latitude":                 lat,
		"longitude":                lng,
		"description":              e.Description,
		"weather":                  e.Weather,
		"distance_from_prev_nm":    e.DistanceFromPrevNM,
		"elapsed_hours_since_prev": e.ElapsedHoursSincePrev,
		"avg_speed_since_prev_kn":  e.AvgSpeedSincePrevKN,
	}
}

// scanEvent maps a single database row into a domain.Event.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		e        domain.Event
		id       pgtype.UUID
		voyageID pgtype.UUID
		lat, lng *float64
	)

	err := s.Scan(
		&id, &voyageID, &e.Timestamp, &lat, &lng, &e.Description, &e.Weather,
		&e.DistanceFromPrevNM, &e.ElapsedHoursSincePrev, &e.AvgSpeedSincePrevKN,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.VoyageID = uuid.UUID(voyageID.Bytes)
	e.Position = joinPosition(lat, lng)
	return e, nil
}

func collectEvents(rows pgx.Rows) ([]domain.Event, error) {
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return events, nil
}
