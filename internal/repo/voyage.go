// Package repo contains all database access logic for the Sailing Logbook API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VoyageRepo defines the persistence operations for Voyages.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type VoyageRepo interface {
	// Create inserts a new voyage and returns the persisted record (with DB-generated
	// id, created_at, and updated_at populated). Aggregate fields are not written.
	Create(ctx context.Context, voyage domain.Voyage) (domain.Voyage, error)

	// GetByID retrieves a single voyage by its UUID primary key.
	// Returns domain.ErrNotFound if no voyage with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Voyage, error)

	// List returns all voyages ordered by started_at descending.
	List(ctx context.Context) ([]domain.Voyage, error)

	// ListPaged returns one page of voyages and the total voyage count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Voyage, int64, error)

	// ListIDs returns the IDs of every voyage in creation order. Used by the
	// backfill, which loads each voyage individually.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// Update overwrites the header fields of an existing voyage and returns the
	// updated record. Aggregate fields are left untouched.
	// Returns domain.ErrNotFound if no voyage with that ID exists.
	Update(ctx context.Context, voyage domain.Voyage) (domain.Voyage, error)

	// UpdateTotals overwrites the aggregate fields of a voyage. Nil values are
	// stored as NULL. Returns domain.ErrNotFound if the voyage does not exist.
	UpdateTotals(ctx context.Context, id uuid.UUID, totals domain.VoyageTotals) error

	// Delete removes a voyage and, by cascade, its events.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgVoyageRepo is the Postgres implementation of VoyageRepo.
type pgVoyageRepo struct {
	db db
}

// NewVoyageRepo constructs a VoyageRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewVoyageRepo(db db) VoyageRepo {
	return &pgVoyageRepo{db: db}
}

const voyageColumns = `
	id, started_at, ended_at, departure_port, arrival_port,
	start_position, end_position, start_lat, start_lng, end_lat, end_lng,
	notes, total_distance_nm, total_duration_hours, avg_speed_kn,
	created_at, updated_at`

// Create inserts a new voyage row and returns the full persisted record.
func (r *pgVoyageRepo) Create(ctx context.Context, voyage domain.Voyage) (domain.Voyage, error) {
	q := `
		INSERT INTO voyages (started_at, ended_at, departure_port, arrival_port,
		                     start_position, end_position, start_lat, start_lng, end_lat, end_lng, notes)
		VALUES (@started_at, @ended_at, @departure_port, @arrival_port,
		        @start_position, @end_position, @start_lat, @start_lng, @end_lat, @end_lng, @notes)
		RETURNING` + voyageColumns

	row := r.db.QueryRow(ctx, q, voyageArgs(voyage))
	result, err := scanVoyage(row)
	if err != nil {
		return domain.Voyage{}, fmt.Errorf("repo.VoyageRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a voyage by primary key.
func (r *pgVoyageRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Voyage, error) {
	q := `SELECT` + voyageColumns + ` FROM voyages WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanVoyage(row)
	if err != nil {
		return domain.Voyage{}, fmt.Errorf("repo.VoyageRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all voyages ordered by started_at descending (most recent first).
func (r *pgVoyageRepo) List(ctx context.Context) ([]domain.Voyage, error) {
	q := `SELECT` + voyageColumns + ` FROM voyages ORDER BY started_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.VoyageRepo.List: %w", err)
	}
	voyages, err := collectVoyages(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.VoyageRepo.List: %w", err)
	}
	return voyages, nil
}

// ListPaged returns one page of voyages, most recent first, and the total count.
func (r *pgVoyageRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Voyage, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM voyages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.VoyageRepo.ListPaged: count: %w", err)
	}

	q := `SELECT` + voyageColumns + `
		FROM voyages
		ORDER BY started_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.VoyageRepo.ListPaged: %w", err)
	}
	voyages, err := collectVoyages(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.VoyageRepo.ListPaged: %w", err)
	}
	return voyages, total, nil
}

// ListIDs returns every voyage ID ordered by created_at.
func (r *pgVoyageRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM voyages ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("repo.VoyageRepo.ListIDs: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("repo.VoyageRepo.ListIDs: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

// Update overwrites the header fields of a voyage and returns the updated record.
func (r *pgVoyageRepo) Update(ctx context.Context, voyage domain.Voyage) (domain.Voyage, error) {
	q := `
		UPDATE voyages
		SET started_at     = @started_at,
		    ended_at       = @ended_at,
		    departure_port = @departure_port,
		    arrival_port   = @arrival_port,
		    start_position = @start_position,
		    end_position   = @end_position,
		    start_lat      = @start_lat,
		    start_lng      = @start_lng,
		    end_lat        = @end_lat,
		    end_lng        = @end_lng,
		    notes          = @notes,
		    updated_at     = now()
		WHERE id = @id
		RETURNING` + voyageColumns

	args := voyageArgs(voyage)
	args["id"] = voyage.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanVoyage(row)
	if err != nil {
		return domain.Voyage{}, fmt.Errorf("repo.VoyageRepo.Update: %w", err)
	}
	return result, nil
}

// UpdateTotals writes the three aggregate columns of a single voyage.
func (r *pgVoyageRepo) UpdateTotals(ctx context.Context, id uuid.UUID, totals domain.VoyageTotals) error {
	const q = `
		UPDATE voyages
		SET total_distance_nm    = @total_distance_nm,
		    total_duration_hours = @total_duration_hours,
		    avg_speed_kn         = @avg_speed_kn
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":                   id,
		"total_distance_nm":    totals.TotalDistanceNM, // nil becomes NULL
		"total_duration_hours": totals.TotalDurationHours,
		"avg_speed_kn":         totals.AvgSpeedKN,
	})
	if err != nil {
		return fmt.Errorf("repo.VoyageRepo.UpdateTotals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.VoyageRepo.UpdateTotals: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a voyage by primary key.
func (r *pgVoyageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM voyages WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.VoyageRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.VoyageRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// voyageArgs maps the writable header fields of a voyage to named query arguments.
func voyageArgs(v domain.Voyage) pgx.NamedArgs {
	startLat, startLng := splitPosition(v.StartPosition)
	endLat, endLng := splitPosition(v.EndPosition)
	return pgx.NamedArgs{
		"started_at":     v.StartedAt,
		"ended_at":       v.EndedAt, // nil becomes NULL
		"departure_port": v.DeparturePort,
		"arrival_port":   v.ArrivalPort,
		"start_position": v.StartPositionText,
		"end_position":   v.EndPositionText,
		"start_lat":      startLat,
		"start_lng":      startLng,
		"end_lat":        endLat,
		"end_lng":        endLng,
		"notes":          v.Notes,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanVoyage maps a single database row into a domain.Voyage.
// Columns must be selected in voyageColumns order.
func scanVoyage(s scanner) (domain.Voyage, error) {
	var (
		v                  domain.Voyage
		id                 pgtype.UUID
		endedAt            pgtype.Timestamptz
		startLat, startLng *float64
		endLat, endLng     *float64
	)

	err := s.Scan(
		&id, &v.StartedAt, &endedAt, &v.DeparturePort, &v.ArrivalPort,
		&v.StartPositionText, &v.EndPositionText, &startLat, &startLng, &endLat, &endLng,
		&v.Notes, &v.TotalDistanceNM, &v.TotalDurationHours, &v.AvgSpeedKN,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Voyage{}, domain.ErrNotFound
		}
		return domain.Voyage{}, err
	}

	v.ID = uuid.UUID(id.Bytes)
	if endedAt.Valid {
		t := endedAt.Time
		v.EndedAt = &t
	}
	v.StartPosition = joinPosition(startLat, startLng)
	v.EndPosition = joinPosition(endLat, endLng)
	return v, nil
}

// collectVoyages scans every row and closes rows. It always returns a
// non-nil slice on success.
func collectVoyages(rows pgx.Rows) ([]domain.Voyage, error) {
	defer rows.Close()

	voyages := []domain.Voyage{}
	for rows.Next() {
		v, err := scanVoyage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		voyages = append(voyages, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return voyages, nil
}

// splitPosition returns nullable column values for an optional position.
func splitPosition(p *domain.Position) (lat, lng *float64) {
	if p == nil {
		return nil, nil
	}
	la, ln := p.Latitude, p.Longitude
	return &la, &ln
}

// joinPosition builds an optional position from nullable columns.
// A half-filled pair is treated as no position.
func joinPosition(lat, lng *float64) *domain.Position {
	if lat == nil || lng == nil {
		return nil
	}
	return &domain.Position{Latitude: *lat, Longitude: *lng}
}
