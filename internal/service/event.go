package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/pkordes/sailing-logbook/internal/domain"
	"github.com/pkordes/sailing-logbook/internal/metrics"
	"github.com/pkordes/sailing-logbook/internal/nav"
	"github.com/pkordes/sailing-logbook/internal/repo"
)

// EventService implements business logic for Event operations.
// Every write derives the event's segment metrics against its nearest earlier
// event and then refreshes the voyage aggregates before returning.
type EventService struct {
	voyages repo.VoyageRepo
	events  repo.EventRepo
	metrics *MetricsService
	log     *slog.Logger
}

// NewEventService constructs an EventService. A nil logger falls back to slog.Default.
func NewEventService(voyages repo.VoyageRepo, events repo.EventRepo, m *MetricsService, log *slog.Logger) *EventService {
	if log == nil {
		log = slog.Default()
	}
	return &EventService{voyages: voyages, events: events, metrics: m, log: log}
}

// Create validates the event, verifies the parent voyage exists, derives the
// segment metrics, persists, then recalculates the voyage aggregates.
// Returns domain.ErrValidation if input violates business rules.
// Returns domain.ErrNotFound if the parent voyage does not exist.
func (s *EventService) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	if _, err := s.voyages.GetByID(ctx, event.VoyageID); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	if err := validateEvent(event); err != nil {
		return domain.Event{}, err
	}

	event.ID = uuid.Nil
	event.ApplySegment(domain.SegmentMetrics{})
	if err := s.deriveSegment(ctx, &event); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}

	result, err := s.events.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	if err := s.metrics.Recalculate(ctx, result.VoyageID); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single event by ID, scoped to the given voyageID.
// Returns domain.ErrNotFound if no event with that ID exists under that voyage.
func (s *EventService) GetByID(ctx context.Context, voyageID, eventID uuid.UUID) (domain.Event, error) {
	result, err := s.events.GetByID(ctx, voyageID, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.GetByID: %w", err)
	}
	return result, nil
}

// ListByVoyageID returns all events of a voyage ordered by timestamp ascending.
// Always returns a non-nil slice so callers can safely range over it.
func (s *EventService) ListByVoyageID(ctx context.Context, voyageID uuid.UUID) ([]domain.Event, error) {
	events, err := s.events.ListByVoyageID(ctx, voyageID)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.ListByVoyageID: %w", err)
	}
	if events == nil {
		return []domain.Event{}, nil
	}
	return events, nil
}

// ListByVoyageIDPaged returns one page of a voyage's events and the total count.
// Returns domain.ErrNotFound if the voyage does not exist.
func (s *EventService) ListByVoyageIDPaged(ctx context.Context, voyageID uuid.UUID, p domain.PaginationParams) ([]domain.Event, int64, error) {
	if _, err := s.voyages.GetByID(ctx, voyageID); err != nil {
		return nil, 0, fmt.Errorf("service.EventService.ListByVoyageIDPaged: %w", err)
	}
	events, total, err := s.events.ListByVoyageIDPaged(ctx, voyageID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.EventService.ListByVoyageIDPaged: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, total, nil
}

// Update validates and persists changes to an existing event, re-deriving its
// segment metrics, then recalculates the voyage aggregates.
// Returns domain.ErrValidation for invalid input, domain.ErrNotFound if the
// event does not exist under the given voyage.
func (s *EventService) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	if err := validateEvent(event); err != nil {
		return domain.Event{}, err
	}
	stored, err := s.events.GetByID(ctx, event.VoyageID, event.ID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Update: %w", err)
	}

	// Start from the stored values so a failed derivation keeps them.
	event.ApplySegment(stored.Segment())
	if err := s.deriveSegment(ctx, &event); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Update: %w", err)
	}

	result, err := s.events.Update(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Update: %w", err)
	}
	if err := s.metrics.Recalculate(ctx, result.VoyageID); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Update: %w", err)
	}
	return result, nil
}

// Delete removes an event and recalculates the voyage aggregates.
// The successor event keeps its stored segment metrics.
// Returns domain.ErrNotFound if the event does not exist under the given voyage.
func (s *EventService) Delete(ctx context.Context, voyageID, eventID uuid.UUID) error {
	if err := s.events.Delete(ctx, voyageID, eventID); err != nil {
		return fmt.Errorf("service.EventService.Delete: %w", err)
	}
	if err := s.metrics.Recalculate(ctx, voyageID); err != nil {
		return fmt.Errorf("service.EventService.Delete: %w", err)
	}
	return nil
}

// deriveSegment computes the segment metrics of event against the other events
// of its voyage and applies them. On a computation failure the event keeps the
// derived values it already carries.
func (s *EventService) deriveSegment(ctx context.Context, event *domain.Event) error {
	others, err := s.events.ListByVoyageID(ctx, event.VoyageID)
	if err != nil {
		return err
	}
	seg, err := nav.SegmentFor(others, *event)
	if err != nil {
		if !errors.Is(err, domain.ErrComputation) {
			return err
		}
		metrics.RecordComputationFailure(metrics.StageSegment)
		s.log.Warn("metrics computation failed, keeping stored values",
			"stage", metrics.StageSegment,
			"voyage_id", event.VoyageID,
			"event_id", event.ID,
			"error", err,
		)
		return nil
	}
	event.ApplySegment(seg)
	return nil
}

// validateEvent enforces business rules common to both Create and Update.
//   - Timestamp is required.
//   - Position, if set, must be a valid latitude/longitude pair.
func validateEvent(event domain.Event) error {
	if event.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", domain.ErrValidation)
	}
	return validatePosition("position", event.Position)
}

// validatePosition rejects non-finite coordinates and coordinates outside
// [-90, 90] x [-180, 180]. A nil position is valid.
func validatePosition(field string, p *domain.Position) error {
	if p == nil {
		return nil
	}
	if !finite(p.Latitude) || !finite(p.Longitude) {
		return fmt.Errorf("%w: %s coordinates must be finite numbers", domain.ErrValidation, field)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: %s latitude must be between -90 and 90", domain.ErrValidation, field)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: %s longitude must be between -180 and 180", domain.ErrValidation, field)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
