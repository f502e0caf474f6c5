package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/sailing-logbook/internal/domain"
	"github.com/pkordes/sailing-logbook/internal/metrics"
	"github.com/pkordes/sailing-logbook/internal/nav"
	"github.com/pkordes/sailing-logbook/internal/repo"
)

// MetricsService maintains the aggregate fields of a voyage.
// Every method recomputes from the stored events, so calls are idempotent.
// There is no locking: concurrent writers to one voyage race last-writer-wins.
type MetricsService struct {
	voyages repo.VoyageRepo
	events  repo.EventRepo
	log     *slog.Logger
}

// NewMetricsService constructs a MetricsService. A nil logger falls back to slog.Default.
func NewMetricsService(voyages repo.VoyageRepo, events repo.EventRepo, log *slog.Logger) *MetricsService {
	if log == nil {
		log = slog.Default()
	}
	return &MetricsService{voyages: voyages, events: events, log: log}
}

// Recalculate rewrites the voyage aggregates from its time-ordered events.
// A voyage with no events has its aggregates cleared.
// A computation failure is logged and the stored aggregates are kept.
// Returns domain.ErrNotFound if the voyage does not exist.
func (s *MetricsService) Recalculate(ctx context.Context, voyageID uuid.UUID) error {
	started := time.Now()

	events, err := s.events.ListByVoyageID(ctx, voyageID)
	if err != nil {
		return fmt.Errorf("service.MetricsService.Recalculate: %w", err)
	}
	source, err := s.fromEvents(ctx, voyageID, events)
	if err != nil {
		return fmt.Errorf("service.MetricsService.Recalculate: %w", err)
	}
	metrics.RecordRecalculation(source, started)
	return nil
}

// RecalculateFromEndpoints rewrites the voyage aggregates from its start and
// end positions. Only meaningful for a voyage without events.
// Returns domain.ErrValidation if either endpoint position is missing.
func (s *MetricsService) RecalculateFromEndpoints(ctx context.Context, voyageID uuid.UUID) error {
	started := time.Now()

	v, err := s.voyages.GetByID(ctx, voyageID)
	if err != nil {
		return fmt.Errorf("service.MetricsService.RecalculateFromEndpoints: %w", err)
	}
	if err := s.fromEndpoints(ctx, v); err != nil {
		return fmt.Errorf("service.MetricsService.RecalculateFromEndpoints: %w", err)
	}
	metrics.RecordRecalculation(domain.RecalcFromEndpoints, started)
	return nil
}

// Refresh picks the aggregate path for one voyage and applies it:
// events when there are any, otherwise the endpoint positions when both are
// known, otherwise the aggregates are cleared.
func (s *MetricsService) Refresh(ctx context.Context, voyageID uuid.UUID) (domain.RecalcSource, error) {
	started := time.Now()

	v, err := s.voyages.GetByID(ctx, voyageID)
	if err != nil {
		return "", fmt.Errorf("service.MetricsService.Refresh: %w", err)
	}
	source, err := s.refresh(ctx, v)
	if err != nil {
		return "", fmt.Errorf("service.MetricsService.Refresh: %w", err)
	}
	metrics.RecordRecalculation(source, started)
	return source, nil
}

// RecalculateAll refreshes every voyage. It keeps going past per-voyage
// failures and lists them in the report; only a failure to enumerate the
// voyages or a cancelled context aborts the run.
func (s *MetricsService) RecalculateAll(ctx context.Context) (domain.RecalcReport, error) {
	ids, err := s.voyages.ListIDs(ctx)
	if err != nil {
		return domain.RecalcReport{}, fmt.Errorf("service.MetricsService.RecalculateAll: %w", err)
	}

	report := domain.RecalcReport{Failed: []uuid.UUID{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("service.MetricsService.RecalculateAll: %w", err)
		}
		report.Voyages++

		source, err := s.Refresh(ctx, id)
		if err != nil {
			s.log.Error("voyage recalculation failed", "voyage_id", id, "error", err)
			report.Failed = append(report.Failed, id)
			continue
		}
		switch source {
		case domain.RecalcFromEvents:
			report.FromEvents++
		case domain.RecalcFromEndpoints:
			report.FromEndpoints++
		case domain.RecalcCleared:
			report.Cleared++
		}
	}

	s.log.Info("voyage recalculation finished",
		"voyages", report.Voyages,
		"from_events", report.FromEvents,
		"from_endpoints", report.FromEndpoints,
		"cleared", report.Cleared,
		"failed", len(report.Failed),
	)
	return report, nil
}

func (s *MetricsService) refresh(ctx context.Context, v domain.Voyage) (domain.RecalcSource, error) {
	events, err := s.events.ListByVoyageID(ctx, v.ID)
	if err != nil {
		return "", err
	}
	if len(events) == 0 && v.HasEndpoints() {
		if err := s.fromEndpoints(ctx, v); err != nil {
			return "", err
		}
		return domain.RecalcFromEndpoints, nil
	}
	return s.fromEvents(ctx, v.ID, events)
}

// fromEvents writes the totals of events, or clears them when there are none.
func (s *MetricsService) fromEvents(ctx context.Context, voyageID uuid.UUID, events []domain.Event) (domain.RecalcSource, error) {
	if len(events) == 0 {
		if err := s.voyages.UpdateTotals(ctx, voyageID, domain.VoyageTotals{}); err != nil {
			return "", err
		}
		return domain.RecalcCleared, nil
	}

	totals, err := nav.VoyageTotals(nav.SortByTimestamp(events))
	if err != nil {
		if errors.Is(err, domain.ErrComputation) {
			s.computationFailed(metrics.StageVoyage, err, "voyage_id", voyageID)
			return domain.RecalcFromEvents, nil
		}
		return "", err
	}
	if err := s.voyages.UpdateTotals(ctx, voyageID, totals); err != nil {
		return "", err
	}
	return domain.RecalcFromEvents, nil
}

func (s *MetricsService) fromEndpoints(ctx context.Context, v domain.Voyage) error {
	totals, err := nav.EndpointTotals(v)
	if err != nil {
		if errors.Is(err, domain.ErrComputation) {
			s.computationFailed(metrics.StageEndpoints, err, "voyage_id", v.ID)
			return nil
		}
		return err
	}
	return s.voyages.UpdateTotals(ctx, v.ID, totals)
}

// computationFailed logs and counts a skipped derivation. The caller keeps
// whatever values are already stored.
func (s *MetricsService) computationFailed(stage string, err error, attrs ...any) {
	metrics.RecordComputationFailure(stage)
	s.log.Warn("metrics computation failed, keeping stored values",
		append([]any{"stage", stage, "error", err}, attrs...)...)
}
