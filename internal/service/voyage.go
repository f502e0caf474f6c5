// Package service contains the business logic for the Sailing Logbook API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/sailing-logbook/internal/domain"
	"github.com/pkordes/sailing-logbook/internal/nav"
	"github.com/pkordes/sailing-logbook/internal/repo"
)

// VoyageService implements business logic for Voyage operations.
type VoyageService struct {
	repo    repo.VoyageRepo
	metrics *MetricsService
}

// NewVoyageService constructs a VoyageService backed by the provided VoyageRepo.
func NewVoyageService(r repo.VoyageRepo, m *MetricsService) *VoyageService {
	return &VoyageService{repo: r, metrics: m}
}

// Create validates and persists a new voyage. When both endpoint positions are
// known the aggregates are derived from them straight away.
// Returns domain.ErrValidation if input violates business rules.
func (s *VoyageService) Create(ctx context.Context, voyage domain.Voyage) (domain.Voyage, error) {
	fillEndpoints(&voyage)
	if err := validateVoyage(voyage); err != nil {
		return domain.Voyage{}, err
	}

	result, err := s.repo.Create(ctx, voyage)
	if err != nil {
		return domain.Voyage{}, fmt.Errorf("service.VoyageService.Create: %w", err)
	}
	if !result.HasEndpoints() {
		return result, nil
	}

	if err := s.metrics.RecalculateFromEndpoints(ctx, result.ID); err != nil {
		return domain.Voyage{}, fmt.Errorf("service.VoyageService.Create: %w", err)
	}
	return s.reload(ctx, result.ID, "Create")
}

// GetByID returns a single voyage by ID.
// Returns domain.ErrNotFound if no voyage with that ID exists.
func (s *VoyageService) GetByID(ctx context.Context, id uuid.UUID) (domain.Voyage, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Voyage{}, fmt.Errorf("service.VoyageService.GetByID: %w", err)
	}
	return result, nil
}

// List returns all voyages, most recent first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *VoyageService) List(ctx context.Context) ([]domain.Voyage, error) {
	voyages, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.VoyageService.List: %w", err)
	}
	if voyages == nil {
		return []domain.Voyage{}, nil
	}
	return voyages, nil
}

// ListPaged returns one page of voyages and the total voyage count.
func (s *VoyageService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Voyage, int64, error) {
	voyages, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.VoyageService.ListPaged: %w", err)
	}
	if voyages == nil {
		voyages = []domain.Voyage{}
	}
	return voyages, total, nil
}

// Update validates and persists header changes to an existing voyage, then
// refreshes its aggregates so edited endpoints or dates are reflected.
// Returns domain.ErrValidation for invalid input, domain.ErrNotFound if the
// voyage does not exist.
func (s *VoyageService) Update(ctx context.Context, voyage domain.Voyage) (domain.Voyage, error) {
	fillEndpoints(&voyage)
	if err := validateVoyage(voyage); err != nil {
		return domain.Voyage{}, err
	}

	result, err := s.repo.Update(ctx, voyage)
	if err != nil {
		return domain.Voyage{}, fmt.Errorf("service.VoyageService.Update: %w", err)
	}
	if _, err := s.metrics.Refresh(ctx, result.ID); err != nil {
		return domain.Voyage{}, fmt.Errorf("service.VoyageService.Update: %w", err)
	}
	return s.reload(ctx, result.ID, "Update")
}

// Delete removes a voyage and all of its events.
// Returns domain.ErrNotFound if the voyage does not exist.
func (s *VoyageService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.VoyageService.Delete: %w", err)
	}
	return nil
}

// Recalculate refreshes the aggregates of one voyage and returns it.
// Returns domain.ErrNotFound if the voyage does not exist.
func (s *VoyageService) Recalculate(ctx context.Context, id uuid.UUID) (domain.Voyage, error) {
	if _, err := s.metrics.Refresh(ctx, id); err != nil {
		return domain.Voyage{}, fmt.Errorf("service.VoyageService.Recalculate: %w", err)
	}
	return s.reload(ctx, id, "Recalculate")
}

func (s *VoyageService) reload(ctx context.Context, id uuid.UUID, op string) (domain.Voyage, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Voyage{}, fmt.Errorf("service.VoyageService.%s: reload: %w", op, err)
	}
	return result, nil
}

// fillEndpoints derives missing endpoint coordinates from the free-form
// position descriptors when they hold a decimal "lat, lng" pair.
func fillEndpoints(v *domain.Voyage) {
	if v.StartPosition == nil {
		if p, ok := nav.ParsePosition(v.StartPositionText); ok {
			v.StartPosition = &p
		}
	}
	if v.EndPosition == nil {
		if p, ok := nav.ParsePosition(v.EndPositionText); ok {
			v.EndPosition = &p
		}
	}
}

// validateVoyage enforces business rules common to both Create and Update.
//   - StartedAt is required.
//   - DeparturePort must be non-empty (whitespace-only is rejected).
//   - EndedAt, if set, must not be before StartedAt.
//   - Endpoint positions, if set, must be valid coordinates.
func validateVoyage(v domain.Voyage) error {
	if v.StartedAt.IsZero() {
		return fmt.Errorf("%w: started_at is required", domain.ErrValidation)
	}
	if strings.TrimSpace(v.DeparturePort) == "" {
		return fmt.Errorf("%w: departure_port is required", domain.ErrValidation)
	}
	if v.EndedAt != nil && v.EndedAt.Before(v.StartedAt) {
		return fmt.Errorf("%w: ended_at must not be before started_at", domain.ErrValidation)
	}
	if err := validatePosition("start_position", v.StartPosition); err != nil {
		return err
	}
	return validatePosition("end_position", v.EndPosition)
}
