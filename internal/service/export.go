package service

import (
	"context"
	"fmt"

	"github.com/pkordes/sailing-logbook/internal/domain"
	"github.com/pkordes/sailing-logbook/internal/repo"
)

// ExportService assembles a flat export of all voyages and their events.
type ExportService struct {
	voyages repo.VoyageRepo
	events  repo.EventRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(voyages repo.VoyageRepo, events repo.EventRepo) *ExportService {
	return &ExportService{voyages: voyages, events: events}
}

// Export returns one ExportRow per event across all voyages, voyages most
// recent first and events in timestamp order. Voyages with no events
// contribute one row with empty event fields.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	voyages, err := s.voyages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, v := range voyages {
		events, err := s.events.ListByVoyageID(ctx, v.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: voyage %s: %w", v.ID, err)
		}

		base := domain.ExportRow{
			VoyageID:           v.ID.String(),
			DeparturePort:      v.DeparturePort,
			ArrivalPort:        v.ArrivalPort,
			VoyageStartedAt:    v.StartedAt,
			VoyageEndedAt:      v.EndedAt,
			TotalDistanceNM:    v.TotalDistanceNM,
			TotalDurationHours: v.TotalDurationHours,
			AvgSpeedKN:         v.AvgSpeedKN,
		}
		if len(events) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, e := range events {
			row := base
			ts := e.Timestamp
			row.EventAt = &ts
			if e.Position != nil {
				lat, lng := e.Position.Latitude, e.Position.Longitude
				row.Latitude = &lat
				row.Longitude = &lng
			}
			row.Description = e.Description
			row.Weather = e.Weather
			row.DistanceFromPrevNM = e.DistanceFromPrevNM
			row.ElapsedHoursSincePrev = e.ElapsedHoursSincePrev
			row.AvgSpeedSincePrevKN = e.AvgSpeedSincePrevKN
			rows = append(rows, row)
		}
	}
	return rows, nil
}
