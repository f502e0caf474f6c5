// Package domain contains the core data types for the Sailing Logbook application.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (nav, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Voyage represents one logged journey. It is the top-level aggregate;
// events belong to a voyage and are deleted with it.
//
// TotalDistanceNM, TotalDurationHours and AvgSpeedKN are derived: they are
// written only by the metrics maintainer and are nil while undefined.
type Voyage struct {
	ID            uuid.UUID
	StartedAt     time.Time
	EndedAt       *time.Time // nil while the voyage is in progress
	DeparturePort string
	ArrivalPort   string

	// Free-form position descriptors as typed by the skipper, e.g. "17°32'S / 149°34'W".
	StartPositionText string
	EndPositionText   string

	// Endpoint coordinates used by the endpoint (legacy) aggregate path.
	StartPosition *Position
	EndPosition   *Position

	Notes string

	TotalDistanceNM    *float64
	TotalDurationHours *float64
	AvgSpeedKN         *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasEndpoints reports whether both endpoint coordinates are known.
func (v Voyage) HasEndpoints() bool {
	return v.StartPosition != nil && v.EndPosition != nil
}

// Totals returns the voyage's stored aggregate fields.
func (v Voyage) Totals() VoyageTotals {
	return VoyageTotals{
		TotalDistanceNM:    v.TotalDistanceNM,
		TotalDurationHours: v.TotalDurationHours,
		AvgSpeedKN:         v.AvgSpeedKN,
	}
}
