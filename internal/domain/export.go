package domain

import "time"

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per event, with voyage fields repeated
// for every event on that voyage. Voyages with no events yield one row with zero
// values for all event fields.
type ExportRow struct {
	// Voyage fields, repeated for every event on the voyage.
	VoyageID           string
	DeparturePort      string
	ArrivalPort        string
	VoyageStartedAt    time.Time
	VoyageEndedAt      *time.Time
	TotalDistanceNM    *float64
	TotalDurationHours *float64
	AvgSpeedKN         *float64

	// Event fields, zero values when the voyage has no events.
	EventAt               *time.Time
	Latitude              *float64
	Longitude             *float64
	Description           string
	Weather               string
	DistanceFromPrevNM    *float64
	ElapsedHoursSincePrev *float64
	AvgSpeedSincePrevKN   *float64
}
