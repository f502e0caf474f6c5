package domain

import "github.com/google/uuid"

// SegmentMetrics holds the derived values between an event and its
// predecessor. A nil field means the value is absent.
type SegmentMetrics struct {
	DistanceNM   *float64
	ElapsedHours *float64
	AvgSpeedKN   *float64
}

// VoyageTotals holds a voyage's aggregate derived values.
// The zero value (all nil) is the cleared state.
type VoyageTotals struct {
	TotalDistanceNM    *float64
	TotalDurationHours *float64
	AvgSpeedKN         *float64
}

// RecalcSource names the aggregate path used for a voyage during a backfill.
type RecalcSource string

const (
	RecalcFromEvents    RecalcSource = "events"
	RecalcFromEndpoints RecalcSource = "endpoints"
	RecalcCleared       RecalcSource = "cleared"
)

// RecalcReport summarises a backfill run over every voyage.
type RecalcReport struct {
	Voyages       int
	FromEvents    int
	FromEndpoints int
	Cleared       int
	// Failed lists voyages whose recalculation returned an error.
	// The run continues past them.
	Failed []uuid.UUID
}
