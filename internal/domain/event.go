package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is one timestamped, optionally positioned observation during a voyage.
// Events are ordered by Timestamp ascending within their voyage.
//
// The three *SincePrev fields describe the segment between this event and
// its nearest earlier event in the same voyage, as computed when the event
// was last written. They are never set from user input.
type Event struct {
	ID          uuid.UUID
	VoyageID    uuid.UUID
	Timestamp   time.Time
	Position    *Position // nil when no GPS fix was recorded
	Description string
	Weather     string

	DistanceFromPrevNM    *float64
	ElapsedHoursSincePrev *float64
	AvgSpeedSincePrevKN   *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Segment returns the event's stored derived fields.
func (e Event) Segment() SegmentMetrics {
	return SegmentMetrics{
		DistanceNM:   e.DistanceFromPrevNM,
		ElapsedHours: e.ElapsedHoursSincePrev,
		AvgSpeedKN:   e.AvgSpeedSincePrevKN,
	}
}

// ApplySegment overwrites the event's derived fields with m.
func (e *Event) ApplySegment(m SegmentMetrics) {
	e.DistanceFromPrevNM = m.DistanceNM
	e.ElapsedHoursSincePrev = m.ElapsedHours
	e.AvgSpeedSincePrevKN = m.AvgSpeedKN
}
