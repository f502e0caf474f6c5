package nav

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// SortByTimestamp returns a copy of events ordered by Timestamp ascending.
// Events sharing a timestamp keep their relative input order.
func SortByTimestamp(events []domain.Event) []domain.Event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b domain.Event) int {
		return cmp.Compare(a.Timestamp.UnixNano(), b.Timestamp.UnixNano())
	})
	return sorted
}

// Previous returns the event with the latest timestamp strictly before ts.
// sorted must be ordered by Timestamp ascending (see SortByTimestamp).
// ok is false when no earlier event exists.
func Previous(sorted []domain.Event, ts time.Time) (prev domain.Event, ok bool) {
	i := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Timestamp.Before(ts)
	})
	if i == 0 {
		return domain.Event{}, false
	}
	return sorted[i-1], true
}

// ComputeSegment derives distance, elapsed hours and average speed between
// prev and cur.
//
//   - prev nil, or either event without a position: every field is nil.
//   - elapsed hours of zero or less: AvgSpeedKN is nil.
//
// The error wraps domain.ErrComputation when an intermediate value is not finite.
func ComputeSegment(prev *domain.Event, cur domain.Event) (domain.SegmentMetrics, error) {
	if prev == nil || prev.Position == nil || cur.Position == nil {
		return domain.SegmentMetrics{}, nil
	}

	dist, err := distanceNM(*prev.Position, *cur.Position)
	if err != nil {
		return domain.SegmentMetrics{}, fmt.Errorf("nav.ComputeSegment: %w", err)
	}
	elapsed, err := hours(cur.Timestamp.Sub(prev.Timestamp).Seconds())
	if err != nil {
		return domain.SegmentMetrics{}, fmt.Errorf("nav.ComputeSegment: elapsed: %w", err)
	}

	m := domain.SegmentMetrics{
		DistanceNM:   ptr(dist),
		ElapsedHours: ptr(elapsed),
	}
	kn, ok, err := speed(dist, elapsed)
	if err != nil {
		return domain.SegmentMetrics{}, fmt.Errorf("nav.ComputeSegment: speed: %w", err)
	}
	if ok {
		m.AvgSpeedKN = ptr(kn)
	}
	return m, nil
}

// SegmentFor computes cur's segment against its nearest earlier event among
// others. An entry in others with cur's ID is ignored, so the stored copy of
// an event being edited never becomes its own predecessor.
func SegmentFor(others []domain.Event, cur domain.Event) (domain.SegmentMetrics, error) {
	candidates := slices.DeleteFunc(slices.Clone(others), func(e domain.Event) bool {
		return e.ID == cur.ID && cur.ID != uuid.Nil
	})
	prev, ok := Previous(SortByTimestamp(candidates), cur.Timestamp)
	if !ok {
		return ComputeSegment(nil, cur)
	}
	return ComputeSegment(&prev, cur)
}
