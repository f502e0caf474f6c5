package nav

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// VoyageTotals derives a voyage's aggregates from its full event list.
//
// Events are ordered by timestamp before use. For each consecutive pair the
// great-circle distance is added when both events carry a position;
// otherwise the later event's stored DistanceFromPrevNM is used, and a pair
// with neither contributes nothing. Each pair's distance is rounded before it
// is summed.
//
// No events clears every field. A single event has no pair, so its total
// distance and average speed are nil while its duration is zero.
func VoyageTotals(events []domain.Event) (domain.VoyageTotals, error) {
	if len(events) == 0 {
		return domain.VoyageTotals{}, nil
	}
	sorted := SortByTimestamp(events)

	var (
		totals   domain.VoyageTotals
		distance decimal.Decimal
	)
	if len(sorted) > 1 {
		distance = decimal.Zero
		for i := 1; i < len(sorted); i++ {
			prev, cur := sorted[i-1], sorted[i]
			switch {
			case prev.Position != nil && cur.Position != nil:
				d, err := distanceNM(*prev.Position, *cur.Position)
				if err != nil {
					return domain.VoyageTotals{}, fmt.Errorf("nav.VoyageTotals: pair %d: %w", i, err)
				}
				distance = distance.Add(d)
			case cur.DistanceFromPrevNM != nil:
				d, err := round2(*cur.DistanceFromPrevNM)
				if err != nil {
					return domain.VoyageTotals{}, fmt.Errorf("nav.VoyageTotals: stored distance %d: %w", i, err)
				}
				distance = distance.Add(d)
			}
		}
		if _, err := fits(distance); err != nil {
			return domain.VoyageTotals{}, fmt.Errorf("nav.VoyageTotals: distance: %w", err)
		}
		totals.TotalDistanceNM = ptr(distance)
	}

	first, last := sorted[0], sorted[len(sorted)-1]
	duration, err := hours(last.Timestamp.Sub(first.Timestamp).Seconds())
	if err != nil {
		return domain.VoyageTotals{}, fmt.Errorf("nav.VoyageTotals: duration: %w", err)
	}
	totals.TotalDurationHours = ptr(duration)

	if totals.TotalDistanceNM != nil {
		kn, ok, err := speed(distance, duration)
		if err != nil {
			return domain.VoyageTotals{}, fmt.Errorf("nav.VoyageTotals: speed: %w", err)
		}
		if ok {
			totals.AvgSpeedKN = ptr(kn)
		}
	}
	return totals, nil
}

// EndpointTotals derives aggregates from the voyage's start and end positions
// alone: one great-circle leg, and the duration between StartedAt and
// EndedAt when the voyage has ended.
//
// It is the older aggregate model, kept for voyages logged without events.
// The error wraps domain.ErrValidation when either endpoint is missing.
func EndpointTotals(v domain.Voyage) (domain.VoyageTotals, error) {
	if !v.HasEndpoints() {
		return domain.VoyageTotals{}, fmt.Errorf("nav.EndpointTotals: %w: start and end positions are required", domain.ErrValidation)
	}

	distance, err := distanceNM(*v.StartPosition, *v.EndPosition)
	if err != nil {
		return domain.VoyageTotals{}, fmt.Errorf("nav.EndpointTotals: %w", err)
	}
	totals := domain.VoyageTotals{TotalDistanceNM: ptr(distance)}
	if v.EndedAt == nil {
		return totals, nil
	}

	duration, err := hours(v.EndedAt.Sub(v.StartedAt).Seconds())
	if err != nil {
		return domain.VoyageTotals{}, fmt.Errorf("nav.EndpointTotals: duration: %w", err)
	}
	totals.TotalDurationHours = ptr(duration)
	kn, ok, err := speed(distance, duration)
	if err != nil {
		return domain.VoyageTotals{}, fmt.Errorf("nav.EndpointTotals: speed: %w", err)
	}
	if ok {
		totals.AvgSpeedKN = ptr(kn)
	}
	return totals, nil
}
