package service_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/sailing-logbook/internal/domain"
	"github.com/pkordes/sailing-logbook/internal/metrics"
	"github.com/pkordes/sailing-logbook/internal/service"
)

var (
	t0 = time.Date(2025, 7, 14, 6, 0, 0, 0, time.UTC)

	p0 = &domain.Position{Latitude: 0, Longitude: 0}
	p1 = &domain.Position{Latitude: 0, Longitude: 1}
	p2 = &domain.Position{Latitude: 1, Longitude: 1}
)

// newEventService wires an EventService and MetricsService to an in-memory
// store holding one voyage.
func newEventService(t *testing.T) (*service.EventService, *memStore, domain.Voyage) {
	t.Helper()
	store := newMemStore()
	voyage := store.addVoyage(domain.Voyage{StartedAt: t0, DeparturePort: "Papeete"})

	voyages, events := store.voyageRepo(), store.eventRepo()
	m := service.NewMetricsService(voyages, events, nil)
	return service.NewEventService(voyages, events, m, nil), store, voyage
}

func mustCreateEvent(t *testing.T, svc *service.EventService, voyageID uuid.UUID, offset time.Duration, pos *domain.Position) domain.Event {
	t.Helper()
	e, err := svc.Create(context.Background(), domain.Event{
		VoyageID:  voyageID,
		Timestamp: t0.Add(offset),
		Position:  pos,
	})
	require.NoError(t, err)
	return e
}

// ---- Create ----------------------------------------------------------------

func TestEventService_Create_FirstEventHasNoSegment(t *testing.T) {
	svc, store, voyage := newEventService(t)

	got := mustCreateEvent(t, svc, voyage.ID, 0, p0)

	assert.Equal(t, domain.SegmentMetrics{}, got.Segment())
	v := store.voyages[voyage.ID]
	assert.Nil(t, v.TotalDistanceNM, "a single event has no pair to measure")
	assert.Nil(t, v.AvgSpeedKN)
	require.NotNil(t, v.TotalDurationHours)
	assert.Equal(t, 0.0, *v.TotalDurationHours)
}

func TestEventService_Create_DerivesSegmentAndTotals(t *testing.T) {
	svc, store, voyage := newEventService(t)
	mustCreateEvent(t, svc, voyage.ID, 0, p0)

	got := mustCreateEvent(t, svc, voyage.ID, 6*time.Hour, p1)

	require.NotNil(t, got.DistanceFromPrevNM)
	assert.Equal(t, 60.04, *got.DistanceFromPrevNM)
	assert.Equal(t, 6.0, *got.ElapsedHoursSincePrev)
	assert.Equal(t, 10.01, *got.AvgSpeedSincePrevKN)

	v := store.voyages[voyage.ID]
	assert.Equal(t, 60.04, *v.TotalDistanceNM)
	assert.Equal(t, 6.0, *v.TotalDurationHours)
	assert.Equal(t, 10.01, *v.AvgSpeedKN)
}

func TestEventService_Create_ThreeEventsSumRoundedSegments(t *testing.T) {
	svc, store, voyage := newEventService(t)
	mustCreateEvent(t, svc, voyage.ID, 0, p0)
	mustCreateEvent(t, svc, voyage.ID, 6*time.Hour, p1)
	mustCreateEvent(t, svc, voyage.ID, 12*time.Hour, p2)

	v := store.voyages[voyage.ID]

	assert.Equal(t, 120.08, *v.TotalDistanceNM)
	assert.Equal(t, 12.0, *v.TotalDurationHours)
	assert.Equal(t, 10.01, *v.AvgSpeedKN)
}

func TestEventService_Create_SameTimestampHasNoSpeed(t *testing.T) {
	svc, _, voyage := newEventService(t)
	mustCreateEvent(t, svc, voyage.ID, 0, p0)

	got := mustCreateEvent(t, svc, voyage.ID, 0, p1)

	// Nothing is strictly earlier than the new event's timestamp.
	assert.Equal(t, domain.SegmentMetrics{}, got.Segment())
}

func TestEventService_Create_TenSecondsApartHasNoSpeed(t *testing.T) {
	svc, _, voyage := newEventService(t)
	mustCreateEvent(t, svc, voyage.ID, 0, p0)

	got := mustCreateEvent(t, svc, voyage.ID, 10*time.Second, p1)

	require.NotNil(t, got.DistanceFromPrevNM)
	require.NotNil(t, got.ElapsedHoursSincePrev)
	assert.Equal(t, 0.0, *got.ElapsedHoursSincePrev)
	assert.Nil(t, got.AvgSpeedSincePrevKN, "speed is absent when elapsed rounds to zero")
}

func TestEventService_Create_BackdatedKeepsSuccessorSegment(t *testing.T) {
	svc, store, voyage := newEventService(t)
	mustCreateEvent(t, svc, voyage.ID, 0, p0)
	last := mustCreateEvent(t, svc, voyage.ID, 12*time.Hour, p2)
	before := last.Segment()

	mustCreateEvent(t, svc, voyage.ID, 6*time.Hour, p1)

	assert.Equal(t, before, store.events[last.ID].Segment(), "successor is not re-derived")
	assert.Equal(t, 120.08, *store.voyages[voyage.ID].TotalDistanceNM, "totals use positions, not stale segments")
}

func segmentFailures() float64 {
	return testutil.ToFloat64(metrics.ComputationFailures.WithLabelValues(metrics.StageSegment))
}

// corruptFix is a stored event whose latitude is not a number.
func corruptFix(voyageID uuid.UUID, offset time.Duration) domain.Event {
	return domain.Event{
		VoyageID:  voyageID,
		Timestamp: t0.Add(offset),
		Position:  &domain.Position{Latitude: math.NaN(), Longitude: 1},
	}
}

func TestEventService_Create_ComputationFailureKeepsSave(t *testing.T) {
	svc, store, voyage := newEventService(t)
	mustCreateEvent(t, svc, voyage.ID, 0, p0)
	mustCreateEvent(t, svc, voyage.ID, 6*time.Hour, p1)
	store.addRawEvent(corruptFix(voyage.ID, 9*time.Hour))
	stored := store.voyages[voyage.ID].Totals()
	failuresBefore := segmentFailures()

	got, err := svc.Create(context.Background(), domain.Event{
		VoyageID:  voyage.ID,
		Timestamp: t0.Add(12 * time.Hour),
		Position:  p2,
	})

	require.NoError(t, err, "a failed derivation must not fail the save")
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, domain.SegmentMetrics{}, got.Segment())
	assert.Contains(t, store.events, got.ID)
	assert.Equal(t, stored, store.voyages[voyage.ID].Totals(), "stored aggregates are kept")
	assert.Equal(t, failuresBefore+1, segmentFailures())
}

func TestEventService_Create_NonFinitePositionRejected(t *testing.T) {
	tests := []struct {
		name string
		pos  domain.Position
	}{
		{"NaN latitude", domain.Position{Latitude: math.NaN(), Longitude: 1}},
		{"infinite latitude", domain.Position{Latitude: math.Inf(1), Longitude: 1}},
		{"NaN longitude", domain.Position{Latitude: 1, Longitude: math.NaN()}},
		{"infinite longitude", domain.Position{Latitude: 1, Longitude: math.Inf(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, voyage := newEventService(t)

			_, err := svc.Create(context.Background(), domain.Event{
				VoyageID:  voyage.ID,
				Timestamp: t0,
				Position:  &tt.pos,
			})

			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), "finite")
			assert.Empty(t, store.events)
		})
	}
}

func TestEventService_Create_IgnoresClientDerivedFields(t *testing.T) {
	svc, _, voyage := newEventService(t)

	got, err := svc.Create(context.Background(), domain.Event{
		VoyageID:           voyage.ID,
		Timestamp:          t0,
		Position:           p0,
		DistanceFromPrevNM: floatPtr(999),
	})

	require.NoError(t, err)
	assert.Nil(t, got.DistanceFromPrevNM)
}

func TestEventService_Create_VoyageNotFound(t *testing.T) {
	svc, _, _ := newEventService(t)

	_, err := svc.Create(context.Background(), domain.Event{VoyageID: uuid.New(), Timestamp: t0})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_Create_TimestampRequired(t *testing.T) {
	svc, _, voyage := newEventService(t)

	_, err := svc.Create(context.Background(), domain.Event{VoyageID: voyage.ID})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEventService_Create_LatitudeOutOfRange(t *testing.T) {
	svc, _, voyage := newEventService(t)

	_, err := svc.Create(context.Background(), domain.Event{
		VoyageID:  voyage.ID,
		Timestamp: t0,
		Position:  &domain.Position{Latitude: 91, Longitude: 0},
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- Update ----------------------------------------------------------------

func TestEventService_Update_ExcludesOwnStoredCopy(t *testing.T) {
	svc, store, voyage := newEventService(t)
	mustCreateEvent(t, svc, voyage.ID, 0, p0)
	second := mustCreateEvent(t, svc, voyage.ID, 6*time.Hour, p1)

	second.Position = p2
	second.Timestamp = t0.Add(12 * time.Hour)
	got, err := svc.Update(context.Background(), second)

	require.NoError(t, err)
	assert.Equal(t, 84.91, *got.DistanceFromPrevNM)
	assert.Equal(t, 12.0, *got.ElapsedHoursSincePrev)
	assert.Equal(t, 7.08, *got.AvgSpeedSincePrevKN)
	assert.Equal(t, 84.91, *store.voyages[voyage.ID].TotalDistanceNM)
}

func TestEventService_Update_ComputationFailureKeepsStoredSegment(t *testing.T) {
	svc, store, voyage := newEventService(t)
	mustCreateEvent(t, svc, voyage.ID, 0, p0)
	second := mustCreateEvent(t, svc, voyage.ID, 6*time.Hour, p1)
	before := second.Segment()
	store.addRawEvent(corruptFix(voyage.ID, 3*time.Hour))
	failuresBefore := segmentFailures()

	second.Position = p2
	second.Description = "reefed"
	got, err := svc.Update(context.Background(), second)

	require.NoError(t, err)
	assert.Equal(t, before, got.Segment())
	assert.Equal(t, before, store.events[second.ID].Segment())
	assert.Equal(t, "reefed", store.events[second.ID].Description, "the edit itself is saved")
	assert.Equal(t, failuresBefore+1, segmentFailures())
}

func TestEventService_Update_NotFound(t *testing.T) {
	svc, _, voyage := newEventService(t)

	_, err := svc.Update(context.Background(), domain.Event{ID: uuid.New(), VoyageID: voyage.ID, Timestamp: t0})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Delete ----------------------------------------------------------------

func TestEventService_Delete_MiddleLeavesSingleSegment(t *testing.T) {
	svc, store, voyage := newEventService(t)
	mustCreateEvent(t, svc, voyage.ID, 0, p0)
	middle := mustCreateEvent(t, svc, voyage.ID, 6*time.Hour, p1)
	last := mustCreateEvent(t, svc, voyage.ID, 12*time.Hour, p2)

	require.NoError(t, svc.Delete(context.Background(), voyage.ID, middle.ID))

	v := store.voyages[voyage.ID]
	assert.Equal(t, 84.91, *v.TotalDistanceNM)
	assert.Equal(t, 12.0, *v.TotalDurationHours)
	assert.Equal(t, 7.08, *v.AvgSpeedKN)
	assert.Equal(t, 60.04, *store.events[last.ID].DistanceFromPrevNM, "successor keeps its stored segment")
}

func TestEventService_Delete_LastEventClearsTotals(t *testing.T) {
	svc, store, voyage := newEventService(t)
	e := mustCreateEvent(t, svc, voyage.ID, 0, p0)

	require.NoError(t, svc.Delete(context.Background(), voyage.ID, e.ID))

	assert.Equal(t, domain.VoyageTotals{}, store.voyages[voyage.ID].Totals())
}

func TestEventService_Delete_NotFound(t *testing.T) {
	svc, _, voyage := newEventService(t)

	err := svc.Delete(context.Background(), voyage.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- List ------------------------------------------------------------------

func TestEventService_ListByVoyageIDPaged_VoyageNotFound(t *testing.T) {
	svc, _, _ := newEventService(t)

	_, _, err := svc.ListByVoyageIDPaged(context.Background(), uuid.New(), domain.PaginationParams{Page: 1, Limit: 20})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListByVoyageIDPaged_NilBecomesEmpty(t *testing.T) {
	svc, _, voyage := newEventService(t)

	events, total, err := svc.ListByVoyageIDPaged(context.Background(), voyage.ID, domain.PaginationParams{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Zero(t, total)
}
