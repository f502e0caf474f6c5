package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/sailing-logbook/internal/domain"
	"github.com/pkordes/sailing-logbook/internal/service"
)

func TestExportService_Export_OneRowPerEvent(t *testing.T) {
	voyage := domain.Voyage{
		ID:              uuid.New(),
		StartedAt:       t0,
		DeparturePort:   "Papeete",
		ArrivalPort:     "Moorea",
		TotalDistanceNM: floatPtr(14.93),
	}
	events := []domain.Event{
		{ID: uuid.New(), VoyageID: voyage.ID, Timestamp: t0, Position: p0, Weather: "ESE 12"},
		{ID: uuid.New(), VoyageID: voyage.ID, Timestamp: t0.Add(time.Hour), Description: "Reef in", DistanceFromPrevNM: floatPtr(7)},
	}

	svc := service.NewExportService(
		&mockVoyageRepo{
			list: func(_ context.Context) ([]domain.Voyage, error) { return []domain.Voyage{voyage}, nil },
		},
		&mockEventRepo{
			listByVoyageID: func(_ context.Context, _ uuid.UUID) ([]domain.Event, error) { return events, nil },
		},
	)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, voyage.ID.String(), rows[0].VoyageID)
	assert.Equal(t, "Moorea", rows[1].ArrivalPort, "voyage fields repeat on every row")
	assert.Equal(t, 14.93, *rows[1].TotalDistanceNM)
	require.NotNil(t, rows[0].Latitude)
	assert.Equal(t, 0.0, *rows[0].Latitude)
	assert.Equal(t, "ESE 12", rows[0].Weather)
	assert.Nil(t, rows[1].Latitude, "event without position")
	assert.Equal(t, 7.0, *rows[1].DistanceFromPrevNM)
	require.NotNil(t, rows[1].EventAt)
	assert.True(t, rows[1].EventAt.Equal(t0.Add(time.Hour)))
}

func TestExportService_Export_VoyageWithNoEvents(t *testing.T) {
	voyage := domain.Voyage{ID: uuid.New(), StartedAt: t0, DeparturePort: "Brest"}

	svc := service.NewExportService(
		&mockVoyageRepo{
			list: func(_ context.Context) ([]domain.Voyage, error) { return []domain.Voyage{voyage}, nil },
		},
		&mockEventRepo{
			listByVoyageID: func(_ context.Context, _ uuid.UUID) ([]domain.Event, error) { return []domain.Event{}, nil },
		},
	)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1, "voyages with no events still produce one row")
	assert.Equal(t, "Brest", rows[0].DeparturePort)
	assert.Nil(t, rows[0].EventAt)
}

func TestExportService_Export_Empty(t *testing.T) {
	svc := service.NewExportService(
		&mockVoyageRepo{
			list: func(_ context.Context) ([]domain.Voyage, error) { return []domain.Voyage{}, nil },
		},
		&mockEventRepo{},
	)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_RepoError(t *testing.T) {
	boom := errors.New("db down")
	svc := service.NewExportService(
		&mockVoyageRepo{
			list: func(_ context.Context) ([]domain.Voyage, error) { return nil, boom },
		},
		&mockEventRepo{},
	)

	_, err := svc.Export(context.Background())

	assert.ErrorIs(t, err, boom)
}
