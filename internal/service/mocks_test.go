package service_test

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/sailing-logbook/internal/domain"
	"github.com/pkordes/sailing-logbook/internal/repo"
)

// ---- mock repos ------------------------------------------------------------

// mockVoyageRepo is a hand-written test double for repo.VoyageRepo.
// Each method is a function field; set only the ones your test needs.
type mockVoyageRepo struct {
	create       func(ctx context.Context, v domain.Voyage) (domain.Voyage, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Voyage, error)
	list         func(ctx context.Context) ([]domain.Voyage, error)
	listPaged    func(ctx context.Context, p domain.PaginationParams) ([]domain.Voyage, int64, error)
	listIDs      func(ctx context.Context) ([]uuid.UUID, error)
	update       func(ctx context.Context, v domain.Voyage) (domain.Voyage, error)
	updateTotals func(ctx context.Context, id uuid.UUID, totals domain.VoyageTotals) error
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVoyageRepo) Create(ctx context.Context, v domain.Voyage) (domain.Voyage, error) {
	return m.create(ctx, v)
}
func (m *mockVoyageRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Voyage, error) {
	return m.getByID(ctx, id)
}
func (m *mockVoyageRepo) List(ctx context.Context) ([]domain.Voyage, error) {
	return m.list(ctx)
}
func (m *mockVoyageRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Voyage, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockVoyageRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.listIDs(ctx)
}
func (m *mockVoyageRepo) Update(ctx context.Context, v domain.Voyage) (domain.Voyage, error) {
	return m.update(ctx, v)
}
func (m *mockVoyageRepo) UpdateTotals(ctx context.Context, id uuid.UUID, totals domain.VoyageTotals) error {
	return m.updateTotals(ctx, id, totals)
}
func (m *mockVoyageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockVoyageRepo must satisfy repo.VoyageRepo.
var _ repo.VoyageRepo = (*mockVoyageRepo)(nil)

// mockEventRepo is a hand-written test double for repo.EventRepo.
type mockEventRepo struct {
	create              func(ctx context.Context, e domain.Event) (domain.Event, error)
	getByID             func(ctx context.Context, voyageID, eventID uuid.UUID) (domain.Event, error)
	listByVoyageID      func(ctx context.Context, voyageID uuid.UUID) ([]domain.Event, error)
	listByVoyageIDPaged func(ctx context.Context, voyageID uuid.UUID, p domain.PaginationParams) ([]domain.Event, int64, error)
	countByVoyageID     func(ctx context.Context, voyageID uuid.UUID) (int64, error)
	update              func(ctx context.Context, e domain.Event) (domain.Event, error)
	delete              func(ctx context.Context, voyageID, eventID uuid.UUID) error
}

func (m *mockEventRepo) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.create(ctx, e)
}
func (m *mockEventRepo) GetByID(ctx context.Context, voyageID, eventID uuid.UUID) (domain.Event, error) {
	return m.getByID(ctx, voyageID, eventID)
}
func (m *mockEventRepo) ListByVoyageID(ctx context.Context, voyageID uuid.UUID) ([]domain.Event, error) {
	return m.listByVoyageID(ctx, voyageID)
}
func (m *mockEventRepo) ListByVoyageIDPaged(ctx context.Context, voyageID uuid.UUID, p domain.PaginationParams) ([]domain.Event, int64, error) {
	if m.listByVoyageIDPaged != nil {
		return m.listByVoyageIDPaged(ctx, voyageID, p)
	}
	return nil, 0, nil
}
func (m *mockEventRepo) CountByVoyageID(ctx context.Context, voyageID uuid.UUID) (int64, error) {
	return m.countByVoyageID(ctx, voyageID)
}
func (m *mockEventRepo) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.update(ctx, e)
}
func (m *mockEventRepo) Delete(ctx context.Context, voyageID, eventID uuid.UUID) error {
	return m.delete(ctx, voyageID, eventID)
}

// compile-time check: mockEventRepo must satisfy repo.EventRepo.
var _ repo.EventRepo = (*mockEventRepo)(nil)

// ---- in-memory store ---------------------------------------------------------

// memStore backs both mocks with plain maps so tests can drive a full
// write → segment → recalculate cycle without a database.
type memStore struct {
	voyages map[uuid.UUID]domain.Voyage
	events  map[uuid.UUID]domain.Event
}

func newMemStore() *memStore {
	return &memStore{
		voyages: map[uuid.UUID]domain.Voyage{},
		events:  map[uuid.UUID]domain.Event{},
	}
}

// addVoyage seeds a voyage and returns it with an ID assigned.
func (s *memStore) addVoyage(v domain.Voyage) domain.Voyage {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	s.voyages[v.ID] = v
	return v
}

func (s *memStore) voyageRepo() *mockVoyageRepo {
	return &mockVoyageRepo{
		create: func(_ context.Context, v domain.Voyage) (domain.Voyage, error) {
			v.ID = uuid.New()
			v.CreatedAt = time.Now()
			s.voyages[v.ID] = v
			return v, nil
		},
		getByID: func(_ context.Context, id uuid.UUID) (domain.Voyage, error) {
			v, ok := s.voyages[id]
			if !ok {
				return domain.Voyage{}, domain.ErrNotFound
			}
			return v, nil
		},
		listIDs: func(_ context.Context) ([]uuid.UUID, error) {
			ids := make([]uuid.UUID, 0, len(s.voyages))
			for id := range s.voyages {
				ids = append(ids, id)
			}
			return ids, nil
		},
		update: func(_ context.Context, v domain.Voyage) (domain.Voyage, error) {
			stored, ok := s.voyages[v.ID]
			if !ok {
				return domain.Voyage{}, domain.ErrNotFound
			}
			v.TotalDistanceNM = stored.TotalDistanceNM
			v.TotalDurationHours = stored.TotalDurationHours
			v.AvgSpeedKN = stored.AvgSpeedKN
			s.voyages[v.ID] = v
			return v, nil
		},
		updateTotals: func(_ context.Context, id uuid.UUID, totals domain.VoyageTotals) error {
			v, ok := s.voyages[id]
			if !ok {
				return domain.ErrNotFound
			}
			v.TotalDistanceNM = totals.TotalDistanceNM
			v.TotalDurationHours = totals.TotalDurationHours
			v.AvgSpeedKN = totals.AvgSpeedKN
			s.voyages[id] = v
			return nil
		},
		delete: func(_ context.Context, id uuid.UUID) error {
			if _, ok := s.voyages[id]; !ok {
				return domain.ErrNotFound
			}
			delete(s.voyages, id)
			return nil
		},
	}
}

func (s *memStore) eventRepo() *mockEventRepo {
	return &mockEventRepo{
		create: func(_ context.Context, e domain.Event) (domain.Event, error) {
			e.ID = uuid.New()
			s.events[e.ID] = e
			return e, nil
		},
		getByID: func(_ context.Context, voyageID, eventID uuid.UUID) (domain.Event, error) {
			e, ok := s.events[eventID]
			if !ok || e.VoyageID != voyageID {
				return domain.Event{}, domain.ErrNotFound
			}
			return e, nil
		},
		listByVoyageID: func(_ context.Context, voyageID uuid.UUID) ([]domain.Event, error) {
			return s.eventsOf(voyageID), nil
		},
		update: func(_ context.Context, e domain.Event) (domain.Event, error) {
			stored, ok := s.events[e.ID]
			if !ok || stored.VoyageID != e.VoyageID {
				return domain.Event{}, domain.ErrNotFound
			}
			s.events[e.ID] = e
			return e, nil
		},
		delete: func(_ context.Context, voyageID, eventID uuid.UUID) error {
			e, ok := s.events[eventID]
			if !ok || e.VoyageID != voyageID {
				return domain.ErrNotFound
			}
			delete(s.events, eventID)
			return nil
		},
	}
}

// addRawEvent stores e as-is, bypassing validation, to stand in for a row
// written before the current rules existed.
func (s *memStore) addRawEvent(e domain.Event) domain.Event {
	e.ID = uuid.New()
	s.events[e.ID] = e
	return e
}

// eventsOf returns a voyage's events ordered by timestamp, like the repo.
func (s *memStore) eventsOf(voyageID uuid.UUID) []domain.Event {
	out := []domain.Event{}
	for _, e := range s.events {
		if e.VoyageID == voyageID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.Event) int { return a.Timestamp.Compare(b.Timestamp) })
	return out
}

func floatPtr(v float64) *float64 { return &v }
