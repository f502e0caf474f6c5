package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/sailing-logbook/internal/domain"
	"github.com/pkordes/sailing-logbook/internal/handler"
)

// ---- mock services ---------------------------------------------------------

// mockVoyageServicer is a test double for handler.VoyageServicer.
// Set only the method fields your test needs.
type mockVoyageServicer struct {
	create      func(ctx context.Context, v domain.Voyage) (domain.Voyage, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Voyage, error)
	listPaged   func(ctx context.Context, p domain.PaginationParams) ([]domain.Voyage, int64, error)
	update      func(ctx context.Context, v domain.Voyage) (domain.Voyage, error)
	delete      func(ctx context.Context, id uuid.UUID) error
	recalculate func(ctx context.Context, id uuid.UUID) (domain.Voyage, error)
}

func (m *mockVoyageServicer) Create(ctx context.Context, v domain.Voyage) (domain.Voyage, error) {
	return m.create(ctx, v)
}
func (m *mockVoyageServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Voyage, error) {
	return m.getByID(ctx, id)
}
func (m *mockVoyageServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Voyage, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockVoyageServicer) Update(ctx context.Context, v domain.Voyage) (domain.Voyage, error) {
	return m.update(ctx, v)
}
func (m *mockVoyageServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockVoyageServicer) Recalculate(ctx context.Context, id uuid.UUID) (domain.Voyage, error) {
	return m.recalculate(ctx, id)
}

// compile-time check: mockVoyageServicer must satisfy handler.VoyageServicer.
var _ handler.VoyageServicer = (*mockVoyageServicer)(nil)

// mockEventServicer is a test double for handler.EventServicer.
type mockEventServicer struct {
	create    func(ctx context.Context, e domain.Event) (domain.Event, error)
	getByID   func(ctx context.Context, voyageID, eventID uuid.UUID) (domain.Event, error)
	listPaged func(ctx context.Context, voyageID uuid.UUID, p domain.PaginationParams) ([]domain.Event, int64, error)
	update    func(ctx context.Context, e domain.Event) (domain.Event, error)
	delete    func(ctx context.Context, voyageID, eventID uuid.UUID) error
}

func (m *mockEventServicer) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.create(ctx, e)
}
func (m *mockEventServicer) GetByID(ctx context.Context, voyageID, eventID uuid.UUID) (domain.Event, error) {
	return m.getByID(ctx, voyageID, eventID)
}
func (m *mockEventServicer) ListByVoyageIDPaged(ctx context.Context, voyageID uuid.UUID, p domain.PaginationParams) ([]domain.Event, int64, error) {
	return m.listPaged(ctx, voyageID, p)
}
func (m *mockEventServicer) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.update(ctx, e)
}
func (m *mockEventServicer) Delete(ctx context.Context, voyageID, eventID uuid.UUID) error {
	return m.delete(ctx, voyageID, eventID)
}

var _ handler.EventServicer = (*mockEventServicer)(nil)

type mockBackfiller struct {
	recalculateAll func(ctx context.Context) (domain.RecalcReport, error)
}

func (m *mockBackfiller) RecalculateAll(ctx context.Context) (domain.RecalcReport, error) {
	return m.recalculateAll(ctx)
}

type mockExporter struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExporter) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

// ---- helpers ---------------------------------------------------------------

var t0 = time.Date(2025, 7, 14, 6, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

// serve routes req through the Server's chi router, exactly as main.go mounts it.
func serve(srv *handler.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
