// Package handler implements the HTTP handlers for the Sailing Logbook API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, voyage.go, etc.) but share the same Server struct so they
// can access its dependencies. Routes mirror spec/openapi.yaml.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// VoyageServicer defines the business operations the voyage handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type VoyageServicer interface {
	Create(ctx context.Context, voyage domain.Voyage) (domain.Voyage, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Voyage, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Voyage, int64, error)
	Update(ctx context.Context, voyage domain.Voyage) (domain.Voyage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Recalculate(ctx context.Context, id uuid.UUID) (domain.Voyage, error)
}

// EventServicer defines the business operations the event handlers depend on.
type EventServicer interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, voyageID, eventID uuid.UUID) (domain.Event, error)
	ListByVoyageIDPaged(ctx context.Context, voyageID uuid.UUID, p domain.PaginationParams) ([]domain.Event, int64, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, voyageID, eventID uuid.UUID) error
}

// Backfiller runs the aggregate maintainer over every voyage.
type Backfiller interface {
	RecalculateAll(ctx context.Context) (domain.RecalcReport, error)
}

// Exporter produces the flat export rows.
type Exporter interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the dependencies of every HTTP handler.
// Wire it in main.go via Server.Routes.
type Server struct {
	voyages     VoyageServicer
	events      EventServicer
	maintenance Backfiller
	export      Exporter
}

// NewServer constructs the Server with all its dependencies.
// Any dependency may be nil when the caller only exercises other routes.
func NewServer(voyages VoyageServicer, events EventServicer, maintenance Backfiller, export Exporter) *Server {
	return &Server{voyages: voyages, events: events, maintenance: maintenance, export: export}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes returns a chi router serving every API endpoint.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/voyages", func(r chi.Router) {
		r.Get("/", s.ListVoyages)
		r.Post("/", s.CreateVoyage)

		r.Route("/{voyageId}", func(r chi.Router) {
			r.Get("/", s.GetVoyage)
			r.Put("/", s.UpdateVoyage)
			r.Delete("/", s.DeleteVoyage)
			r.Post("/recalculate", s.RecalculateVoyage)

			r.Route("/events", func(r chi.Router) {
				r.Get("/", s.ListEvents)
				r.Post("/", s.CreateEvent)
				r.Get("/{eventId}", s.GetEvent)
				r.Put("/{eventId}", s.UpdateEvent)
				r.Delete("/{eventId}", s.DeleteEvent)
			})
		})
	})

	r.Post("/maintenance/recalculate", s.RecalculateAll)
	r.Get("/export", s.GetExport)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, notFoundBody("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed"))
	})
	return r
}
