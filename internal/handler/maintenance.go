package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// RecalcReport is the body of POST /maintenance/recalculate.
type RecalcReport struct {
	Voyages       int         `json:"voyages"`
	FromEvents    int         `json:"from_events"`
	FromEndpoints int         `json:"from_endpoints"`
	Cleared       int         `json:"cleared"`
	Failed        []uuid.UUID `json:"failed"`
}

// RecalculateAll handles POST /maintenance/recalculate.
// It rewrites the aggregates of every voyage and reports what it did.
func (s *Server) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	report, err := s.maintenance.RecalculateAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "voyage not found")
		return
	}

	failed := report.Failed
	if failed == nil {
		failed = []uuid.UUID{}
	}
	writeJSON(w, http.StatusOK, RecalcReport{
		Voyages:       report.Voyages,
		FromEvents:    report.FromEvents,
		FromEndpoints: report.FromEndpoints,
		Cleared:       report.Cleared,
		Failed:        failed,
	})
}
