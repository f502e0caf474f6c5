package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// VoyageRequest is the body of POST /voyages and PUT /voyages/{voyageId}.
// Aggregate fields are derived and cannot be set by clients.
type VoyageRequest struct {
	StartedAt         *time.Time    `json:"started_at" validate:"required"`
	EndedAt           *time.Time    `json:"ended_at"`
	DeparturePort     string        `json:"departure_port" validate:"required,max=200"`
	ArrivalPort       string        `json:"arrival_port" validate:"max=200"`
	StartPositionText string        `json:"start_position_text" validate:"max=200"`
	EndPositionText   string        `json:"end_position_text" validate:"max=200"`
	StartPosition     *positionBody `json:"start_position"`
	EndPosition       *positionBody `json:"end_position"`
	Notes             string        `json:"notes"`
}

// Voyage is the response form of a voyage.
type Voyage struct {
	ID                 uuid.UUID  `json:"id"`
	StartedAt          time.Time  `json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	DeparturePort      string     `json:"departure_port"`
	ArrivalPort        string     `json:"arrival_port,omitempty"`
	StartPositionText  string     `json:"start_position_text,omitempty"`
	EndPositionText    string     `json:"end_position_text,omitempty"`
	StartPosition      *Position  `json:"start_position,omitempty"`
	EndPosition        *Position  `json:"end_position,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	TotalDistanceNM    *float64   `json:"total_distance_nm"`
	TotalDurationHours *float64   `json:"total_duration_hours"`
	AvgSpeedKN         *float64   `json:"avg_speed_kn"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// VoyageList is the body of GET /voyages.
type VoyageList struct {
	Data       []Voyage   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateVoyage handles POST /voyages.
func (s *Server) CreateVoyage(w http.ResponseWriter, r *http.Request) {
	var body VoyageRequest
	if err := decodeBody(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}

	created, err := s.voyages.Create(r.Context(), requestToVoyage(uuid.Nil, body))
	if err != nil {
		writeServiceError(w, r, err, "voyage not found")
		return
	}
	writeJSON(w, http.StatusCreated, voyageToResponse(created))
}

// ListVoyages handles GET /voyages.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListVoyages(w http.ResponseWriter, r *http.Request) {
	params, err := paginationParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	voyages, total, err := s.voyages.ListPaged(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err, "voyage not found")
		return
	}

	data := make([]Voyage, len(voyages))
	for i, v := range voyages {
		data[i] = voyageToResponse(v)
	}
	writeJSON(w, http.StatusOK, VoyageList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetVoyage handles GET /voyages/{voyageId}.
func (s *Server) GetVoyage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "voyageId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	voyage, err := s.voyages.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "voyage not found")
		return
	}
	writeJSON(w, http.StatusOK, voyageToResponse(voyage))
}

// UpdateVoyage handles PUT /voyages/{voyageId}.
func (s *Server) UpdateVoyage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "voyageId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	var body VoyageRequest
	if err := decodeBody(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}

	updated, err := s.voyages.Update(r.Context(), requestToVoyage(id, body))
	if err != nil {
		writeServiceError(w, r, err, "voyage not found")
		return
	}
	writeJSON(w, http.StatusOK, voyageToResponse(updated))
}

// DeleteVoyage handles DELETE /voyages/{voyageId}. Events go with it.
func (s *Server) DeleteVoyage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "voyageId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	if err := s.voyages.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "voyage not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecalculateVoyage handles POST /voyages/{voyageId}/recalculate.
func (s *Server) RecalculateVoyage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "voyageId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	voyage, err := s.voyages.Recalculate(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "voyage not found")
		return
	}
	writeJSON(w, http.StatusOK, voyageToResponse(voyage))
}

// --- mapping helpers --------------------------------------------------------

// requestToVoyage converts a request body into a domain.Voyage with the given ID.
func requestToVoyage(id uuid.UUID, body VoyageRequest) domain.Voyage {
	return domain.Voyage{
		ID:                id,
		StartedAt:         *body.StartedAt,
		EndedAt:           body.EndedAt,
		DeparturePort:     body.DeparturePort,
		ArrivalPort:       body.ArrivalPort,
		StartPositionText: body.StartPositionText,
		EndPositionText:   body.EndPositionText,
		StartPosition:     body.StartPosition.toDomain(),
		EndPosition:       body.EndPosition.toDomain(),
		Notes:             body.Notes,
	}
}

// voyageToResponse converts a domain.Voyage into its response form.
func voyageToResponse(v domain.Voyage) Voyage {
	return Voyage{
		ID:                 v.ID,
		StartedAt:          v.StartedAt,
		EndedAt:            v.EndedAt,
		DeparturePort:      v.DeparturePort,
		ArrivalPort:        v.ArrivalPort,
		StartPositionText:  v.StartPositionText,
		EndPositionText:    v.EndPositionText,
		StartPosition:      positionResponse(v.StartPosition),
		EndPosition:        positionResponse(v.EndPosition),
		Notes:              v.Notes,
		TotalDistanceNM:    v.TotalDistanceNM,
		TotalDurationHours: v.TotalDurationHours,
		AvgSpeedKN:         v.AvgSpeedKN,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}
