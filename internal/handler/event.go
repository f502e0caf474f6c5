package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// EventRequest is the body of POST and PUT on voyage events.
// Segment metrics are derived and cannot be set by clients.
type EventRequest struct {
	Timestamp   *time.Time    `json:"timestamp" validate:"required"`
	Position    *positionBody `json:"position"`
	Description string        `json:"description" validate:"max=2000"`
	Weather     string        `json:"weather" validate:"max=500"`
}

// Event is the response form of an event.
type Event struct {
	ID                    uuid.UUID `json:"id"`
	VoyageID              uuid.UUID `json:"voyage_id"`
	Timestamp             time.Time `json:"timestamp"`
	Position              *Position `json:"position,omitempty"`
	Description           string    `json:"description,omitempty"`
	Weather               string    `json:"weather,omitempty"`
	DistanceFromPrevNM    *float64  `json:"distance_from_prev_nm"`
	ElapsedHoursSincePrev *float64  `json:"elapsed_hours_since_prev"`
	AvgSpeedSincePrevKN   *float64  `json:"avg_speed_since_prev_kn"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// EventList is the body of GET /voyages/{voyageId}/events.
type EventList struct {
	Data       []Event    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateEvent handles POST /voyages/{voyageId}/events.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	voyageID, err := pathUUID(r, "voyageId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	var body EventRequest
	if err := decodeBody(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}

	created, err := s.events.Create(r.Context(), requestToEvent(voyageID, uuid.Nil, body))
	if err != nil {
		writeServiceError(w, r, err, "voyage not found")
		return
	}
	writeJSON(w, http.StatusCreated, eventToResponse(created))
}

// ListEvents handles GET /voyages/{voyageId}/events.
// Events are returned in timestamp order. Supports ?page= and ?limit=.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	voyageID, err := pathUUID(r, "voyageId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	params, err := paginationParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	events, total, err := s.events.ListByVoyageIDPaged(r.Context(), voyageID, params)
	if err != nil {
		writeServiceError(w, r, err, "voyage not found")
		return
	}

	data := make([]Event, len(events))
	for i, e := range events {
		data[i] = eventToResponse(e)
	}
	writeJSON(w, http.StatusOK, EventList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetEvent handles GET /voyages/{voyageId}/events/{eventId}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	voyageID, eventID, ok := eventPath(w, r)
	if !ok {
		return
	}

	event, err := s.events.GetByID(r.Context(), voyageID, eventID)
	if err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, eventToResponse(event))
}

// UpdateEvent handles PUT /voyages/{voyageId}/events/{eventId}.
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	voyageID, eventID, ok := eventPath(w, r)
	if !ok {
		return
	}
	var body EventRequest
	if err := decodeBody(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}

	updated, err := s.events.Update(r.Context(), requestToEvent(voyageID, eventID, body))
	if err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, eventToResponse(updated))
}

// DeleteEvent handles DELETE /voyages/{voyageId}/events/{eventId}.
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	voyageID, eventID, ok := eventPath(w, r)
	if !ok {
		return
	}

	if err := s.events.Delete(r.Context(), voyageID, eventID); err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// eventPath binds both path IDs, writing a 400 and returning ok == false on failure.
func eventPath(w http.ResponseWriter, r *http.Request) (voyageID, eventID uuid.UUID, ok bool) {
	voyageID, err := pathUUID(r, "voyageId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return uuid.Nil, uuid.Nil, false
	}
	eventID, err = pathUUID(r, "eventId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return uuid.Nil, uuid.Nil, false
	}
	return voyageID, eventID, true
}

// --- mapping helpers --------------------------------------------------------

func requestToEvent(voyageID, eventID uuid.UUID, body EventRequest) domain.Event {
	return domain.Event{
		ID:          eventID,
		VoyageID:    voyageID,
		Timestamp:   *body.Timestamp,
		Position:    body.Position.toDomain(),
		Description: body.Description,
		Weather:     body.Weather,
	}
}

func eventToResponse(e domain.Event) Event {
	return Event{
		ID:                    e.ID,
		VoyageID:              e.VoyageID,
		Timestamp:             e.Timestamp,
		Position:              positionResponse(e.Position),
		Description:           e.Description,
		Weather:               e.Weather,
		DistanceFromPrevNM:    e.DistanceFromPrevNM,
		ElapsedHoursSincePrev: e.ElapsedHoursSincePrev,
		AvgSpeedSincePrevKN:   e.AvgSpeedSincePrevKN,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}
