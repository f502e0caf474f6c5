// export.go implements GET /export.
// Returns all voyages and events as a flat table.
// Supports ?format=csv (CSV) or default (JSON).

package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"voyage_id", "departure_port", "arrival_port", "voyage_started_at", "voyage_ended_at",
	"total_distance_nm", "total_duration_hours", "avg_speed_kn",
	"event_at", "latitude", "longitude", "description", "weather",
	"distance_from_prev_nm", "elapsed_hours_since_prev", "avg_speed_since_prev_kn",
}

// ExportRow is the JSON form of one export row.
type ExportRow struct {
	VoyageID              string     `json:"voyage_id"`
	DeparturePort         string     `json:"departure_port"`
	ArrivalPort           string     `json:"arrival_port,omitempty"`
	VoyageStartedAt       time.Time  `json:"voyage_started_at"`
	VoyageEndedAt         *time.Time `json:"voyage_ended_at,omitempty"`
	TotalDistanceNM       *float64   `json:"total_distance_nm"`
	TotalDurationHours    *float64   `json:"total_duration_hours"`
	AvgSpeedKN            *float64   `json:"avg_speed_kn"`
	EventAt               *time.Time `json:"event_at,omitempty"`
	Latitude              *float64   `json:"latitude,omitempty"`
	Longitude             *float64   `json:"longitude,omitempty"`
	Description           string     `json:"description,omitempty"`
	Weather               string     `json:"weather,omitempty"`
	DistanceFromPrevNM    *float64   `json:"distance_from_prev_nm,omitempty"`
	ElapsedHoursSincePrev *float64   `json:"elapsed_hours_since_prev,omitempty"`
	AvgSpeedSincePrevKN   *float64   `json:"avg_speed_since_prev_kn,omitempty"`
}

// GetExport handles GET /export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid format for parameter format: "+err.Error()))
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		writeJSON(w, http.StatusBadRequest, requestBody("format must be csv or json"))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "not found")
		return
	}

	if format != nil && *format == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]ExportRow, len(rows))
	for i, row := range rows {
		out[i] = ExportRow(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as CSV. Absent values are empty cells.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(exportRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="logbook-export.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// exportRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func exportRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.VoyageID,
		r.DeparturePort,
		r.ArrivalPort,
		r.VoyageStartedAt.UTC().Format(time.RFC3339),
		formatOptionalTime(r.VoyageEndedAt),
		formatOptionalFloat(r.TotalDistanceNM),
		formatOptionalFloat(r.TotalDurationHours),
		formatOptionalFloat(r.AvgSpeedKN),
		formatOptionalTime(r.EventAt),
		formatOptionalCoord(r.Latitude),
		formatOptionalCoord(r.Longitude),
		r.Description,
		r.Weather,
		formatOptionalFloat(r.DistanceFromPrevNM),
		formatOptionalFloat(r.ElapsedHoursSincePrev),
		formatOptionalFloat(r.AvgSpeedSincePrevKN),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// formatOptionalFloat renders a stored two-decimal metric, or "" if absent.
func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatOptionalCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
