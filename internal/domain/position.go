package domain

// Position is a latitude/longitude pair in decimal degrees.
// Positions are optional wherever they appear and are replaced wholesale on edit.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
