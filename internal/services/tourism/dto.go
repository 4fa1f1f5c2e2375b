package tourism

import (
	"time"

	"tourism-system/internal/clients/meteo"
	"tourism-system/internal/clients/overpass"
)

// QueryRequest is the inbound tourism query
type QueryRequest struct {
	Query string `json:"query" validate:"required,min=1,max=500"`
	Place string `json:"place,omitempty" validate:"omitempty,max=255"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`
}

// Answer is the unit returned to the caller. When Success is false, Message
// explains why and Error carries the code; when true, Message summarizes
// whatever data was gathered.
type Answer struct {
	Success   bool            `json:"success"`
	PlaceName string          `json:"place_name"`
	Weather   *meteo.Snapshot `json:"weather,omitempty"`
	Places    []overpass.POI  `json:"places,omitempty"`
	Message   string          `json:"message"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

const (
	ErrCodePlaceNotFound = "PLACE_NOT_FOUND"
)

// DefaultPlacesLimit caps the points-of-interest list when the caller does
// not ask for a specific count.
const DefaultPlacesLimit = 5
