package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// MapsLink returns a Google Maps link to the location.
func (l Location) MapsLink() string {
	return fmt.Sprintf("https://maps.google.com/?q=%v,%v", l.Latitude, l.Longitude)
}

// LocationRecord is a stored location sample of a session.
type LocationRecord struct {
	SessionID  uuid.UUID `json:"session_id"`
	UserID     uuid.UUID `json:"user_id"`
	Location
	RecordedAt time.Time `json:"recorded_at"`
}
