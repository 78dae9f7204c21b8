package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomSession is a saved session template.
type CustomSession struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	PingInterval     int            `json:"ping_interval"`     // minutes
	CheckInInterval  int            `json:"check_in_interval"` // minutes
	Duration         *int           `json:"duration,omitempty"`
	SelectedContacts []uuid.UUID    `json:"selected_contacts"`
	Route            *RouteSnapshot `json:"route,omitempty"`
	AutoStart        bool           `json:"auto_start"`
	CreatedAt        time.Time      `json:"created_at"`
	LastUsedAt       *time.Time     `json:"last_used_at,omitempty"`
}

// PresetSnapshot is the part of a preset copied into a session.
type PresetSnapshot struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PingInterval    int       `json:"ping_interval"`
	CheckInInterval int       `json:"check_in_interval"`
}

func (p CustomSession) Snapshot() *PresetSnapshot {
	return &PresetSnapshot{
		ID:              p.ID,
		Name:            p.Name,
		PingInterval:    p.PingInterval,
		CheckInInterval: p.CheckInInterval,
	}
}
