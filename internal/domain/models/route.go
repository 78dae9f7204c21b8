package models

import (
	"time"

	"github.com/google/uuid"
)

type Waypoint struct {
	Name          string  `json:"name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	EstimatedTime int     `json:"estimated_time"` // minutes from the previous waypoint
}

// SavedRoute is a reusable trip with an estimated duration.
type SavedRoute struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Waypoints     []Waypoint `json:"waypoints"`
	EstimatedTime int        `json:"estimated_time"` // minutes
	CreatedAt     time.Time  `json:"created_at"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
}

// TotalWaypointMinutes sums the estimated minutes of every waypoint.
func (r SavedRoute) TotalWaypointMinutes() int {
	total := 0
	for _, wp := range r.Waypoints {
		total += wp.EstimatedTime
	}
	return total
}

// RouteSnapshot is the part of a route copied into a session or preset.
type RouteSnapshot struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	EstimatedTime int       `json:"estimated_time"`
}

func (r SavedRoute) Snapshot() *RouteSnapshot {
	return &RouteSnapshot{
		ID:            r.ID,
		Name:          r.Name,
		EstimatedTime: r.EstimatedTime,
	}
}

// RouteProgress reports how far into the route the session is.
type RouteProgress struct {
	Name             string `json:"name"`
	ElapsedMinutes   int    `json:"elapsed_minutes"`
	RemainingMinutes int    `json:"remaining_minutes"`
}
