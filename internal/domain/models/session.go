package models

import (
	"encoding/json"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/google/uuid"
)

// Session is a companion session and the state of its countdowns.
type Session struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	UserName       string              `json:"user_name,omitempty"`
	Status         types.SessionStatus `json:"status"`
	StartedAt      time.Time           `json:"started_at"`
	LastPingAt     *time.Time          `json:"last_ping_at,omitempty"`
	LastCheckInAt  *time.Time          `json:"last_check_in_at,omitempty"`
	EndsAt         *time.Time          `json:"ends_at,omitempty"`
	Duration       *int                `json:"duration,omitempty"` // minutes
	Route          *RouteSnapshot      `json:"route,omitempty"`
	Preset         *PresetSnapshot     `json:"preset,omitempty"`
	BaseIntervals  Intervals           `json:"base_intervals"` // cadence used when Duration is nil
	ContactIDs     []uuid.UUID         `json:"contact_ids"`
	LastLocation   *Location           `json:"last_location,omitempty"`
	Prompt         types.PromptKind    `json:"prompt"`
	PromptDeadline *time.Time          `json:"prompt_deadline,omitempty"`
	Expired        bool                `json:"expired"`
	EndedAt        *time.Time          `json:"ended_at,omitempty"`
	UpdatedAt      time.Time           `json:"updated_at,omitzero"`
}

func (s *Session) IsActive() bool {
	return s.Status == types.SessionActive
}

// HasPrompt reports whether a prompt is waiting for the user.
func (s *Session) HasPrompt() bool {
	return s.Prompt != "" && s.Prompt != types.PromptNone
}

func (s *Session) ClearPrompt() {
	s.Prompt = types.PromptNone
	s.PromptDeadline = nil
}

func (s *Session) OpenPrompt(kind types.PromptKind, deadline time.Time) {
	s.Prompt = kind
	s.PromptDeadline = &deadline
}

// Clone returns a deep copy safe to hand out of the engine lock.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.LastPingAt = cloneTime(s.LastPingAt)
	c.LastCheckInAt = cloneTime(s.LastCheckInAt)
	c.EndsAt = cloneTime(s.EndsAt)
	c.PromptDeadline = cloneTime(s.PromptDeadline)
	c.EndedAt = cloneTime(s.EndedAt)
	if s.Duration != nil {
		d := *s.Duration
		c.Duration = &d
	}
	if s.Route != nil {
		r := *s.Route
		c.Route = &r
	}
	if s.Preset != nil {
		p := *s.Preset
		c.Preset = &p
	}
	if s.LastLocation != nil {
		l := *s.LastLocation
		c.LastLocation = &l
	}
	c.ContactIDs = append([]uuid.UUID(nil), s.ContactIDs...)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Intervals are the effective ping and check-in cadence in minutes.
type Intervals struct {
	PingInterval    int `json:"ping_interval"`
	CheckInInterval int `json:"check_in_interval"`
}

// SessionSnapshot is the read model of a session at a point in time.
// Every countdown is in seconds and never negative.
type SessionSnapshot struct {
	Session          *Session       `json:"session"`
	Now              time.Time      `json:"now"`
	ElapsedSeconds   int64          `json:"elapsed_seconds"`
	RemainingSeconds *int64         `json:"remaining_seconds,omitempty"`
	NextPingIn       int64          `json:"next_ping_in"`
	NextCheckInIn    int64          `json:"next_check_in_in"`
	PromptRemaining  int64          `json:"prompt_remaining"`
	Intervals        Intervals      `json:"intervals"`
	Tier             string         `json:"tier"`
	RouteProgress    *RouteProgress `json:"route_progress,omitempty"`
}

// SessionEventRecord is one row of the session history.
type SessionEventRecord struct {
	ID        int64              `json:"id"`
	SessionID uuid.UUID          `json:"session_id"`
	Type      types.SessionEvent `json:"type"`
	Payload   json.RawMessage    `json:"payload,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
