package dto

import (
	"strings"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/service/companion"
	"github.com/Temutjin2k/niva/pkg/validator"
	"github.com/google/uuid"
)

type ContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

func (r *ContactRequest) ToModel(userID uuid.UUID) *models.TrustedContact {
	return &models.TrustedContact{
		UserID:       userID,
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Relationship: r.Relationship,
	}
}

func ValidateContact(v *validator.Validator, r *ContactRequest) {
	v.Check(validator.NotBlank(r.Name), "name", "must be provided")
	v.Check(validator.MaxChars(r.Name, 100), "name", "must not be more than 100 characters long")

	v.Check(validator.NotBlank(r.Phone), "phone", "must be provided")
	v.Check(r.Phone == "" || validator.PhoneDigits(r.Phone), "phone", "must be a valid phone number")

	email := strings.TrimSpace(r.Email)
	v.Check(email == "" || validator.Matches(email, validator.EmailRX), "email", "must be a valid email address")
	v.Check(validator.MaxChars(r.Relationship, 50), "relationship", "must not be more than 50 characters long")
}

type RouteRequest struct {
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Waypoints     []models.Waypoint `json:"waypoints"`
	EstimatedTime int               `json:"estimated_time,omitempty"`
}

func (r *RouteRequest) ToModel(userID uuid.UUID) *models.SavedRoute {
	return &models.SavedRoute{
		UserID:        userID,
		Name:          strings.TrimSpace(r.Name),
		Description:   r.Description,
		Waypoints:     r.Waypoints,
		EstimatedTime: r.EstimatedTime,
	}
}

func ValidateRoute(v *validator.Validator, r *RouteRequest) {
	v.Check(validator.NotBlank(r.Name), "name", "must be provided")
	v.Check(validator.MaxChars(r.Name, 100), "name", "must not be more than 100 characters long")
	v.Check(len(r.Waypoints) > 0, "waypoints", "must contain at least one waypoint")
	v.Check(r.EstimatedTime >= 0, "estimated_time", "must not be negative")

	for _, wp := range r.Waypoints {
		v.Check(validator.NotBlank(wp.Name), "waypoints", "every waypoint must have a name")
		v.Check(validator.Latitude(wp.Latitude), "waypoints", "latitude must be between -90 and 90")
		v.Check(validator.Longitude(wp.Longitude), "waypoints", "longitude must be between -180 and 180")
		v.Check(wp.EstimatedTime >= 0, "waypoints", "estimated_time must not be negative")
	}
}

type PresetRequest struct {
	Name             string      `json:"name"`
	Description      string      `json:"description,omitempty"`
	PingInterval     int         `json:"ping_interval"`
	CheckInInterval  int         `json:"check_in_interval"`
	Duration         *int        `json:"duration,omitempty"`
	SelectedContacts []uuid.UUID `json:"selected_contacts"`
	RouteID          *uuid.UUID  `json:"route_id,omitempty"`
	AutoStart        bool        `json:"auto_start"`
}

func (r *PresetRequest) ToModel(userID uuid.UUID) *models.CustomSession {
	contacts := r.SelectedContacts
	if contacts == nil {
		contacts = []uuid.UUID{}
	}
	return &models.CustomSession{
		UserID:           userID,
		Name:             strings.TrimSpace(r.Name),
		Description:      r.Description,
		PingInterval:     r.PingInterval,
		CheckInInterval:  r.CheckInInterval,
		Duration:         r.Duration,
		SelectedContacts: contacts,
		AutoStart:        r.AutoStart,
	}
}

func ValidatePreset(v *validator.Validator, r *PresetRequest) {
	v.Check(validator.NotBlank(r.Name), "name", "must be provided")
	v.Check(validator.MaxChars(r.Name, 100), "name", "must not be more than 100 characters long")
	v.Check(r.PingInterval >= 1 && r.PingInterval <= 120, "ping_interval", "must be between 1 and 120 minutes")
	v.Check(r.CheckInInterval >= 1 && r.CheckInInterval <= 240, "check_in_interval", "must be between 1 and 240 minutes")
	if r.Duration != nil {
		v.Check(*r.Duration >= 1 && *r.Duration <= 1440, "duration", "must be between 1 and 1440 minutes")
	}
	v.Check(validator.Unique(r.SelectedContacts), "selected_contacts", "must not contain duplicates")
}

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

func (r *LocationRequest) ToModel() *models.Location {
	if r == nil {
		return nil
	}
	return &models.Location{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Accuracy:  r.Accuracy,
	}
}

func ValidateLocation(v *validator.Validator, r *LocationRequest) {
	if r == nil {
		return
	}
	v.Check(validator.Latitude(r.Latitude), "latitude", "must be between -90 and 90")
	v.Check(validator.Longitude(r.Longitude), "longitude", "must be between -180 and 180")
	v.Check(r.Accuracy >= 0, "accuracy", "must not be negative")
}

type StartSessionRequest struct {
	Duration   *int             `json:"duration,omitempty"` // minutes
	RouteID    *uuid.UUID       `json:"route_id,omitempty"`
	PresetID   *uuid.UUID       `json:"preset_id,omitempty"`
	ContactIDs []uuid.UUID      `json:"contact_ids,omitempty"`
	Location   *LocationRequest `json:"location,omitempty"`
}

func (r *StartSessionRequest) ToRequest() companion.StartRequest {
	return companion.StartRequest{
		Duration:   r.Duration,
		RouteID:    r.RouteID,
		PresetID:   r.PresetID,
		ContactIDs: r.ContactIDs,
		Location:   r.Location.ToModel(),
	}
}

func ValidateStartSession(v *validator.Validator, r *StartSessionRequest) {
	v.Check(validator.Unique(r.ContactIDs), "contact_ids", "must not contain duplicates")
	ValidateLocation(v, r.Location)
}

// PingRequest is the optional body of a manual ping.
type PingRequest struct {
	Location *LocationRequest `json:"location,omitempty"`
}
