package models

import (
	"time"

	"github.com/google/uuid"
)

// TrustedContact is a person who receives pings and alerts.
type TrustedContact struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	Relationship string    `json:"relationship,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// Recipient converts the contact into a notification recipient.
func (c TrustedContact) Recipient() Recipient {
	return Recipient{
		Name:  c.Name,
		Phone: c.Phone,
		Email: c.Email,
	}
}
