package dto

import (
	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/validator"
)

type SendMessageRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"` // email only
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

type BulkContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type SendBulkRequest struct {
	Contacts []BulkContact `json:"contacts"`
	Subject  string        `json:"subject,omitempty"`
	Message  string        `json:"message"`
	Type     string        `json:"type,omitempty"`
}

func (r *SendBulkRequest) Recipients() []models.Recipient {
	out := make([]models.Recipient, 0, len(r.Contacts))
	for _, c := range r.Contacts {
		out = append(out, models.Recipient{Name: c.Name, Phone: c.Phone, Email: c.Email})
	}
	return out
}

// MessageType maps the request type; anything other than "emergency" is a normal message.
func MessageType(s string) types.MessageType {
	if s == string(types.MessageEmergency) {
		return types.MessageEmergency
	}
	return types.MessageNormal
}

// ValidateSend returns the first problem with a single send request, or "".
func ValidateSend(ch types.Channel, r *SendMessageRequest) string {
	switch {
	case ch == types.ChannelEmail && (r.To == "" || r.Subject == "" || r.Message == ""):
		return "Email address, subject, and message are required"
	case ch == types.ChannelEmail && !validator.Matches(r.To, validator.EmailRX):
		return "Invalid email address"
	case r.To == "" || r.Message == "":
		return "Phone number and message are required"
	}
	return ""
}

// ValidateBulk returns the first problem with a bulk request, or "".
func ValidateBulk(ch types.Channel, r *SendBulkRequest) string {
	switch {
	case len(r.Contacts) == 0:
		return "Contacts array is required"
	case ch == types.ChannelEmail && (r.Subject == "" || r.Message == ""):
		return "Subject and message are required"
	case r.Message == "":
		return "Message is required"
	}
	return ""
}
