package models

import (
	"time"

	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/google/uuid"
)

type Recipient struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// RabbitMQ message: alert request → <notification_topic> exchange
type AlertRequest struct {
	ID         uuid.UUID       `json:"id"`
	Kind       types.AlertKind `json:"kind"`
	SessionID  uuid.UUID       `json:"session_id"`
	UserID     uuid.UUID       `json:"user_id"`
	UserName   string          `json:"user_name"`
	Recipients []Recipient     `json:"recipients"`
	Location   *Location       `json:"location,omitempty"`
	RouteName  string          `json:"route_name,omitempty"`
	ETAMinutes *int            `json:"eta_minutes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OutboundMessage is a single message handed to a channel sender.
type OutboundMessage struct {
	Channel types.Channel
	To      string
	Subject string
	Body    string
	HTML    string
	Type    types.MessageType
	Name    string // recipient name, used for personalised email
}

// SendResult is what a provider reports back for a sent message.
type SendResult struct {
	MessageID string `json:"messageId"`
	To        string `json:"to"`
	Status    string `json:"status"`
}

// MessageStatus is the provider-side status of a sent message.
type MessageStatus struct {
	SID          string     `json:"sid"`
	Status       string     `json:"status"`
	To           string     `json:"to"`
	From         string     `json:"from"`
	DateCreated  *time.Time `json:"dateCreated,omitempty"`
	DateSent     *time.Time `json:"dateSent,omitempty"`
	ErrorCode    *int       `json:"errorCode,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
}

// DeliveryResult is a successful entry of a bulk report.
type DeliveryResult struct {
	Contact   string        `json:"contact"`
	Channel   types.Channel `json:"channel"`
	To        string        `json:"to"`
	MessageID string        `json:"messageId"`
	Status    string        `json:"status,omitempty"`
	Success   bool          `json:"success"`
}

// DeliveryError is a failed entry of a bulk report.
type DeliveryError struct {
	Contact string        `json:"contact"`
	Channel types.Channel `json:"channel"`
	To      string        `json:"to,omitempty"`
	Error   string        `json:"error"`
	Success bool          `json:"success"`
}

// DeliveryReport aggregates a bulk send. A failed recipient never aborts the batch.
type DeliveryReport struct {
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Results []DeliveryResult `json:"results"`
	Errors  []DeliveryError  `json:"errors"`
}

func (r *DeliveryReport) AddResult(res DeliveryResult) {
	res.Success = true
	r.Sent++
	r.Results = append(r.Results, res)
}

func (r *DeliveryReport) AddError(e DeliveryError) {
	e.Success = false
	r.Failed++
	r.Errors = append(r.Errors, e)
}

func (r *DeliveryReport) Merge(other DeliveryReport) {
	r.Sent += other.Sent
	r.Failed += other.Failed
	r.Results = append(r.Results, other.Results...)
	r.Errors = append(r.Errors, other.Errors...)
}

// Delivery is the log row of a single attempt.
type Delivery struct {
	ID        uuid.UUID     `json:"id"`
	AlertID   *uuid.UUID    `json:"alert_id,omitempty"`
	Channel   types.Channel `json:"channel"`
	Recipient string        `json:"recipient"`
	MessageID string        `json:"message_id,omitempty"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
