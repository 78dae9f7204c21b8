package types

import "errors"

var (
	ErrNotFound       = errors.New("requested item not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrEmailTaken     = errors.New("email already registered")
	ErrInvalidPayload = errors.New("invalid payload")

	ErrContactNotFound = errors.New("trusted contact not found")
	ErrRouteNotFound   = errors.New("saved route not found")
	ErrPresetNotFound  = errors.New("custom session not found")
	ErrSessionNotFound = errors.New("session not found")

	ErrSessionAlreadyActive = errors.New("user already has an active session")
	ErrNoActiveSession      = errors.New("no active session")
	ErrSessionEnded         = errors.New("session already ended")
	ErrNoPrompt             = errors.New("no matching prompt is open")
	ErrInvalidDuration      = errors.New("duration must be between 1 and 1440 minutes")
	ErrNoContacts           = errors.New("no trusted contacts to notify")

	ErrChannelNotConfigured = errors.New("channel is not configured")
	ErrNoRecipientAddress   = errors.New("no address provided for recipient")
	ErrMessageNotFound      = errors.New("message not found")
)
