package types

type ServiceMode string

// Auth Service - registration, login and token issuing
// Companion Service - contacts, routes, presets and companion sessions with the timing engine
// Notification Service - delivers SMS, WhatsApp and email alerts to trusted contacts
const (
	AuthService         ServiceMode = "auth-service"
	CompanionService    ServiceMode = "companion-service"
	NotificationService ServiceMode = "notification-service"
)

func (m ServiceMode) String() string {
	return string(m)
}

// Enum для роли пользователя
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	UserRoleUser  UserRole = "USER"
	AdminRole     UserRole = "ADMIN"
	ServiceRole   UserRole = "SERVICE"
	AnonymousRole UserRole = ""
)

// SessionStatus is the lifecycle state of a companion session.
type SessionStatus string

const (
	SessionActive SessionStatus = "ACTIVE"
	SessionEnded  SessionStatus = "ENDED"
)

// PromptKind is the prompt currently awaiting the user's answer.
type PromptKind string

const (
	PromptNone        PromptKind = "NONE"
	PromptCheckIn     PromptKind = "CHECK_IN"
	PromptSafetyCheck PromptKind = "SAFETY_CHECK"
)

// AlertKind selects the message template sent to trusted contacts.
type AlertKind string

func (k AlertKind) String() string {
	return string(k)
}

const (
	AlertLocationUpdate AlertKind = "location_update"
	AlertGentleCheckIn  AlertKind = "gentle_check_in"
	AlertEmergency      AlertKind = "emergency"
)

// Channel is a delivery channel of the notification service.
type Channel string

func (c Channel) String() string {
	return string(c)
}

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// MessageType mirrors the "type" field of the delivery API.
type MessageType string

const (
	MessageNormal    MessageType = "normal"
	MessageEmergency MessageType = "emergency"
)
