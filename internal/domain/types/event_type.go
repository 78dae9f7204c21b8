package types

type SessionEvent string

func (s SessionEvent) String() string {
	return string(s)
}

const (
	EventSessionStarted      SessionEvent = "SESSION_STARTED"
	EventPingSent            SessionEvent = "PING_SENT"
	EventCheckInPrompted     SessionEvent = "CHECK_IN_PROMPTED"
	EventCheckedIn           SessionEvent = "CHECKED_IN"
	EventGentleAlertSent     SessionEvent = "GENTLE_ALERT_SENT"
	EventSafetyCheckPrompted SessionEvent = "SAFETY_CHECK_PROMPTED"
	EventSafetyConfirmed     SessionEvent = "SAFETY_CONFIRMED"
	EventEmergencyAlertSent  SessionEvent = "EMERGENCY_ALERT_SENT"
	EventSessionEnded        SessionEvent = "SESSION_ENDED"
)

// WSEvent is the "type" of a message pushed to the user's websocket.
type WSEvent string

const (
	WSSessionStatus      WSEvent = "session_status"
	WSCheckInPrompt      WSEvent = "check_in_prompt"
	WSSafetyCheckPrompt  WSEvent = "safety_check_prompt"
	WSPingSent           WSEvent = "ping_sent"
	WSGentleAlertSent    WSEvent = "gentle_alert_sent"
	WSEmergencyAlertSent WSEvent = "emergency_alert_sent"
	WSSessionEnded       WSEvent = "session_ended"
	WSError              WSEvent = "error"
)
