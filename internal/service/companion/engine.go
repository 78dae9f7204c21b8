package companion

import (
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
)

// Policy holds the timing constants of the escalation state machine.
type Policy struct {
	CheckInWindow   time.Duration // time to answer a check-in before the gentle alert
	SafetyWindow    time.Duration // time to answer the safety check before the emergency alert
	SafetyExtension time.Duration // added to the end time when the user confirms they are safe
	Tick            time.Duration
	MaxDuration     int // minutes
}

func DefaultPolicy() Policy {
	return Policy{
		CheckInWindow:   3 * time.Minute,
		SafetyWindow:    2 * time.Minute,
		SafetyExtension: 5 * time.Minute,
		Tick:            time.Second,
		MaxDuration:     1440,
	}
}

// Effect is a side effect produced by a state transition.
// Type is the session event to record; Deadline is set for prompts.
type Effect struct {
	Type      types.SessionEvent
	Deadline  *time.Time
	Intervals models.Intervals
}

// Step advances one session to now and returns the effects to carry out.
// It mutates s in place and is a no-op for ended sessions.
func Step(s *models.Session, now time.Time, p Policy) []Effect {
	if s == nil || !s.IsActive() {
		return nil
	}

	var effects []Effect

	// the safety check supersedes an open check-in prompt and fires once per end time
	if s.EndsAt != nil && !now.Before(*s.EndsAt) && !s.Expired && s.Prompt != types.PromptSafetyCheck {
		s.Expired = true
		deadline := now.Add(p.SafetyWindow)
		s.OpenPrompt(types.PromptSafetyCheck, deadline)
		effects = append(effects, Effect{Type: types.EventSafetyCheckPrompted, Deadline: &deadline})
	}

	iv := CurrentIntervals(s, now)

	if now.Sub(lastOr(s.LastPingAt, s.StartedAt)) >= minutes(iv.PingInterval) {
		t := now
		s.LastPingAt = &t
		effects = append(effects, Effect{Type: types.EventPingSent, Intervals: iv})
	}

	if !s.HasPrompt() && now.Sub(lastOr(s.LastCheckInAt, s.StartedAt)) >= minutes(iv.CheckInInterval) {
		deadline := now.Add(p.CheckInWindow)
		s.OpenPrompt(types.PromptCheckIn, deadline)
		effects = append(effects, Effect{Type: types.EventCheckInPrompted, Deadline: &deadline, Intervals: iv})
	}

	if s.HasPrompt() && s.PromptDeadline != nil && !now.Before(*s.PromptDeadline) {
		switch s.Prompt {
		case types.PromptCheckIn:
			// last check-in stays untouched so the user is asked again on the next tick
			s.ClearPrompt()
			effects = append(effects, Effect{Type: types.EventGentleAlertSent, Intervals: iv})
		case types.PromptSafetyCheck:
			s.ClearPrompt()
			effects = append(effects, Effect{Type: types.EventEmergencyAlertSent, Intervals: iv})
		}
	}

	return effects
}

// CheckIn records that the user is fine. It is accepted at any time and answers an open check-in prompt;
// an open safety check is left for ConfirmSafe.
func CheckIn(s *models.Session, now time.Time) error {
	if !s.IsActive() {
		return types.ErrSessionEnded
	}
	t := now
	s.LastCheckInAt = &t
	if s.Prompt == types.PromptCheckIn {
		s.ClearPrompt()
	}
	return nil
}

// ConfirmSafe answers the safety check and extends the session.
func ConfirmSafe(s *models.Session, now time.Time, p Policy) error {
	if !s.IsActive() {
		return types.ErrSessionEnded
	}
	if s.Prompt != types.PromptSafetyCheck {
		return types.ErrNoPrompt
	}
	ends := now.Add(p.SafetyExtension)
	s.EndsAt = &ends
	s.Expired = false
	s.ClearPrompt()
	return nil
}

// CurrentIntervals returns the cadence in effect at now.
func CurrentIntervals(s *models.Session, now time.Time) models.Intervals {
	if s.Duration == nil {
		if s.BaseIntervals.PingInterval > 0 && s.BaseIntervals.CheckInInterval > 0 {
			return s.BaseIntervals
		}
		return DefaultIntervals()
	}

	var remaining *int
	if s.EndsAt != nil {
		left := int(max(0, s.EndsAt.Sub(now)) / time.Minute)
		remaining = &left
	}
	return SmartIntervals(s.Duration, remaining)
}

// Snapshot derives the read model of s at now. Countdowns are clamped at zero.
func Snapshot(s *models.Session, now time.Time) *models.SessionSnapshot {
	iv := CurrentIntervals(s, now)

	snap := &models.SessionSnapshot{
		Session:        s,
		Now:            now,
		ElapsedSeconds: seconds(now.Sub(s.StartedAt)),
		NextPingIn:     seconds(minutes(iv.PingInterval) - now.Sub(lastOr(s.LastPingAt, s.StartedAt))),
		NextCheckInIn:  seconds(minutes(iv.CheckInInterval) - now.Sub(lastOr(s.LastCheckInAt, s.StartedAt))),
		Intervals:      iv,
		Tier:           Tier(s.Duration),
	}

	if s.EndsAt != nil {
		left := seconds(s.EndsAt.Sub(now))
		snap.RemainingSeconds = &left
	}

	if s.HasPrompt() && s.PromptDeadline != nil {
		snap.PromptRemaining = seconds(s.PromptDeadline.Sub(now))
	}

	if s.Route != nil {
		elapsed := int(max(0, now.Sub(s.StartedAt)) / time.Minute)
		snap.RouteProgress = &models.RouteProgress{
			Name:             s.Route.Name,
			ElapsedMinutes:   elapsed,
			RemainingMinutes: max(0, s.Route.EstimatedTime-elapsed),
		}
	}

	return snap
}

func lastOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}
	return *t
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// seconds converts d to whole seconds, never below zero.
func seconds(d time.Duration) int64 {
	return int64(max(0, d) / time.Second)
}
