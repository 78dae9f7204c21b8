package companion

import (
	"testing"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newSession(duration *int) *models.Session {
	s := &models.Session{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Status:        types.SessionActive,
		StartedAt:     t0,
		LastPingAt:    ptr(t0),
		LastCheckInAt: ptr(t0),
		Duration:      duration,
		Prompt:        types.PromptNone,
		BaseIntervals: DefaultIntervals(),
	}
	if duration != nil {
		s.EndsAt = ptr(t0.Add(time.Duration(*duration) * time.Minute))
	}
	return s
}

// run ticks the session every second over [from, to] and collects effects.
func run(s *models.Session, from, to time.Time, p Policy) []Effect {
	var all []Effect
	for now := from; !now.After(to); now = now.Add(time.Second) {
		all = append(all, Step(s, now, p)...)
	}
	return all
}

func effectTypes(effects []Effect) []types.SessionEvent {
	out := make([]types.SessionEvent, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Type)
	}
	return out
}

func count(effects []Effect, typ types.SessionEvent) int {
	n := 0
	for _, e := range effects {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestStep_PingOnInterval(t *testing.T) {
	s := newSession(nil)
	p := DefaultPolicy()

	assert.Empty(t, Step(s, t0.Add(2*time.Minute+59*time.Second), p))

	effects := Step(s, t0.Add(3*time.Minute), p)
	require.Equal(t, []types.SessionEvent{types.EventPingSent}, effectTypes(effects))
	assert.Equal(t, t0.Add(3*time.Minute), *s.LastPingAt)

	// next ping is measured from the last one
	assert.Empty(t, Step(s, t0.Add(5*time.Minute), p))
	assert.Len(t, Step(s, t0.Add(6*time.Minute), p), 1)
}

func TestStep_PingFromStartWhenNeverPinged(t *testing.T) {
	s := newSession(nil)
	s.LastPingAt = nil

	effects := Step(s, t0.Add(3*time.Minute), DefaultPolicy())
	assert.Equal(t, 1, count(effects, types.EventPingSent))
}

func TestStep_CheckInPromptAndGentleAlert(t *testing.T) {
	s := newSession(nil)
	p := DefaultPolicy()

	effects := run(s, t0.Add(time.Second), t0.Add(15*time.Minute), p)
	require.Equal(t, 1, count(effects, types.EventCheckInPrompted))
	assert.Equal(t, types.PromptCheckIn, s.Prompt)
	assert.Equal(t, t0.Add(18*time.Minute), *s.PromptDeadline)

	// no second prompt while one is open, no alert before the window closes
	effects = run(s, t0.Add(15*time.Minute+time.Second), t0.Add(18*time.Minute-time.Second), p)
	assert.Zero(t, count(effects, types.EventCheckInPrompted))
	assert.Zero(t, count(effects, types.EventGentleAlertSent))

	effects = Step(s, t0.Add(18*time.Minute), p)
	assert.Equal(t, 1, count(effects, types.EventGentleAlertSent))
	assert.Zero(t, count(effects, types.EventCheckInPrompted))
	assert.Equal(t, types.PromptNone, s.Prompt)
	assert.Equal(t, t0, *s.LastCheckInAt, "gentle alert does not count as a check-in")

	// re-prompted on the next tick
	effects = Step(s, t0.Add(18*time.Minute+time.Second), p)
	assert.Equal(t, 1, count(effects, types.EventCheckInPrompted))
}

func TestCheckIn_ClearsPromptAndUpdatesLastCheckIn(t *testing.T) {
	s := newSession(nil)
	p := DefaultPolicy()

	run(s, t0.Add(time.Second), t0.Add(15*time.Minute), p)
	require.Equal(t, types.PromptCheckIn, s.Prompt)

	at := t0.Add(16 * time.Minute)
	require.NoError(t, CheckIn(s, at))
	assert.Equal(t, types.PromptNone, s.Prompt)
	assert.Nil(t, s.PromptDeadline)
	assert.Equal(t, at, *s.LastCheckInAt)

	effects := run(s, at.Add(time.Second), t0.Add(30*time.Minute), p)
	assert.Zero(t, count(effects, types.EventGentleAlertSent))
	assert.Zero(t, count(effects, types.EventCheckInPrompted))
}

func TestCheckIn_WithoutPrompt(t *testing.T) {
	s := newSession(nil)
	p := DefaultPolicy()

	at := t0.Add(10 * time.Minute)
	require.NoError(t, CheckIn(s, at))
	assert.Equal(t, at, *s.LastCheckInAt)
	assert.Equal(t, types.PromptNone, s.Prompt)

	// the next prompt is counted from the check-in
	effects := run(s, at.Add(time.Second), t0.Add(25*time.Minute-time.Second), p)
	assert.Zero(t, count(effects, types.EventCheckInPrompted))
	effects = Step(s, t0.Add(25*time.Minute), p)
	assert.Equal(t, 1, count(effects, types.EventCheckInPrompted))
}

func TestCheckIn_LeavesSafetyCheckOpen(t *testing.T) {
	s := newSession(ptr(10))
	p := DefaultPolicy()

	run(s, t0.Add(time.Second), t0.Add(10*time.Minute), p)
	require.Equal(t, types.PromptSafetyCheck, s.Prompt)

	at := t0.Add(11 * time.Minute)
	require.NoError(t, CheckIn(s, at))
	assert.Equal(t, types.PromptSafetyCheck, s.Prompt)
	assert.Equal(t, at, *s.LastCheckInAt)
}

func TestStep_SafetyCheckOnExpiryOnce(t *testing.T) {
	s := newSession(ptr(30))
	p := DefaultPolicy()
	end := t0.Add(30 * time.Minute)

	effects := run(s, t0.Add(time.Second), end.Add(-time.Second), p)
	assert.Zero(t, count(effects, types.EventSafetyCheckPrompted))

	effects = run(s, end, end.Add(90*time.Second), p)
	assert.Equal(t, 1, count(effects, types.EventSafetyCheckPrompted))
	assert.True(t, s.Expired)
	assert.Equal(t, types.PromptSafetyCheck, s.Prompt)

	effects = Step(s, end.Add(2*time.Minute), p)
	assert.Equal(t, 1, count(effects, types.EventEmergencyAlertSent))
	assert.Equal(t, types.PromptNone, s.Prompt)

	// expired stays set so neither the prompt nor the alert repeat
	effects = run(s, end.Add(2*time.Minute+time.Second), end.Add(10*time.Minute), p)
	assert.Zero(t, count(effects, types.EventSafetyCheckPrompted))
	assert.Zero(t, count(effects, types.EventEmergencyAlertSent))
}

func TestStep_SafetyCheckSupersedesCheckIn(t *testing.T) {
	s := newSession(ptr(10))
	p := DefaultPolicy()
	// a check-in prompt is open when the session ends
	s.OpenPrompt(types.PromptCheckIn, t0.Add(11*time.Minute))

	effects := Step(s, t0.Add(10*time.Minute), p)
	assert.Equal(t, []types.SessionEvent{types.EventSafetyCheckPrompted}, effectTypes(effects)[:1])
	assert.Equal(t, types.PromptSafetyCheck, s.Prompt)
	assert.Zero(t, count(effects, types.EventGentleAlertSent))
}

func TestConfirmSafe_ExtendsByFiveMinutes(t *testing.T) {
	s := newSession(ptr(20))
	p := DefaultPolicy()
	end := t0.Add(20 * time.Minute)

	run(s, end, end, p)
	require.Equal(t, types.PromptSafetyCheck, s.Prompt)

	at := end.Add(30 * time.Second)
	require.NoError(t, ConfirmSafe(s, at, p))
	assert.False(t, s.Expired)
	assert.Equal(t, types.PromptNone, s.Prompt)
	assert.Equal(t, at.Add(5*time.Minute), *s.EndsAt)

	effects := run(s, at.Add(time.Second), at.Add(3*time.Minute), p)
	assert.Zero(t, count(effects, types.EventEmergencyAlertSent))

	// the extended end time triggers a fresh safety check
	effects = run(s, at.Add(3*time.Minute+time.Second), at.Add(5*time.Minute), p)
	assert.Equal(t, 1, count(effects, types.EventSafetyCheckPrompted))

	assert.ErrorIs(t, ConfirmSafe(newSession(nil), at, p), types.ErrNoPrompt)
}

func TestStep_EndedSessionIsNoop(t *testing.T) {
	s := newSession(ptr(5))
	s.Status = types.SessionEnded
	assert.Nil(t, Step(s, t0.Add(time.Hour), DefaultPolicy()))
	assert.ErrorIs(t, CheckIn(s, t0), types.ErrSessionEnded)
	assert.ErrorIs(t, ConfirmSafe(s, t0, DefaultPolicy()), types.ErrSessionEnded)
}

func TestStep_UsesBaseIntervalsWithoutDuration(t *testing.T) {
	s := newSession(nil)
	s.BaseIntervals = models.Intervals{PingInterval: 7, CheckInInterval: 40}

	effects := run(s, t0.Add(time.Second), t0.Add(39*time.Minute), DefaultPolicy())
	assert.Equal(t, 5, count(effects, types.EventPingSent))
	assert.Zero(t, count(effects, types.EventCheckInPrompted))
}

func TestSnapshot_CountdownsNeverNegative(t *testing.T) {
	s := newSession(ptr(15))
	s.Route = &models.RouteSnapshot{Name: "Home", EstimatedTime: 10}
	s.OpenPrompt(types.PromptCheckIn, t0.Add(time.Minute))

	for _, at := range []time.Time{t0, t0.Add(7 * time.Minute), t0.Add(2 * time.Hour)} {
		snap := Snapshot(s, at)
		assert.GreaterOrEqual(t, snap.ElapsedSeconds, int64(0))
		assert.GreaterOrEqual(t, snap.NextPingIn, int64(0))
		assert.GreaterOrEqual(t, snap.NextCheckInIn, int64(0))
		assert.GreaterOrEqual(t, snap.PromptRemaining, int64(0))
		require.NotNil(t, snap.RemainingSeconds)
		assert.GreaterOrEqual(t, *snap.RemainingSeconds, int64(0))
		assert.GreaterOrEqual(t, snap.RouteProgress.RemainingMinutes, 0)
	}

	snap := Snapshot(s, t0.Add(4*time.Minute))
	assert.Equal(t, int64(240), snap.ElapsedSeconds)
	assert.Equal(t, int64(660), *snap.RemainingSeconds)
	assert.Equal(t, 6, snap.RouteProgress.RemainingMinutes)
	assert.Equal(t, "ultra-frequent", snap.Tier)
	assert.Zero(t, snap.PromptRemaining)
}

func TestCurrentIntervals_TightensNearEnd(t *testing.T) {
	s := newSession(ptr(120))

	assert.Equal(t, models.Intervals{PingInterval: 5, CheckInInterval: 30}, CurrentIntervals(s, t0))
	assert.Equal(t, models.Intervals{PingInterval: 5, CheckInInterval: 22}, CurrentIntervals(s, t0.Add(70*time.Minute)))
	assert.Equal(t, models.Intervals{PingInterval: 2, CheckInInterval: 10}, CurrentIntervals(s, t0.Add(3*time.Hour)))
}
