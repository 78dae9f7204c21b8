package companion

import (
	"context"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/Temutjin2k/niva/pkg/metrics"
	"github.com/google/uuid"
)

// Load restores active sessions from the database, prompts included.
func (s *Service) Load(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionEngineStarted)

	sessions, err := s.repos.session.ListActive(ctx)
	if err != nil {
		return wrap.Error(ctx, err)
	}

	s.mu.Lock()
	for _, sess := range sessions {
		s.active[sess.ID] = sess
		s.byUser[sess.UserID] = sess.ID
	}
	s.mu.Unlock()

	metrics.ActiveSessionsGauge.WithLabelValues(serviceName).Set(float64(len(sessions)))
	s.l.Info(ctx, "active sessions restored", "count", len(sessions))

	return nil
}

// Run ticks every active session until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.policy.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.l.Info(wrap.WithAction(context.Background(), types.ActionEngineTick), "companion engine stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

type transition struct {
	session *models.Session
	effects []Effect
}

// Tick advances every active session to the current time.
func (s *Service) Tick(ctx context.Context) {
	start := time.Now()
	ctx = wrap.WithAction(ctx, types.ActionEngineTick)

	s.mu.Lock()
	now := s.now()
	var changed []transition
	for _, sess := range s.active {
		effects := Step(sess, now, s.policy)
		if len(effects) == 0 {
			continue
		}
		sess.UpdatedAt = now
		changed = append(changed, transition{session: sess.Clone(), effects: effects})
	}
	s.mu.Unlock()

	for _, t := range changed {
		sctx := wrap.WithLogCtx(ctx, wrap.LogCtx{
			UserID:    t.session.UserID.String(),
			SessionID: t.session.ID.String(),
		})
		if err := s.repos.session.Update(sctx, t.session); err != nil {
			s.l.Error(wrap.ErrorCtx(sctx, err), "failed to persist session", err)
		}
		s.apply(sctx, t.session, t.effects)
	}

	metrics.EngineTickDuration.WithLabelValues(serviceName).Observe(time.Since(start).Seconds())
}

// apply records and carries out effects of a committed transition.
// Failures are logged and never roll back the transition.
func (s *Service) apply(ctx context.Context, sess *models.Session, effects []Effect) {
	for _, e := range effects {
		payload := map[string]any{}
		if e.Deadline != nil {
			payload["deadline"] = e.Deadline
		}
		if e.Intervals.PingInterval > 0 {
			payload["intervals"] = e.Intervals
		}

		switch e.Type {
		case types.EventPingSent:
			payload["location"] = sess.LastLocation
			s.alert(ctx, sess, types.AlertLocationUpdate)
			s.push(ctx, sess.UserID, types.WSPingSent, payload)
		case types.EventCheckInPrompted:
			payload["session_id"] = sess.ID
			payload["window_seconds"] = int(s.policy.CheckInWindow / time.Second)
			s.push(ctx, sess.UserID, types.WSCheckInPrompt, payload)
		case types.EventGentleAlertSent:
			s.alert(ctx, sess, types.AlertGentleCheckIn)
			s.push(ctx, sess.UserID, types.WSGentleAlertSent, payload)
		case types.EventSafetyCheckPrompted:
			payload["session_id"] = sess.ID
			payload["window_seconds"] = int(s.policy.SafetyWindow / time.Second)
			s.push(ctx, sess.UserID, types.WSSafetyCheckPrompt, payload)
		case types.EventEmergencyAlertSent:
			s.alert(ctx, sess, types.AlertEmergency)
			s.push(ctx, sess.UserID, types.WSEmergencyAlertSent, payload)
		case types.EventSessionEnded:
			metrics.SessionsTotal.WithLabelValues(serviceName, string(types.SessionEnded)).Inc()
			metrics.ActiveSessionsGauge.WithLabelValues(serviceName).Dec()
			s.push(ctx, sess.UserID, types.WSSessionEnded, map[string]any{"session_id": sess.ID})
		default:
			s.push(ctx, sess.UserID, types.WSSessionStatus, Snapshot(sess, sess.UpdatedAt))
		}

		if err := s.repos.event.Create(ctx, sess.ID, e.Type, payload); err != nil {
			s.l.Error(wrap.ErrorCtx(ctx, err), "failed to record session event", err, "type", e.Type)
		}
		metrics.RecordSessionEvent(serviceName, e.Type.String())
		s.l.Debug(ctx, "session event", "type", e.Type)
	}
}

// alert publishes an alert for the session's contacts. Emergency alerts go to every contact.
func (s *Service) alert(ctx context.Context, sess *models.Session, kind types.AlertKind) {
	ctx = wrap.WithAction(ctx, types.ActionAlertPublished)

	if kind == types.AlertLocationUpdate && sess.LastLocation == nil {
		s.l.Warn(ctx, "ping skipped: no known location")
		return
	}

	contacts, err := s.repos.contact.ListByUser(ctx, sess.UserID)
	if err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to load contacts", err)
		return
	}

	recipients := selectRecipients(contacts, sess.ContactIDs, kind == types.AlertEmergency)
	if len(recipients) == 0 {
		s.l.Warn(ctx, "alert skipped: no contacts", "kind", kind)
		return
	}

	req := models.AlertRequest{
		ID:         uuid.New(),
		Kind:       kind,
		SessionID:  sess.ID,
		UserID:     sess.UserID,
		UserName:   sess.UserName,
		Recipients: recipients,
		Location:   sess.LastLocation,
		CreatedAt:  sess.UpdatedAt,
	}
	if sess.Route != nil {
		req.RouteName = sess.Route.Name
		if progress := Snapshot(sess, sess.UpdatedAt).RouteProgress; progress != nil {
			eta := progress.RemainingMinutes
			req.ETAMinutes = &eta
		}
	}

	if err := s.publisher.PublishAlert(ctx, req); err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to publish alert", err, "kind", kind)
		return
	}
	s.l.Info(ctx, "alert published", "kind", kind, "recipients", len(recipients))
}

// selectRecipients keeps the selected contacts; selected IDs of deleted contacts are skipped.
// An empty selection means every contact.
func selectRecipients(contacts []models.TrustedContact, selected []uuid.UUID, all bool) []models.Recipient {
	pick := make(map[uuid.UUID]struct{}, len(selected))
	for _, id := range selected {
		pick[id] = struct{}{}
	}

	out := make([]models.Recipient, 0, len(contacts))
	for _, c := range contacts {
		if _, ok := pick[c.ID]; all || len(pick) == 0 || ok {
			out = append(out, c.Recipient())
		}
	}
	return out
}

func (s *Service) push(ctx context.Context, userID uuid.UUID, event types.WSEvent, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendToUser(ctx, userID, models.WSMessage{Type: event, Data: data}); err != nil {
		// the user is simply not connected most of the time
		s.l.Debug(ctx, "websocket push skipped", "type", event, "reason", err.Error())
	}
}
