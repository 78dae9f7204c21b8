package companion

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/Temutjin2k/niva/pkg/metrics"
	"github.com/Temutjin2k/niva/pkg/trm"
	"github.com/google/uuid"
)

const serviceName = "companion-service"

/*
Service runs companion sessions: it owns the in-memory table of active sessions,
applies user operations and engine ticks to it, persists every transition and
carries out the resulting side effects (events, alerts, websocket pushes).
*/
type Service struct {
	repos     repos
	publisher AlertPublisher
	notifier  UserNotifier
	geocoder  GeoCoder
	trm       trm.TxManager
	policy    Policy
	now       func() time.Time
	l         logger.Logger

	mu     sync.Mutex
	active map[uuid.UUID]*models.Session // by session id
	byUser map[uuid.UUID]uuid.UUID       // user id -> session id, uuid.Nil while starting
}

type repos struct {
	session  SessionRepo
	event    SessionEventRepo
	location LocationRepo
	contact  ContactRepo
	route    RouteRepo
	preset   PresetRepo
	user     UserRepo
}

// New returns a new instance of the companion service with all dependencies injected.
// geocoder may be nil.
func New(sessionRepo SessionRepo, eventRepo SessionEventRepo, locationRepo LocationRepo, contactRepo ContactRepo, routeRepo RouteRepo, presetRepo PresetRepo, userRepo UserRepo, publisher AlertPublisher, notifier UserNotifier, geocoder GeoCoder, trm trm.TxManager, policy Policy, l logger.Logger) *Service {
	return &Service{
		repos: repos{
			session:  sessionRepo,
			event:    eventRepo,
			location: locationRepo,
			contact:  contactRepo,
			route:    routeRepo,
			preset:   presetRepo,
			user:     userRepo,
		},
		publisher: publisher,
		notifier:  notifier,
		geocoder:  geocoder,
		trm:       trm,
		policy:    policy,
		now:       time.Now,
		l:         l,
		active:    make(map[uuid.UUID]*models.Session),
		byUser:    make(map[uuid.UUID]uuid.UUID),
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// StartRequest describes a new companion session.
type StartRequest struct {
	Duration   *int // minutes
	RouteID    *uuid.UUID
	PresetID   *uuid.UUID
	ContactIDs []uuid.UUID
	Location   *models.Location
}

// Start begins a companion session for the user.
// A preset provides defaults for the duration, the route and the contacts; explicit values win.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, req StartRequest) (*models.SessionSnapshot, error) {
	const op = "CompanionService.Start"
	ctx = wrap.WithUserID(ctx, userID.String())

	if req.Duration != nil && (*req.Duration < 1 || *req.Duration > s.policy.MaxDuration) {
		return nil, wrap.Error(ctx, types.ErrInvalidDuration)
	}

	// reserve the user's slot so concurrent starts cannot both succeed
	s.mu.Lock()
	if _, ok := s.byUser[userID]; ok {
		s.mu.Unlock()
		return nil, wrap.Error(ctx, types.ErrSessionAlreadyActive)
	}
	s.byUser[userID] = uuid.Nil
	s.mu.Unlock()

	session, err := s.buildSession(ctx, userID, req)
	if err == nil {
		err = s.trm.Do(ctx, func(ctx context.Context) error {
			if err := s.repos.session.Create(ctx, session); err != nil {
				return err
			}
			if err := s.repos.event.Create(ctx, session.ID, types.EventSessionStarted, startedPayload(session)); err != nil {
				return err
			}
			if session.Route != nil {
				if err := s.repos.route.Touch(ctx, session.Route.ID, session.StartedAt); err != nil {
					return err
				}
			}
			if session.Preset != nil {
				if err := s.repos.preset.Touch(ctx, session.Preset.ID, session.StartedAt); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			err = fmt.Errorf("%s: %w", op, err)
		}
	}

	s.mu.Lock()
	if err != nil {
		delete(s.byUser, userID)
		s.mu.Unlock()
		return nil, wrap.Error(ctx, err)
	}
	s.active[session.ID] = session
	s.byUser[userID] = session.ID
	snap := Snapshot(session.Clone(), session.StartedAt)
	s.mu.Unlock()

	ctx = wrap.WithSessionID(ctx, session.ID.String())
	metrics.SessionsTotal.WithLabelValues(serviceName, string(types.SessionActive)).Inc()
	metrics.ActiveSessionsGauge.WithLabelValues(serviceName).Inc()
	metrics.RecordSessionEvent(serviceName, types.EventSessionStarted.String())

	if req.Location != nil {
		s.storeLocation(ctx, snap.Session, *req.Location, snap.Now)
	}
	s.push(ctx, userID, types.WSSessionStatus, snap)

	s.l.Info(ctx, "companion session started", "duration", session.Duration, "contacts", len(session.ContactIDs))

	return snap, nil
}

func (s *Service) buildSession(ctx context.Context, userID uuid.UUID, req StartRequest) (*models.Session, error) {
	const op = "CompanionService.buildSession"

	user, err := s.repos.user.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contacts, err := s.repos.contact.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(contacts) == 0 {
		return nil, types.ErrNoContacts
	}

	now := s.now()
	session := &models.Session{
		ID:            uuid.New(),
		UserID:        userID,
		UserName:      user.DisplayName(),
		Status:        types.SessionActive,
		StartedAt:     now,
		LastPingAt:    &now,
		LastCheckInAt: &now,
		Duration:      req.Duration,
		ContactIDs:    req.ContactIDs,
		LastLocation:  req.Location,
		Prompt:        types.PromptNone,
		BaseIntervals: DefaultIntervals(),
		UpdatedAt:     now,
	}

	if req.PresetID != nil {
		preset, err := s.repos.preset.Get(ctx, userID, *req.PresetID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		session.Preset = preset.Snapshot()
		session.BaseIntervals = models.Intervals{PingInterval: preset.PingInterval, CheckInInterval: preset.CheckInInterval}
		if session.Duration == nil {
			session.Duration = preset.Duration
		}
		if len(session.ContactIDs) == 0 {
			session.ContactIDs = preset.SelectedContacts
		}
		if req.RouteID == nil && preset.Route != nil {
			session.Route = preset.Route
		}
	}

	if req.RouteID != nil {
		route, err := s.repos.route.Get(ctx, userID, *req.RouteID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		session.Route = route.Snapshot()
		if session.Preset == nil {
			session.BaseIntervals = RouteIntervals(route.EstimatedTime)
		}
	}

	// contacts chosen for the session must belong to the user
	for _, id := range req.ContactIDs {
		if !slices.ContainsFunc(contacts, func(c models.TrustedContact) bool { return c.ID == id }) {
			return nil, types.ErrContactNotFound
		}
	}

	if session.Duration != nil {
		ends := now.Add(time.Duration(*session.Duration) * time.Minute)
		session.EndsAt = &ends
	}

	return session, nil
}

func startedPayload(s *models.Session) map[string]any {
	payload := map[string]any{
		"duration":       s.Duration,
		"base_intervals": s.BaseIntervals,
		"contact_ids":    s.ContactIDs,
	}
	if s.Route != nil {
		payload["route"] = s.Route
	}
	if s.Preset != nil {
		payload["preset"] = s.Preset
	}
	return payload
}

// End stops the session.
func (s *Service) End(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error) {
	return s.mutate(ctx, userID, sessionID, "end_session", func(sess *models.Session, now time.Time) ([]Effect, error) {
		sess.Status = types.SessionEnded
		sess.EndedAt = &now
		sess.ClearPrompt()
		return []Effect{{Type: types.EventSessionEnded}}, nil
	})
}

// CheckIn records that the user is fine and answers an open check-in prompt.
func (s *Service) CheckIn(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error) {
	return s.mutate(ctx, userID, sessionID, "check_in", func(sess *models.Session, now time.Time) ([]Effect, error) {
		if err := CheckIn(sess, now); err != nil {
			return nil, err
		}
		return []Effect{{Type: types.EventCheckedIn}}, nil
	})
}

// ConfirmSafe answers the safety check and extends the session.
func (s *Service) ConfirmSafe(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error) {
	return s.mutate(ctx, userID, sessionID, "confirm_safe", func(sess *models.Session, now time.Time) ([]Effect, error) {
		if err := ConfirmSafe(sess, now, s.policy); err != nil {
			return nil, err
		}
		return []Effect{{Type: types.EventSafetyConfirmed}}, nil
	})
}

// Ping shares the location with the session's contacts right away.
func (s *Service) Ping(ctx context.Context, userID, sessionID uuid.UUID, loc *models.Location) (*models.SessionSnapshot, error) {
	if loc != nil {
		s.resolveAddress(ctx, loc)
	}
	snap, err := s.mutate(ctx, userID, sessionID, "manual_ping", func(sess *models.Session, now time.Time) ([]Effect, error) {
		if loc != nil {
			l := *loc
			sess.LastLocation = &l
		}
		sess.LastPingAt = &now
		return []Effect{{Type: types.EventPingSent, Intervals: CurrentIntervals(sess, now)}}, nil
	})
	if err == nil && loc != nil {
		s.storeLocation(ctx, snap.Session, *loc, snap.Now)
	}
	return snap, err
}

// UpdateLocation records the user's current position.
func (s *Service) UpdateLocation(ctx context.Context, userID, sessionID uuid.UUID, loc models.Location) (*models.SessionSnapshot, error) {
	s.resolveAddress(ctx, &loc)
	snap, err := s.mutate(ctx, userID, sessionID, "update_location", func(sess *models.Session, _ time.Time) ([]Effect, error) {
		l := loc
		sess.LastLocation = &l
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	s.storeLocation(ctx, snap.Session, loc, snap.Now)
	return snap, nil
}

// Status returns the read model of a session, active or not.
func (s *Service) Status(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error) {
	const op = "CompanionService.Status"
	ctx = wrap.WithSessionID(ctx, sessionID.String())

	s.mu.Lock()
	if sess, ok := s.active[sessionID]; ok {
		if sess.UserID != userID {
			s.mu.Unlock()
			return nil, wrap.Error(ctx, types.ErrForbidden)
		}
		snap := Snapshot(sess.Clone(), s.now())
		s.mu.Unlock()
		return snap, nil
	}
	s.mu.Unlock()

	sess, err := s.repos.session.Get(ctx, sessionID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if sess.UserID != userID {
		return nil, wrap.Error(ctx, types.ErrForbidden)
	}

	at := s.now()
	if sess.EndedAt != nil {
		at = *sess.EndedAt
	}
	return Snapshot(sess, at), nil
}

// Active returns the user's running session.
func (s *Service) Active(ctx context.Context, userID uuid.UUID) (*models.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUser[userID]
	if !ok || id == uuid.Nil {
		return nil, wrap.Error(ctx, types.ErrNoActiveSession)
	}
	sess, ok := s.active[id]
	if !ok || !sess.IsActive() {
		return nil, wrap.Error(ctx, types.ErrNoActiveSession)
	}
	return Snapshot(sess.Clone(), s.now()), nil
}

// Events returns the history of a session.
func (s *Service) Events(ctx context.Context, userID, sessionID uuid.UUID, filters models.Filters) ([]models.SessionEventRecord, models.Metadata, error) {
	const op = "CompanionService.Events"
	ctx = wrap.WithSessionID(ctx, sessionID.String())

	if _, err := s.Status(ctx, userID, sessionID); err != nil {
		return nil, models.Metadata{}, err
	}

	events, meta, err := s.repos.event.List(ctx, sessionID, filters)
	if err != nil {
		return nil, models.Metadata{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return events, meta, nil
}

// mutate applies fn to an active session under the engine lock, persists the result
// and carries out the returned effects.
func (s *Service) mutate(ctx context.Context, userID, sessionID uuid.UUID, action string, fn func(sess *models.Session, now time.Time) ([]Effect, error)) (*models.SessionSnapshot, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{
		Action:    action,
		UserID:    userID.String(),
		SessionID: sessionID.String(),
	})

	s.mu.Lock()
	sess, ok := s.active[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, s.inactiveError(ctx, userID, sessionID)
	}
	if sess.UserID != userID {
		s.mu.Unlock()
		return nil, wrap.Error(ctx, types.ErrForbidden)
	}

	now := s.now()
	prev := sess.Clone()
	effects, err := fn(sess, now)
	if err != nil {
		*sess = *prev
		s.mu.Unlock()
		return nil, wrap.Error(ctx, err)
	}
	sess.UpdatedAt = now

	snapshot := sess.Clone()
	s.mu.Unlock()

	if err := s.repos.session.Update(ctx, snapshot); err != nil {
		s.mu.Lock()
		// a tick may have moved the session on in the meantime
		if s.active[sessionID] == sess && sess.UpdatedAt.Equal(now) {
			*sess = *prev
		}
		s.mu.Unlock()
		return nil, wrap.Error(ctx, fmt.Errorf("failed to persist session: %w", err))
	}

	// an ended session leaves the table only once the row says so
	if !snapshot.IsActive() {
		s.mu.Lock()
		if s.active[sessionID] == sess {
			delete(s.active, sessionID)
		}
		if s.byUser[userID] == sessionID {
			delete(s.byUser, userID)
		}
		s.mu.Unlock()
	}

	s.apply(ctx, snapshot, effects)

	return Snapshot(snapshot, now), nil
}

// inactiveError distinguishes a finished or foreign session from an unknown one.
func (s *Service) inactiveError(ctx context.Context, userID, sessionID uuid.UUID) error {
	sess, err := s.repos.session.Get(ctx, sessionID)
	if err != nil {
		return wrap.Error(ctx, err)
	}
	if sess.UserID != userID {
		return wrap.Error(ctx, types.ErrForbidden)
	}
	return wrap.Error(ctx, types.ErrSessionEnded)
}

func (s *Service) resolveAddress(ctx context.Context, loc *models.Location) {
	if s.geocoder == nil || loc.Address != "" {
		return
	}
	addr, err := s.geocoder.GetAddress(ctx, loc.Longitude, loc.Latitude)
	if err != nil {
		s.l.Warn(ctx, "failed to resolve address", "error", err.Error())
		return
	}
	loc.Address = addr
}

func (s *Service) storeLocation(ctx context.Context, sess *models.Session, loc models.Location, at time.Time) {
	rec := models.LocationRecord{
		SessionID:  sess.ID,
		UserID:     sess.UserID,
		Location:   loc,
		RecordedAt: at,
	}
	if err := s.repos.location.Create(ctx, rec); err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to store location", err)
	}
}
