package wshandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/Temutjin2k/niva/pkg/validator"
	ws "github.com/Temutjin2k/niva/pkg/wsHub"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	msgAuth     = "auth"
	msgCheckIn  = "check_in"
	msgSafetyOK = "safety_ok"
	msgPing     = "ping"
	msgLocation = "location"
)

type Authenticator interface {
	RoleCheck(ctx context.Context, token string) (*models.User, error)
}

type SessionService interface {
	Active(ctx context.Context, userID uuid.UUID) (*models.SessionSnapshot, error)
	CheckIn(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error)
	ConfirmSafe(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error)
	Ping(ctx context.Context, userID, sessionID uuid.UUID, loc *models.Location) (*models.SessionSnapshot, error)
	UpdateLocation(ctx context.Context, userID, sessionID uuid.UUID, loc models.Location) (*models.SessionSnapshot, error)
}

type Options struct {
	AuthTimeout time.Duration
	PingPeriod  time.Duration
	PongWait    time.Duration
}

func DefaultOptions() Options {
	return Options{
		AuthTimeout: 5 * time.Second,
		PingPeriod:  30 * time.Second,
		PongWait:    60 * time.Second,
	}
}

// SessionWS serves GET /ws/users/{user_id}.
type SessionWS struct {
	hub      *ws.ConnectionHub
	auth     Authenticator
	sessions SessionService
	upgrader websocket.Upgrader
	opts     Options
	l        logger.Logger
}

func NewSessionWS(hub *ws.ConnectionHub, auth Authenticator, sessions SessionService, opts Options, l logger.Logger) *SessionWS {
	return &SessionWS{
		hub:      hub,
		auth:     auth,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		opts: opts,
		l:    l,
	}
}

func (h *SessionWS) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_session_connect")

	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid user_id"}`, http.StatusBadRequest)
		return
	}

	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(ctx, "failed to upgrade connection", err)
		return
	}

	// the request context ends with the handler; the connection outlives it
	conn := ws.NewConn(context.WithoutCancel(ctx), userID, c)

	user, err := h.authenticate(ctx, conn, userID)
	if err != nil {
		h.l.Warn(ctx, "websocket authentication failed", "user_id", userID, "reason", err.Error())
		_ = errorResponse(conn, err.Error())
		_ = conn.Close()
		return
	}

	ctx = wrap.WithUserID(ctx, user.ID.String())
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register connection", err)
		_ = conn.Close()
		return
	}
	defer h.hub.Remove(conn)

	h.l.Info(ctx, "websocket connected")
	conn.KeepAlive(h.opts.PingPeriod, h.opts.PongWait)

	if snap, err := h.sessions.Active(ctx, user.ID); err == nil {
		_ = conn.Send(models.WSMessage{Type: types.WSSessionStatus, Data: snap})
	}

	for {
		var msg models.WSClientMessage
		if err := conn.Read(&msg, h.opts.PongWait); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				h.l.Debug(ctx, "websocket read stopped", "reason", err.Error())
			}
			h.l.Info(ctx, "websocket disconnected")
			return
		}

		snap, err := h.handle(ctx, user.ID, msg)
		if err != nil {
			h.l.Debug(wrap.ErrorCtx(ctx, err), "websocket message rejected", "type", msg.Type, "reason", err.Error())
			_ = errorResponse(conn, err.Error())
			continue
		}
		if snap != nil {
			_ = conn.Send(models.WSMessage{Type: types.WSSessionStatus, Data: snap})
		}
	}
}

// authenticate waits for the auth message and checks the token belongs to userID.
func (h *SessionWS) authenticate(ctx context.Context, conn *ws.Conn, userID uuid.UUID) (*models.User, error) {
	var msg models.WSClientMessage
	if err := conn.Read(&msg, h.opts.AuthTimeout); err != nil {
		return nil, errors.New("authentication timeout")
	}

	if msg.Type != msgAuth {
		return nil, errors.New("first message must be of type auth")
	}

	token := strings.TrimSpace(msg.Token)
	if prefix := "Bearer "; len(token) > len(prefix) && strings.EqualFold(token[:len(prefix)], prefix) {
		token = token[len(prefix):]
	}
	if token == "" {
		return nil, errors.New("token is required")
	}

	user, err := h.auth.RoleCheck(ctx, token)
	if err != nil || user == nil {
		return nil, errors.New("invalid credentials")
	}
	if user.ID != userID {
		return nil, types.ErrForbidden
	}
	return user, nil
}

type locationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

func (d locationData) Validate(v *validator.Validator) {
	v.Check(validator.Latitude(d.Latitude), "latitude", "must be between -90 and 90")
	v.Check(validator.Longitude(d.Longitude), "longitude", "must be between -180 and 180")
	v.Check(d.Accuracy >= 0, "accuracy", "must not be negative")
}

func (h *SessionWS) handle(ctx context.Context, userID uuid.UUID, msg models.WSClientMessage) (*models.SessionSnapshot, error) {
	sessionID, err := h.sessionID(ctx, userID, msg.SessionID)
	if err != nil {
		return nil, err
	}

	switch msg.Type {
	case msgCheckIn:
		return h.sessions.CheckIn(ctx, userID, sessionID)
	case msgSafetyOK:
		return h.sessions.ConfirmSafe(ctx, userID, sessionID)
	case msgPing, msgLocation:
		var loc *models.Location
		if len(msg.Data) > 0 && string(msg.Data) != "null" {
			var d locationData
			if err := json.Unmarshal(msg.Data, &d); err != nil {
				return nil, fmt.Errorf("invalid location: %w", types.ErrInvalidPayload)
			}
			v := validator.New()
			d.Validate(v)
			if !v.Valid() {
				return nil, fmt.Errorf("invalid location: %w", types.ErrInvalidPayload)
			}
			loc = &models.Location{Latitude: d.Latitude, Longitude: d.Longitude, Accuracy: d.Accuracy}
		}

		if msg.Type == msgPing {
			return h.sessions.Ping(ctx, userID, sessionID, loc)
		}
		if loc == nil {
			return nil, fmt.Errorf("location is required: %w", types.ErrInvalidPayload)
		}
		return h.sessions.UpdateLocation(ctx, userID, sessionID, *loc)
	default:
		return nil, fmt.Errorf("unknown message type %q: %w", msg.Type, types.ErrInvalidPayload)
	}
}

// sessionID resolves the session a message refers to, defaulting to the active one.
func (h *SessionWS) sessionID(ctx context.Context, userID uuid.UUID, raw string) (uuid.UUID, error) {
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid session_id: %w", types.ErrInvalidPayload)
		}
		return id, nil
	}

	snap, err := h.sessions.Active(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return snap.Session.ID, nil
}
