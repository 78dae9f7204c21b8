package wshandler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	ws "github.com/Temutjin2k/niva/pkg/wsHub"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	users map[string]*models.User
}

func (f fakeAuth) RoleCheck(_ context.Context, token string) (*models.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, types.ErrUnauthorized
}

type fakeSessions struct {
	mu        sync.Mutex
	sessionID uuid.UUID
	calls     []string
	lastLoc   *models.Location
}

func (f *fakeSessions) record(call string) *models.SessionSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return &models.SessionSnapshot{Session: &models.Session{ID: f.sessionID}}
}

func (f *fakeSessions) Active(_ context.Context, _ uuid.UUID) (*models.SessionSnapshot, error) {
	return &models.SessionSnapshot{Session: &models.Session{ID: f.sessionID}}, nil
}

func (f *fakeSessions) CheckIn(_ context.Context, _, _ uuid.UUID) (*models.SessionSnapshot, error) {
	return f.record(msgCheckIn), nil
}

func (f *fakeSessions) ConfirmSafe(_ context.Context, _, _ uuid.UUID) (*models.SessionSnapshot, error) {
	return nil, types.ErrNoPrompt
}

func (f *fakeSessions) Ping(_ context.Context, _, _ uuid.UUID, loc *models.Location) (*models.SessionSnapshot, error) {
	f.mu.Lock()
	f.lastLoc = loc
	f.mu.Unlock()
	return f.record(msgPing), nil
}

func (f *fakeSessions) UpdateLocation(_ context.Context, _, _ uuid.UUID, loc models.Location) (*models.SessionSnapshot, error) {
	return f.record(msgLocation), nil
}

func setup(t *testing.T) (*httptest.Server, *ws.ConnectionHub, *models.User, *fakeSessions) {
	t.Helper()

	log := logger.New(io.Discard, "test", logger.LevelError)
	user := &models.User{ID: uuid.New(), Role: types.UserRoleUser}
	sessions := &fakeSessions{sessionID: uuid.New()}
	hub := ws.NewConnHub("test", log)

	opts := DefaultOptions()
	opts.AuthTimeout = 200 * time.Millisecond
	h := NewSessionWS(hub, fakeAuth{users: map[string]*models.User{"good": user}}, sessions, opts, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/users/{user_id}", h.Serve)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	return srv, hub, user, sessions
}

func dial(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/users/"+userID.String(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func read(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	require.NoError(t, c.ReadJSON(&msg))
	return msg
}

func TestSessionWS_Flow(t *testing.T) {
	srv, hub, user, sessions := setup(t)
	c := dial(t, srv, user.ID)

	require.NoError(t, c.WriteJSON(map[string]string{"type": "auth", "token": "Bearer good"}))
	assert.Equal(t, "session_status", read(t, c)["type"])
	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, c.WriteJSON(map[string]any{"type": "check_in"}))
	assert.Equal(t, "session_status", read(t, c)["type"])

	require.NoError(t, c.WriteJSON(map[string]any{"type": "ping", "data": map[string]float64{"latitude": 43.2, "longitude": 76.9}}))
	assert.Equal(t, "session_status", read(t, c)["type"])

	require.NoError(t, c.WriteJSON(map[string]any{"type": "safety_ok"}))
	errMsg := read(t, c)
	assert.Equal(t, "error", errMsg["type"])

	require.NoError(t, c.WriteJSON(map[string]any{"type": "location", "data": map[string]float64{"latitude": 120}}))
	assert.Equal(t, "error", read(t, c)["type"])

	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	assert.Equal(t, []string{msgCheckIn, msgPing}, sessions.calls)
	require.NotNil(t, sessions.lastLoc)
	assert.Equal(t, 43.2, sessions.lastLoc.Latitude)
}

func TestSessionWS_RejectsBadToken(t *testing.T) {
	srv, hub, user, _ := setup(t)
	c := dial(t, srv, user.ID)

	require.NoError(t, c.WriteJSON(map[string]string{"type": "auth", "token": "Bearer bad"}))
	assert.Equal(t, "error", read(t, c)["type"])
	assert.Equal(t, 0, hub.Count())
}

func TestSessionWS_RejectsOtherUser(t *testing.T) {
	srv, _, _, _ := setup(t)
	c := dial(t, srv, uuid.New())

	require.NoError(t, c.WriteJSON(map[string]string{"type": "auth", "token": "good"}))
	msg := read(t, c)
	assert.Equal(t, "error", msg["type"])
}

func TestSessionWS_AuthTimeout(t *testing.T) {
	srv, hub, user, _ := setup(t)
	c := dial(t, srv, user.ID)

	msg := read(t, c)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, map[string]any{"error": "authentication timeout"}, msg["data"])
	assert.Equal(t, 0, hub.Count())
}
