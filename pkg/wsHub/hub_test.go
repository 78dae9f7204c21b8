package ws

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/niva/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serverConn starts a websocket server and returns the server side of one connection
// together with the client side.
func serverConn(t *testing.T, userID uuid.UUID) (*Conn, *websocket.Conn) {
	t.Helper()

	connCh := make(chan *Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		connCh <- NewConn(context.Background(), userID, c)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case c := <-connCh:
		return c, client
	case <-time.After(2 * time.Second):
		t.Fatal("server connection not established")
		return nil, nil
	}
}

func TestHub_SendTo(t *testing.T) {
	hub := NewConnHub("test", logger.New(io.Discard, "test", logger.LevelError))
	userID := uuid.New()

	conn, client := serverConn(t, userID)
	require.NoError(t, hub.Add(conn))
	assert.Equal(t, 1, hub.Count())

	require.NoError(t, hub.SendTo(userID, map[string]string{"type": "ping_sent"}))

	var got map[string]string
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, "ping_sent", got["type"])

	assert.ErrorIs(t, hub.SendTo(uuid.New(), "x"), ErrConnIsNotFound)
}

func TestHub_ReplaceAndRemove(t *testing.T) {
	hub := NewConnHub("test", logger.New(io.Discard, "test", logger.LevelError))
	userID := uuid.New()

	first, _ := serverConn(t, userID)
	second, _ := serverConn(t, userID)

	require.NoError(t, hub.Add(first))
	require.NoError(t, hub.Add(second))
	assert.Equal(t, 1, hub.Count())

	// the replaced connection is closed
	assert.ErrorIs(t, first.Send("x"), ErrConnClosed)

	// removing a stale connection keeps the current one
	hub.Remove(first)
	assert.Equal(t, 1, hub.Count())

	hub.Remove(second)
	assert.Equal(t, 0, hub.Count())
	assert.Error(t, hub.Add(nil))
}

func TestHub_Close(t *testing.T) {
	hub := NewConnHub("test", logger.New(io.Discard, "test", logger.LevelError))

	conn, _ := serverConn(t, uuid.New())
	require.NoError(t, hub.Add(conn))

	hub.Close()
	assert.Equal(t, 0, hub.Count())

	select {
	case <-conn.Done():
	default:
		t.Fatal("connection not closed")
	}
}
