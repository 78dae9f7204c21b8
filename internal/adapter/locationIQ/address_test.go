package locationIQ

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/reverse", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		assert.Equal(t, "43.250000", r.URL.Query().Get("lat"))
		assert.Equal(t, "76.950000", r.URL.Query().Get("lon"))
		w.Write([]byte(`{"display_name":"Abay Ave, Almaty"}`))
	}))
	defer srv.Close()

	c := New("key", time.Second).WithBaseURL(srv.URL)

	addr, err := c.GetAddress(context.Background(), 76.95, 43.25)
	require.NoError(t, err)
	assert.Equal(t, "Abay Ave, Almaty", addr)
}

func TestGetAddress_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New("key", time.Second).WithBaseURL(srv.URL).GetAddress(context.Background(), 0, 0)
	assert.Error(t, err)
}
