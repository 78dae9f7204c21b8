package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_InjectsLogCtx(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "companion-service", LevelDebug)

	ctx := wrap.WithLogCtx(context.Background(), wrap.LogCtx{
		Action:    "check_in",
		UserID:    "user-1",
		RequestID: "req-1",
		SessionID: "session-1",
	})
	l.Info(ctx, "checked in")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "checked in", line["message"])
	assert.Equal(t, "companion-service", line["service"])
	assert.Equal(t, "check_in", line["action"])
	assert.Equal(t, "user-1", line["user_id"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "session-1", line["session_id"])
	assert.Contains(t, line, "timestamp")
}

func TestLogger_ErrorRestoresWrappedCtx(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test", LevelDebug)

	inner := wrap.WithAction(context.Background(), "send_sms")
	err := wrap.Error(inner, errors.New("twilio down"))

	l.Error(wrap.ErrorCtx(context.Background(), err), "dispatch failed", err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "send_sms", line["action"])
	assert.Equal(t, "dispatch failed", line["message"])
	errGroup, ok := line["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "twilio down", errGroup["msg"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test", LevelWarn)

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	l.Warn(context.Background(), "shown")
	assert.NotZero(t, buf.Len())
}

func TestValidateLogLevel(t *testing.T) {
	assert.True(t, ValidateLogLevel(LevelInfo))
	assert.False(t, ValidateLogLevel("TRACE"))
}
