package wrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errBase = errors.New("base")

func TestWithLogCtx_MergesExisting(t *testing.T) {
	ctx := WithUserID(context.Background(), "u1")
	ctx = WithLogCtx(ctx, LogCtx{Action: "start_session"})

	lc := fromContext(ctx)
	assert.Equal(t, "u1", lc.UserID)
	assert.Equal(t, "start_session", lc.Action)
}

func TestError_KeepsChain(t *testing.T) {
	ctx := WithAction(context.Background(), "a1")
	err := Error(ctx, errBase)

	assert.ErrorIs(t, err, errBase)
	assert.Nil(t, Error(ctx, nil))

	ctx = WithAction(ctx, "a2")
	again := Error(ctx, err)
	assert.ErrorIs(t, again, errBase)

	restored := ErrorCtx(context.Background(), again)
	assert.Equal(t, "a2", fromContext(restored).Action)
}

func TestGetRequestID(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Equal(t, "r1", GetRequestID(WithRequestID(context.Background(), "r1")))
}
