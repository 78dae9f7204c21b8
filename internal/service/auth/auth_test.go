package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byID map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return u, nil
}

type fakeRefresh struct {
	rows map[uuid.UUID]*models.RefreshTokenRecord
}

func (f *fakeRefresh) Save(_ context.Context, r *models.RefreshTokenRecord) error {
	f.rows[r.ID] = r
	return nil
}

func (f *fakeRefresh) Get(_ context.Context, id uuid.UUID) (*models.RefreshTokenRecord, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return r, nil
}

func (f *fakeRefresh) MarkUsed(_ context.Context, id uuid.UUID) error {
	f.rows[id].Revoked = true
	return nil
}

type noTx struct{}

func (noTx) Do(ctx context.Context, fn func(ctx context.Context) error) error         { return fn(ctx) }
func (noTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func setup() (*AuthService, *TokenService, *fakeUsers) {
	log := logger.New(io.Discard, "test", logger.LevelError)
	users := newFakeUsers()
	tokens := NewTokenService("secret", users, &fakeRefresh{rows: map[uuid.UUID]*models.RefreshTokenRecord{}}, noTx{}, time.Hour, time.Minute, log)
	return NewAuthService(users, tokens, log), tokens, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	user, err := svc.Register(ctx, " Dana ", "Dana@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, "Dana", user.Name)
	assert.Equal(t, types.UserRoleUser, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.GetPassword())

	_, err = svc.Register(ctx, "Other", "dana@example.com", "whatever1")
	assert.ErrorIs(t, err, types.ErrEmailTaken)

	pair, err := svc.Login(ctx, "dana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = svc.Login(ctx, "dana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRoleCheck(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Dana", "dana@example.com", "s3cret-pass")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "dana@example.com", "s3cret-pass")
	require.NoError(t, err)

	got, err := svc.RoleCheck(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.RoleCheck(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.RoleCheck(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	_, tokens, users := setup()
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "a@b.c", Role: types.UserRoleUser}
	require.NoError(t, users.Create(ctx, user))

	pair, err := tokens.GenerateTokens(ctx, user)
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }
	_, err = tokens.Validate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpToken)
}

func TestRefresh_Rotates(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Dana", "dana@example.com", "s3cret-pass")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "dana@example.com", "s3cret-pass")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// reuse of a rotated token is rejected
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// access tokens cannot refresh
	_, err = svc.Refresh(ctx, next.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
