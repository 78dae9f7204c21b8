package models

import (
	"context"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	password  string         `json:"-"`
	Role      types.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at,omitzero"`
}

func (u *User) GetPassword() string {
	return u.password
}

func (u *User) SetPassword(password string) {
	u.password = password
}

// DisplayName is the name used in messages to trusted contacts.
func (u *User) DisplayName() string {
	if u == nil || u.Name == "" {
		return DefaultUserName
	}
	return u.Name
}

// DefaultUserName is used in alerts when the user has no name set.
const DefaultUserName = "Your friend"

func AnonymousUser() *User {
	return &User{Role: types.AnonymousRole}
}

func (u *User) IsAnonymous() bool {
	return u == nil || u.ID == uuid.Nil
}

type userCtxKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the user stored by WithUser, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}
