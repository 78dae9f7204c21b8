package middleware

import (
	"context"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/pkg/logger"
)

type (
	AuthService interface {
		RoleCheck(ctx context.Context, token string) (*models.User, error)
	}

	Middleware struct {
		auth AuthService
		log  logger.Logger
	}
)

// NewMiddleware returns the middleware set. auth may be nil when Auth is not used.
func NewMiddleware(auth AuthService, log logger.Logger) *Middleware {
	return &Middleware{
		auth: auth,
		log:  log,
	}
}
