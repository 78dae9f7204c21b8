package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo     UserRepo
	tokenService TokenProvider
	log          logger.Logger
}

func NewAuthService(userRepo UserRepo, tokenService TokenProvider, log logger.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
		log:          log,
	}
}

// Register creates a user with the USER role.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	ctx = wrap.WithAction(ctx, types.ActionRegister)

	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, wrap.Error(ctx, types.ErrEmailTaken)
	} else if !errors.Is(err, types.ErrUserNotFound) {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to check email: %w", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		ID:    uuid.New(),
		Name:  strings.TrimSpace(name),
		Email: email,
		Role:  types.UserRoleUser,
	}
	user.SetPassword(string(hash))

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to save user: %w", err))
	}

	s.log.Info(wrap.WithUserID(ctx, user.ID.String()), "user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	ctx = wrap.WithAction(ctx, types.ActionLogin)

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return nil, wrap.Error(ctx, ErrInvalidCredentials)
		}
		return nil, wrap.Error(ctx, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.GetPassword()), []byte(password)); err != nil {
		return nil, wrap.Error(ctx, ErrInvalidCredentials)
	}

	tokens, err := s.tokenService.GenerateTokens(ctx, user)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	return tokens, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	return s.tokenService.Refresh(ctx, refreshToken)
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return user, nil
}

// RoleCheck validates an access token and loads its user.
func (s *AuthService) RoleCheck(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokenService.Validate(ctx, token)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if claims.TokenType != models.AccessToken {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	return user, nil
}
