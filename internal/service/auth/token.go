package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/hasher"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/Temutjin2k/niva/pkg/trm"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenService struct {
	userRepo    UserRepo
	refreshRepo RefreshTokenRepo
	txManager   trm.TxManager
	RefreshTTL  time.Duration
	AccessTTL   time.Duration
	secret      []byte
	now         func() time.Time
	log         logger.Logger
}

// NewTokenService returns a HS256 token service. refreshRepo may be nil for services that only validate access tokens.
func NewTokenService(secret string, userRepo UserRepo, refreshRepo RefreshTokenRepo, txManager trm.TxManager, refreshTTL, accessTTL time.Duration, log logger.Logger) *TokenService {
	return &TokenService{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		txManager:   txManager,
		RefreshTTL:  refreshTTL,
		AccessTTL:   accessTTL,
		secret:      []byte(secret),
		now:         func() time.Time { return time.Now().UTC() },
		log:         log,
	}
}

// GenerateTokens creates a new pair of access and refresh tokens for the given user.
// Only the SHA-256 hash of the refresh token is stored.
func (s *TokenService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	ctx = wrap.WithAction(ctx, types.ActionGenerateTokens)
	if user == nil {
		return nil, wrap.Error(ctx, errors.New("user is nil"))
	}

	issuedAt := s.now()
	refreshID := uuid.New()

	accessExp := issuedAt.Add(s.AccessTTL)
	refreshExp := issuedAt.Add(s.RefreshTTL)

	accessToken, err := s.sign(newClaims(user, models.AccessToken, uuid.New(), issuedAt, accessExp))
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	refreshToken, err := s.sign(newClaims(user, models.RefreshToken, refreshID, issuedAt, refreshExp))
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if s.refreshRepo != nil {
		record := &models.RefreshTokenRecord{
			ID:        refreshID,
			UserID:    user.ID,
			TokenHash: hasher.Hash(refreshToken),
			ExpiresAt: refreshExp,
			CreatedAt: issuedAt,
		}

		if err := s.refreshRepo.Save(ctx, record); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("failed to persist refresh token: %w", err))
		}
	}

	return &models.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh rotates the token pair and revokes the presented refresh token.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	ctx = wrap.WithAction(ctx, types.ActionRefreshToken)

	claims, err := s.Validate(ctx, refreshToken)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if claims.TokenType != models.RefreshToken || s.refreshRepo == nil {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	var pair *models.TokenPair
	txErr := s.txManager.Do(ctx, func(txCtx context.Context) error {
		record, err := s.refreshRepo.Get(txCtx, tokenID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return ErrInvalidToken
			}
			return fmt.Errorf("failed to load refresh token record: %w", err)
		}

		if record.Revoked || record.TokenHash != hasher.Hash(refreshToken) {
			return ErrInvalidToken
		}

		if err := s.refreshRepo.MarkUsed(txCtx, record.ID); err != nil {
			return fmt.Errorf("failed to mark refresh token as used: %w", err)
		}

		if s.now().After(record.ExpiresAt) {
			return ErrExpToken
		}

		user, err := s.userRepo.Get(txCtx, claims.UserID)
		if err != nil {
			return fmt.Errorf("failed to load user for refresh token: %w", err)
		}

		pair, err = s.GenerateTokens(txCtx, user)
		return err
	})
	if txErr != nil {
		return nil, wrap.Error(ctx, txErr)
	}

	return pair, nil
}

// Validate parses a signed token and returns its claims.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.CustomClaims, error) {
	claims := &models.CustomClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}

	if !models.IsValidTokenType(claims.TokenType) || claims.UserID == uuid.Nil {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	return claims, nil
}

func (s *TokenService) sign(claims *models.CustomClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func newClaims(user *models.User, typ string, id uuid.UUID, issuedAt, exp time.Time) *models.CustomClaims {
	return &models.CustomClaims{
		UserID:    user.ID,
		TokenType: typ,
		Email:     user.Email,
		Role:      user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}
