package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, c *models.TrustedContact) error
	Update(ctx context.Context, c *models.TrustedContact) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.TrustedContact, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TrustedContact, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Service manages a user's trusted contacts.
type Service struct {
	repo Repo
	l    logger.Logger
}

func New(repo Repo, l logger.Logger) *Service {
	return &Service{repo: repo, l: l}
}

func (s *Service) Create(ctx context.Context, c *models.TrustedContact) error {
	const op = "ContactService.Create"

	normalize(c)
	c.ID = uuid.New()
	if err := s.repo.Create(ctx, c); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.l.Info(ctx, "trusted contact added", "contact_id", c.ID)
	return nil
}

func (s *Service) Update(ctx context.Context, c *models.TrustedContact) error {
	const op = "ContactService.Update"

	if _, err := s.repo.Get(ctx, c.UserID, c.ID); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	normalize(c)
	if err := s.repo.Update(ctx, c); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.TrustedContact, error) {
	contacts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("ContactService.List: %w", err))
	}
	return contacts, nil
}

// Delete removes a contact. Sessions and presets that selected it simply skip it later.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return wrap.Error(ctx, fmt.Errorf("ContactService.Delete: %w", err))
	}
	s.l.Info(ctx, "trusted contact removed", "contact_id", id)
	return nil
}

func normalize(c *models.TrustedContact) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Relationship = strings.TrimSpace(c.Relationship)
}
