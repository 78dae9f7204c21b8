package presets

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, p *models.CustomSession) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CustomSession, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ContactLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TrustedContact, error)
}

type RouteGetter interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*models.SavedRoute, error)
}

// Service manages custom session presets.
type Service struct {
	repo     Repo
	contacts ContactLister
	routes   RouteGetter
	l        logger.Logger
}

func New(repo Repo, contacts ContactLister, routes RouteGetter, l logger.Logger) *Service {
	return &Service{repo: repo, contacts: contacts, routes: routes, l: l}
}

// Create stores a preset. routeID, when set, is snapshotted into the preset.
func (s *Service) Create(ctx context.Context, p *models.CustomSession, routeID *uuid.UUID) error {
	const op = "PresetService.Create"

	contacts, err := s.contacts.ListByUser(ctx, p.UserID)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	owned := make(map[uuid.UUID]struct{}, len(contacts))
	for _, c := range contacts {
		owned[c.ID] = struct{}{}
	}
	for _, id := range p.SelectedContacts {
		if _, ok := owned[id]; !ok {
			return wrap.Error(ctx, types.ErrContactNotFound)
		}
	}

	if routeID != nil {
		route, err := s.routes.Get(ctx, p.UserID, *routeID)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		p.Route = route.Snapshot()
	}

	p.ID = uuid.New()
	if err := s.repo.Create(ctx, p); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.l.Info(ctx, "custom session saved", "preset_id", p.ID)
	return nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.CustomSession, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("PresetService.List: %w", err))
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return wrap.Error(ctx, fmt.Errorf("PresetService.Delete: %w", err))
	}
	return nil
}
