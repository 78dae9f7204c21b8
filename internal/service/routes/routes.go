package routes

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, r *models.SavedRoute) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.SavedRoute, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedRoute, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Service manages saved routes.
type Service struct {
	repo Repo
	l    logger.Logger
}

func New(repo Repo, l logger.Logger) *Service {
	return &Service{repo: repo, l: l}
}

// Create stores a route. Without an explicit estimate the route takes the sum of its waypoints.
func (s *Service) Create(ctx context.Context, r *models.SavedRoute) error {
	const op = "RouteService.Create"

	r.ID = uuid.New()
	if r.EstimatedTime <= 0 {
		r.EstimatedTime = r.TotalWaypointMinutes()
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.l.Info(ctx, "route saved", "route_id", r.ID, "estimated_time", r.EstimatedTime)
	return nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*models.SavedRoute, error) {
	r, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("RouteService.Get: %w", err))
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.SavedRoute, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("RouteService.List: %w", err))
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return wrap.Error(ctx, fmt.Errorf("RouteService.Delete: %w", err))
	}
	return nil
}
