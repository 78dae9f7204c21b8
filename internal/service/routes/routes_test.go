package routes

import (
	"context"
	"io"
	"testing"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	created []*models.SavedRoute
}

func (m *memRepo) Create(_ context.Context, r *models.SavedRoute) error {
	m.created = append(m.created, r)
	return nil
}
func (m *memRepo) Get(context.Context, uuid.UUID, uuid.UUID) (*models.SavedRoute, error) {
	return nil, nil
}
func (m *memRepo) ListByUser(context.Context, uuid.UUID) ([]models.SavedRoute, error) {
	return nil, nil
}
func (m *memRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func TestCreate_EstimatedTimeFromWaypoints(t *testing.T) {
	repo := &memRepo{}
	svc := New(repo, logger.New(io.Discard, "test", logger.LevelError))

	r := &models.SavedRoute{
		Name: "Evening run",
		Waypoints: []models.Waypoint{
			{Name: "Park", EstimatedTime: 10},
			{Name: "Bridge", EstimatedTime: 7},
			{Name: "Home", EstimatedTime: 5},
		},
	}
	require.NoError(t, svc.Create(context.Background(), r))
	assert.Equal(t, 22, r.EstimatedTime)
	assert.NotEqual(t, uuid.Nil, r.ID)

	explicit := &models.SavedRoute{Name: "Commute", EstimatedTime: 40, Waypoints: r.Waypoints}
	require.NoError(t, svc.Create(context.Background(), explicit))
	assert.Equal(t, 40, explicit.EstimatedTime)
}
