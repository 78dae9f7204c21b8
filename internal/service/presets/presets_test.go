package presets

import (
	"context"
	"io"
	"testing"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct{ created []*models.CustomSession }

func (m *memRepo) Create(_ context.Context, p *models.CustomSession) error {
	m.created = append(m.created, p)
	return nil
}
func (m *memRepo) ListByUser(context.Context, uuid.UUID) ([]models.CustomSession, error) {
	return nil, nil
}
func (m *memRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type contactList []models.TrustedContact

func (c contactList) ListByUser(context.Context, uuid.UUID) ([]models.TrustedContact, error) {
	return c, nil
}

type routeMap map[uuid.UUID]*models.SavedRoute

func (r routeMap) Get(_ context.Context, _ uuid.UUID, id uuid.UUID) (*models.SavedRoute, error) {
	route, ok := r[id]
	if !ok {
		return nil, types.ErrRouteNotFound
	}
	return route, nil
}

func TestCreate(t *testing.T) {
	userID := uuid.New()
	contact := models.TrustedContact{ID: uuid.New(), UserID: userID}
	route := &models.SavedRoute{ID: uuid.New(), Name: "Gym", EstimatedTime: 20}

	repo := &memRepo{}
	svc := New(repo, contactList{contact}, routeMap{route.ID: route}, logger.New(io.Discard, "test", logger.LevelError))

	p := &models.CustomSession{UserID: userID, Name: "Gym", PingInterval: 2, CheckInInterval: 10, SelectedContacts: []uuid.UUID{contact.ID}}
	require.NoError(t, svc.Create(context.Background(), p, &route.ID))
	assert.Equal(t, "Gym", p.Route.Name)
	assert.Len(t, repo.created, 1)

	bad := &models.CustomSession{UserID: userID, SelectedContacts: []uuid.UUID{uuid.New()}}
	assert.ErrorIs(t, svc.Create(context.Background(), bad, nil), types.ErrContactNotFound)

	missing := uuid.New()
	assert.ErrorIs(t, svc.Create(context.Background(), &models.CustomSession{UserID: userID}, &missing), types.ErrRouteNotFound)
}
