package contacts

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

type memRepo struct {
	items map[uuid.UUID]models.TrustedContact
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[uuid.UUID]models.TrustedContact{}}
}

func (m *memRepo) Create(_ context.Context, c *models.TrustedContact) error {
	m.items[c.ID] = *c
	return nil
}

func (m *memRepo) Update(_ context.Context, c *models.TrustedContact) error {
	m.items[c.ID] = *c
	return nil
}

func (m *memRepo) Get(_ context.Context, userID, id uuid.UUID) (*models.TrustedContact, error) {
	c, ok := m.items[id]
	if !ok || c.UserID != userID {
		return nil, types.ErrContactNotFound
	}
	return &c, nil
}

func (m *memRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.TrustedContact, error) {
	var out []models.TrustedContact
	for _, c := range m.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	if _, err := m.Get(context.Background(), userID, id); err != nil {
		return err
	}
	delete(m.items, id)
	return nil
}

func TestCreate_Normalizes(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, logger.New(io.Discard, "test", logger.LevelError))
	userID := uuid.New()

	c := &models.TrustedContact{UserID: userID, Name: "  Mom ", Phone: " +77010000000 ", Email: " Mom@Mail.KZ "}
	require.NoError(t, svc.Create(context.Background(), c))

	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "Mom", c.Name)
	assert.Equal(t, "+77010000000", c.Phone)
	assert.Equal(t, "mom@mail.kz", c.Email)
}

func TestUpdate_OtherUsersContact(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, logger.New(io.Discard, "test", logger.LevelError))
	ctx := context.Background()

	owner := uuid.New()
	c := &models.TrustedContact{UserID: owner, Name: "Dad", Phone: "+77020000000"}
	require.NoError(t, svc.Create(ctx, c))

	err := svc.Update(ctx, &models.TrustedContact{ID: c.ID, UserID: uuid.New(), Name: "Stranger", Phone: "1"})
	assert.ErrorIs(t, err, types.ErrContactNotFound)

	err = svc.Update(ctx, &models.TrustedContact{ID: c.ID, UserID: owner, Name: " Father ", Phone: "+77020000000"})
	require.NoError(t, err)
	assert.Equal(t, "Father", repo.items[c.ID].Name)
}

func TestDelete(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, logger.New(io.Discard, "test", logger.LevelError))
	ctx := context.Background()
	userID := uuid.New()

	c := &models.TrustedContact{UserID: userID, Name: "Sister", Phone: "+77030000000"}
	require.NoError(t, svc.Create(ctx, c))
	require.NoError(t, svc.Delete(ctx, userID, c.ID))

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, svc.Delete(ctx, userID, c.ID), types.ErrContactNotFound)
}
