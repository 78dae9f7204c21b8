package postgres

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LocationRepo struct {
	db *pgxpool.Pool
}

func NewLocationRepo(db *pgxpool.Pool) *LocationRepo {
	return &LocationRepo{db: db}
}

// Create stores a location sample of a session.
func (r *LocationRepo) Create(ctx context.Context, rec models.LocationRecord) error {
	const q = `
		INSERT INTO locations (session_id, user_id, latitude, longitude, accuracy, address, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`

	_, err := TxorDB(ctx, r.db).Exec(ctx, q,
		rec.SessionID, rec.UserID, rec.Latitude, rec.Longitude, rec.Accuracy, rec.Address, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("LocationRepo.Create: %w", err)
	}
	return nil
}
