package postgres

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveryRepo struct {
	db *pgxpool.Pool
}

func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// Create logs a delivery attempt.
func (r *DeliveryRepo) Create(ctx context.Context, d *models.Delivery) error {
	const q = `
		INSERT INTO deliveries (id, alert_id, channel, recipient, message_id, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at;`

	err := TxorDB(ctx, r.db).QueryRow(ctx, q,
		d.ID, d.AlertID, d.Channel.String(), d.Recipient, d.MessageID, d.Status, d.Error,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("DeliveryRepo.Create: %w", err)
	}
	return nil
}
