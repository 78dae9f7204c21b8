package notify

import (
	"context"

	"github.com/Temutjin2k/niva/internal/domain/models"
)

// Sender delivers a single message on one channel.
type Sender interface {
	Send(ctx context.Context, msg models.OutboundMessage) (models.SendResult, error)
}

// StatusFetcher looks up a previously sent message at the provider.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, messageID string) (*models.MessageStatus, error)
}

type DeliveryRepo interface {
	Create(ctx context.Context, d *models.Delivery) error
}
