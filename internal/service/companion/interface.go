package companion

import (
	"context"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/google/uuid"
)

/*=================Session Repository======================*/

type SessionRepo interface {
	Create(ctx context.Context, s *models.Session) error
	Update(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListActive(ctx context.Context) ([]*models.Session, error)
}

type SessionEventRepo interface {
	Create(ctx context.Context, sessionID uuid.UUID, eventType types.SessionEvent, payload any) error
	List(ctx context.Context, sessionID uuid.UUID, filters models.Filters) ([]models.SessionEventRecord, models.Metadata, error)
}

type LocationRepo interface {
	Create(ctx context.Context, rec models.LocationRecord) error
}

/*=================Owned records======================*/

type ContactRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TrustedContact, error)
}

type RouteRepo interface {
	Get(ctx context.Context, userID, routeID uuid.UUID) (*models.SavedRoute, error)
	Touch(ctx context.Context, routeID uuid.UUID, at time.Time) error
}

type PresetRepo interface {
	Get(ctx context.Context, userID, presetID uuid.UUID) (*models.CustomSession, error)
	Touch(ctx context.Context, presetID uuid.UUID, at time.Time) error
}

type UserRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

/*===================== Address Geo Coder ========================*/

type GeoCoder interface {
	GetAddress(ctx context.Context, longitude, latitude float64) (string, error)
}

/*========================Publisher===============================*/

type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert models.AlertRequest) error
}

/*===========================Sender===============================*/

// UserNotifier pushes realtime messages to a connected user.
type UserNotifier interface {
	SendToUser(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error
}
