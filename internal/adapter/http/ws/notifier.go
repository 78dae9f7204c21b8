package wshandler

import (
	"context"

	"github.com/Temutjin2k/niva/internal/domain/models"
	ws "github.com/Temutjin2k/niva/pkg/wsHub"
	"github.com/google/uuid"
)

// Notifier pushes companion events to the user's websocket.
type Notifier struct {
	connections *ws.ConnectionHub
}

func NewNotifier(connHub *ws.ConnectionHub) *Notifier {
	return &Notifier{connections: connHub}
}

func (n *Notifier) SendToUser(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.connections.SendTo(userID, msg)
}
