package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/pkg/logger"
	"github.com/google/uuid"
)

// LogSender only logs messages. It backs every channel in dry-run mode.
type LogSender struct {
	l logger.Logger
}

func NewLogSender(l logger.Logger) *LogSender {
	return &LogSender{l: l}
}

func (s *LogSender) Send(ctx context.Context, msg models.OutboundMessage) (models.SendResult, error) {
	id := fmt.Sprintf("%s_%s", strings.ToUpper(msg.Channel.String()), uuid.NewString())

	s.l.Info(ctx, "dry-run delivery",
		"channel", msg.Channel,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
		"message_id", id,
	)

	return models.SendResult{MessageID: id, To: msg.To, Status: "simulated"}, nil
}
