package wshandler

import (
	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	ws "github.com/Temutjin2k/niva/pkg/wsHub"
)

func errorResponse(conn *ws.Conn, message any) error {
	return conn.Send(models.WSMessage{
		Type: types.WSError,
		Data: map[string]any{"error": message},
	})
}

func failedValidationResponse(conn *ws.Conn, errors map[string]string) error {
	return errorResponse(conn, errors)
}
