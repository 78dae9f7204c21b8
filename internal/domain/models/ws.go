package models

import (
	"encoding/json"

	"github.com/Temutjin2k/niva/internal/domain/types"
)

// WSMessage is pushed from the companion service to the user's websocket.
type WSMessage struct {
	Type types.WSEvent `json:"type"`
	Data any           `json:"data,omitempty"`
}

// WSClientMessage is sent by the client over the websocket.
type WSClientMessage struct {
	Type      string          `json:"type"`
	Token     string          `json:"token,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}
