package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/state"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSyncState MessageType = "SYNC_STATE"

	// Server to Client
	MessageTypeStateSync MessageType = "STATE_SYNC"
	MessageTypeError     MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Seq       uint64          `json:"seq,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// StateSyncPayload carries everything but the hero list, which clients
// page through the REST API instead.
type StateSyncPayload struct {
	HeroCount int           `json:"heroCount"`
	Favorites []domain.Hero `json:"favorites"`
	Teams     []domain.Team `json:"teams"`
	Loading   bool          `json:"loading"`
	Error     string        `json:"error,omitempty"`
}

func NewStateSyncPayload(s state.State) StateSyncPayload {
	return StateSyncPayload{
		HeroCount: len(s.Heroes),
		Favorites: s.Favorites,
		Teams:     s.Teams,
		Loading:   s.Loading,
		Error:     s.Error,
	}
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
