package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one persisted conversation turn. Immutable once created.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId string
	Direction     string
	Content       string
	Metadata      map[string]interface{}
	CreatedAt     time.Time
}
