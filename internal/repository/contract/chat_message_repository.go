package contract

import (
	"context"

	"medibook-be/internal/entity"
)

// ChatMessageRepository is the append-only message log.
type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	// ListBySession returns every message of the session, ascending by
	// creation time.
	ListBySession(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error)
	// ListRecent returns the most recent n messages, descending by creation
	// time. Callers reverse when chronological order is needed.
	ListRecent(ctx context.Context, sessionID string, n int) ([]*entity.ChatMessage, error)
}
