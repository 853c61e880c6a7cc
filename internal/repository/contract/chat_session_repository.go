package contract

import (
	"context"
	"time"

	"medibook-be/internal/entity"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	// FindByID returns (nil, nil) when the session does not exist.
	FindByID(ctx context.Context, id string) (*entity.ChatSession, error)
	// FindStale returns sessions in the given status whose last interaction
	// predates the cutoff. Used by the inactivity sweeper.
	FindStale(ctx context.Context, status string, cutoff time.Time) ([]*entity.ChatSession, error)
}
