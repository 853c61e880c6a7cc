package service

import (
	"context"
	"testing"
	"time"

	"medibook-be/internal/constant"
	"medibook-be/internal/entity"
	"medibook-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func seedSession(store *fakeStore, id, status string, lastInteraction time.Time) {
	store.sessions[id] = &entity.ChatSession{
		Id:                id,
		CurrentStep:       constant.StepSelectCity,
		ChatData:          map[string]interface{}{},
		Status:            status,
		LastInteractionAt: lastInteraction,
	}
}

func TestSweepOnce(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	seedSession(store, "stale-1", constant.SessionStatusActive, now.Add(-time.Hour))
	seedSession(store, "fresh", constant.SessionStatusActive, now.Add(-time.Minute))
	seedSession(store, "done", constant.SessionStatusCompleted, now.Add(-time.Hour))

	publisher := &capturingPublisher{}
	svc := NewSweeperService(&fakeRepoFactory{store: store}, publisher, testLogger{}, 30*time.Minute, time.Minute)

	abandoned, err := svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, abandoned)

	// Only the stale active session flipped; its step is left untouched so
	// analytics can see where the user dropped off.
	assert.Equal(t, constant.SessionStatusAbandoned, store.sessions["stale-1"].Status)
	assert.Equal(t, constant.StepSelectCity, store.sessions["stale-1"].CurrentStep)
	assert.Equal(t, constant.SessionStatusActive, store.sessions["fresh"].Status)
	assert.Equal(t, constant.SessionStatusCompleted, store.sessions["done"].Status)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.EventSessionAbandoned, publisher.published[0].EventType())
	assert.Equal(t, "stale-1", publisher.published[0].Payload()["session_id"])
}

func TestSweepOnceIdempotent(t *testing.T) {
	store := newFakeStore()
	seedSession(store, "stale-1", constant.SessionStatusActive, time.Now().Add(-time.Hour))

	svc := NewSweeperService(&fakeRepoFactory{store: store}, nil, testLogger{}, 30*time.Minute, time.Minute)

	abandoned, err := svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, abandoned)

	// A second pass has nothing left to do.
	abandoned, err = svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, abandoned)
}
