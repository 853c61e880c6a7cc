package websocket

import (
	"context"
	"encoding/json"

	"medibook-be/internal/constant"
	"medibook-be/internal/dto"
	"medibook-be/internal/pkg/logger"
	"medibook-be/internal/pkg/serverutils"
	"medibook-be/pkg/events"
	"medibook-be/pkg/nats"
)

// AbandonmentNotifier relays SESSION_ABANDONED events back to the widget
// still attached to the swept session, so it stops accepting input instead of
// failing on the next turn.
type AbandonmentNotifier struct {
	hub    *Hub
	logger logger.ILogger
}

func NewAbandonmentNotifier(hub *Hub, log logger.ILogger) *AbandonmentNotifier {
	return &AbandonmentNotifier{hub: hub, logger: log}
}

// Start registers the durable consumer. The subscription survives restarts,
// backlog events are replayed on reconnect.
func (n *AbandonmentNotifier) Start(sub *nats.Subscriber) error {
	return sub.Subscribe("events."+events.EventSessionAbandoned, "chat-abandonment-notifier", n.handle)
}

func (n *AbandonmentNotifier) handle(ctx context.Context, event events.Event) error {
	sessionID, _ := event.Payload()["session_id"].(string)
	if sessionID == "" {
		return nil
	}

	frame, err := json.Marshal(dto.ErrorFrame{
		Type:      dto.FrameTypeError,
		Code:      serverutils.CodeConflict,
		Message:   constant.PromptSessionClosed,
		Retryable: false,
	})
	if err != nil {
		return err
	}

	n.logger.Info("AbandonmentNotifier", "Notifying abandoned session", map[string]interface{}{"session_id": sessionID})
	n.hub.DeliverToSession(sessionID, frame)
	return nil
}
