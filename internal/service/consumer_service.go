package service

import (
	"context"
	"encoding/json"
	"time"

	"medibook-be/internal/dto"
	"medibook-be/internal/pkg/logger"
	"medibook-be/internal/pkg/mailer"
	"medibook-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the in-process confirmation topic: it emails the
// patient and mirrors the event onto the outbound bus. Both effects are
// auxiliary and never propagate failures back into the conversation.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	mailer         mailer.IEmailService
	eventPublisher EventPublisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		mailer:         emailService,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AppointmentConfirmedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal confirmation", map[string]interface{}{"error": err})
		msg.Ack() // invalid payloads are never retried
		return
	}

	if cs.mailer != nil && payload.PatientEmail != "" {
		if err := cs.mailer.SendAppointmentConfirmation(payload.PatientEmail, payload.PatientName, payload.Professional, payload.StartAt); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to send confirmation email", map[string]interface{}{
				"appointment_id": payload.AppointmentId,
				"error":          err.Error(),
			})
		}
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.EventAppointmentConfirmed,
			Data: map[string]interface{}{
				"appointment_id":  payload.AppointmentId,
				"session_id":      payload.SessionId,
				"patient_id":      payload.PatientId,
				"professional_id": payload.ProfessionalId,
				"start_at":        payload.StartAt.Format(time.RFC3339),
				"end_at":          payload.EndAt.Format(time.RFC3339),
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to mirror confirmation to NATS", map[string]interface{}{
				"appointment_id": payload.AppointmentId,
				"error":          err.Error(),
			})
		}
	}

	msg.Ack()
}
