package service

import (
	"context"
	"time"

	"medibook-be/internal/constant"
	"medibook-be/internal/pkg/logger"
	"medibook-be/internal/repository/unitofwork"

	"medibook-be/pkg/events"
)

// EventPublisher is the outbound event bus (NATS in production).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ISweeperService abandons sessions that have been idle past the configured
// timeout. It is the external timer the conversation state machine relies on:
// the status flips to ABANDONED while current_step stays where it was.
type ISweeperService interface {
	Run(ctx context.Context)
	SweepOnce(ctx context.Context) (int, error)
}

type sweeperService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	logger         logger.ILogger
	timeout        time.Duration
	interval       time.Duration
}

func NewSweeperService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher EventPublisher,
	log logger.ILogger,
	timeout, interval time.Duration,
) ISweeperService {
	return &sweeperService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
		timeout:        timeout,
		interval:       interval,
	}
}

func (s *sweeperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("SweeperService", "Sweep failed", map[string]interface{}{"error": err})
			}
		}
	}
}

func (s *sweeperService) SweepOnce(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	cutoff := time.Now().Add(-s.timeout)

	stale, err := uow.ChatSessionRepository().FindStale(ctx, constant.SessionStatusActive, cutoff)
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for _, session := range stale {
		session.Status = constant.SessionStatusAbandoned
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			s.logger.Error("SweeperService", "Failed to abandon session", map[string]interface{}{
				"session_id": session.Id,
				"error":      err,
			})
			continue
		}
		abandoned++

		if s.eventPublisher != nil {
			evt := events.BaseEvent{
				Type: events.EventSessionAbandoned,
				Data: map[string]interface{}{
					"session_id": session.Id,
					"last_step":  session.CurrentStep,
				},
				OccurredAt: time.Now(),
			}
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				s.logger.Warn("SweeperService", "Failed to publish abandonment event", map[string]interface{}{
					"session_id": session.Id,
					"error":      err.Error(),
				})
			}
		}
	}

	if abandoned > 0 {
		s.logger.Info("SweeperService", "Abandoned stale sessions", map[string]interface{}{"count": abandoned})
	}
	return abandoned, nil
}
