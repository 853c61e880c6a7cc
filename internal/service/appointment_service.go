package service

import (
	"context"
	"time"

	"medibook-be/internal/constant"
	"medibook-be/internal/entity"
	"medibook-be/internal/pkg/serverutils"
	"medibook-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IAppointmentService owns the appointment write. No reservation is held
// across the conversation, so the slot is re-validated inside the same
// transaction that creates the appointment.
type IAppointmentService interface {
	Book(ctx context.Context, req BookAppointmentRequest) (*entity.Appointment, error)
}

type BookAppointmentRequest struct {
	ProfessionalId uuid.UUID
	PatientId      uuid.UUID
	ChatSessionId  string
	StartAt        time.Time
	EndAt          time.Time
}

type appointmentService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewAppointmentService(uowFactory unitofwork.RepositoryFactory) IAppointmentService {
	return &appointmentService{uowFactory: uowFactory}
}

func (s *appointmentService) Book(ctx context.Context, req BookAppointmentRequest) (*entity.Appointment, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	// Availability may have changed between computation and confirmation.
	conflicts, err := uow.AppointmentRepository().ListOverlapping(ctx, req.ProfessionalId, req.StartAt, req.EndAt, bookedStatuses)
	if err != nil {
		uow.Rollback()
		return nil, err
	}
	if len(conflicts) > 0 {
		uow.Rollback()
		return nil, serverutils.NewConflictError("the selected slot is no longer available")
	}

	blocks, err := uow.TimeBlockRepository().ListOverlapping(ctx, req.ProfessionalId, req.StartAt, req.EndAt)
	if err != nil {
		uow.Rollback()
		return nil, err
	}
	if len(blocks) > 0 {
		uow.Rollback()
		return nil, serverutils.NewConflictError("the selected slot is no longer available")
	}

	sessionID := req.ChatSessionId
	appointment := &entity.Appointment{
		Id:             uuid.New(),
		ProfessionalId: req.ProfessionalId,
		PatientId:      req.PatientId,
		ChatSessionId:  &sessionID,
		StartAt:        req.StartAt,
		EndAt:          req.EndAt,
		Status:         constant.AppointmentStatusConfirmed,
		CreatedAt:      time.Now(),
	}
	if err := uow.AppointmentRepository().Create(ctx, appointment); err != nil {
		uow.Rollback()
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return appointment, nil
}
