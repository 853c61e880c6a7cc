package unitofwork

import (
	"context"

	"medibook-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one logical operation. When Begin is
// called, every repository obtained afterwards shares the same transaction,
// which is how a processed chat turn commits its session update and message
// appends atomically.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	WeeklyAvailabilityRepository() contract.WeeklyAvailabilityRepository
	TimeBlockRepository() contract.TimeBlockRepository
	AppointmentRepository() contract.AppointmentRepository
	PatientRepository() contract.PatientRepository
	ProfessionalRepository() contract.ProfessionalRepository
}
