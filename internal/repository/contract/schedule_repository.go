package contract

import (
	"context"
	"time"

	"medibook-be/internal/entity"

	"github.com/google/uuid"
)

// WeeklyAvailabilityRepository reads the professional's weekly template.
// Writes are owned by an external CRUD service.
type WeeklyAvailabilityRepository interface {
	ListActive(ctx context.Context, professionalID uuid.UUID) ([]*entity.WeeklyAvailability, error)
	ListActiveForWeekday(ctx context.Context, professionalID uuid.UUID, weekday time.Weekday) ([]*entity.WeeklyAvailability, error)
}

type TimeBlockRepository interface {
	// ListOverlapping returns blocks intersecting [start, end).
	ListOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time) ([]*entity.TimeBlock, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	// ListOverlapping returns appointments in the given statuses intersecting
	// [start, end).
	ListOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time, statuses []string) ([]*entity.Appointment, error)
}
