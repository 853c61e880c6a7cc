package implementation

import (
	"context"
	"time"

	"medibook-be/internal/entity"
	"medibook-be/internal/mapper"
	"medibook-be/internal/model"
	"medibook-be/internal/repository/contract"
	"medibook-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func applySpecs(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

type WeeklyAvailabilityRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ScheduleMapper
}

func NewWeeklyAvailabilityRepository(db *gorm.DB) contract.WeeklyAvailabilityRepository {
	return &WeeklyAvailabilityRepositoryImpl{
		db:     db,
		mapper: mapper.NewScheduleMapper(),
	}
}

func (r *WeeklyAvailabilityRepositoryImpl) ListActive(ctx context.Context, professionalID uuid.UUID) ([]*entity.WeeklyAvailability, error) {
	var models []*model.WeeklyAvailability
	query := applySpecs(r.db.WithContext(ctx),
		specification.ByProfessionalID{ProfessionalID: professionalID},
		specification.ActiveOnly{},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.WeeklyAvailability, len(models))
	for i, m := range models {
		entities[i] = r.mapper.WeeklyAvailabilityToEntity(m)
	}
	return entities, nil
}

func (r *WeeklyAvailabilityRepositoryImpl) ListActiveForWeekday(ctx context.Context, professionalID uuid.UUID, weekday time.Weekday) ([]*entity.WeeklyAvailability, error) {
	var models []*model.WeeklyAvailability
	query := applySpecs(r.db.WithContext(ctx),
		specification.ByProfessionalID{ProfessionalID: professionalID},
		specification.ByWeekday{Weekday: weekday},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "start_time"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.WeeklyAvailability, len(models))
	for i, m := range models {
		entities[i] = r.mapper.WeeklyAvailabilityToEntity(m)
	}
	return entities, nil
}

type TimeBlockRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ScheduleMapper
}

func NewTimeBlockRepository(db *gorm.DB) contract.TimeBlockRepository {
	return &TimeBlockRepositoryImpl{
		db:     db,
		mapper: mapper.NewScheduleMapper(),
	}
}

func (r *TimeBlockRepositoryImpl) ListOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time) ([]*entity.TimeBlock, error) {
	var models []*model.TimeBlock
	query := applySpecs(r.db.WithContext(ctx),
		specification.ByProfessionalID{ProfessionalID: professionalID},
		specification.OverlapsRange{Start: start, End: end},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TimeBlock, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TimeBlockToEntity(m)
	}
	return entities, nil
}

type AppointmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ScheduleMapper
}

func NewAppointmentRepository(db *gorm.DB) contract.AppointmentRepository {
	return &AppointmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewScheduleMapper(),
	}
}

func (r *AppointmentRepositoryImpl) Create(ctx context.Context, appointment *entity.Appointment) error {
	m := r.mapper.AppointmentToModel(appointment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*appointment = *r.mapper.AppointmentToEntity(m)
	return nil
}

func (r *AppointmentRepositoryImpl) ListOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time, statuses []string) ([]*entity.Appointment, error) {
	var models []*model.Appointment
	query := applySpecs(r.db.WithContext(ctx),
		specification.ByProfessionalID{ProfessionalID: professionalID},
		specification.OverlapsRange{Start: start, End: end},
		specification.ByStatusIn{Statuses: statuses},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Appointment, len(models))
	for i, m := range models {
		entities[i] = r.mapper.AppointmentToEntity(m)
	}
	return entities, nil
}
