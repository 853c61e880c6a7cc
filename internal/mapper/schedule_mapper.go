package mapper

import (
	"time"

	"medibook-be/internal/entity"
	"medibook-be/internal/model"
)

type ScheduleMapper struct{}

func NewScheduleMapper() *ScheduleMapper {
	return &ScheduleMapper{}
}

func (m *ScheduleMapper) WeeklyAvailabilityToEntity(w *model.WeeklyAvailability) *entity.WeeklyAvailability {
	if w == nil {
		return nil
	}
	return &entity.WeeklyAvailability{
		Id:             w.Id,
		ProfessionalId: w.ProfessionalId,
		Weekday:        time.Weekday(w.Weekday),
		StartTime:      w.StartTime,
		EndTime:        w.EndTime,
		Active:         w.Active,
	}
}

func (m *ScheduleMapper) TimeBlockToEntity(b *model.TimeBlock) *entity.TimeBlock {
	if b == nil {
		return nil
	}
	return &entity.TimeBlock{
		Id:             b.Id,
		ProfessionalId: b.ProfessionalId,
		StartAt:        b.StartAt,
		EndAt:          b.EndAt,
		Reason:         b.Reason,
		Recurrence:     b.Recurrence,
	}
}

func (m *ScheduleMapper) AppointmentToEntity(a *model.Appointment) *entity.Appointment {
	if a == nil {
		return nil
	}
	return &entity.Appointment{
		Id:             a.Id,
		ProfessionalId: a.ProfessionalId,
		PatientId:      a.PatientId,
		ChatSessionId:  a.ChatSessionId,
		StartAt:        a.StartAt,
		EndAt:          a.EndAt,
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
	}
}

func (m *ScheduleMapper) AppointmentToModel(a *entity.Appointment) *model.Appointment {
	if a == nil {
		return nil
	}
	return &model.Appointment{
		Id:             a.Id,
		ProfessionalId: a.ProfessionalId,
		PatientId:      a.PatientId,
		ChatSessionId:  a.ChatSessionId,
		StartAt:        a.StartAt,
		EndAt:          a.EndAt,
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
	}
}

func (m *ScheduleMapper) PatientToEntity(p *model.Patient) *entity.Patient {
	if p == nil {
		return nil
	}
	return &entity.Patient{
		Id:             p.Id,
		DocumentNumber: p.DocumentNumber,
		FullName:       p.FullName,
		Email:          p.Email,
	}
}

func (m *ScheduleMapper) ProfessionalToEntity(p *model.Professional) *entity.Professional {
	if p == nil {
		return nil
	}
	return &entity.Professional{
		Id:              p.Id,
		FullName:        p.FullName,
		City:            p.City,
		Specialty:       p.Specialty,
		SlotDurationMin: p.SlotDurationMin,
	}
}
