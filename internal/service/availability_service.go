package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"medibook-be/internal/constant"
	"medibook-be/internal/entity"
	"medibook-be/internal/pkg/serverutils"
	"medibook-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IAvailabilityService computes bookable windows for a professional from the
// weekly template, existing appointments and ad-hoc time blocks.
type IAvailabilityService interface {
	// GetAvailableTimeSlots returns the free slots of the given calendar day,
	// ascending by start time. The day is taken from date's year/month/day in
	// date's location; no timezone conversion is performed.
	GetAvailableTimeSlots(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]entity.TimeSlot, error)
	// GetAvailableDays returns the days of the month on which the
	// professional has at least one templated window and is not fully
	// blocked.
	GetAvailableDays(ctx context.Context, professionalID uuid.UUID, year int, month time.Month) ([]int, error)
}

type availabilityService struct {
	uowFactory         unitofwork.RepositoryFactory
	defaultSlotMinutes int
}

func NewAvailabilityService(uowFactory unitofwork.RepositoryFactory, defaultSlotMinutes int) IAvailabilityService {
	return &availabilityService{
		uowFactory:         uowFactory,
		defaultSlotMinutes: defaultSlotMinutes,
	}
}

// bookedStatuses are the appointment statuses that constrain availability.
var bookedStatuses = []string{constant.AppointmentStatusRequested, constant.AppointmentStatusConfirmed}

func (s *availabilityService) GetAvailableTimeSlots(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]entity.TimeSlot, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	professional, err := uow.ProfessionalRepository().FindByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if professional == nil {
		return nil, serverutils.NewNotFoundError("professional not found")
	}

	duration := time.Duration(professional.SlotDurationMin) * time.Minute
	if duration <= 0 {
		duration = time.Duration(s.defaultSlotMinutes) * time.Minute
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	windows, err := uow.WeeklyAvailabilityRepository().ListActiveForWeekday(ctx, professionalID, dayStart.Weekday())
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return []entity.TimeSlot{}, nil
	}

	var candidates []entity.TimeSlot
	for _, w := range windows {
		windowStart, err := atTimeOfDay(dayStart, w.StartTime)
		if err != nil {
			return nil, err
		}
		windowEnd, err := atTimeOfDay(dayStart, w.EndTime)
		if err != nil {
			return nil, err
		}
		for cursor := windowStart; !cursor.Add(duration).After(windowEnd); cursor = cursor.Add(duration) {
			candidates = append(candidates, entity.TimeSlot{StartAt: cursor, EndAt: cursor.Add(duration)})
		}
	}

	appointments, err := uow.AppointmentRepository().ListOverlapping(ctx, professionalID, dayStart, dayEnd, bookedStatuses)
	if err != nil {
		return nil, err
	}
	blocks, err := uow.TimeBlockRepository().ListOverlapping(ctx, professionalID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	free := make([]entity.TimeSlot, 0, len(candidates))
	for _, slot := range candidates {
		if slotConflicts(slot, appointments, blocks) {
			continue
		}
		free = append(free, slot)
	}

	sort.Slice(free, func(i, j int) bool {
		return free[i].StartAt.Before(free[j].StartAt)
	})
	return free, nil
}

func (s *availabilityService) GetAvailableDays(ctx context.Context, professionalID uuid.UUID, year int, month time.Month) ([]int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	windows, err := uow.WeeklyAvailabilityRepository().ListActive(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	availableWeekdays := make(map[time.Weekday]bool, len(windows))
	for _, w := range windows {
		availableWeekdays[w.Weekday] = true
	}
	if len(availableWeekdays) == 0 {
		return []int{}, nil
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0)
	blocks, err := uow.TimeBlockRepository().ListOverlapping(ctx, professionalID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	var days []int
	for d := monthStart; d.Before(monthEnd); d = d.AddDate(0, 0, 1) {
		if !availableWeekdays[d.Weekday()] {
			continue
		}
		if dayFullyBlocked(d, blocks) {
			continue
		}
		days = append(days, d.Day())
	}
	return days, nil
}

func slotConflicts(slot entity.TimeSlot, appointments []*entity.Appointment, blocks []*entity.TimeBlock) bool {
	for _, a := range appointments {
		if slot.Overlaps(a.StartAt, a.EndAt) {
			return true
		}
	}
	for _, b := range blocks {
		if slot.Overlaps(b.StartAt, b.EndAt) {
			return true
		}
	}
	return false
}

// dayFullyBlocked reports whether one block covers the whole span of the day,
// from midnight through 23:59:59.999.
func dayFullyBlocked(dayStart time.Time, blocks []*entity.TimeBlock) bool {
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)
	for _, b := range blocks {
		if !b.StartAt.After(dayStart) && !b.EndAt.Before(dayEnd) {
			return true
		}
	}
	return false
}

// atTimeOfDay resolves an "HH:MM" template value onto a concrete day.
func atTimeOfDay(dayStart time.Time, hhmm string) (time.Time, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time of day %q", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q", hhmm)
	}
	return dayStart.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}
