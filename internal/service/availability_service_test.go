package service

import (
	"context"
	"testing"
	"time"

	"medibook-be/internal/constant"
	"medibook-be/internal/entity"
	"medibook-be/internal/pkg/serverutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-09-07 is a Monday.
var monday = time.Date(2026, time.September, 7, 0, 0, 0, 0, time.Local)

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func seedProfessional(store *fakeStore, slotMinutes int) uuid.UUID {
	id := uuid.New()
	store.professionals = append(store.professionals, &entity.Professional{
		Id:              id,
		FullName:        "Dr. Maria Ruiz",
		City:            "Madrid",
		Specialty:       "Cardiology",
		SlotDurationMin: slotMinutes,
	})
	return id
}

func TestGetAvailableTimeSlots(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		slotMinutes  int
		windows      []*entity.WeeklyAvailability
		appointments []*entity.Appointment
		blocks       []*entity.TimeBlock
		wantStarts   []time.Time
	}{
		{
			name:        "window split into fixed slots",
			slotMinutes: 30,
			windows: []*entity.WeeklyAvailability{
				{Weekday: time.Monday, StartTime: "09:00", EndTime: "10:00", Active: true},
			},
			wantStarts: []time.Time{at(monday, 9, 0), at(monday, 9, 30)},
		},
		{
			name:        "booked appointment removes its slot",
			slotMinutes: 30,
			windows: []*entity.WeeklyAvailability{
				{Weekday: time.Monday, StartTime: "09:00", EndTime: "10:00", Active: true},
			},
			appointments: []*entity.Appointment{
				{StartAt: at(monday, 9, 0), EndAt: at(monday, 9, 30), Status: constant.AppointmentStatusConfirmed},
			},
			wantStarts: []time.Time{at(monday, 9, 30)},
		},
		{
			name:        "touching appointment does not conflict",
			slotMinutes: 30,
			windows: []*entity.WeeklyAvailability{
				{Weekday: time.Monday, StartTime: "09:00", EndTime: "09:30", Active: true},
			},
			appointments: []*entity.Appointment{
				{StartAt: at(monday, 8, 30), EndAt: at(monday, 9, 0), Status: constant.AppointmentStatusConfirmed},
				{StartAt: at(monday, 9, 30), EndAt: at(monday, 10, 0), Status: constant.AppointmentStatusRequested},
			},
			wantStarts: []time.Time{at(monday, 9, 0)},
		},
		{
			name:        "cancelled appointment does not constrain",
			slotMinutes: 30,
			windows: []*entity.WeeklyAvailability{
				{Weekday: time.Monday, StartTime: "09:00", EndTime: "09:30", Active: true},
			},
			appointments: []*entity.Appointment{
				{StartAt: at(monday, 9, 0), EndAt: at(monday, 9, 30), Status: constant.AppointmentStatusCancelled},
			},
			wantStarts: []time.Time{at(monday, 9, 0)},
		},
		{
			name:        "time block removes overlapping slots",
			slotMinutes: 30,
			windows: []*entity.WeeklyAvailability{
				{Weekday: time.Monday, StartTime: "09:00", EndTime: "11:00", Active: true},
			},
			blocks: []*entity.TimeBlock{
				{StartAt: at(monday, 9, 15), EndAt: at(monday, 10, 15), Reason: "surgery"},
			},
			wantStarts: []time.Time{at(monday, 10, 30)},
		},
		{
			name:        "partial trailing window yields no slot",
			slotMinutes: 30,
			windows: []*entity.WeeklyAvailability{
				{Weekday: time.Monday, StartTime: "09:00", EndTime: "09:45", Active: true},
			},
			wantStarts: []time.Time{at(monday, 9, 0)},
		},
		{
			name:        "inactive window is ignored",
			slotMinutes: 30,
			windows: []*entity.WeeklyAvailability{
				{Weekday: time.Monday, StartTime: "09:00", EndTime: "10:00", Active: false},
			},
			wantStarts: []time.Time{},
		},
		{
			name:        "no template for the weekday",
			slotMinutes: 30,
			windows: []*entity.WeeklyAvailability{
				{Weekday: time.Tuesday, StartTime: "09:00", EndTime: "10:00", Active: true},
			},
			wantStarts: []time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			professionalID := seedProfessional(store, tt.slotMinutes)
			for _, w := range tt.windows {
				w.Id = uuid.New()
				w.ProfessionalId = professionalID
				store.windows = append(store.windows, w)
			}
			for _, a := range tt.appointments {
				a.Id = uuid.New()
				a.ProfessionalId = professionalID
				store.appointments = append(store.appointments, a)
			}
			for _, b := range tt.blocks {
				b.Id = uuid.New()
				b.ProfessionalId = professionalID
				store.blocks = append(store.blocks, b)
			}

			svc := NewAvailabilityService(&fakeRepoFactory{store: store}, 30)
			slots, err := svc.GetAvailableTimeSlots(ctx, professionalID, monday)
			require.NoError(t, err)

			starts := make([]time.Time, 0, len(slots))
			for _, slot := range slots {
				starts = append(starts, slot.StartAt)
				assert.Equal(t, slot.StartAt.Add(time.Duration(tt.slotMinutes)*time.Minute), slot.EndAt)
			}
			assert.Equal(t, tt.wantStarts, starts)
		})
	}
}

func TestGetAvailableTimeSlotsUnknownProfessional(t *testing.T) {
	svc := NewAvailabilityService(&fakeRepoFactory{store: newFakeStore()}, 30)

	_, err := svc.GetAvailableTimeSlots(context.Background(), uuid.New(), monday)
	require.Error(t, err)

	appErr, ok := serverutils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, serverutils.CodeNotFound, appErr.Code)
}

func TestGetAvailableTimeSlotsFallbackDuration(t *testing.T) {
	store := newFakeStore()
	professionalID := seedProfessional(store, 0) // no configured duration
	store.windows = append(store.windows, &entity.WeeklyAvailability{
		Id: uuid.New(), ProfessionalId: professionalID,
		Weekday: time.Monday, StartTime: "09:00", EndTime: "10:00", Active: true,
	})

	svc := NewAvailabilityService(&fakeRepoFactory{store: store}, 20)
	slots, err := svc.GetAvailableTimeSlots(context.Background(), professionalID, monday)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, at(monday, 9, 20), slots[1].StartAt)
}

func TestGetAvailableDays(t *testing.T) {
	store := newFakeStore()
	professionalID := seedProfessional(store, 30)
	store.windows = append(store.windows, &entity.WeeklyAvailability{
		Id: uuid.New(), ProfessionalId: professionalID,
		Weekday: time.Monday, StartTime: "09:00", EndTime: "13:00", Active: true,
	})

	// Sept 14 is fully blocked, Sept 21 only partially.
	fullDay := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.Local)
	store.blocks = append(store.blocks,
		&entity.TimeBlock{
			Id: uuid.New(), ProfessionalId: professionalID,
			StartAt: fullDay, EndAt: fullDay.Add(24*time.Hour - time.Millisecond),
			Reason: "conference",
		},
		&entity.TimeBlock{
			Id: uuid.New(), ProfessionalId: professionalID,
			StartAt: time.Date(2026, time.September, 21, 9, 0, 0, 0, time.Local),
			EndAt:   time.Date(2026, time.September, 21, 12, 0, 0, 0, time.Local),
			Reason:  "meeting",
		},
	)

	svc := NewAvailabilityService(&fakeRepoFactory{store: store}, 30)
	days, err := svc.GetAvailableDays(context.Background(), professionalID, 2026, time.September)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 21, 28}, days)
}

func TestGetAvailableDaysNoTemplate(t *testing.T) {
	store := newFakeStore()
	professionalID := seedProfessional(store, 30)

	svc := NewAvailabilityService(&fakeRepoFactory{store: store}, 30)
	days, err := svc.GetAvailableDays(context.Background(), professionalID, 2026, time.September)
	require.NoError(t, err)
	assert.Empty(t, days)
}
