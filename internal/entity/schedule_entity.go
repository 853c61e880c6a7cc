package entity

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyAvailability is one recurring window in a professional's weekly
// template. Multiple disjoint windows per weekday are allowed.
type WeeklyAvailability struct {
	Id             uuid.UUID
	ProfessionalId uuid.UUID
	Weekday        time.Weekday
	StartTime      string // "HH:MM"
	EndTime        string // "HH:MM"
	Active         bool
}

// TimeBlock marks a professional unavailable for an absolute interval,
// independent of the weekly template.
type TimeBlock struct {
	Id             uuid.UUID
	ProfessionalId uuid.UUID
	StartAt        time.Time
	EndAt          time.Time
	Reason         string
	Recurrence     *string
}

// TimeSlot is a candidate booking window of fixed duration. Intervals are
// half-open: [StartAt, EndAt).
type TimeSlot struct {
	StartAt time.Time
	EndAt   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (s TimeSlot) Overlaps(start, end time.Time) bool {
	return s.StartAt.Before(end) && start.Before(s.EndAt)
}
