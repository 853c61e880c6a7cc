package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByProfessionalID struct {
	ProfessionalID uuid.UUID
}

func (s ByProfessionalID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("professional_id = ?", s.ProfessionalID)
}

type ByWeekday struct {
	Weekday time.Weekday
}

func (s ByWeekday) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("weekday = ?", int(s.Weekday))
}

type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

// OverlapsRange matches rows whose [start_at, end_at) interval intersects
// [Start, End).
type OverlapsRange struct {
	Start time.Time
	End   time.Time
}

func (s OverlapsRange) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("start_at < ? AND end_at > ?", s.End, s.Start)
}

type ByStatusIn struct {
	Statuses []string
}

func (s ByStatusIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}
