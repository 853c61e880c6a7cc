package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID string
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// StaleSince matches sessions whose last interaction predates the cutoff.
type StaleSince struct {
	Cutoff time.Time
}

func (s StaleSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_interaction_at < ?", s.Cutoff)
}
