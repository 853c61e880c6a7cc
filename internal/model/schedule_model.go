package model

import (
	"time"

	"github.com/google/uuid"
)

type WeeklyAvailability struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfessionalId uuid.UUID `gorm:"type:uuid;not null;index"`
	Weekday        int       `gorm:"not null"` // 0 = Sunday, matches time.Weekday
	StartTime      string    `gorm:"type:varchar(5);not null"`
	EndTime        string    `gorm:"type:varchar(5);not null"`
	Active         bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (WeeklyAvailability) TableName() string {
	return "weekly_availabilities"
}

type TimeBlock struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfessionalId uuid.UUID `gorm:"type:uuid;not null;index"`
	StartAt        time.Time `gorm:"not null;index"`
	EndAt          time.Time `gorm:"not null"`
	Reason         string    `gorm:"type:text"`
	Recurrence     *string   `gorm:"type:varchar(40)"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (TimeBlock) TableName() string {
	return "time_blocks"
}
