package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatSession struct {
	Id                string            `gorm:"type:varchar(64);primaryKey"`
	PatientId         *uuid.UUID        `gorm:"type:uuid;index"`
	DocumentNumber    string            `gorm:"type:varchar(20)"`
	CurrentStep       string            `gorm:"type:varchar(40);not null"`
	ChatData          datatypes.JSONMap `gorm:"type:jsonb"`
	Status            string            `gorm:"type:varchar(20);not null;index"`
	AppointmentId     *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt         time.Time         `gorm:"autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime"`
	LastInteractionAt time.Time         `gorm:"not null;index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
