package model

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfessionalId uuid.UUID `gorm:"type:uuid;not null;index"`
	PatientId      uuid.UUID `gorm:"type:uuid;not null;index"`
	ChatSessionId  *string   `gorm:"type:varchar(64);index"`
	StartAt        time.Time `gorm:"not null;index"`
	EndAt          time.Time `gorm:"not null"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Appointment) TableName() string {
	return "appointments"
}

type Patient struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentNumber string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	FullName       string    `gorm:"type:text;not null"`
	Email          string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Patient) TableName() string {
	return "patients"
}

type Professional struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName        string    `gorm:"type:text;not null"`
	City            string    `gorm:"type:varchar(80);not null;index"`
	Specialty       string    `gorm:"type:varchar(80);not null;index"`
	SlotDurationMin int       `gorm:"not null;default:30"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (Professional) TableName() string {
	return "professionals"
}
