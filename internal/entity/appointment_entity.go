package entity

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is the booked visit. Only REQUESTED and CONFIRMED appointments
// constrain availability.
type Appointment struct {
	Id             uuid.UUID
	ProfessionalId uuid.UUID
	PatientId      uuid.UUID
	ChatSessionId  *string
	StartAt        time.Time
	EndAt          time.Time
	Status         string
	CreatedAt      time.Time
}

// Patient is owned by the external user service; the chat core only reads it.
type Patient struct {
	Id             uuid.UUID
	DocumentNumber string
	FullName       string
	Email          string
}

// Professional is a health professional with a configured slot duration.
type Professional struct {
	Id              uuid.UUID
	FullName        string
	City            string
	Specialty       string
	SlotDurationMin int
}
