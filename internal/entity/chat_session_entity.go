package entity

import (
	"time"

	"medibook-be/internal/constant"

	"github.com/google/uuid"
)

// ChatSession is one booking conversation. It is keyed by an opaque string id
// so that clients can resume it after a reconnect without holding a live
// reference.
type ChatSession struct {
	Id                string
	PatientId         *uuid.UUID
	DocumentNumber    string
	CurrentStep       string
	ChatData          map[string]interface{}
	Status            string
	AppointmentId     *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         *time.Time
	LastInteractionAt time.Time
}

// IsTerminal reports whether the session no longer accepts turns.
func (s *ChatSession) IsTerminal() bool {
	return s.Status != constant.SessionStatusActive
}
