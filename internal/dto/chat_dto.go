package dto

import "time"

// Frame types exchanged over the websocket endpoint.
const (
	FrameTypeInit    = "init"
	FrameTypeMessage = "message"
	FrameTypePing    = "ping"
	FrameTypePong    = "pong"
	FrameTypeError   = "error"
)

// InboundFrame is what the client sends over the websocket.
type InboundFrame struct {
	Type      string `json:"type"`
	SessionId string `json:"sessionId,omitempty"`
	Message   string `json:"message,omitempty"`
}

// MessageView is one turn as rendered to the client.
type MessageView struct {
	Content   string    `json:"content"`
	Sender    string    `json:"sender"` // "bot" | "user"
	Timestamp time.Time `json:"timestamp"`
}

type InitFrame struct {
	Type      string        `json:"type"`
	SessionId string        `json:"sessionId"`
	Recovered bool          `json:"recovered"`
	Messages  []MessageView `json:"messages"`
}

type MessageFrame struct {
	Type     string        `json:"type"`
	Messages []MessageView `json:"messages"`
}

type PongFrame struct {
	Type string `json:"type"`
}

type ErrorFrame struct {
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Stateless fallback path.

type StartSessionResponse struct {
	SessionId string        `json:"sessionId"`
	Messages  []MessageView `json:"messages"`
}

type GetSessionResponse struct {
	SessionId   string        `json:"sessionId"`
	CurrentStep string        `json:"currentStep"`
	Messages    []MessageView `json:"messages"`
	PatientId   string        `json:"patientId,omitempty"`
}

type SendMessageRequest struct {
	SessionId string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	SessionId string        `json:"sessionId"`
	Messages  []MessageView `json:"messages"`
}

// AppointmentConfirmedMessage is the payload routed through the in-process
// event bus to the confirmation consumer.
type AppointmentConfirmedMessage struct {
	AppointmentId  string    `json:"appointment_id"`
	SessionId      string    `json:"session_id"`
	PatientId      string    `json:"patient_id"`
	PatientEmail   string    `json:"patient_email,omitempty"`
	PatientName    string    `json:"patient_name,omitempty"`
	Professional   string    `json:"professional"`
	ProfessionalId string    `json:"professional_id"`
	StartAt        time.Time `json:"start_at"`
	EndAt          time.Time `json:"end_at"`
}
