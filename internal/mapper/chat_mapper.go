package mapper

import (
	"time"

	"medibook-be/internal/entity"
	"medibook-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:                s.Id,
		PatientId:         s.PatientId,
		DocumentNumber:    s.DocumentNumber,
		CurrentStep:       s.CurrentStep,
		ChatData:          map[string]interface{}(s.ChatData),
		Status:            s.Status,
		AppointmentId:     s.AppointmentId,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         updatedAt,
		LastInteractionAt: s.LastInteractionAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	chatData := s.ChatData
	if chatData == nil {
		chatData = map[string]interface{}{}
	}

	return &model.ChatSession{
		Id:                s.Id,
		PatientId:         s.PatientId,
		DocumentNumber:    s.DocumentNumber,
		CurrentStep:       s.CurrentStep,
		ChatData:          datatypes.JSONMap(chatData),
		Status:            s.Status,
		AppointmentId:     s.AppointmentId,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         updatedAt,
		LastInteractionAt: s.LastInteractionAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Direction:     msg.Direction,
		Content:       msg.Content,
		Metadata:      map[string]interface{}(msg.Metadata),
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Direction:     msg.Direction,
		Content:       msg.Content,
		Metadata:      datatypes.JSONMap(msg.Metadata),
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessagesToEntities(models []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(models))
	for i, msg := range models {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
