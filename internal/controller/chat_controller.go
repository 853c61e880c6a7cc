package controller

import (
	"medibook-be/internal/constant"
	"medibook-be/internal/dto"
	"medibook-be/internal/entity"
	"medibook-be/internal/pkg/serverutils"
	"medibook-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IChatController is the stateless HTTP fallback for clients that cannot
// hold a websocket open. Same sessions, same turn semantics.
type IChatController interface {
	RegisterRoutes(r fiber.Router)
	StartSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("/session", c.StartSession)
	h.Get("/session/:id", c.GetSession)
	h.Post("/message", c.SendMessage)
}

func (c *chatController) StartSession(ctx *fiber.Ctx) error {
	session, messages, err := c.service.StartNewSession(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start session", dto.StartSessionResponse{
		SessionId: session.Id,
		Messages:  toMessageViews(messages),
	}))
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	session, messages, err := c.service.GetSession(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	res := dto.GetSessionResponse{
		SessionId:   session.Id,
		CurrentStep: session.CurrentStep,
		Messages:    toMessageViews(messages),
	}
	if session.PatientId != nil {
		res.PatientId = session.PatientId.String()
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	replies, err := c.service.ProcessMessage(ctx.Context(), req.SessionId, req.Message)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", dto.SendMessageResponse{
		SessionId: req.SessionId,
		Messages:  toMessageViews(replies),
	}))
}

func toMessageViews(messages []*entity.ChatMessage) []dto.MessageView {
	views := make([]dto.MessageView, 0, len(messages))
	for _, m := range messages {
		sender := "bot"
		if m.Direction == constant.MessageDirectionIncoming {
			sender = "user"
		}
		views = append(views, dto.MessageView{
			Content:   m.Content,
			Sender:    sender,
			Timestamp: m.CreatedAt,
		})
	}
	return views
}
