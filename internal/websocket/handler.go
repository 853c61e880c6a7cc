package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"medibook-be/internal/constant"
	"medibook-be/internal/dto"
	"medibook-be/internal/entity"
	"medibook-be/internal/pkg/logger"
	"medibook-be/internal/pkg/serverutils"
	"medibook-be/internal/service"
)

// Gateway bridges websocket frames to the chat service. One ServeWS call per
// connection; all frames from one connection are handled sequentially, which
// together with the service's per-session lock keeps turns ordered.
type Gateway struct {
	hub         *Hub
	chatService service.IChatService
	logger      logger.ILogger
	replayLimit int
	initTimeout time.Duration
}

func NewGateway(hub *Hub, chatService service.IChatService, log logger.ILogger, replayLimit int, initTimeout time.Duration) *Gateway {
	return &Gateway{
		hub:         hub,
		chatService: chatService,
		logger:      log,
		replayLimit: replayLimit,
		initTimeout: initTimeout,
	}
}

// ServeWS owns a single connection's read loop.
func (g *Gateway) ServeWS(conn *websocket.Conn) {
	client := newClient(g.hub, conn, uuid.NewString())
	g.hub.Register(client)
	defer func() {
		g.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetPongHandler(func(string) error {
		client.markAlive()
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Warn("ChatGateway", "Read error", map[string]interface{}{"client_id": client.ID, "error": err})
			}
			return
		}
		client.markAlive()
		g.handleFrame(client, data)
	}
}

func (g *Gateway) handleFrame(client *Client, data []byte) {
	var frame dto.InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		g.sendError(client, serverutils.NewValidationError("malformed frame"))
		return
	}

	switch frame.Type {
	case dto.FrameTypePing:
		g.send(client, dto.PongFrame{Type: dto.FrameTypePong})
	case dto.FrameTypeInit:
		g.handleInit(client, frame)
	case dto.FrameTypeMessage:
		g.handleMessage(client, frame)
	default:
		g.sendError(client, serverutils.NewValidationError("unknown frame type"))
	}
}

// handleInit attaches the connection to a session: resuming the supplied one
// when it exists, otherwise starting fresh. Replayed history rides on the
// init frame so the widget can rebuild its transcript.
func (g *Gateway) handleInit(client *Client, frame dto.InboundFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), g.initTimeout)
	defer cancel()

	var (
		session   *entity.ChatSession
		messages  []*entity.ChatMessage
		recovered bool
		err       error
	)
	if frame.SessionId == "" {
		session, messages, err = g.chatService.StartNewSession(ctx)
	} else {
		session, recovered, err = g.chatService.GetOrCreateSession(ctx, frame.SessionId)
		if err == nil {
			messages, err = g.chatService.ReplayMessages(ctx, session.Id, g.replayLimit)
		}
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = serverutils.NewTimeoutError("session initialization timed out", err)
		}
		g.sendError(client, err)
		return
	}

	client.attachSession(session.Id)
	g.send(client, dto.InitFrame{
		Type:      dto.FrameTypeInit,
		SessionId: session.Id,
		Recovered: recovered,
		Messages:  toMessageViews(messages),
	})
}

func (g *Gateway) handleMessage(client *Client, frame dto.InboundFrame) {
	sessionID := frame.SessionId
	if sessionID == "" {
		sessionID = client.sessionID()
	}
	if sessionID == "" {
		g.sendError(client, serverutils.NewValidationError("no session attached, send init first"))
		return
	}
	if frame.Message == "" {
		g.sendError(client, serverutils.NewValidationError("message is required"))
		return
	}

	replies, err := g.chatService.ProcessMessage(context.Background(), sessionID, frame.Message)
	if err != nil {
		g.sendError(client, err)
		return
	}
	g.send(client, dto.MessageFrame{
		Type:     dto.FrameTypeMessage,
		Messages: toMessageViews(replies),
	})
}

func (g *Gateway) send(client *Client, frame interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		g.logger.Error("ChatGateway", "Frame marshal failed", map[string]interface{}{"error": err})
		return
	}
	g.hub.Deliver(client.ID, payload)
}

func (g *Gateway) sendError(client *Client, err error) {
	appErr, ok := serverutils.AsAppError(err)
	if !ok {
		g.logger.Error("ChatGateway", "Unexpected error", map[string]interface{}{"error": err})
		appErr = serverutils.NewInternalError(err)
	}
	g.send(client, dto.ErrorFrame{
		Type:      dto.FrameTypeError,
		Code:      appErr.Code,
		Message:   appErr.Message,
		Retryable: appErr.Retryable,
	})
}

// toMessageViews renders persisted messages for the wire.
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
