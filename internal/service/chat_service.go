package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"medibook-be/internal/constant"
	"medibook-be/internal/dto"
	"medibook-be/internal/entity"
	"medibook-be/internal/pkg/logger"
	"medibook-be/internal/pkg/serverutils"
	"medibook-be/internal/repository/memory"
	"medibook-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IChatService drives the booking conversation state machine. Every turn is
// committed atomically: the session update and the appended messages either
// all land or none do.
type IChatService interface {
	StartNewSession(ctx context.Context) (*entity.ChatSession, []*entity.ChatMessage, error)
	// GetOrCreateSession returns the session when it exists (found=true) or
	// creates a fresh one reusing the caller-supplied identifier.
	GetOrCreateSession(ctx context.Context, sessionID string) (*entity.ChatSession, bool, error)
	GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, []*entity.ChatMessage, error)
	// ReplayMessages returns the last n messages in chronological order.
	ReplayMessages(ctx context.Context, sessionID string, n int) ([]*entity.ChatMessage, error)
	// ProcessMessage runs one turn and returns the bot replies appended for
	// it, in order.
	ProcessMessage(ctx context.Context, sessionID, text string) ([]*entity.ChatMessage, error)
}

type ChatServiceConfig struct {
	SlotSearchDays    int
	MaxSlotsPresented int
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	availability IAvailabilityService
	appointments IAppointmentService
	locker       *memory.SessionLocker
	publisher    IPublisherService
	logger       logger.ILogger
	cfg          ChatServiceConfig
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	availability IAvailabilityService,
	appointments IAppointmentService,
	locker *memory.SessionLocker,
	publisher IPublisherService,
	log logger.ILogger,
	cfg ChatServiceConfig,
) IChatService {
	if cfg.SlotSearchDays <= 0 {
		cfg.SlotSearchDays = 7
	}
	if cfg.MaxSlotsPresented <= 0 {
		cfg.MaxSlotsPresented = 6
	}
	return &chatService{
		uowFactory:   uowFactory,
		availability: availability,
		appointments: appointments,
		locker:       locker,
		publisher:    publisher,
		logger:       log,
		cfg:          cfg,
	}
}

func (cs *chatService) StartNewSession(ctx context.Context) (*entity.ChatSession, []*entity.ChatMessage, error) {
	return cs.createSession(ctx, uuid.NewString())
}

func (cs *chatService) GetOrCreateSession(ctx context.Context, sessionID string) (*entity.ChatSession, bool, error) {
	lock := cs.locker.Get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindByID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if session != nil {
		return session, true, nil
	}

	session, _, err = cs.createSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	return session, false, nil
}

func (cs *chatService) createSession(ctx context.Context, sessionID string) (*entity.ChatSession, []*entity.ChatMessage, error) {
	now := time.Now()
	session := &entity.ChatSession{
		Id:                sessionID,
		CurrentStep:       constant.StepValidateDocument,
		ChatData:          map[string]interface{}{},
		Status:            constant.SessionStatusActive,
		CreatedAt:         now,
		LastInteractionAt: now,
	}
	greeting := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionID,
		Direction:     constant.MessageDirectionOutgoing,
		Content:       constant.PromptGreeting,
		CreatedAt:     now,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		uow.Rollback()
		return nil, nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, greeting); err != nil {
		uow.Rollback()
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}

	cs.logger.Info("ChatService", "Session created", map[string]interface{}{"session_id": sessionID})
	return session, []*entity.ChatMessage{greeting}, nil
}

func (cs *chatService) GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, []*entity.ChatMessage, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, serverutils.NewNotFoundError("session not found")
	}
	messages, err := uow.ChatMessageRepository().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, messages, nil
}

func (cs *chatService) ReplayMessages(ctx context.Context, sessionID string, n int) ([]*entity.ChatMessage, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	recent, err := uow.ChatMessageRepository().ListRecent(ctx, sessionID, n)
	if err != nil {
		return nil, err
	}
	// ListRecent is newest-first; reverse for chronological replay.
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}

func (cs *chatService) ProcessMessage(ctx context.Context, sessionID, text string) ([]*entity.ChatMessage, error) {
	// Serialize concurrent turns for the same session: exactly one advances
	// the step, the other observes the committed state behind it.
	lock := cs.locker.Get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	session, err := uow.ChatSessionRepository().FindByID(ctx, sessionID)
	if err != nil {
		uow.Rollback()
		return nil, err
	}
	if session == nil {
		uow.Rollback()
		return nil, serverutils.NewNotFoundError("session not found")
	}
	if session.IsTerminal() {
		uow.Rollback()
		return nil, serverutils.NewTerminalStateError(constant.PromptSessionClosed)
	}
	if session.ChatData == nil {
		session.ChatData = map[string]interface{}{}
	}

	now := time.Now()
	incoming := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionID,
		Direction:     constant.MessageDirectionIncoming,
		Content:       text,
		CreatedAt:     now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, incoming); err != nil {
		uow.Rollback()
		return nil, err
	}

	result, err := cs.handleStep(ctx, uow, session, strings.TrimSpace(text))
	if err != nil {
		uow.Rollback()
		if _, ok := serverutils.AsAppError(err); ok {
			return nil, err
		}
		cs.logger.Error("ChatService", "Unexpected step handler failure", map[string]interface{}{
			"session_id": sessionID,
			"step":       session.CurrentStep,
			"error":      err,
		})
		return nil, serverutils.NewInternalError(err)
	}

	session.LastInteractionAt = now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		uow.Rollback()
		return nil, err
	}

	// Strictly increasing timestamps keep replay ordering stable even when
	// the database clock has coarse resolution.
	outgoing := make([]*entity.ChatMessage, 0, len(result.replies))
	for i, reply := range result.replies {
		msg := &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: sessionID,
			Direction:     constant.MessageDirectionOutgoing,
			Content:       reply.content,
			Metadata:      reply.metadata,
			CreatedAt:     now.Add(time.Duration(i+1) * time.Millisecond),
		}
		if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
			uow.Rollback()
			return nil, err
		}
		outgoing = append(outgoing, msg)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Events fire only for committed turns.
	if result.confirmed != nil {
		cs.publishConfirmation(ctx, result.confirmed)
	}
	return outgoing, nil
}

// reply is one pending OUTGOING message.
type reply struct {
	content  string
	metadata map[string]interface{}
}

type stepResult struct {
	replies   []reply
	confirmed *dto.AppointmentConfirmedMessage
}

func (cs *chatService) handleStep(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, input string) (*stepResult, error) {
	switch session.CurrentStep {
	case constant.StepValidateDocument:
		return cs.handleValidateDocument(ctx, uow, session, input)
	case constant.StepSelectCity:
		return cs.handleSelectCity(ctx, uow, session, input)
	case constant.StepSelectSpecialty:
		return cs.handleSelectSpecialty(ctx, uow, session, input)
	case constant.StepSelectAppointmentType:
		return cs.handleSelectAppointmentType(ctx, uow, session, input)
	case constant.StepConfirmAppointment:
		return cs.handleConfirmAppointment(ctx, uow, session, input)
	default:
		return nil, fmt.Errorf("unknown step %q", session.CurrentStep)
	}
}

func (cs *chatService) handleValidateDocument(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, input string) (*stepResult, error) {
	if !isDocumentNumber(input) {
		return retryResult(constant.PromptRetryDocument), nil
	}

	patient, err := uow.PatientRepository().FindByDocument(ctx, input)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return retryResult(constant.PromptUnknownPatient), nil
	}

	cities, err := uow.ProfessionalRepository().ListCities(ctx)
	if err != nil {
		return nil, err
	}

	session.DocumentNumber = input
	session.PatientId = &patient.Id
	session.ChatData[constant.ChatDataDocumentNumber] = input
	session.ChatData[constant.ChatDataPatientID] = patient.Id.String()
	session.ChatData[constant.ChatDataOfferedCities] = toInterfaceSlice(cities)
	session.CurrentStep = constant.StepSelectCity

	return &stepResult{replies: []reply{
		{content: fmt.Sprintf("Welcome back, %s!", patient.FullName)},
		{
			content:  constant.PromptCity + "\n" + numberedList(cities),
			metadata: map[string]interface{}{"options": cities},
		},
	}}, nil
}

func (cs *chatService) handleSelectCity(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, input string) (*stepResult, error) {
	cities := asStringSlice(session.ChatData[constant.ChatDataOfferedCities])
	city, ok := parseSelection(input, cities)
	if !ok {
		return retryListResult(cities), nil
	}

	specialties, err := uow.ProfessionalRepository().ListSpecialties(ctx, city)
	if err != nil {
		return nil, err
	}

	session.ChatData[constant.ChatDataCity] = city
	session.ChatData[constant.ChatDataOfferedSpecialties] = toInterfaceSlice(specialties)
	session.CurrentStep = constant.StepSelectSpecialty

	return &stepResult{replies: []reply{{
		content:  fmt.Sprintf("Great, %s it is. Which specialty do you need?\n%s", city, numberedList(specialties)),
		metadata: map[string]interface{}{"options": specialties},
	}}}, nil
}

func (cs *chatService) handleSelectSpecialty(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, input string) (*stepResult, error) {
	specialties := asStringSlice(session.ChatData[constant.ChatDataOfferedSpecialties])
	specialty, ok := parseSelection(input, specialties)
	if !ok {
		return retryListResult(specialties), nil
	}

	session.ChatData[constant.ChatDataSpecialty] = specialty
	session.ChatData[constant.ChatDataOfferedTypes] = toInterfaceSlice(constant.AppointmentTypes)
	session.CurrentStep = constant.StepSelectAppointmentType

	return &stepResult{replies: []reply{{
		content:  fmt.Sprintf("What kind of appointment is it?\n%s", numberedList(constant.AppointmentTypes)),
		metadata: map[string]interface{}{"options": constant.AppointmentTypes},
	}}}, nil
}

func (cs *chatService) handleSelectAppointmentType(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, input string) (*stepResult, error) {
	types := asStringSlice(session.ChatData[constant.ChatDataOfferedTypes])
	appointmentType, ok := parseSelection(input, types)
	if !ok {
		return retryListResult(types), nil
	}

	city, _ := session.ChatData[constant.ChatDataCity].(string)
	specialty, _ := session.ChatData[constant.ChatDataSpecialty].(string)
	offered, err := cs.searchOpenSlots(ctx, uow, city, specialty)
	if err != nil {
		return nil, err
	}
	if len(offered) == 0 {
		// Stay on this step so the user can retry later.
		return retryResult(constant.PromptNoSlots), nil
	}

	session.ChatData[constant.ChatDataAppointmentType] = appointmentType
	session.ChatData[constant.ChatDataOfferedSlots] = offeredSlotsToChatData(offered)
	session.CurrentStep = constant.StepConfirmAppointment

	return &stepResult{replies: []reply{{
		content:  constant.PromptSlots + "\n" + numberedList(offeredSlotLabels(offered)),
		metadata: map[string]interface{}{"options": offeredSlotLabels(offered)},
	}}}, nil
}

func (cs *chatService) handleConfirmAppointment(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, input string) (*stepResult, error) {
	offered := offeredSlotsFromChatData(session.ChatData[constant.ChatDataOfferedSlots])
	idx, ok := parseIndex(input, len(offered))
	if !ok {
		return retryListResult(offeredSlotLabels(offered)), nil
	}
	chosen := offered[idx]

	if session.PatientId == nil {
		return nil, fmt.Errorf("session %s reached confirmation without a patient", session.Id)
	}

	appointment, err := cs.appointments.Book(ctx, BookAppointmentRequest{
		ProfessionalId: chosen.ProfessionalId,
		PatientId:      *session.PatientId,
		ChatSessionId:  session.Id,
		StartAt:        chosen.StartAt,
		EndAt:          chosen.EndAt,
	})
	if err != nil {
		if appErr, ok := serverutils.AsAppError(err); ok && appErr.Code == serverutils.CodeConflict {
			// Slot lost between presentation and confirmation: refresh the
			// options and stay on this step.
			city, _ := session.ChatData[constant.ChatDataCity].(string)
			specialty, _ := session.ChatData[constant.ChatDataSpecialty].(string)
			fresh, searchErr := cs.searchOpenSlots(ctx, uow, city, specialty)
			if searchErr != nil {
				return nil, searchErr
			}
			if len(fresh) == 0 {
				return retryResult(constant.PromptNoSlots), nil
			}
			session.ChatData[constant.ChatDataOfferedSlots] = offeredSlotsToChatData(fresh)
			return &stepResult{replies: []reply{{
				content:  constant.PromptSlotTaken + "\n" + numberedList(offeredSlotLabels(fresh)),
				metadata: map[string]interface{}{"options": offeredSlotLabels(fresh)},
			}}}, nil
		}
		return nil, err
	}

	session.AppointmentId = &appointment.Id
	session.CurrentStep = constant.StepCompleted
	session.Status = constant.SessionStatusCompleted

	confirmed := &dto.AppointmentConfirmedMessage{
		AppointmentId:  appointment.Id.String(),
		SessionId:      session.Id,
		PatientId:      appointment.PatientId.String(),
		Professional:   chosen.ProfessionalName,
		ProfessionalId: chosen.ProfessionalId.String(),
		StartAt:        appointment.StartAt,
		EndAt:          appointment.EndAt,
	}
	if patient, err := uow.PatientRepository().FindByID(ctx, appointment.PatientId); err == nil && patient != nil {
		confirmed.PatientEmail = patient.Email
		confirmed.PatientName = patient.FullName
	}

	return &stepResult{
		replies: []reply{{
			content: fmt.Sprintf("Booked: %s with %s. %s",
				chosen.Label(), chosen.ProfessionalName, constant.PromptCompleted),
			metadata: map[string]interface{}{"appointment_id": appointment.Id.String()},
		}},
		confirmed: confirmed,
	}, nil
}

func (cs *chatService) publishConfirmation(ctx context.Context, confirmed *dto.AppointmentConfirmedMessage) {
	if cs.publisher == nil {
		return
	}
	payload, err := json.Marshal(confirmed)
	if err != nil {
		cs.logger.Error("ChatService", "Failed to marshal confirmation event", map[string]interface{}{"error": err})
		return
	}
	// Auxiliary: a failed publish never fails the committed turn.
	if err := cs.publisher.Publish(ctx, payload); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish confirmation event", map[string]interface{}{
			"appointment_id": confirmed.AppointmentId,
			"error":          err.Error(),
		})
	}
}

// offeredSlot is one bookable option presented to the user.
type offeredSlot struct {
	ProfessionalId   uuid.UUID
	ProfessionalName string
	StartAt          time.Time
	EndAt            time.Time
}

func (o offeredSlot) Label() string {
	return o.StartAt.Format("Mon Jan 2 at 15:04")
}

// searchOpenSlots scans the next configured days for professionals matching
// the city and specialty, collecting up to MaxSlotsPresented options.
func (cs *chatService) searchOpenSlots(ctx context.Context, uow unitofwork.UnitOfWork, city, specialty string) ([]offeredSlot, error) {
	professionals, err := uow.ProfessionalRepository().ListByCityAndSpecialty(ctx, city, specialty)
	if err != nil {
		return nil, err
	}

	var offered []offeredSlot
	start := time.Now().AddDate(0, 0, 1) // tomorrow onwards
	for day := 0; day < cs.cfg.SlotSearchDays && len(offered) < cs.cfg.MaxSlotsPresented; day++ {
		date := start.AddDate(0, 0, day)
		for _, p := range professionals {
			slots, err := cs.availability.GetAvailableTimeSlots(ctx, p.Id, date)
			if err != nil {
				return nil, err
			}
			for _, slot := range slots {
				offered = append(offered, offeredSlot{
					ProfessionalId:   p.Id,
					ProfessionalName: p.FullName,
					StartAt:          slot.StartAt,
					EndAt:            slot.EndAt,
				})
				if len(offered) >= cs.cfg.MaxSlotsPresented {
					return offered, nil
				}
			}
		}
	}
	return offered, nil
}

// Chat data marshalling helpers. Values round-trip through JSONB, so slices
// come back as []interface{}.

func offeredSlotsToChatData(offered []offeredSlot) []interface{} {
	out := make([]interface{}, len(offered))
	for i, o := range offered {
		out[i] = map[string]interface{}{
			constant.ChatDataProfessionalID: o.ProfessionalId.String(),
			"professional":                  o.ProfessionalName,
			"start":                         o.StartAt.Format(time.RFC3339),
			"end":                           o.EndAt.Format(time.RFC3339),
		}
	}
	return out
}

func offeredSlotsFromChatData(v interface{}) []offeredSlot {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []offeredSlot
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id, err := uuid.Parse(str(m[constant.ChatDataProfessionalID]))
		if err != nil {
			continue
		}
		startAt, err := time.Parse(time.RFC3339, str(m["start"]))
		if err != nil {
			continue
		}
		endAt, err := time.Parse(time.RFC3339, str(m["end"]))
		if err != nil {
			continue
		}
		out = append(out, offeredSlot{
			ProfessionalId:   id,
			ProfessionalName: str(m["professional"]),
			StartAt:          startAt,
			EndAt:            endAt,
		})
	}
	return out
}

func offeredSlotLabels(offered []offeredSlot) []string {
	labels := make([]string, len(offered))
	for i, o := range offered {
		labels[i] = fmt.Sprintf("%s with %s", o.Label(), o.ProfessionalName)
	}
	return labels
}

func retryResult(prompt string) *stepResult {
	return &stepResult{replies: []reply{{content: prompt}}}
}

func retryListResult(options []string) *stepResult {
	content := constant.PromptRetrySelection
	if len(options) > 0 {
		content += "\n" + numberedList(options)
	}
	return retryResult(content)
}

func isDocumentNumber(input string) bool {
	if len(input) < 6 || len(input) > 12 {
		return false
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func numberedList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String()
}

// parseSelection accepts either a 1-based index into the offered options or
// an exact (case-insensitive) option name. Anything else is a retry.
func parseSelection(input string, options []string) (string, bool) {
	if idx, ok := parseIndex(input, len(options)); ok {
		return options[idx], true
	}
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(input), opt) {
			return opt, true
		}
	}
	return "", false
}

func parseIndex(input string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func asStringSlice(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, str(item))
		}
		return out
	default:
		return nil
	}
}

func toInterfaceSlice(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
