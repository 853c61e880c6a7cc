package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"medibook-be/internal/constant"
	"medibook-be/internal/entity"
	"medibook-be/internal/pkg/serverutils"
	"medibook-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture(store *fakeStore) IChatService {
	factory := &fakeRepoFactory{store: store}
	availability := NewAvailabilityService(factory, 30)
	appointments := NewAppointmentService(factory)
	return NewChatService(
		factory,
		availability,
		appointments,
		memory.NewSessionLocker(),
		nil,
		testLogger{},
		ChatServiceConfig{SlotSearchDays: 7, MaxSlotsPresented: 6},
	)
}

// seedBookableWorld adds one patient and one professional available every day
// of the week, so slot search always finds options regardless of when the
// test runs.
func seedBookableWorld(store *fakeStore) (patientID, professionalID uuid.UUID) {
	patientID = uuid.New()
	store.patients = append(store.patients, &entity.Patient{
		Id:             patientID,
		DocumentNumber: "12345678",
		FullName:       "Laura Martinez",
		Email:          "laura.martinez@example.com",
	})

	professionalID = uuid.New()
	store.professionals = append(store.professionals, &entity.Professional{
		Id:              professionalID,
		FullName:        "Dr. Maria Ruiz",
		City:            "Madrid",
		Specialty:       "Cardiology",
		SlotDurationMin: 30,
	})
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		store.windows = append(store.windows, &entity.WeeklyAvailability{
			Id:             uuid.New(),
			ProfessionalId: professionalID,
			Weekday:        weekday,
			StartTime:      "09:00",
			EndTime:        "10:00",
			Active:         true,
		})
	}
	return patientID, professionalID
}

func TestStartNewSession(t *testing.T) {
	store := newFakeStore()
	svc := newChatFixture(store)

	session, messages, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, constant.StepValidateDocument, session.CurrentStep)
	assert.Equal(t, constant.SessionStatusActive, session.Status)
	require.Len(t, messages, 1)
	assert.Equal(t, constant.MessageDirectionOutgoing, messages[0].Direction)
	assert.Equal(t, constant.PromptGreeting, messages[0].Content)

	// Both the session and the greeting are persisted.
	assert.Contains(t, store.sessions, session.Id)
	require.Len(t, store.messages, 1)
	assert.Equal(t, session.Id, store.messages[0].ChatSessionId)
}

func TestGetOrCreateSession(t *testing.T) {
	store := newFakeStore()
	svc := newChatFixture(store)

	existing, _, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	session, found, err := svc.GetOrCreateSession(context.Background(), existing.Id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, existing.Id, session.Id)

	session, found, err = svc.GetOrCreateSession(context.Background(), "widget-abc-123")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "widget-abc-123", session.Id)
	assert.Equal(t, constant.StepValidateDocument, session.CurrentStep)
}

func TestProcessMessageUnknownSession(t *testing.T) {
	svc := newChatFixture(newFakeStore())

	_, err := svc.ProcessMessage(context.Background(), "missing", "hello")
	require.Error(t, err)

	appErr, ok := serverutils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, serverutils.CodeNotFound, appErr.Code)
}

func TestProcessMessageInvalidDocument(t *testing.T) {
	store := newFakeStore()
	svc := newChatFixture(store)

	session, _, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	for _, input := range []string{"abc", "123", "1234567890123", "12 34 56"} {
		replies, err := svc.ProcessMessage(context.Background(), session.Id, input)
		require.NoError(t, err)
		require.Len(t, replies, 1)
		assert.Equal(t, constant.PromptRetryDocument, replies[0].Content)
	}

	// The step never advanced and no patient data leaked into the session.
	stored := store.sessions[session.Id]
	assert.Equal(t, constant.StepValidateDocument, stored.CurrentStep)
	assert.Nil(t, stored.PatientId)
	assert.NotContains(t, stored.ChatData, constant.ChatDataDocumentNumber)
}

func TestProcessMessageUnknownPatient(t *testing.T) {
	store := newFakeStore()
	svc := newChatFixture(store)

	session, _, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	replies, err := svc.ProcessMessage(context.Background(), session.Id, "99999999")
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, constant.PromptUnknownPatient, replies[0].Content)
	assert.Equal(t, constant.StepValidateDocument, store.sessions[session.Id].CurrentStep)
}

func TestProcessMessageValidDocumentAdvances(t *testing.T) {
	store := newFakeStore()
	patientID, _ := seedBookableWorld(store)
	svc := newChatFixture(store)

	session, _, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	replies, err := svc.ProcessMessage(context.Background(), session.Id, "12345678")
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0].Content, "Laura Martinez")
	assert.Contains(t, replies[1].Content, "Madrid")
	assert.True(t, replies[0].CreatedAt.Before(replies[1].CreatedAt))

	stored := store.sessions[session.Id]
	assert.Equal(t, constant.StepSelectCity, stored.CurrentStep)
	require.NotNil(t, stored.PatientId)
	assert.Equal(t, patientID, *stored.PatientId)
	assert.Equal(t, "12345678", stored.ChatData[constant.ChatDataDocumentNumber])
}

func TestProcessMessageInvalidSelectionStays(t *testing.T) {
	store := newFakeStore()
	seedBookableWorld(store)
	svc := newChatFixture(store)

	session, _, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	_, err = svc.ProcessMessage(context.Background(), session.Id, "12345678")
	require.NoError(t, err)

	replies, err := svc.ProcessMessage(context.Background(), session.Id, "42")
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Content, constant.PromptRetrySelection)
	assert.Equal(t, constant.StepSelectCity, store.sessions[session.Id].CurrentStep)
}

func TestProcessMessageConcurrentTurnsSerialized(t *testing.T) {
	store := newFakeStore()
	seedBookableWorld(store)
	svc := newChatFixture(store)

	session, _, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	// Both turns submit the same valid document at the same time. Exactly
	// one validates it; the other runs after, sees the advanced step and
	// gets a selection re-prompt.
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.ProcessMessage(context.Background(), session.Id, "12345678")
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	stored := store.sessions[session.Id]
	assert.Equal(t, constant.StepSelectCity, stored.CurrentStep)
	assert.Equal(t, constant.SessionStatusActive, stored.Status)
	assert.Equal(t, "12345678", stored.ChatData[constant.ChatDataDocumentNumber])

	// Turn atomicity held: two INCOMING messages, each answered before the
	// next INCOMING for the session.
	var incoming int
	awaitingReply := false
	for _, m := range store.messages {
		switch m.Direction {
		case constant.MessageDirectionIncoming:
			assert.False(t, awaitingReply, "turns interleaved in the message log")
			incoming++
			awaitingReply = true
		case constant.MessageDirectionOutgoing:
			awaitingReply = false
		}
	}
	assert.Equal(t, 2, incoming)
	assert.False(t, awaitingReply)
}

func TestFullBookingFlow(t *testing.T) {
	store := newFakeStore()
	patientID, professionalID := seedBookableWorld(store)
	svc := newChatFixture(store)

	session, _, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.ProcessMessage(ctx, session.Id, "12345678")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, session.Id, "Madrid")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, session.Id, "Cardiology")
	require.NoError(t, err)

	replies, err := svc.ProcessMessage(ctx, session.Id, "1") // First visit
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Content, constant.PromptSlots)
	assert.Equal(t, constant.StepConfirmAppointment, store.sessions[session.Id].CurrentStep)

	replies, err = svc.ProcessMessage(ctx, session.Id, "1")
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Content, constant.PromptCompleted)

	stored := store.sessions[session.Id]
	assert.Equal(t, constant.StepCompleted, stored.CurrentStep)
	assert.Equal(t, constant.SessionStatusCompleted, stored.Status)
	require.NotNil(t, stored.AppointmentId)

	require.Len(t, store.appointments, 1)
	booked := store.appointments[0]
	assert.Equal(t, *stored.AppointmentId, booked.Id)
	assert.Equal(t, professionalID, booked.ProfessionalId)
	assert.Equal(t, patientID, booked.PatientId)
	assert.Equal(t, constant.AppointmentStatusConfirmed, booked.Status)
	require.NotNil(t, booked.ChatSessionId)
	assert.Equal(t, session.Id, *booked.ChatSessionId)

	// The finished session rejects further turns.
	_, err = svc.ProcessMessage(ctx, session.Id, "hello?")
	require.Error(t, err)
	appErr, ok := serverutils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, serverutils.CodeConflict, appErr.Code)
	assert.False(t, appErr.Retryable)
}

func TestConfirmSlotTaken(t *testing.T) {
	store := newFakeStore()
	_, professionalID := seedBookableWorld(store)
	svc := newChatFixture(store)

	session, _, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	for _, input := range []string{"12345678", "Madrid", "Cardiology", "1"} {
		_, err = svc.ProcessMessage(ctx, session.Id, input)
		require.NoError(t, err)
	}

	// Every remaining slot disappears between presentation and confirmation.
	store.blocks = append(store.blocks, &entity.TimeBlock{
		Id:             uuid.New(),
		ProfessionalId: professionalID,
		StartAt:        time.Now().AddDate(0, 0, -1),
		EndAt:          time.Now().AddDate(0, 0, 30),
		Reason:         "leave",
	})

	replies, err := svc.ProcessMessage(ctx, session.Id, "1")
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, constant.PromptNoSlots, replies[0].Content)

	// No appointment was created and the session can still retry.
	assert.Empty(t, store.appointments)
	stored := store.sessions[session.Id]
	assert.Equal(t, constant.StepConfirmAppointment, stored.CurrentStep)
	assert.Equal(t, constant.SessionStatusActive, stored.Status)
}

func TestReplayMessages(t *testing.T) {
	store := newFakeStore()
	svc := newChatFixture(store)

	session, _, err := svc.StartNewSession(context.Background())
	require.NoError(t, err)

	base := time.Now()
	for i := 0; i < 5; i++ {
		store.messages = append(store.messages, &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: session.Id,
			Direction:     constant.MessageDirectionIncoming,
			Content:       string(rune('a' + i)),
			CreatedAt:     base.Add(time.Duration(i+1) * time.Second),
		})
	}

	replayed, err := svc.ReplayMessages(context.Background(), session.Id, 3)
	require.NoError(t, err)
	require.Len(t, replayed, 3)
	assert.Equal(t, "c", replayed[0].Content)
	assert.Equal(t, "d", replayed[1].Content)
	assert.Equal(t, "e", replayed[2].Content)
}
