package service

import (
	"context"
	"sort"
	"time"

	"medibook-be/internal/entity"
	"medibook-be/internal/repository/contract"
	"medibook-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the database. Rollback restores the
// snapshot taken at Begin, which is enough transactional behavior for the
// service scenarios exercised here.
type fakeStore struct {
	sessions      map[string]*entity.ChatSession
	messages      []*entity.ChatMessage
	patients      []*entity.Patient
	professionals []*entity.Professional
	windows       []*entity.WeeklyAvailability
	blocks        []*entity.TimeBlock
	appointments  []*entity.Appointment
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*entity.ChatSession{}}
}

func cloneSession(s *entity.ChatSession) *entity.ChatSession {
	cp := *s
	if s.ChatData != nil {
		cp.ChatData = make(map[string]interface{}, len(s.ChatData))
		for k, v := range s.ChatData {
			cp.ChatData[k] = v
		}
	}
	return &cp
}

func (s *fakeStore) clone() *fakeStore {
	cp := &fakeStore{
		sessions:      make(map[string]*entity.ChatSession, len(s.sessions)),
		messages:      append([]*entity.ChatMessage(nil), s.messages...),
		patients:      append([]*entity.Patient(nil), s.patients...),
		professionals: append([]*entity.Professional(nil), s.professionals...),
		windows:       append([]*entity.WeeklyAvailability(nil), s.windows...),
		blocks:        append([]*entity.TimeBlock(nil), s.blocks...),
		appointments:  append([]*entity.Appointment(nil), s.appointments...),
	}
	for id, session := range s.sessions {
		cp.sessions[id] = cloneSession(session)
	}
	return cp
}

type fakeRepoFactory struct {
	store *fakeStore
}

func (f *fakeRepoFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

type fakeUnitOfWork struct {
	store    *fakeStore
	snapshot *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.snapshot = u.store.clone()
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.snapshot = nil
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if u.snapshot != nil {
		*u.store = *u.snapshot
		u.snapshot = nil
	}
	return nil
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}

func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}

func (u *fakeUnitOfWork) WeeklyAvailabilityRepository() contract.WeeklyAvailabilityRepository {
	return &fakeAvailabilityRepo{store: u.store}
}

func (u *fakeUnitOfWork) TimeBlockRepository() contract.TimeBlockRepository {
	return &fakeBlockRepo{store: u.store}
}

func (u *fakeUnitOfWork) AppointmentRepository() contract.AppointmentRepository {
	return &fakeAppointmentRepo{store: u.store}
}

func (u *fakeUnitOfWork) PatientRepository() contract.PatientRepository {
	return &fakePatientRepo{store: u.store}
}

func (u *fakeUnitOfWork) ProfessionalRepository() contract.ProfessionalRepository {
	return &fakeProfessionalRepo{store: u.store}
}

type fakeSessionRepo struct {
	store *fakeStore
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.sessions[session.Id] = cloneSession(session)
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.store.sessions[session.Id] = cloneSession(session)
	return nil
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id string) (*entity.ChatSession, error) {
	session, ok := r.store.sessions[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (r *fakeSessionRepo) FindStale(ctx context.Context, status string, cutoff time.Time) ([]*entity.ChatSession, error) {
	var stale []*entity.ChatSession
	for _, session := range r.store.sessions {
		if session.Status == status && session.LastInteractionAt.Before(cutoff) {
			stale = append(stale, cloneSession(session))
		}
	}
	return stale, nil
}

type fakeMessageRepo struct {
	store *fakeStore
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	cp := *message
	r.store.messages = append(r.store.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error) {
	var out []*entity.ChatMessage
	for _, m := range r.store.messages {
		if m.ChatSessionId == sessionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) ListRecent(ctx context.Context, sessionID string, n int) ([]*entity.ChatMessage, error) {
	all, _ := r.ListBySession(ctx, sessionID)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

type fakeAvailabilityRepo struct {
	store *fakeStore
}

func (r *fakeAvailabilityRepo) ListActive(ctx context.Context, professionalID uuid.UUID) ([]*entity.WeeklyAvailability, error) {
	var out []*entity.WeeklyAvailability
	for _, w := range r.store.windows {
		if w.ProfessionalId == professionalID && w.Active {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeAvailabilityRepo) ListActiveForWeekday(ctx context.Context, professionalID uuid.UUID, weekday time.Weekday) ([]*entity.WeeklyAvailability, error) {
	active, _ := r.ListActive(ctx, professionalID)
	var out []*entity.WeeklyAvailability
	for _, w := range active {
		if w.Weekday == weekday {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakeBlockRepo struct {
	store *fakeStore
}

func (r *fakeBlockRepo) ListOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time) ([]*entity.TimeBlock, error) {
	var out []*entity.TimeBlock
	for _, b := range r.store.blocks {
		if b.ProfessionalId == professionalID && b.StartAt.Before(end) && start.Before(b.EndAt) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	store *fakeStore
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appointment *entity.Appointment) error {
	cp := *appointment
	r.store.appointments = append(r.store.appointments, &cp)
	return nil
}

func (r *fakeAppointmentRepo) ListOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time, statuses []string) ([]*entity.Appointment, error) {
	var out []*entity.Appointment
	for _, a := range r.store.appointments {
		if a.ProfessionalId != professionalID {
			continue
		}
		if !a.StartAt.Before(end) || !start.Before(a.EndAt) {
			continue
		}
		for _, status := range statuses {
			if a.Status == status {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

type fakePatientRepo struct {
	store *fakeStore
}

func (r *fakePatientRepo) FindByDocument(ctx context.Context, documentNumber string) (*entity.Patient, error) {
	for _, p := range r.store.patients {
		if p.DocumentNumber == documentNumber {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePatientRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	for _, p := range r.store.patients {
		if p.Id == id {
			return p, nil
		}
	}
	return nil, nil
}

type fakeProfessionalRepo struct {
	store *fakeStore
}

func (r *fakeProfessionalRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Professional, error) {
	for _, p := range r.store.professionals {
		if p.Id == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProfessionalRepo) ListCities(ctx context.Context) ([]string, error) {
	return distinct(r.store.professionals, func(p *entity.Professional) (string, bool) {
		return p.City, true
	}), nil
}

func (r *fakeProfessionalRepo) ListSpecialties(ctx context.Context, city string) ([]string, error) {
	return distinct(r.store.professionals, func(p *entity.Professional) (string, bool) {
		return p.Specialty, p.City == city
	}), nil
}

func (r *fakeProfessionalRepo) ListByCityAndSpecialty(ctx context.Context, city, specialty string) ([]*entity.Professional, error) {
	var out []*entity.Professional
	for _, p := range r.store.professionals {
		if p.City == city && p.Specialty == specialty {
			out = append(out, p)
		}
	}
	return out, nil
}

func distinct(professionals []*entity.Professional, key func(*entity.Professional) (string, bool)) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range professionals {
		k, ok := key(p)
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// testLogger drops everything. Assertions are on behavior, not log output.
type testLogger struct{}

func (testLogger) Debug(module, message string, details map[string]interface{}) {}
func (testLogger) Info(module, message string, details map[string]interface{})  {}
func (testLogger) Warn(module, message string, details map[string]interface{})  {}
func (testLogger) Error(module, message string, details map[string]interface{}) {}
func (testLogger) Sync() error                                                  { return nil }
