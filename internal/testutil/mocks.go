// Package testutil provides in-memory mock implementations of the
// repository and store interfaces for testing. The mocks mirror the
// conditional-write invariants the SQL layer enforces so lifecycle
// tests exercise the same transitions.
package testutil

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/alora-app/alora/internal/domain/enrollment"
	"github.com/alora-app/alora/internal/domain/module"
	"github.com/alora-app/alora/internal/domain/resettoken"
	"github.com/alora-app/alora/internal/domain/subscription"
	"github.com/alora-app/alora/internal/domain/user"
	"github.com/alora-app/alora/internal/llm"
	"github.com/alora-app/alora/internal/pkg/logger"
	"github.com/alora-app/alora/internal/prompt"
	"github.com/alora-app/alora/internal/session"
)

// NewTestLogger returns a quiet logger for tests.
func NewTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	Users       map[int64]*user.User
	NextID      int64
	CreateError error
	GetError    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:  make(map[int64]*user.User),
		NextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	for _, existing := range m.Users {
		if existing.Email == u.Email {
			return user.ErrDuplicateEmail
		}
	}
	u.ID = m.NextID
	m.NextID++
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.Users[u.ID] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *MockUserRepository) Activate(ctx context.Context, id int64) error {
	u, ok := m.Users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Status = user.StatusActive
	return nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	u, ok := m.Users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *MockUserRepository) UpsertExternal(ctx context.Context, identity user.ExternalIdentity) (*user.User, error) {
	for _, u := range m.Users {
		switch identity.Provider {
		case user.ProviderGoogle:
			if u.GoogleID != nil && *u.GoogleID == identity.Subject {
				return u, nil
			}
		case user.ProviderApple:
			if u.AppleID != nil && *u.AppleID == identity.Subject {
				return u, nil
			}
		}
	}
	for _, u := range m.Users {
		if u.Email == identity.Email {
			sub := identity.Subject
			if identity.Provider == user.ProviderGoogle {
				u.GoogleID = &sub
			} else {
				u.AppleID = &sub
			}
			u.Status = user.StatusActive
			return u, nil
		}
	}
	u := &user.User{
		Email:  identity.Email,
		Status: user.StatusActive,
	}
	if identity.Name != "" {
		name := identity.Name
		u.Name = &name
	}
	sub := identity.Subject
	if identity.Provider == user.ProviderGoogle {
		u.GoogleID = &sub
	} else {
		u.AppleID = &sub
	}
	if err := m.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// MockModuleRepository is a mock implementation of module.Repository
type MockModuleRepository struct {
	Modules     map[int64]*module.Module
	NextID      int64
	CreateError error
}

func NewMockModuleRepository() *MockModuleRepository {
	return &MockModuleRepository{
		Modules: make(map[int64]*module.Module),
		NextID:  1,
	}
}

func (m *MockModuleRepository) Create(ctx context.Context, mod *module.Module) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	mod.ID = m.NextID
	m.NextID++
	mod.CreatedAt = time.Now()
	m.Modules[mod.ID] = mod
	return nil
}

func (m *MockModuleRepository) GetByID(ctx context.Context, userID, id int64) (*module.Module, error) {
	mod, ok := m.Modules[id]
	if !ok || mod.UserID != userID {
		return nil, module.ErrNotFound
	}
	return mod, nil
}

func (m *MockModuleRepository) ListByUser(ctx context.Context, userID int64) ([]*module.Module, error) {
	var out []*module.Module
	for _, mod := range m.Modules {
		if mod.UserID == userID {
			out = append(out, mod)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// MockEnrollmentRepository is a mock implementation of
// enrollment.Repository. It enforces the same lifecycle guards as the
// SQL implementation.
type MockEnrollmentRepository struct {
	Enrollments map[int64]*enrollment.Enrollment
	NextID      int64
}

func NewMockEnrollmentRepository() *MockEnrollmentRepository {
	return &MockEnrollmentRepository{
		Enrollments: make(map[int64]*enrollment.Enrollment),
		NextID:      1,
	}
}

func (m *MockEnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	for _, existing := range m.Enrollments {
		if existing.UserID == e.UserID && existing.ModuleID == e.ModuleID &&
			existing.Status == enrollment.StatusActive {
			return enrollment.ErrActiveExists
		}
	}
	e.ID = m.NextID
	m.NextID++
	m.Enrollments[e.ID] = e
	return nil
}

func (m *MockEnrollmentRepository) GetByID(ctx context.Context, userID, id int64) (*enrollment.Enrollment, error) {
	e, ok := m.Enrollments[id]
	if !ok || e.UserID != userID {
		return nil, enrollment.ErrNotFound
	}
	return e, nil
}

func (m *MockEnrollmentRepository) ListByUser(ctx context.Context, userID int64) ([]*enrollment.Enrollment, error) {
	var out []*enrollment.Enrollment
	for _, e := range m.Enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockEnrollmentRepository) CompleteDay(ctx context.Context, userID, id int64, dc enrollment.DayCompletion) error {
	e, ok := m.Enrollments[id]
	if !ok || e.UserID != userID {
		return enrollment.ErrNotFound
	}
	if e.Status != enrollment.StatusActive {
		return enrollment.ErrNotActive
	}
	if e.CurrentDay != dc.DayNumber {
		return enrollment.ErrWrongDay
	}
	e.CompletedDays = append(e.CompletedDays, dc)
	e.CurrentDay++
	return nil
}

func (m *MockEnrollmentRepository) Finish(ctx context.Context, userID, id int64, totalDays int) error {
	e, ok := m.Enrollments[id]
	if !ok || e.UserID != userID {
		return enrollment.ErrNotFound
	}
	if e.Status != enrollment.StatusActive {
		return enrollment.ErrNotActive
	}
	if e.CurrentDay <= totalDays {
		return enrollment.ErrNotFinished
	}
	now := time.Now()
	e.Status = enrollment.StatusCompleted
	e.CompletedAt = &now
	return nil
}

func (m *MockEnrollmentRepository) Abandon(ctx context.Context, userID, id int64) error {
	e, ok := m.Enrollments[id]
	if !ok || e.UserID != userID {
		return enrollment.ErrNotFound
	}
	if e.Status != enrollment.StatusActive {
		return enrollment.ErrNotActive
	}
	e.Status = enrollment.StatusAbandoned
	return nil
}

// MockSubscriptionRepository is a mock implementation of
// subscription.Repository with the same event dedupe semantics.
type MockSubscriptionRepository struct {
	Subs   map[int64]*subscription.Subscription
	Events map[string]bool
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{
		Subs:   make(map[int64]*subscription.Subscription),
		Events: make(map[string]bool),
	}
}

func (m *MockSubscriptionRepository) GetByUser(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	sub, ok := m.Subs[userID]
	if !ok {
		return nil, subscription.ErrNotFound
	}
	return sub, nil
}

func (m *MockSubscriptionRepository) Apply(ctx context.Context, ev *subscription.Event, sub *subscription.Subscription) (bool, error) {
	if m.Events[ev.EventID] {
		return false, nil
	}
	m.Events[ev.EventID] = true
	if existing, ok := m.Subs[ev.UserID]; ok && ev.OccurredAt.Before(existing.EventAt) {
		return false, nil
	}
	m.Subs[ev.UserID] = sub
	return true, nil
}

// MockTokenRepository is a mock implementation of resettoken.Repository
type MockTokenRepository struct {
	Tokens []*resettoken.Token
	NextID int64
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{NextID: 1}
}

func (m *MockTokenRepository) Create(ctx context.Context, t *resettoken.Token) error {
	t.ID = m.NextID
	m.NextID++
	t.CreatedAt = time.Now()
	m.Tokens = append(m.Tokens, t)
	return nil
}

func (m *MockTokenRepository) Consume(ctx context.Context, userID int64, purpose, code string, now time.Time) error {
	for _, t := range m.Tokens {
		if t.UserID == userID && t.Purpose == purpose && t.Code == code &&
			!t.Used && t.ExpiresAt.After(now) {
			t.Used = true
			return nil
		}
	}
	return resettoken.ErrInvalidCode
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var kept []*resettoken.Token
	var n int64
	for _, t := range m.Tokens {
		if t.ExpiresAt.After(now) {
			kept = append(kept, t)
		} else {
			n++
		}
	}
	m.Tokens = kept
	return n, nil
}

// LastCode returns the most recently created code for a user and
// purpose, standing in for reading the email in tests.
func (m *MockTokenRepository) LastCode(userID int64, purpose string) string {
	for i := len(m.Tokens) - 1; i >= 0; i-- {
		if m.Tokens[i].UserID == userID && m.Tokens[i].Purpose == purpose {
			return m.Tokens[i].Code
		}
	}
	return ""
}

// MemorySessionStore is an in-memory session.Store for tests. Exchange
// and TakeState consume under a mutex, matching the atomicity the Redis
// implementation gets from GETDEL.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	states   map[string]string
	nextID   int64
}

type memorySession struct {
	identity session.Identity
	expires  time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		states:   make(map[string]string),
	}
}

func (m *MemorySessionStore) Mint(ctx context.Context, identity session.Identity, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := "sess-" + strconv.FormatInt(m.nextID, 10)
	m.sessions[id] = memorySession{identity: identity, expires: time.Now().Add(ttl)}
	return id, nil
}

func (m *MemorySessionStore) Exchange(ctx context.Context, id string) (*session.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, session.ErrExpired
	}
	delete(m.sessions, id)
	if time.Now().After(s.expires) {
		return nil, session.ErrExpired
	}
	identity := s.identity
	return &identity, nil
}

func (m *MemorySessionStore) PutState(ctx context.Context, state, redirectURI string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state] = redirectURI
	return nil
}

func (m *MemorySessionStore) TakeState(ctx context.Context, state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uri, ok := m.states[state]
	if !ok {
		return "", session.ErrExpired
	}
	delete(m.states, state)
	return uri, nil
}

// MockMailer records sent messages.
type MockMailer struct {
	Sent      []MockMail
	SendError error
}

type MockMail struct {
	To      string
	Subject string
	Body    string
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.Sent = append(m.Sent, MockMail{To: to, Subject: subject, Body: body})
	return nil
}

// MockCompleter returns canned completions and records prompts.
type MockCompleter struct {
	Response string
	Err      error
	Prompts  []prompt.Prompt
}

var _ llm.Completer = (*MockCompleter)(nil)

func (m *MockCompleter) Complete(ctx context.Context, p prompt.Prompt) (string, error) {
	m.Prompts = append(m.Prompts, p)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockCompleter) CompleteJSON(ctx context.Context, p prompt.Prompt) (string, error) {
	return m.Complete(ctx, p)
}
