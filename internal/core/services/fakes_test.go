package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTxManager struct {
	err error
}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type fakeMessageRepo struct {
	inserted   []*domain.Message
	insertErr  error
	messages   []domain.Message
	listErr    error
	advanceIDs []uuid.UUID
	advanceErr error
	advancedTo domain.MessageStatus
}

func (f *fakeMessageRepo) InsertMessage(ctx context.Context, m *domain.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, m)
	return nil
}

func (f *fakeMessageRepo) ListByChat(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	return f.messages, f.listErr
}

func (f *fakeMessageRepo) AdvanceStatus(ctx context.Context, chatID uuid.UUID, from, to domain.MessageStatus) ([]uuid.UUID, error) {
	if f.advanceErr != nil {
		return nil, f.advanceErr
	}
	f.advancedTo = to
	ids := f.advanceIDs
	// A second call finds nothing, like the real UPDATE ... RETURNING.
	f.advanceIDs = nil
	return ids, nil
}

type fakeChatRepo struct {
	created      []*domain.Chat
	createErr    error
	chat         *domain.Chat
	getErr       error
	touched      []uuid.UUID
	touchErr     error
	direct       *domain.Chat
	directErr    error
	summaries    []domain.ChatSummary
	summariesErr error
}

func (f *fakeChatRepo) CreateChat(ctx context.Context, chat *domain.Chat) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, chat)
	return nil
}

func (f *fakeChatRepo) GetChatByID(ctx context.Context, chatID uuid.UUID) (*domain.Chat, error) {
	return f.chat, f.getErr
}

func (f *fakeChatRepo) TouchUpdatedAt(ctx context.Context, chatID uuid.UUID, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, chatID)
	return nil
}

func (f *fakeChatRepo) FindDirectChat(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error) {
	return f.direct, f.directErr
}

func (f *fakeChatRepo) ListSummariesForUser(ctx context.Context, userID uuid.UUID) ([]domain.ChatSummary, error) {
	return f.summaries, f.summariesErr
}

type fakeParticipantRepo struct {
	added       []*domain.Participant
	addErr      error
	activeFunc  func(chatID, userID uuid.UUID) (bool, error)
	userIDs     []uuid.UUID
	listErr     error
	other       uuid.UUID
	otherErr    error
	incremented []uuid.UUID
	resets      []uuid.UUID
}

func (f *fakeParticipantRepo) AddParticipant(ctx context.Context, p *domain.Participant) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, p)
	return nil
}

func (f *fakeParticipantRepo) IsActiveParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	if f.activeFunc != nil {
		return f.activeFunc(chatID, userID)
	}
	return true, nil
}

func (f *fakeParticipantRepo) ListActiveUserIDs(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error) {
	return f.userIDs, f.listErr
}

func (f *fakeParticipantRepo) OtherUserID(ctx context.Context, chatID, userID uuid.UUID) (uuid.UUID, error) {
	return f.other, f.otherErr
}

func (f *fakeParticipantRepo) IncrementUnread(ctx context.Context, chatID, exceptUserID uuid.UUID) error {
	f.incremented = append(f.incremented, chatID)
	return nil
}

func (f *fakeParticipantRepo) ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error {
	f.resets = append(f.resets, chatID)
	return nil
}

type fakeReceiptRepo struct {
	existing map[uuid.UUID]bool
	inserted []uuid.UUID
	err      error
}

func (f *fakeReceiptRepo) InsertIfAbsent(ctx context.Context, messageID, userID uuid.UUID, at time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.existing == nil {
		f.existing = make(map[uuid.UUID]bool)
	}
	if f.existing[messageID] {
		return false, nil
	}
	f.existing[messageID] = true
	f.inserted = append(f.inserted, messageID)
	return true, nil
}

type sentEvent struct {
	room    domain.Room
	connID  string
	event   string
	payload any
}

type fakeTransport struct {
	mu       sync.Mutex
	joined   []string
	left     []string
	group    []sentEvent
	direct   []sentEvent
	contains func(room domain.Room, userID, excludeConnID string) bool
}

func (f *fakeTransport) JoinGroup(connID string, room domain.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, connID+":"+string(room))
}

func (f *fakeTransport) LeaveGroup(connID string, room domain.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.left = append(f.left, connID+":"+string(room))
}

func (f *fakeTransport) ToGroup(ctx context.Context, room domain.Room, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.group = append(f.group, sentEvent{room: room, event: event, payload: payload})
}

func (f *fakeTransport) ToConnection(ctx context.Context, connID string, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, sentEvent{connID: connID, event: event, payload: payload})
}

func (f *fakeTransport) GroupContains(room domain.Room, userID, excludeConnID string) bool {
	if f.contains != nil {
		return f.contains(room, userID, excludeConnID)
	}
	return false
}

func (f *fakeTransport) groupEvents(event string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.group {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type busCall struct {
	subject string
	event   any
}

type fakeBus struct {
	mu        sync.Mutex
	published []busCall
	err       error
}

func (f *fakeBus) Publish(ctx context.Context, subject string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, busCall{subject: subject, event: event})
	return nil
}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued [][]byte
	err      error
}

func (f *fakeQueue) Enqueue(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, payload)
	return nil
}

func (f *fakeQueue) Subscribe(ctx context.Context, group string, handler func(ctx context.Context, jobID string, data []byte) error) error {
	return nil
}

func (f *fakeQueue) Acknowledge(ctx context.Context, group, jobID string) error { return nil }

func (f *fakeQueue) DeleteJob(ctx context.Context, jobID string) error { return nil }

type fakePresence struct {
	mu         sync.Mutex
	members    map[string]bool
	addErr     error
	removeErr  error
	memberErr  error
	membership []domain.Room
}

func (f *fakePresence) key(userID string, room domain.Room) string {
	return userID + "|" + string(room)
}

func (f *fakePresence) AddMembership(ctx context.Context, userID string, room domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	if f.members == nil {
		f.members = make(map[string]bool)
	}
	f.members[f.key(userID, room)] = true
	return nil
}

func (f *fakePresence) RemoveMembership(ctx context.Context, userID string, room domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.members, f.key(userID, room))
	return nil
}

func (f *fakePresence) IsMember(ctx context.Context, userID string, room domain.Room) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memberErr != nil {
		return false, f.memberErr
	}
	return f.members[f.key(userID, room)], nil
}

func (f *fakePresence) MembershipsOf(ctx context.Context, userID string) ([]domain.Room, error) {
	return f.membership, nil
}

type fakeOracle struct {
	accounts    map[string]*domain.Account
	validateErr error
	getErr      error
}

func (f *fakeOracle) Validate(ctx context.Context, token, role string) (*domain.Account, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return f.accounts[token], nil
}

func (f *fakeOracle) GetUser(ctx context.Context, userID string) (*domain.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	account, ok := f.accounts[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

type fakeRefresher struct {
	mu        sync.Mutex
	refreshed [][]uuid.UUID
}

func (f *fakeRefresher) RefreshForMany(ctx context.Context, userIDs []uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, userIDs)
}

type fakeLifecycle struct {
	delivered []uuid.UUID
	err       error
}

func (f *fakeLifecycle) MarkDelivered(ctx context.Context, chatID, forUser uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.delivered = append(f.delivered, forUser)
	return []uuid.UUID{uuid.New()}, nil
}
