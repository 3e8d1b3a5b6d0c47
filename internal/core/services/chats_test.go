package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
)

func newChatFixture() (*ChatService, *fakeChatRepo, *fakeParticipantRepo, *fakeMessageRepo, *fakeBus, *fakeQueue, *fakeRefresher) {
	chatRepo := &fakeChatRepo{}
	partRepo := &fakeParticipantRepo{}
	msgRepo := &fakeMessageRepo{}
	bus := &fakeBus{}
	queue := &fakeQueue{}
	refresh := &fakeRefresher{}
	svc := NewChatService(testLogger(), chatRepo, partRepo, msgRepo, &fakeTxManager{}, bus, queue, refresh)
	return svc, chatRepo, partRepo, msgRepo, bus, queue, refresh
}

func TestCreateDirectChat(t *testing.T) {
	svc, chatRepo, partRepo, msgRepo, bus, queue, refresh := newChatFixture()
	creator := testSender(uuid.New())
	otherID := uuid.New()

	chat, err := svc.CreateDirectChat(context.Background(), creator, otherID)
	if err != nil {
		t.Fatalf("create direct chat: %v", err)
	}
	if chat.Type != domain.ChatDirect {
		t.Fatalf("expected DIRECT, got %s", chat.Type)
	}
	if len(chatRepo.created) != 1 {
		t.Fatalf("expected one chat row, got %d", len(chatRepo.created))
	}
	if len(partRepo.added) != 2 {
		t.Fatalf("expected both participants, got %d", len(partRepo.added))
	}
	if !partRepo.added[0].IsAdmin || partRepo.added[0].UserID != creator.UserID {
		t.Fatal("expected creator added first as admin")
	}
	if len(msgRepo.inserted) != 1 || msgRepo.inserted[0].Type != domain.MessageSystem {
		t.Fatal("expected a SYSTEM seed message")
	}
	if len(bus.published) != 1 || bus.published[0].subject != domain.SubjectChatCreated {
		t.Fatal("expected one bus publish on chat.created")
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("expected one push job for the other user, got %d", len(queue.enqueued))
	}
	var job domain.NotificationJob
	if err := json.Unmarshal(queue.enqueued[0], &job); err != nil {
		t.Fatalf("unmarshal job: %v", err)
	}
	if job.UserID != otherID.String() || job.Data.EntityType != domain.NotifyChatCreated {
		t.Fatalf("unexpected job %+v", job)
	}
	if len(refresh.refreshed) != 1 {
		t.Fatal("expected a chat list refresh")
	}
}

func TestCreateDirectChatReturnsExisting(t *testing.T) {
	svc, chatRepo, _, msgRepo, bus, _, _ := newChatFixture()
	existing := &domain.Chat{ID: uuid.New(), Type: domain.ChatDirect}
	chatRepo.direct = existing

	chat, err := svc.CreateDirectChat(context.Background(), testSender(uuid.New()), uuid.New())
	if err != nil {
		t.Fatalf("create direct chat: %v", err)
	}
	if chat.ID != existing.ID {
		t.Fatal("expected the existing chat back")
	}
	if len(chatRepo.created) != 0 || len(msgRepo.inserted) != 0 {
		t.Fatal("existing chat must not be recreated")
	}
	if len(bus.published) != 0 {
		t.Fatal("no announcement for an existing chat")
	}
}

func TestCreateDirectChatWithSelf(t *testing.T) {
	svc, _, _, _, _, _, _ := newChatFixture()
	creator := testSender(uuid.New())

	_, err := svc.CreateDirectChat(context.Background(), creator, creator.UserID)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected VALIDATION, got %s", domain.KindOf(err))
	}
}

func TestCreateGroupChat(t *testing.T) {
	svc, chatRepo, partRepo, _, _, queue, _ := newChatFixture()
	creator := testSender(uuid.New())
	members := []uuid.UUID{uuid.New(), uuid.New()}

	chat, err := svc.CreateGroupChat(context.Background(), creator, "platform team", members)
	if err != nil {
		t.Fatalf("create group chat: %v", err)
	}
	if chat.Type != domain.ChatGroup || chat.Name != "platform team" {
		t.Fatalf("unexpected chat %+v", chat)
	}
	if len(chatRepo.created) != 1 {
		t.Fatalf("expected one chat row, got %d", len(chatRepo.created))
	}
	if len(partRepo.added) != 3 {
		t.Fatalf("expected creator plus 2 members, got %d", len(partRepo.added))
	}
	if len(queue.enqueued) != 2 {
		t.Fatalf("expected a push per member, got %d", len(queue.enqueued))
	}
}

func TestCreateGroupChatValidation(t *testing.T) {
	svc, _, _, _, _, _, _ := newChatFixture()
	creator := testSender(uuid.New())

	if _, err := svc.CreateGroupChat(context.Background(), creator, "", []uuid.UUID{uuid.New()}); err == nil {
		t.Fatal("expected error for empty name")
	}
	// The creator alone is not a group.
	if _, err := svc.CreateGroupChat(context.Background(), creator, "just me", []uuid.UUID{creator.UserID}); err == nil {
		t.Fatal("expected error without other members")
	}
}
