package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/AI-ZeeK/comms/internal/core/contracts"
	"github.com/AI-ZeeK/comms/internal/core/domain"
	"github.com/AI-ZeeK/comms/internal/core/services"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("gateway")

// Gateway owns the command surface of one node: it authenticates handshakes,
// dispatches the closed set of client actions and runs the disconnect sweep.
// Commands of one connection are handled strictly in arrival order because
// the read loop calls HandleCommand inline.
type Gateway struct {
	log          *slog.Logger
	tokens       *services.TokenService
	oracle       contracts.AccountOracle
	presence     contracts.PresenceRegistry
	transport    contracts.GroupTransport
	participants domain.ParticipantRepository
	messages     services.IMessageService
	dispatcher   services.IDispatcher
	chatList     services.IChatListService
}

func NewGateway(
	log *slog.Logger,
	tokens *services.TokenService,
	oracle contracts.AccountOracle,
	presence contracts.PresenceRegistry,
	transport contracts.GroupTransport,
	participants domain.ParticipantRepository,
	messages services.IMessageService,
	dispatcher services.IDispatcher,
	chatList services.IChatListService,
) *Gateway {
	return &Gateway{
		log:          log,
		tokens:       tokens,
		oracle:       oracle,
		presence:     presence,
		transport:    transport,
		participants: participants,
		messages:     messages,
		dispatcher:   dispatcher,
		chatList:     chatList,
	}
}

// Authenticate verifies the handshake token locally, then resolves the
// account against the oracle. Oracle downtime yields UNAVAILABLE, a bad
// token AUTHENTICATION; the caller closes the socket either way.
func (g *Gateway) Authenticate(ctx context.Context, token, role string) (*domain.Account, error) {
	if token == "" {
		return nil, domain.AuthenticationError("missing token")
	}
	if _, err := g.tokens.ParseClaims(token); err != nil {
		g.log.WarnContext(ctx, "gateway - authenticate - token rejected", "err", err)
		return nil, domain.AuthenticationError("invalid token")
	}
	account, err := g.oracle.Validate(ctx, token, role)
	if err != nil {
		g.log.WarnContext(ctx, "gateway - authenticate - oracle rejected", "err", err)
		return nil, err
	}
	return account, nil
}

// HandleCommand decodes one inbound frame and routes it. The action set is
// closed; anything else is a validation error back to the sender. Handler
// failures are reported as error events, never as dropped connections.
func (g *Gateway) HandleCommand(ctx context.Context, sess *Session, raw []byte) {
	var env domain.CommandEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.emitError(ctx, sess.ConnID, domain.ValidationError("malformed command frame"))
		return
	}
	ctx, span := tracer.Start(ctx, "Gateway.HandleCommand", trace.WithAttributes(
		attribute.String("action", env.Action),
		attribute.String("user_id", sess.Account.UserID.String()),
	))
	defer span.End()

	var err error
	switch env.Action {
	case domain.ActionJoinChat:
		err = g.handleJoinChat(ctx, sess, env.Data)
	case domain.ActionLeaveChat:
		err = g.handleLeaveChat(ctx, sess, env.Data)
	case domain.ActionSendMessage:
		err = g.handleSendMessage(ctx, sess, env.Data)
	case domain.ActionMarkRead:
		err = g.handleMarkRead(ctx, sess, env.Data)
	case domain.ActionUserTyping:
		err = g.handleTyping(ctx, sess, env.Data)
	case domain.ActionJoinChatList:
		err = g.handleJoinChatList(ctx, sess)
	case domain.ActionLeaveChatList:
		err = g.handleLeaveChatList(ctx, sess)
	default:
		err = domain.ValidationError("unknown action %q", env.Action)
	}
	if err != nil {
		span.RecordError(err)
		g.log.WarnContext(ctx, "gateway - handle command - failed", "action", env.Action, "user_id", sess.Account.UserID, "err", err)
		g.emitError(ctx, sess.ConnID, err)
	}
}

func (g *Gateway) handleJoinChat(ctx context.Context, sess *Session, data json.RawMessage) error {
	var cmd domain.JoinChatCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return domain.ValidationError("malformed join_chat payload")
	}
	chatID, err := uuid.Parse(cmd.ChatID)
	if err != nil {
		return domain.ValidationError("invalid chat id %q", cmd.ChatID)
	}
	userID := sess.Account.UserID
	ok, err := g.participants.IsActiveParticipant(ctx, chatID, userID)
	if err != nil {
		return domain.UnavailableError(err, "participant store unreachable")
	}
	if !ok {
		return domain.ErrNotParticipant
	}
	room := domain.ChatRoom(chatID)
	if err := g.presence.AddMembership(ctx, userID.String(), room); err != nil {
		return err
	}
	g.transport.JoinGroup(sess.ConnID, room)
	sess.addRoom(room)
	g.log.InfoContext(ctx, "gateway - join chat - joined", "chat_id", chatID, "user_id", userID, "conn_id", sess.ConnID)

	history, err := g.messages.History(ctx, chatID)
	if err != nil {
		return err
	}
	payloads := make([]domain.MessagePayload, 0, len(history))
	ids := make([]uuid.UUID, 0, len(history))
	for i := range history {
		payloads = append(payloads, domain.NewMessagePayload(&history[i]))
		if history[i].SenderID != userID {
			ids = append(ids, history[i].ID)
		}
	}
	g.transport.ToConnection(ctx, sess.ConnID, domain.EventChatMessages, domain.ChatMessagesEvent{
		ChatID:   chatID.String(),
		Messages: payloads,
	})

	// Being in the room is proof of delivery and, for the replayed backlog,
	// proof of reading.
	if _, err := g.messages.MarkDelivered(ctx, chatID, userID); err != nil {
		return err
	}
	if len(ids) > 0 {
		if _, _, err := g.messages.MarkRead(ctx, chatID, userID, ids); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) handleLeaveChat(ctx context.Context, sess *Session, data json.RawMessage) error {
	var cmd domain.LeaveChatCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return domain.ValidationError("malformed leave_chat payload")
	}
	chatID, err := uuid.Parse(cmd.ChatID)
	if err != nil {
		return domain.ValidationError("invalid chat id %q", cmd.ChatID)
	}
	room := domain.ChatRoom(chatID)
	g.transport.LeaveGroup(sess.ConnID, room)
	sess.removeRoom(room)
	userID := sess.Account.UserID.String()
	if !g.transport.GroupContains(room, userID, sess.ConnID) {
		if err := g.presence.RemoveMembership(ctx, userID, room); err != nil {
			return err
		}
	}
	g.log.InfoContext(ctx, "gateway - leave chat - left", "chat_id", chatID, "user_id", userID, "conn_id", sess.ConnID)
	return nil
}

func (g *Gateway) handleSendMessage(ctx context.Context, sess *Session, data json.RawMessage) error {
	var cmd domain.SendMessageCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return domain.ValidationError("malformed send_message payload")
	}
	chatID, err := uuid.Parse(cmd.ChatID)
	if err != nil {
		return domain.ValidationError("invalid chat id %q", cmd.ChatID)
	}
	userID := sess.Account.UserID
	ok, err := g.participants.IsActiveParticipant(ctx, chatID, userID)
	if err != nil {
		return domain.UnavailableError(err, "participant store unreachable")
	}
	if !ok {
		return domain.ErrNotParticipant
	}
	msg, err := g.messages.SendMessage(ctx, chatID, userID, cmd.Content, cmd.Type, cmd.MediaURLs, cmd.Duration)
	if err != nil {
		return err
	}
	recipients, err := g.participants.ListActiveUserIDs(ctx, chatID)
	if err != nil {
		// The message is stored; routing degrades to the room broadcast.
		g.log.ErrorContext(ctx, "gateway - send message - list recipients failed", "chat_id", chatID, "err", err)
		recipients = []uuid.UUID{userID}
	}
	g.dispatcher.Dispatch(ctx, msg, sess.Account, recipients)
	g.transport.ToConnection(ctx, sess.ConnID, domain.EventMessageSent, domain.MessageSentEvent{
		MessageID: msg.ID.String(),
		Status:    string(msg.Status),
	})
	return nil
}

func (g *Gateway) handleMarkRead(ctx context.Context, sess *Session, data json.RawMessage) error {
	var cmd domain.MarkReadCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return domain.ValidationError("malformed mark_read payload")
	}
	chatID, err := uuid.Parse(cmd.ChatID)
	if err != nil {
		return domain.ValidationError("invalid chat id %q", cmd.ChatID)
	}
	if len(cmd.MessageIDs) == 0 {
		return domain.ValidationError("message_ids is required")
	}
	ids := make([]uuid.UUID, 0, len(cmd.MessageIDs))
	for _, raw := range cmd.MessageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.ValidationError("invalid message id %q", raw)
		}
		ids = append(ids, id)
	}
	userID := sess.Account.UserID
	ok, err := g.participants.IsActiveParticipant(ctx, chatID, userID)
	if err != nil {
		return domain.UnavailableError(err, "participant store unreachable")
	}
	if !ok {
		return domain.ErrNotParticipant
	}
	_, _, err = g.messages.MarkRead(ctx, chatID, userID, ids)
	return err
}

func (g *Gateway) handleTyping(ctx context.Context, sess *Session, data json.RawMessage) error {
	var cmd domain.TypingCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return domain.ValidationError("malformed user_typing payload")
	}
	chatID, err := uuid.Parse(cmd.ChatID)
	if err != nil {
		return domain.ValidationError("invalid chat id %q", cmd.ChatID)
	}
	g.transport.ToGroup(ctx, domain.ChatRoom(chatID), domain.EventUserTyping, domain.TypingEvent{
		ChatID:   chatID.String(),
		UserID:   sess.Account.UserID.String(),
		IsTyping: cmd.IsTyping,
	})
	return nil
}

func (g *Gateway) handleJoinChatList(ctx context.Context, sess *Session) error {
	userID := sess.Account.UserID
	room := domain.ChatListRoom(userID)
	if err := g.presence.AddMembership(ctx, userID.String(), room); err != nil {
		return err
	}
	g.transport.JoinGroup(sess.ConnID, room)
	sess.addRoom(room)
	return g.chatList.RefreshFor(ctx, userID)
}

func (g *Gateway) handleLeaveChatList(ctx context.Context, sess *Session) error {
	userID := sess.Account.UserID.String()
	room := domain.ChatListRoom(sess.Account.UserID)
	g.transport.LeaveGroup(sess.ConnID, room)
	sess.removeRoom(room)
	if !g.transport.GroupContains(room, userID, sess.ConnID) {
		return g.presence.RemoveMembership(ctx, userID, room)
	}
	return nil
}

// HandleDisconnect sweeps the connection's rooms. Presence is removed only
// when no sibling connection of the same user remains in the room, so a
// second device keeps its memberships.
func (g *Gateway) HandleDisconnect(ctx context.Context, sess *Session) {
	userID := sess.Account.UserID.String()
	for _, room := range sess.Rooms() {
		g.transport.LeaveGroup(sess.ConnID, room)
		if g.transport.GroupContains(room, userID, sess.ConnID) {
			continue
		}
		if err := g.presence.RemoveMembership(ctx, userID, room); err != nil {
			if errors.Is(err, domain.ErrUnavailable) {
				g.log.WarnContext(ctx, "gateway - disconnect - presence sweep failed", "user_id", userID, "room", room, "err", err)
				continue
			}
			g.log.ErrorContext(ctx, "gateway - disconnect - remove membership failed", "user_id", userID, "room", room, "err", err)
		}
	}
	g.log.InfoContext(ctx, "gateway - disconnect - swept", "user_id", userID, "conn_id", sess.ConnID)
}

func (g *Gateway) emitError(ctx context.Context, connID string, err error) {
	event := domain.ErrorEvent{Kind: string(domain.KindOf(err))}
	var derr *domain.Error
	if errors.As(err, &derr) {
		event.Message = derr.Message
	} else {
		event.Message = "internal error"
	}
	g.transport.ToConnection(ctx, connID, domain.EventError, event)
}
