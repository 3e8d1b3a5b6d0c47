package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AI-ZeeK/comms/internal/core/domain"
	"github.com/AI-ZeeK/comms/internal/core/services"
	"github.com/AI-ZeeK/comms/pkg/middleware"

	"github.com/google/uuid"
)

type ChatHandler struct {
	chatSvc services.IChatService
	log     *slog.Logger
}

func NewChatHandler(chatSvc services.IChatService, log *slog.Logger) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc, log: log}
}

// Opening (or reusing) a direct chat
func (h *ChatHandler) CreateDirect(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFrom(r.Context(), h.log)
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "chat handler - create direct - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	otherID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, "invalid user_id", http.StatusBadRequest)
		return
	}
	chat, err := h.chatSvc.CreateDirectChat(r.Context(), account, otherID)
	if err != nil {
		log.ErrorContext(r.Context(), "chat handler - create direct failed", "user_id", account.UserID, "other_id", otherID, "err", err)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "chat handler - create direct success", "chat_id", chat.ID, "user_id", account.UserID)
	writeChat(w, chat)
}

// Creating a named group chat
func (h *ChatHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFrom(r.Context(), h.log)
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		Name    string   `json:"name"`
		UserIDs []string `json:"user_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "chat handler - create group - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	members := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid user id: "+raw, http.StatusBadRequest)
			return
		}
		members = append(members, id)
	}
	chat, err := h.chatSvc.CreateGroupChat(r.Context(), account, req.Name, members)
	if err != nil {
		log.ErrorContext(r.Context(), "chat handler - create group failed", "user_id", account.UserID, "err", err)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "chat handler - create group success", "chat_id", chat.ID, "user_id", account.UserID)
	writeChat(w, chat)
}

func writeChat(w http.ResponseWriter, chat *domain.Chat) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"chat_id":    chat.ID,
		"name":       chat.Name,
		"type":       chat.Type,
		"created_at": chat.CreatedAt,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var derr *domain.Error
	msg := "internal error"
	if errors.As(err, &derr) {
		msg = derr.Message
		switch derr.Kind {
		case domain.KindValidation:
			status = http.StatusBadRequest
		case domain.KindAuthentication:
			status = http.StatusUnauthorized
		case domain.KindAuthorization:
			status = http.StatusForbidden
		case domain.KindNotFound:
			status = http.StatusNotFound
		case domain.KindUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	http.Error(w, msg, status)
}
