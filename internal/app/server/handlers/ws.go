package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AI-ZeeK/comms/internal/app/gateway"
	"github.com/AI-ZeeK/comms/internal/app/registry"
	"github.com/AI-ZeeK/comms/internal/app/server/ws"
	"github.com/AI-ZeeK/comms/internal/core/domain"
	"github.com/AI-ZeeK/comms/pkg/middleware"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type WSHandler struct {
	hub     *registry.Hub
	gateway *gateway.Gateway
	log     *slog.Logger
}

func NewWSHandler(hub *registry.Hub, gw *gateway.Gateway, log *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:     hub,
		gateway: gw,
		log:     log,
	}
}

func (s *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFrom(r.Context(), s.log)
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		log.ErrorContext(r.Context(), "ws handler - unauthorised missing account")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("user.id", account.UserID.String()))

	// The session outlives the upgrade request.
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	var upgrader = websocket.Upgrader{
		ReadBufferSize:  32,
		WriteBufferSize: 32,
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten later
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade - ws upgrade failed", "err", err)
		cancel()
		return
	}
	defer conn.Close()
	conn.SetCloseHandler(func(code int, text string) error {
		log.Info("ws handler - ws closed", "user_id", account.UserID)
		cancel()
		return nil
	})
	socket := ws.NewWebSocket(ctx, conn)

	connID := uuid.New().String()
	client := ws.NewClient(ctx, socket, connID, account.UserID.String())
	sess := gateway.NewSession(connID, account)

	s.hub.Register(client)
	defer s.hub.Unregister(client)
	defer s.gateway.HandleDisconnect(sessionCtx, sess)

	s.hub.ToConnection(ctx, connID, domain.EventConnected, domain.ConnectedEvent{
		UserID: account.UserID.String(),
	})
	log.InfoContext(r.Context(), "ws handler - ws connection established", "user_id", account.UserID, "conn_id", connID)

	// Inline dispatch keeps the per-connection command order.
	socket.ReadLoop(func(data []byte) {
		s.gateway.HandleCommand(ctx, sess, data)
	})
}
