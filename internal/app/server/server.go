package server

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/AI-ZeeK/comms/internal/app/gateway"
	"github.com/AI-ZeeK/comms/internal/app/registry"
	"github.com/AI-ZeeK/comms/internal/app/server/handlers"
	"github.com/AI-ZeeK/comms/internal/core/services"
	"github.com/AI-ZeeK/comms/pkg/middleware"
)

type Server struct {
	mux         *http.ServeMux
	addr        string
	service     string
	logger      *slog.Logger
	gateway     *gateway.Gateway
	chatHandler *handlers.ChatHandler
	wsHandler   *handlers.WSHandler
}

func NewServer(
	addr, service string,
	logger *slog.Logger,
	gw *gateway.Gateway,
	chatSvc services.IChatService,
	hub *registry.Hub,
) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		addr:        addr,
		service:     service,
		logger:      logger,
		gateway:     gw,
		chatHandler: handlers.NewChatHandler(chatSvc, logger),
		wsHandler:   handlers.NewWSHandler(hub, gw, logger),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	auth := middleware.AuthMiddleware(s.gateway)

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Protected routes. The middleware resolves the account once and puts it
	// in the request context.
	s.mux.Handle("POST /chats/direct", auth(http.HandlerFunc(s.chatHandler.CreateDirect)))
	s.mux.Handle("POST /chats/group", auth(http.HandlerFunc(s.chatHandler.CreateGroup)))
	s.mux.Handle("/ws", auth(http.HandlerFunc(s.wsHandler.Handler)))
}

func (s *Server) Start() error {
	tracing := middleware.TracerMiddleware(s.service)
	logging := middleware.RequestLogger(s.logger)
	server := &http.Server{
		Addr:         s.addr,
		Handler:      tracing(logging(s.mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Server starting on %s", s.addr)
	return server.ListenAndServe()
}
