package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AI-ZeeK/comms/internal/app/gateway"
	"github.com/AI-ZeeK/comms/internal/app/registry"
	"github.com/AI-ZeeK/comms/internal/app/server"
	"github.com/AI-ZeeK/comms/internal/app/worker"
	"github.com/AI-ZeeK/comms/internal/config"
	"github.com/AI-ZeeK/comms/internal/core/services"
	"github.com/AI-ZeeK/comms/internal/platform/logger"
	"github.com/AI-ZeeK/comms/internal/platform/telemetry"
	natsPlugin "github.com/AI-ZeeK/comms/internal/plugins/nats"
	"github.com/AI-ZeeK/comms/internal/plugins/postgres"
	"github.com/AI-ZeeK/comms/internal/plugins/profile"
	"github.com/AI-ZeeK/comms/internal/plugins/push"
	redisPlugin "github.com/AI-ZeeK/comms/internal/plugins/redis"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	var pdb *sql.DB
	if pdb, err = postgres.New(ctx, *cfg.Postgres); err != nil {
		log.Error("postgres connection failed", "DSN", cfg.Postgres.DSN)
		return
	}
	log.Info("postgres connected")
	var rdb *redis.Client
	if rdb, err = redisPlugin.NewRedisClient(ctx, *cfg.Redis); err != nil {
		log.Error("redis connection failed", "url", cfg.Redis.URL)
		return
	}
	log.Info("redis connected")
	nc, err := natsPlugin.NewConn(*cfg.NATS)
	if err != nil {
		log.Error("nats connection failed", "url", cfg.NATS.URL)
		return
	}
	defer nc.Drain()
	log.Info("nats connected")

	// Adapters
	chatRepo := postgres.NewChatRepo(pdb)
	partRepo := postgres.NewParticipantRepo(pdb)
	msgRepo := postgres.NewMessageRepo(pdb)
	receiptRepo := postgres.NewReadReceiptRepo(pdb)
	presence := redisPlugin.NewRedisPresenceRegistry(rdb)
	queue := redisPlugin.NewRedisNotificationQueue(log, rdb)
	bus := natsPlugin.NewNatsEventBus(nc)
	oracle := profile.NewClient(*cfg.Oracle)
	sink := push.NewClient(*cfg.Push)

	// Core Services
	hub := registry.NewHub(log)
	txManager := postgres.NewTxManager(pdb)
	tokenSvc := services.NewTokenService(cfg.SecretToken)
	msgSvc := services.NewMessageService(log, msgRepo, chatRepo, partRepo, receiptRepo, txManager, hub, bus)
	chatListSvc := services.NewChatListService(log, chatRepo, partRepo, oracle, hub)
	dispatcher := services.NewDispatcher(log, presence, hub, queue, bus, msgSvc, chatListSvc)
	chatSvc := services.NewChatService(log, chatRepo, partRepo, msgRepo, txManager, bus, queue, chatListSvc)
	gw := gateway.NewGateway(log, tokenSvc, oracle, presence, hub, partRepo, msgSvc, dispatcher, chatListSvc)

	wrkr := worker.NewNotificationWorker(log, queue, sink, cfg.Worker.NotificationGroup)
	go func() {
		if err := wrkr.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("notification worker stopped", "err", err)
		}
	}()

	// Server
	srv := server.NewServer(cfg.Service.Addr, cfg.Service.Name, log, gw, chatSvc, hub)
	srv.Start()
}
