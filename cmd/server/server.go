package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"todo-server/services/todo-api/internal/config"
	"todo-server/services/todo-api/internal/domain/agent"
	"todo-server/services/todo-api/internal/domain/conversation"
	"todo-server/services/todo-api/internal/domain/task"
	"todo-server/services/todo-api/internal/domain/user"
	authinfra "todo-server/services/todo-api/internal/infrastructure/auth"
	"todo-server/services/todo-api/internal/infrastructure/database"
	_ "todo-server/services/todo-api/internal/infrastructure/database/dbschema"
	"todo-server/services/todo-api/internal/infrastructure/database/repository/conversationrepo"
	"todo-server/services/todo-api/internal/infrastructure/database/repository/taskrepo"
	"todo-server/services/todo-api/internal/infrastructure/database/repository/userrepo"
	"todo-server/services/todo-api/internal/infrastructure/llmclient"
	"todo-server/services/todo-api/internal/infrastructure/logger"
	"todo-server/services/todo-api/internal/infrastructure/observability"
	"todo-server/services/todo-api/internal/interfaces/httpserver"
	"todo-server/services/todo-api/internal/interfaces/httpserver/handlers/authhandler"
	"todo-server/services/todo-api/internal/interfaces/httpserver/handlers/chathandler"
	"todo-server/services/todo-api/internal/interfaces/httpserver/handlers/taskhandler"
	authroute "todo-server/services/todo-api/internal/interfaces/httpserver/routes/auth"
	v1 "todo-server/services/todo-api/internal/interfaces/httpserver/routes/v1"
	"todo-server/services/todo-api/internal/interfaces/httpserver/routes/v1/chat"
	"todo-server/services/todo-api/internal/interfaces/httpserver/routes/v1/tasks"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.GetLogger()
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootLog := logger.GetLogger()
		bootLog.Fatal().Err(err).Msg("configure logger")
	}

	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if cfg.AutoMigrate {
		if err := database.Migration(db, "todo_api."); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	otelShutdown, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	// Repositories
	taskRepo := taskrepo.NewTaskGormRepository(db)
	conversationRepo := conversationrepo.NewConversationGormRepository(db)
	userRepo := userrepo.NewUserGormRepository(db)

	// Domain services
	taskService := task.NewTaskService(taskRepo)
	conversationService := conversation.NewConversationService(conversationRepo)
	userService := user.NewUserService(userRepo)

	// Agent
	completionClient := llmclient.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)
	resolver := agent.NewCompletionResolver(completionClient, cfg.LLMModel)
	registry := agent.NewRegistry(taskService)
	orchestrator := agent.NewOrchestrator(
		conversationService,
		registry,
		resolver,
		cfg.AgentMaxToolRounds,
		cfg.AgentHistoryWindow,
		log,
	)

	// HTTP layer
	tokens := authinfra.NewTokenManager(cfg.JWTSecret, cfg.Issuer, cfg.JWTExpiry)
	chatHandler := chathandler.NewChatHandler(orchestrator, conversationService, cfg.ChatTimeout, log)
	taskHandler := taskhandler.NewTaskHandler(taskService, log)
	authHandler := authhandler.NewAuthHandler(userService, tokens, log)

	v1Route := v1.NewV1Route(
		chat.NewChatRoute(chatHandler),
		tasks.NewTaskRoute(taskHandler),
	)
	authRoute := authroute.NewAuthRoute(authHandler)

	server := httpserver.NewHttpServer(v1Route, authRoute, tokens, log, cfg)

	var eg errgroup.Group
	eg.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Info().Int("port", cfg.MetricsPort).Msg("metrics server listening")
		return http.ListenAndServe(fmt.Sprintf(":%d", cfg.MetricsPort), mux)
	})
	eg.Go(func() error {
		log.Info().Int("port", cfg.HTTPPort).Str("version", config.Version).Msg("http server listening")
		return server.Run()
	})

	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
