package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Dosada05/card-league/brackets"
	"github.com/Dosada05/card-league/config"
	"github.com/Dosada05/card-league/db"
	"github.com/Dosada05/card-league/export"
	"github.com/Dosada05/card-league/handlers"
	"github.com/Dosada05/card-league/jobs"
	"github.com/Dosada05/card-league/metrics"
	"github.com/Dosada05/card-league/middleware"
	"github.com/Dosada05/card-league/repositories"
	api "github.com/Dosada05/card-league/routes"
	"github.com/Dosada05/card-league/services"
	"github.com/Dosada05/card-league/standings"
	"github.com/Dosada05/card-league/storage"
)

const nightlyExportTimeout = 10 * time.Minute

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	rules, err := config.LoadScoringRules(cfg.ScoringRulesPath)
	if err != nil {
		logger.Error("failed to load scoring rules", slog.Any("error", err))
		os.Exit(1)
	}

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.AutoMigrate {
		if err := db.Migrate(dbConn, db.MigrateUp); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	// Инициализация загрузчика файлов (Cloudflare R2) для экспорта
	var exportSink export.Sink
	if cfg.StorageEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
			Endpoint:        cfg.R2Endpoint,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		exportSink = export.NewUploaderSink(uploader, "exports")
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("object storage not configured, export uploads disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	overrideRepo := repositories.NewPostgresOverrideRepository(dbConn)
	logger.Info("Repositories initialized")

	// Каналы уведомлений
	senders := []services.Sender{services.NewLogSMSSender(cfg.SMSDefaultRegion, logger)}
	switch {
	case cfg.SESRegion != "" && cfg.SESFrom != "":
		sesSender, err := services.NewSESSender(context.Background(), services.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
			From:            cfg.SESFrom,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize SES sender", slog.Any("error", err))
			os.Exit(1)
		}
		senders = append(senders, sesSender)
	case cfg.SMTPHost != "":
		senders = append(senders, services.NewEmailService(cfg))
	default:
		logger.Warn("no email channel configured, email notifications disabled")
	}

	// Инициализация сервисов
	tokens := middleware.NewTokenManager(cfg.JWTSecretKey, cfg.TokenTTL)
	tx := services.NewSQLTransactor(dbConn)
	engine := standings.New(rules)

	notificationService := services.NewNotificationService(logger, appMetrics, senders...)
	standingsService := services.NewStandingsService(engine, tournamentRepo, teamRepo, gameRepo, scheduleRepo, overrideRepo, wsHub, appMetrics, logger)
	tournamentService := services.NewTournamentService(tx, tournamentRepo, scheduleRepo, teamRepo, logger)
	teamService := services.NewTeamService(teamRepo, tournamentRepo, cfg.SMSDefaultRegion, logger)
	scheduleService := services.NewScheduleService(tx, tournamentRepo, teamRepo, gameRepo, scheduleRepo, wsHub, logger)
	gameService := services.NewGameService(gameRepo, teamRepo, tournamentRepo, standingsService, notificationService, wsHub, appMetrics, logger)
	overrideService := services.NewOverrideService(tx, overrideRepo, tournamentRepo, teamRepo, scheduleRepo, standingsService, wsHub, appMetrics, logger)
	exportService := services.NewExportService(standingsService, tournamentRepo, exportSink, appMetrics, logger)
	portalService := services.NewPortalService(teamRepo, standingsService, gameService, tokens, logger)
	authService := services.NewAuthService(cfg.AdminPasswordHash, tokens, logger)
	logger.Info("Services initialized")

	// Ночная выгрузка таблиц в хранилище
	scheduler, err := jobs.NewScheduler(logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	if exportSink != nil && cfg.ExportCron != "" {
		_, err := scheduler.AddCronJob("nightly-standings-export", cfg.ExportCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), nightlyExportTimeout)
			defer cancel()
			if err := exportService.UploadActive(ctx); err != nil {
				logger.Error("nightly export finished with errors", slog.Any("error", err))
			}
		})
		if err != nil {
			logger.Error("failed to schedule nightly export", slog.Any("error", err))
			os.Exit(1)
		}
	}
	scheduler.Start()

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Tournament: handlers.NewTournamentHandler(tournamentService, scheduleService),
		Team:       handlers.NewTeamHandler(teamService),
		Game:       handlers.NewGameHandler(gameService),
		Override:   handlers.NewOverrideHandler(overrideService),
		Standings:  handlers.NewStandingsHandler(standingsService, exportService),
		Portal:     handlers.NewPortalHandler(portalService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger),
	}, api.Options{
		Tokens:          tokens,
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		PortalLoginRate: cfg.PortalLoginRate,
		Gatherer:        registry,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	if err := scheduler.Stop(); err != nil {
		logger.Error("scheduler shutdown failed", slog.Any("error", err))
	}
	wsHub.Stop()
	logger.Info("application exited")
}
