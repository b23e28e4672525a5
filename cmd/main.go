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

	"github.com/Dosada05/club-ranking/config"
	"github.com/Dosada05/club-ranking/db"
	"github.com/Dosada05/club-ranking/handlers"
	"github.com/Dosada05/club-ranking/notify"
	"github.com/Dosada05/club-ranking/repositories"
	api "github.com/Dosada05/club-ranking/routes"
	"github.com/Dosada05/club-ranking/services"
	"github.com/Dosada05/club-ranking/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

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

	// Объектное хранилище для архивов таблиц (опционально)
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("object storage not configured, season snapshots disabled")
	}

	// WebSocket Hub живой ленты сезонов
	wsHub := notify.NewHub(logger)
	go wsHub.Run()
	notifier := notify.NewHubNotifier(wsHub)
	logger.Info("websocket hub started")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	ladderRepo := repositories.NewPostgresLadderRepository(dbConn)
	boxRepo := repositories.NewPostgresBoxRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	clubService := services.NewClubService(clubRepo)
	playerService := services.NewPlayerService(playerRepo, ladderRepo, boxRepo)
	matchService := services.NewMatchService(txRunner, matchRepo, seasonRepo, boxRepo, logger)
	standingsService := services.NewStandingsService(seasonRepo, ladderRepo, boxRepo, matchRepo)
	promotionService := services.NewPromotionService(seasonRepo, boxRepo, standingsService)
	resultService := services.NewResultService(
		txRunner, matchRepo, resultRepo, playerRepo,
		seasonRepo, ladderRepo, notifier, logger,
	)
	seasonService := services.NewSeasonService(
		txRunner, seasonRepo, ladderRepo, boxRepo,
		standingsService, promotionService, uploader, notifier, logger,
	)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	clubHandler := handlers.NewClubHandler(clubService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	seasonHandler := handlers.NewSeasonHandler(seasonService)
	matchHandler := handlers.NewMatchHandler(matchService, resultService)
	standingsHandler := handlers.NewStandingsHandler(standingsService, promotionService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.AllowedOrigins,
		clubHandler,
		playerHandler,
		seasonHandler,
		matchHandler,
		standingsHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
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
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
