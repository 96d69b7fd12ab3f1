package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/tabcore/debate-tab/config"
	"github.com/tabcore/debate-tab/db"
	"github.com/tabcore/debate-tab/handlers"
	"github.com/tabcore/debate-tab/pairing"
	"github.com/tabcore/debate-tab/repositories"
	api "github.com/tabcore/debate-tab/routes"
	"github.com/tabcore/debate-tab/services"
	"github.com/tabcore/debate-tab/storage"
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

	// Инициализация загрузчика файлов (Cloudflare R2)
	var uploader storage.FileUploader
	if cfg.R2Configured() {
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
		logger.Warn("R2 credentials not set, standings export disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := pairing.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	judgeRepo := repositories.NewPostgresJudgeRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	roomRepo := repositories.NewPostgresRoomRepository(dbConn)
	ballotRepo := repositories.NewPostgresBallotRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	drawCfg := services.DrawConfig{
		PrepDurationSec:   cfg.PrepDurationSec,
		SpeechDurationSec: cfg.SpeechDurationSec,
		JudgesPerRoom:     cfg.JudgesPerRoom,
	}
	newRand := func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, roundRepo, teamRepo, judgeRepo)
	standingsService := services.NewStandingsService(tournamentRepo, teamRepo, roomRepo)
	drawService := services.NewDrawService(
		dbConn,
		tournamentRepo,
		roundRepo,
		roomRepo,
		teamRepo,
		judgeRepo,
		wsHub,
		drawCfg,
		newRand,
		logger,
	)
	roomService := services.NewRoomService(roomRepo, roundRepo, wsHub, time.Now, logger)
	resultsService := services.NewResultsService(dbConn, roomRepo, roundRepo, teamRepo, ballotRepo, wsHub, logger)
	ballotService := services.NewBallotService(roomRepo, ballotRepo, resultsService, logger)
	breakService := services.NewBreakService(
		dbConn,
		tournamentRepo,
		roundRepo,
		roomRepo,
		teamRepo,
		judgeRepo,
		standingsService,
		wsHub,
		drawCfg,
		newRand,
		logger,
	)
	exportService := services.NewExportService(standingsService, uploader)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Draw:       handlers.NewDrawHandler(drawService),
		Room:       handlers.NewRoomHandler(roomService),
		Ballot:     handlers.NewBallotHandler(ballotService),
		Standings:  handlers.NewStandingsHandler(standingsService, exportService),
		Break:      handlers.NewBreakHandler(breakService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, logger),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := api.InitRoutes(h, cfg.JWTSecretKey)
	logger.Info("Routes configured")

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
		} else {
			logger.Info("server stopped gracefully")
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
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
