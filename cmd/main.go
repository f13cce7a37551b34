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

	"github.com/esports-arena/tournament-hub/config"
	"github.com/esports-arena/tournament-hub/db"
	"github.com/esports-arena/tournament-hub/handlers"
	"github.com/esports-arena/tournament-hub/livequery"
	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/esports-arena/tournament-hub/repositories"
	api "github.com/esports-arena/tournament-hub/routes"
	"github.com/esports-arena/tournament-hub/services"
	"github.com/esports-arena/tournament-hub/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const schedulerInterval = 30 * time.Second

// forwardedTables — таблицы, чьи события шины транслируются в websocket.
var forwardedTables = []string{
	"tournaments", "registrations", "matches", "leaderboard", "featured_games",
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Загрузчик файлов опционален: без R2 приложение работает, но
	// загрузка картинок возвращает ошибку.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewR2Uploader(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, file uploads are disabled")
	}

	// Шина изменений и websocket-хаб.
	bus := realtime.NewBus()
	hub := realtime.NewHub(logger)
	go hub.Run()
	for _, table := range forwardedTables {
		sub := bus.Subscribe(table, "")
		go hub.Forward(sub)
	}
	logger.Info("realtime bus and websocket hub started")

	// Репозитории.
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(dbConn)
	featuredGameRepo := repositories.NewPostgresFeaturedGameRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)

	// Сервисы.
	notifier := services.NewHTTPNotifier(services.NotificationConfig{
		SendEmailURL:    cfg.NotifySendEmailURL,
		StatusUpdateURL: cfg.NotifyStatusUpdateURL,
	}, logger)

	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, registrationRepo, uploader, bus, logger)
	registrationService := services.NewRegistrationService(registrationRepo, tournamentRepo, tournamentService, uploader, notifier, bus, logger)
	matchService := services.NewMatchService(matchRepo, registrationRepo, tournamentRepo, bus)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, registrationRepo, uploader, bus)
	featuredGameService := services.NewFeaturedGameService(featuredGameRepo, uploader, bus)
	dashboardService := services.NewDashboardService(tournamentRepo, registrationRepo, matchRepo, uploader)
	authService := services.NewAuthService(userRepo, []byte(cfg.JWTSecretKey))
	logger.Info("services initialized")

	// Живая привязка публичной таблицы лидеров: перечитывает выборку на
	// каждое событие шины, чтение отдаёт готовый снимок.
	leaderboardLive := livequery.Bind(context.Background(), bus, "leaderboard", "",
		func(ctx context.Context) ([]models.LeaderboardEntry, error) {
			return leaderboardService.ListEntries(ctx)
		}, logger)
	defer leaderboardLive.Close()

	// Планировщик автоматических переходов статусов турниров.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("tournament status scheduler started", slog.Duration("interval", schedulerInterval))

		if err := tournamentService.AutoUpdateStatusesByDates(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := tournamentService.AutoUpdateStatusesByDates(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	// HTTP.
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Match:        handlers.NewMatchHandler(matchService),
		Leaderboard:  handlers.NewLeaderboardHandler(leaderboardService, leaderboardLive),
		FeaturedGame: handlers.NewFeaturedGameHandler(featuredGameService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		WebSocket:    handlers.NewWebSocketHandler(hub, logger),
	}, middleware.NewAuthenticator([]byte(cfg.JWTSecretKey)), cfg.CORSAllowedOrigins)
	logger.Info("routes configured")

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
