package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"questlog/backend/internal/config"
	"questlog/backend/internal/database"
	"questlog/backend/internal/handler"
	"questlog/backend/internal/hub"
	"questlog/backend/internal/logging"
	"questlog/backend/internal/rawg"
	"questlog/backend/internal/recommend"
	"questlog/backend/internal/services"
	"questlog/backend/pkg/jwt"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"

	// Swagger docs registered with swag
	_ "questlog/backend/docs"
)

// @title           Questlog API
// @version         1.0
// @description     Community video-game catalog with a moderated submission queue.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateServer(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logging.Setup(cfg.LogLevel)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			logrus.WithError(err).Error("Sentry init failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	catalog := rawg.NewClient(cfg.RawgBaseURL, cfg.RawgAPIKey, cfg.RawgTimeout)
	events := hub.NewHub()

	deps := handler.Deps{
		Auth:        services.NewAuthService(db, tokens, !cfg.IsProduction()),
		Games:       services.NewGameService(db, catalog, events),
		Reviews:     services.NewReviewService(db),
		Leaderboard: services.NewLeaderboardService(db),
		Catalog:     catalog,
		Events:      events,
	}
	if rec, err := recommend.Load(cfg.GamesFile); err != nil {
		logrus.WithError(err).WithField("path", cfg.GamesFile).Warn("Recommendations disabled")
	} else {
		logrus.WithField("games", rec.Len()).Info("Recommender loaded")
		deps.Recommender = rec
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(logging.RequestID(), logging.RequestLogger())
	handler.RegisterRoutes(router, handler.New(deps), tokens)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", logging.RequestIDHeader},
		ExposedHeaders:   []string{logging.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
	rateLimit := httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler(rateLimit(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("Server is running")
		logrus.Infof("Swagger UI is available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown error")
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.WithError(err).Error("Database close error")
		}
	}
}
