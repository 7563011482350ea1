package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/testra/backoffice-api/internal/config"
	"github.com/testra/backoffice-api/internal/email"
	"github.com/testra/backoffice-api/internal/handler"
	appointmentHandler "github.com/testra/backoffice-api/internal/handler/appointment"
	authHandler "github.com/testra/backoffice-api/internal/handler/auth"
	companyHandler "github.com/testra/backoffice-api/internal/handler/company"
	eventsHandler "github.com/testra/backoffice-api/internal/handler/events"
	notificationHandler "github.com/testra/backoffice-api/internal/handler/notification"
	"github.com/testra/backoffice-api/internal/middleware"
	"github.com/testra/backoffice-api/internal/repository/postgres"
	"github.com/testra/backoffice-api/internal/router"
	appointmentService "github.com/testra/backoffice-api/internal/service/appointment"
	authService "github.com/testra/backoffice-api/internal/service/auth"
	companyService "github.com/testra/backoffice-api/internal/service/company"
	notificationService "github.com/testra/backoffice-api/internal/service/notification"
	"github.com/testra/backoffice-api/pkg/auth"
	"github.com/testra/backoffice-api/pkg/logger"
	redisbroker "github.com/testra/backoffice-api/pkg/messaging/redis"
	"github.com/testra/backoffice-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	companyRepo := postgres.NewCompanyRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        cfg.JWT.Expiry,
	})
	hasher := security.NewBcryptHasher(0)
	mailer := email.NewService(cfg.Email)

	brokerLogger := log.With().Str("component", "broker").Logger()
	broker, err := redisbroker.NewBroker(cfg.Redis.ToBrokerConfig(), &brokerLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	companySvc := companyService.NewService(companyRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, companySvc)
	notificationSvc := notificationService.NewService(notificationRepo, userRepo, mailer, appLogger)
	authSvc := authService.NewService(userRepo, tokenRepo, jwtSvc, hasher)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	h := handler.NewHandler()
	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		companyHandler.NewHandler(companySvc),
		notificationHandler.NewHandler(notificationSvc),
		eventsHandler.NewHandler(broker),
		h,
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        cfg.RateLimit.RequestsPerSecond,
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       corsConfig(cfg),
			RequestTimeout:   cfg.Server.RequestTimeout,
			MetricsPrefix:    "backoffice_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsCfg.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.Security.AllowedHeaders
	}
	return corsCfg
}
