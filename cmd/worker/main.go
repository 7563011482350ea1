package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/testra/backoffice-api/internal/config"
	"github.com/testra/backoffice-api/internal/repository/postgres"
	"github.com/testra/backoffice-api/pkg/logger"
	redisbroker "github.com/testra/backoffice-api/pkg/messaging/redis"
	"github.com/testra/backoffice-api/pkg/metrics"
	"github.com/testra/backoffice-api/pkg/worker"
)

const tokenCleanupInterval = 6 * time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := config.LoadWorkerOverrides(cfg); err != nil {
		zlog.Fatal().Err(err).Msg("failed to load worker overrides")
	}

	zl := zerolog.New(os.Stdout).With().Timestamp().Str("service", "worker").Logger()
	appLogger := logger.FromZerolog(zl)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(cfg.Redis.ToBrokerConfig(), &zl)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.New("backoffice_worker")

	outboxRepo := postgres.NewOutboxRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), appLogger, m)
	retention := worker.NewRetentionWorker(notificationRepo, cfg.Retention.ToWorkerConfig(), appLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)
	go retention.Start(ctx)
	go cleanupExpiredTokens(ctx, tokenRepo, appLogger)

	startHealthServer(appLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down worker")
	cancel()
	time.Sleep(time.Second)
}

// cleanupExpiredTokens trims the refresh-token denylist; entries past their
// expiry can never validate again.
func cleanupExpiredTokens(ctx context.Context, repo interface {
	DeleteExpired(ctx context.Context, before time.Time) error
}, log *logger.Logger) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx, time.Now()); err != nil {
				log.Error(err, "token cleanup failed")
			}
		}
	}
}

func startHealthServer(log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}
