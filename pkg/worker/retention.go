package worker

import (
	"context"
	"time"

	"github.com/testra/backoffice-api/internal/repository"
	"github.com/testra/backoffice-api/pkg/logger"
	"github.com/testra/backoffice-api/pkg/metrics"
)

type RetentionConfig struct {
	Window   time.Duration
	Interval time.Duration
}

func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Window:   30 * 24 * time.Hour,
		Interval: time.Hour,
	}
}

// RetentionWorker deletes read notifications older than the retention
// window. Unread notifications are never purged.
type RetentionWorker struct {
	repo    repository.NotificationRepository
	config  RetentionConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewRetentionWorker(repo repository.NotificationRepository, config RetentionConfig, logger *logger.Logger, metrics *metrics.Metrics) *RetentionWorker {
	if config.Window <= 0 {
		config.Window = 30 * 24 * time.Hour
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &RetentionWorker{repo: repo, config: config, logger: logger, metrics: metrics}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Info("starting notification retention worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutting down retention worker")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-w.config.Window)
			purged, err := w.repo.PurgeRead(ctx, cutoff)
			if err != nil {
				w.logger.Error(err, "retention purge failed")
				continue
			}
			if purged > 0 {
				w.metrics.RetentionPurged.Add(float64(purged))
				w.logger.Info("purged read notifications", "count", purged)
			}
		}
	}
}
