package worker

import (
	"context"
	"time"

	"github.com/hospiq/scheduling-api/internal/repository"
	"github.com/hospiq/scheduling-api/pkg/logger"
)

// AuditCleanupWorker trims the audit trail to the configured retention
// window.
type AuditCleanupWorker struct {
	repo          repository.AuditRepository
	retentionDays int
	interval      time.Duration
	logger        *logger.Logger
}

func NewAuditCleanupWorker(repo repository.AuditRepository, retentionDays int, interval time.Duration, logger *logger.Logger) *AuditCleanupWorker {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AuditCleanupWorker{
		repo:          repo,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger,
	}
}

func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("starting audit cleanup worker",
		"retention_days", w.retentionDays)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutting down audit cleanup worker")
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *AuditCleanupWorker) cleanup(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	count, err := w.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		w.logger.Error(err, "failed to clean up audit events")
		return
	}

	if count > 0 {
		w.logger.Info("cleaned up audit events",
			"count", count, "cutoff", cutoff.Format(time.RFC3339))
	}
}
