package worker

import (
	"context"
	"time"

	"github.com/hospiq/scheduling-api/internal/service/draft"
	"github.com/hospiq/scheduling-api/pkg/logger"
)

// DraftJanitor sweeps idle booking drafts past their TTL. The draft
// store also expires lazily on access; the janitor bounds how long a
// dead draft can linger without being touched.
type DraftJanitor struct {
	drafts   *draft.Service
	interval time.Duration
	logger   *logger.Logger
}

func NewDraftJanitor(drafts *draft.Service, interval time.Duration, logger *logger.Logger) *DraftJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &DraftJanitor{
		drafts:   drafts,
		interval: interval,
		logger:   logger,
	}
}

func (j *DraftJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("starting draft janitor", "interval", j.interval.String())

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("shutting down draft janitor")
			return
		case <-ticker.C:
			if swept := j.drafts.SweepExpired(ctx); swept > 0 {
				j.logger.Debug("expired idle drafts", "count", swept)
			}
		}
	}
}
