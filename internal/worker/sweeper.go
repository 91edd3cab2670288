package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/modhub/review-queue/internal/repository"
)

// Sweeper periodically clears the visible flag on approved and rejected
// items once they are older than the retention window, so the queue
// listing only ever shows work that still needs attention or was decided
// recently. Items are never deleted; archival of the rows themselves is an
// external lifecycle concern.
type Sweeper struct {
	repo      repository.QueueRepository
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
}

func NewSweeper(
	repo repository.QueueRepository,
	interval, retention time.Duration,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{repo: repo, interval: interval, retention: retention, logger: logger}
}

// Run ticks every interval and hides any terminal items past retention.
// Stops cleanly when ctx is cancelled.
func (sw *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	sw.logger.Info("retention sweeper started",
		zap.Duration("interval", sw.interval),
		zap.Duration("retention", sw.retention),
	)

	for {
		select {
		case <-ctx.Done():
			sw.logger.Info("retention sweeper stopping")
			return
		case <-ticker.C:
			sw.sweep(ctx)
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-sw.retention)
	hidden, err := sw.repo.HideProcessedBefore(ctx, cutoff)
	if err != nil {
		sw.logger.Error("sweep error", zap.Error(err))
		return
	}
	if hidden > 0 {
		sw.logger.Info("hid processed items", zap.Int64("count", hidden))
	}
}
