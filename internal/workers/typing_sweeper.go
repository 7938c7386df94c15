package workers

import (
	"context"
	"time"

	"artlink_backend/internal/logger"
	chatRepo "artlink_backend/internal/repositories/chat"
)

// TypingSweeper expires stale typing rows left behind by connections that
// died without a clean disconnect.
type TypingSweeper struct {
	typingRepo *chatRepo.TypingRepository
	ttl        time.Duration
	interval   time.Duration
}

func NewTypingSweeper(typingRepo *chatRepo.TypingRepository, ttl time.Duration) *TypingSweeper {
	return &TypingSweeper{
		typingRepo: typingRepo,
		ttl:        ttl,
		interval:   ttl,
	}
}

func (w *TypingSweeper) Start(ctx context.Context) {
	go w.sweepLoop(ctx)
}

func (w *TypingSweeper) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("typing sweeper stopped")
			return
		case <-ticker.C:
			removed, err := w.typingRepo.SweepStale(w.ttl)
			logger.WorkerLog("typing_sweeper", "sweep_stale", err)
			if err == nil && removed > 0 {
				logger.Debug("expired stale typing rows", "count", removed)
			}
		}
	}
}
