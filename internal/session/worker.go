package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepWorker evicts expired view sessions in the background so long-idle
// identities do not pin memory.
type SweepWorker struct {
	store    *Store
	log      *zap.Logger
	interval time.Duration
}

// NewSweepWorker builds a sweeper over the store.
func NewSweepWorker(store *Store, log *zap.Logger, interval time.Duration) *SweepWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweepWorker{
		store:    store,
		log:      log.Named("session.sweep"),
		interval: interval,
	}
}

// RunForever sweeps on the configured interval until the context ends.
func (w *SweepWorker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if removed := w.store.Sweep(); removed > 0 {
			w.log.Debug("swept expired view sessions",
				zap.Int("removed", removed),
				zap.Int("remaining", w.store.Len()),
			)
		}
	}
}
