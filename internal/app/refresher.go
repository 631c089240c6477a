package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/pushpanel/internal/controller"
)

const defaultRefreshInterval = 5 * time.Second

// Reconciler re-derives the panel state.
type Reconciler interface {
	Reconcile(ctx context.Context) (controller.UIState, error)
}

// RefreshRecorder receives the outcome of each background reconcile.
type RefreshRecorder interface {
	RecordRefresh(err error)
}

// StartRefresher launches a background goroutine that reconciles at a fixed
// cadence, picking up changes made outside the panel. Failures are recorded
// and there is no backoff. It returns immediately.
func StartRefresher(ctx context.Context, r Reconciler, rec RefreshRecorder, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			refresh(ctx, r, rec, logger)
		}
	}()
}

func refresh(ctx context.Context, r Reconciler, rec RefreshRecorder, logger *zap.Logger) {
	_, err := r.Reconcile(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Warn("background reconcile failed", zap.Error(err))
	}
	rec.RecordRefresh(err)
}
