package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunPurger calls p.PurgeExpired every interval until ctx is done.
func RunPurger(ctx context.Context, p Purger, interval time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := p.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("session purge failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions purged", zap.Int("count", removed))
			}
		}
	}
}
