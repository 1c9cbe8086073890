package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartTokenPurge runs the refresh-token maintenance sweep on a ticker
// until ctx is cancelled. Each pass deletes tokens whose expiry or
// revocation lies more than retention in the past. Deletes are
// idempotent, so overlapping or repeated sweeps are harmless.
func StartTokenPurge(ctx context.Context, tokens TokenStore, interval, retention time.Duration, log *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			n, err := tokens.PurgeExpiredAndRevoked(sweepCtx, retention)
			cancel()
			if err != nil {
				log.Warnw("token purge failed", "error", err)
				continue
			}
			if n > 0 {
				log.Infow("purged refresh tokens", "count", n)
			}
		}
	}
}
