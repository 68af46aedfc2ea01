// workers/wallet_watch_worker.go
package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WalletSyncer applies the provider's current accounts and chain.
type WalletSyncer interface {
	Sync(ctx context.Context) error
}

// PollWallet asks syncer to reconcile with the provider every interval
// until ctx ends.
func PollWallet(ctx context.Context, syncer WalletSyncer, pollInterval time.Duration, logger *zap.Logger) {
	logger.Info("👀 [WATCH] Starting wallet provider polling", zap.Duration("interval", pollInterval))

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("⏹️ [WATCH] Wallet polling stopped")
			return
		case <-ticker.C:
			if err := syncer.Sync(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				logger.Warn("❌ [WATCH] Error polling wallet provider", zap.Error(err))
			}
		}
	}
}
