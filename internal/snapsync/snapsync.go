// Package snapsync keeps the Redis snapshot cache warm for polling clients.
package snapsync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"auctionhouse/internal/services/auction"
)

// Run mirrors active-auction snapshots into the cache on every tick until the
// context is cancelled. Start once at service boot.
func Run(ctx context.Context, svc auction.IAuctionService, interval time.Duration) {
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				if err := svc.RefreshSnapshots(ctx); err != nil {
					zap.L().Warn("snapsync.refresh", zap.Error(err))
				}
			}
		}
	}()
}
