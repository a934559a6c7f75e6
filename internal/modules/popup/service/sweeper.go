package service

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const sweepLockKey = "popup:schedule_sweep_lock"

// StartScheduleSweeper periodically re-runs date reconciliation so stored
// state stays fresh between list reads. When Redis is available a SetNX lock
// keeps multi-instance deployments down to one sweeper per interval.
func StartScheduleSweeper(ctx context.Context, svc PopupService, rdb *redis.Client, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !acquireSweepLock(ctx, rdb, interval) {
				continue
			}

			updated, err := svc.ReconcileAll(ctx)
			if err != nil {
				log.Printf("❌ Popup schedule sweep failed: %v", err)
				continue
			}
			if updated > 0 {
				log.Printf("✅ Popup schedule sweep updated %d popup(s)", updated)
			}
		}
	}
}

func acquireSweepLock(ctx context.Context, rdb *redis.Client, interval time.Duration) bool {
	if rdb == nil {
		return true
	}

	wasSet, err := rdb.SetNX(ctx, sweepLockKey, "locked", interval).Result()
	if err != nil {
		log.Printf("failed to acquire sweep lock in redis: %v", err)
		return false
	}
	return wasSet
}
