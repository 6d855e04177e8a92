package activity

import (
	"context"
	"log"
	"time"
)

// Pruner deletes expired activity entries.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Reaper enforces the activity retention window in the background,
// standing in for a TTL-capable store feature.
type Reaper struct {
	store     Pruner
	retention time.Duration
	interval  time.Duration
}

func NewReaper(store Pruner, retention, interval time.Duration) *Reaper {
	return &Reaper{store: store, retention: retention, interval: interval}
}

// Run reaps once immediately, then on every tick until the context ends.
func (r *Reaper) Run(ctx context.Context) {
	r.reapOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reapOnce(ctx)
		}
	}
}

func (r *Reaper) reapOnce(ctx context.Context) {
	cutoff := time.Now().Add(-r.retention)
	deleted, err := r.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("⚠️  Activity reaper failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🧹 Reaped %d expired activity entries", deleted)
	}
}
