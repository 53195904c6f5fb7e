package workers

import (
	"context"
	"time"

	"morpheus/internal/domain/memory"
	"morpheus/pkg/logger"
)

// MemoryCleaner periodically deletes expired memories. Similarity search
// already filters expired rows, so this only reclaims storage.
type MemoryCleaner struct {
	memories memory.Repository
	interval time.Duration
	log      *logger.Logger
}

// NewMemoryCleaner creates a cleaner sweeping at the given interval.
func NewMemoryCleaner(memories memory.Repository, interval time.Duration) *MemoryCleaner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &MemoryCleaner{
		memories: memories,
		interval: interval,
		log:      logger.Get().With("component", "memory_cleaner"),
	}
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled. Intended to run in its own goroutine.
func (c *MemoryCleaner) Run(ctx context.Context) {
	c.sweep(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *MemoryCleaner) sweep(ctx context.Context) {
	deleted, err := c.memories.DeleteExpired(ctx)
	if err != nil {
		c.log.Errorw("Expired memory cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		c.log.Infow("Expired memories removed", "count", deleted)
	}
}
