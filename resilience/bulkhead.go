package resilience

import "context"

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of slots.
	// Default: 10
	MaxConcurrent int
}

// Bulkhead bounds how many checks run at once. A caller waiting for a slot
// gives up when its context ends, so the aggregator's deadline is also the
// longest a check queues.
type Bulkhead struct {
	slots chan struct{}
}

// NewBulkhead creates a bulkhead with every slot free.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{slots: make(chan struct{}, config.MaxConcurrent)}
}

// Acquire takes a slot, or returns ctx.Err() if ctx ends first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (b *Bulkhead) Release() {
	select {
	case <-b.slots:
	default:
	}
}
