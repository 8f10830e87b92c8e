package metadata

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Minimum spacing between outbound calls, per provider.
const (
	MoviePacing = 250 * time.Millisecond
	TVPacing    = 500 * time.Millisecond
	BookPacing  = 500 * time.Millisecond
)

// Pacer enforces a minimum interval between calls to one provider. Each
// client owns its own Pacer; the mutex makes it safe even if two scans of
// the same kind ever run concurrently.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until the caller's slot arrives. The slot is reserved before
// sleeping, so concurrent callers space out correctly without holding the
// lock through the sleep.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	var wait time.Duration
	if p.next.After(now) {
		wait = p.next.Sub(now)
		p.next = p.next.Add(p.interval)
	} else {
		p.next = now.Add(p.interval)
	}
	p.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	case <-timer.C:
		return nil
	}
}
