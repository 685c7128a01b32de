package tracker

import (
	"context"
	"sync"
	"time"
)

// sourceGate spaces fetches per source: the next fetch for a source must
// not begin before the slot it reserves. Concurrent workers hitting the
// same source serialize here instead of sleeping inside scraping code.
type sourceGate struct {
	mu    sync.Mutex
	next  map[string]time.Time
	delay map[string]time.Duration
}

func newSourceGate(delays map[string]time.Duration) *sourceGate {
	return &sourceGate{
		next:  make(map[string]time.Time),
		delay: delays,
	}
}

// Wait reserves the next fetch slot for source and blocks until it
// opens, or until ctx is cancelled.
func (g *sourceGate) Wait(ctx context.Context, source string) error {
	g.mu.Lock()
	now := time.Now()
	slot := g.next[source]
	if slot.Before(now) {
		slot = now
	}
	reserved := slot.Add(g.delay[source])
	g.next[source] = reserved
	g.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		// Give the unused slot back, unless a later caller already
		// reserved past it.
		g.mu.Lock()
		if g.next[source].Equal(reserved) {
			g.next[source] = slot
		}
		g.mu.Unlock()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
