package resolver

import (
	"context"
	"sync"
	"time"
)

// MemoryReplayGuard tracks consumed tokens in memory with a TTL. Suitable
// for single-instance deployments and tests; multi-instance deployments
// need the Redis guard.
type MemoryReplayGuard struct {
	mu     sync.Mutex
	ttl    time.Duration
	seen   map[string]time.Time
	lastGC time.Time
}

func NewMemoryReplayGuard(ttl time.Duration) *MemoryReplayGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryReplayGuard{ttl: ttl, seen: make(map[string]time.Time)}
}

func (g *MemoryReplayGuard) Claim(_ context.Context, token string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	g.gc(now)

	if expiry, ok := g.seen[token]; ok && now.Before(expiry) {
		return false, nil
	}
	g.seen[token] = now.Add(g.ttl)
	return true, nil
}

// gc sweeps expired tokens at most once per TTL interval.
func (g *MemoryReplayGuard) gc(now time.Time) {
	if now.Sub(g.lastGC) < g.ttl {
		return
	}
	for token, expiry := range g.seen {
		if now.After(expiry) {
			delete(g.seen, token)
		}
	}
	g.lastGC = now
}
