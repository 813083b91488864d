package cache

import (
	"time"

	"arcompras/comprasworker/logger"
)

// Guard blocks scraping a source for a cool-down window after the source
// rate-limits us. A nil Guard never blocks.
type Guard struct {
	svc   CacheService
	key   string
	block time.Duration
}

// NewGuard creates a guard for one source. Returns nil when no cache service
// is configured, which disables guarding.
func NewGuard(svc CacheService, source string, block time.Duration) *Guard {
	if svc == nil {
		return nil
	}
	return &Guard{svc: svc, key: "rate_limited_" + source, block: block}
}

// Blocked reports whether the source is inside a cool-down window.
func (g *Guard) Blocked() bool {
	if g == nil {
		return false
	}
	_, err := g.svc.Get(g.key)
	return err == nil
}

// Trip starts the cool-down window for the source.
func (g *Guard) Trip() {
	if g == nil {
		return
	}
	if err := g.svc.Set(g.key, []byte("1"), g.block); err != nil {
		logger.Warn("Failed to record rate limit block for %s: %v", g.key, err)
	}
}

// Remaining returns the configured cool-down duration.
func (g *Guard) Remaining() time.Duration {
	if g == nil {
		return 0
	}
	return g.block
}
