package scraper

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// hostRateLimiter gives every scraped host its own token bucket, so one
// slow or aggressively-limited source never steals request budget from
// another. Grounded on services/crawler.RateLimiter's per-domain map
// idiom, backed here by golang.org/x/time/rate instead of a hand-rolled
// last-request timestamp.
type hostRateLimiter struct {
	mu             sync.Mutex
	limiters       map[string]*rate.Limiter
	perSecond      rate.Limit
	burst          int
}

func newHostRateLimiter(requestsPerSecond float64) *hostRateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	return &hostRateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		perSecond: rate.Limit(requestsPerSecond),
		burst:     1,
	}
}

// Wait blocks until rawURL's host is allowed to make a request, or
// returns ctx.Err() if the context is cancelled first.
func (h *hostRateLimiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}
	return h.limiterFor(host).Wait(ctx)
}

func (h *hostRateLimiter) limiterFor(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.perSecond, h.burst)
		h.limiters[host] = l
	}
	return l
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
