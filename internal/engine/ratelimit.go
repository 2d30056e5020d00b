package engine

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces requests per destination host.
type HostLimiter struct {
	mu     sync.Mutex
	rps    rate.Limit
	burst  int
	byHost map[string]*rate.Limiter
}

// NewHostLimiter allows rps requests per second per host with the given burst.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{rps: rate.Limit(rps), burst: burst, byHost: make(map[string]*rate.Limiter)}
}

// Wait blocks until a request to rawURL's host may proceed or ctx is done.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	return l.forHost(hostOf(rawURL)).Wait(ctx)
}

func (l *HostLimiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.byHost[host]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.byHost[host] = lim
	}
	return lim
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
