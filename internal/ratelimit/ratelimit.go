// Package ratelimit provides a process-wide per-host token bucket, so a
// chatty aggregator fan-out (spec.md §4.5) never hammers a single add-on
// past what it can take. Built on golang.org/x/time/rate since add-on
// calls are rate-bound rather than just concurrency-bound.
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Set is a keyed collection of rate.Limiters, one per host, created
// lazily on first use with the Set's configured rps/burst.
type Set struct {
	rps   rate.Limit
	burst int

	mu sync.Mutex
	m  map[string]*rate.Limiter
}

// New returns a Set where each host may sustain rps requests per second
// with bursts up to burst.
func New(rps float64, burst int) *Set {
	return &Set{rps: rate.Limit(rps), burst: burst, m: make(map[string]*rate.Limiter)}
}

// Wait blocks until a token is available for host, or ctx is done.
// host should already be normalised to scheme+host (e.g. via HostOf).
func (s *Set) Wait(ctx context.Context, host string) error {
	return s.limiterFor(host).Wait(ctx)
}

func (s *Set) limiterFor(host string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.m[host]
	if !ok {
		l = rate.NewLimiter(s.rps, s.burst)
		s.m[host] = l
	}
	return l
}

// HostOf normalises a request URL down to scheme+host, the granularity
// add-on rate limiting operates at (one bucket per add-on, not per path).
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
