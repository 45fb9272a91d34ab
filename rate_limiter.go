package ddrouter

import (
	"fmt"
	"net/http"
	"sync"

	ratelib "golang.org/x/time/rate"
)

// RateLimitConfig defines token bucket parameters for outgoing requests.
type RateLimitConfig struct {
	// RequestsPerSecond is the average number of requests per second allowed.
	RequestsPerSecond float64
	// Burst is the maximum number of requests that can be sent at once.
	Burst int
	// PerHost keeps one bucket per request host instead of a single shared one.
	PerHost bool
}

const defaultLimiterKey = "default"

// RateLimiter holds token buckets keyed by host (or a single bucket).
type RateLimiter struct {
	config RateLimitConfig

	mu       sync.RWMutex
	limiters map[string]*ratelib.Limiter
}

// NewRateLimiter creates a RateLimiter. A Burst below one is raised to one.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.Burst < 1 {
		config.Burst = 1
	}
	return &RateLimiter{
		config:   config,
		limiters: make(map[string]*ratelib.Limiter),
	}
}

// Key returns the bucket key for req.
func (rl *RateLimiter) Key(req *http.Request) string {
	if !rl.config.PerHost || req.URL == nil || req.URL.Host == "" {
		return defaultLimiterKey
	}
	return req.URL.Host
}

func (rl *RateLimiter) limiter(key string) *ratelib.Limiter {
	rl.mu.RLock()
	lim, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		return lim
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	// double-check
	if lim, ok = rl.limiters[key]; !ok {
		lim = ratelib.NewLimiter(ratelib.Limit(rl.config.RequestsPerSecond), rl.config.Burst)
		rl.limiters[key] = lim
	}
	return lim
}

// Allow reports whether req may be sent now, consuming a token if so.
func (rl *RateLimiter) Allow(req *http.Request) bool {
	return rl.limiter(rl.Key(req)).Allow()
}

// Wait blocks until req may be sent or its context is done.
func (rl *RateLimiter) Wait(req *http.Request) error {
	return rl.limiter(rl.Key(req)).Wait(req.Context())
}

// Middleware returns a Middleware that waits for a token before forwarding.
// A wait aborted by the request context surfaces as a transport error.
func (rl *RateLimiter) Middleware(metrics *MetricsCollector) Middleware {
	return func(req *http.Request, next RoundTripper) (*http.Response, error) {
		key := rl.Key(req)
		if !rl.limiter(key).Allow() {
			metrics.RecordRateLimited(key)
			if err := rl.Wait(req); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}
		return next.RoundTrip(req)
	}
}
