package ddrouter

import (
	"net/http"
	"net/http/cookiejar"
	"sync/atomic"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Session owns the transport used to dispatch requests together with the
// logging and metrics settings. A Session is immutable after construction
// and safe for concurrent use.
type Session struct {
	config    Config
	base      http.RoundTripper
	client    *http.Client
	logger    Logger
	timeout   time.Duration
	ephemeral bool
	breaker   *CircuitBreaker
	limiter   *RateLimiter
}

var defaultSession atomic.Pointer[Session]

// Initialise builds the process-wide default session used by routers
// created without WithSession. It must be called before such routers issue
// requests; calling it again replaces the default for routers created later.
func Initialise(cfg Config) error {
	s, err := NewSession(cfg)
	if err != nil {
		return err
	}
	defaultSession.Store(s)
	return nil
}

// DefaultSession returns the session installed by Initialise, or nil.
func DefaultSession() *Session {
	return defaultSession.Load()
}

// NewSession validates cfg and builds a session.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newSession(cfg, false), nil
}

func newSession(cfg Config, ephemeral bool) *Session {
	s := &Session{config: cfg, ephemeral: ephemeral}

	s.base = cfg.Transport
	if s.base == nil && cfg.Client != nil {
		s.base = cfg.Client.Transport
	}
	if s.base == nil {
		s.base = http.DefaultTransport.(*http.Transport).Clone()
	}

	s.timeout = cfg.Timeout
	if s.timeout == 0 && cfg.Client != nil {
		s.timeout = cfg.Client.Timeout
	}
	if s.timeout == 0 {
		s.timeout = DefaultTimeout
	}

	s.logger = cfg.Logger
	if s.logger == nil {
		if cfg.Verbose {
			s.logger = NewDevelopmentLogger()
		} else {
			s.logger = NopLogger()
		}
	}

	chainOf := append([]Middleware(nil), cfg.Middleware...)
	if cfg.CircuitBreaker != nil {
		s.breaker = NewCircuitBreaker(*cfg.CircuitBreaker)
		chainOf = append(chainOf, s.breaker.Middleware("default", cfg.Metrics))
	}
	if cfg.RateLimit != nil {
		s.limiter = NewRateLimiter(*cfg.RateLimit)
		chainOf = append(chainOf, s.limiter.Middleware(cfg.Metrics))
	}

	s.client = &http.Client{Transport: chain(requireResponse(s.base), chainOf)}
	if cfg.Client != nil && !ephemeral {
		s.client.Jar = cfg.Client.Jar
		s.client.CheckRedirect = cfg.Client.CheckRedirect
	} else {
		s.client.Jar = newCookieJar()
	}

	return s
}

// Ephemeral derives a session with the same configuration and middleware
// chain but isolated state: its own cookie jar, a cloned base transport
// when it is an *http.Transport, and fresh circuit breaker and rate limiter
// buckets. The receiver is not modified.
func (s *Session) Ephemeral() *Session {
	cfg := s.config
	cfg.Client = nil
	cfg.Transport = cloneTransport(s.base)
	cfg.Timeout = s.timeout
	cfg.Logger = s.logger
	return newSession(cfg, true)
}

// IsEphemeral reports whether the session was derived with Ephemeral.
func (s *Session) IsEphemeral() bool {
	return s.ephemeral
}

// Timeout returns the per-request timeout.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// Verbose reports whether request/response logging is enabled.
func (s *Session) Verbose() bool {
	return s.config.Verbose
}

// Logger returns the session logger.
func (s *Session) Logger() Logger {
	return s.logger
}

// Metrics returns the metrics collector, which may be nil.
func (s *Session) Metrics() *MetricsCollector {
	return s.config.Metrics
}

// HTTPClient returns the client requests are dispatched on.
func (s *Session) HTTPClient() *http.Client {
	return s.client
}

// CircuitBreaker returns the session circuit breaker, or nil when disabled.
func (s *Session) CircuitBreaker() *CircuitBreaker {
	return s.breaker
}

func cloneTransport(rt http.RoundTripper) http.RoundTripper {
	if t, ok := rt.(*http.Transport); ok {
		return t.Clone()
	}
	return rt
}

func newCookieJar() http.CookieJar {
	// cookiejar.New only fails on invalid options
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil
	}
	return jar
}
