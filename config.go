package ddrouter

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout is the per-request timeout used when Config.Timeout is zero
// and no shared client timeout is available.
const DefaultTimeout = 60 * time.Second

// Config is the session configuration. It is read once by NewSession.
type Config struct {
	// Timeout is the per-request timeout copied into every WireRequest.
	Timeout time.Duration

	// Transport is the OPTIONAL base round tripper. When nil the shared
	// client's transport is used, or a clone of http.DefaultTransport.
	Transport http.RoundTripper

	// Client is the OPTIONAL preconfigured shared client. Its cookie jar,
	// redirect policy and timeout are reused; the client itself is never mutated.
	Client *http.Client

	// Verbose enables request/response debug logging.
	Verbose bool

	// Logger receives diagnostics. When nil, verbose sessions log to a
	// development zap logger and others discard.
	Logger Logger

	// Middleware is applied around the base transport; Middleware[0] runs first.
	Middleware []Middleware

	// Metrics is the OPTIONAL Prometheus collector.
	Metrics *MetricsCollector

	// RateLimit enables the token bucket middleware when set.
	RateLimit *RateLimitConfig

	// CircuitBreaker enables the circuit breaker middleware when set.
	CircuitBreaker *CircuitBreakerConfig
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []string

	if c.Timeout < 0 {
		errs = append(errs, "timeout must be non-negative")
	}
	if c.Timeout > 10*time.Minute {
		errs = append(errs, "timeout > 10m may cause requests to hang for too long")
	}

	for i, mw := range c.Middleware {
		if mw == nil {
			errs = append(errs, fmt.Sprintf("middleware[%d] cannot be nil", i))
		}
	}

	if rl := c.RateLimit; rl != nil {
		if rl.RequestsPerSecond <= 0 {
			errs = append(errs, "rate limit requests per second must be positive")
		}
		if rl.Burst < 0 {
			errs = append(errs, "rate limit burst must be non-negative")
		}
	}

	if cb := c.CircuitBreaker; cb != nil {
		if cb.FailureThreshold < 0 {
			errs = append(errs, "circuit breaker failure threshold must be non-negative")
		}
		if cb.RecoveryTimeout < 0 {
			errs = append(errs, "circuit breaker recovery timeout must be non-negative")
		}
		if cb.SuccessThreshold < 0 {
			errs = append(errs, "circuit breaker success threshold must be non-negative")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("ddrouter: invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

type rawConfig struct {
	Timeout   string `yaml:"timeout"`
	Verbose   bool   `yaml:"verbose"`
	RateLimit *struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		PerHost           bool    `yaml:"per_host"`
	} `yaml:"rate_limit"`
	CircuitBreaker *struct {
		FailureThreshold int    `yaml:"failure_threshold"`
		RecoveryTimeout  string `yaml:"recovery_timeout"`
		SuccessThreshold int    `yaml:"success_threshold"`
	} `yaml:"circuit_breaker"`
}

// LoadConfig reads a YAML session configuration from path. Runtime-only
// fields (Transport, Client, Logger, Middleware, Metrics) are left unset.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig parses a YAML session configuration.
func ParseConfig(b []byte) (*Config, error) {
	var rc rawConfig
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	cfg := &Config{Verbose: rc.Verbose}

	timeout, err := parseDuration("timeout", rc.Timeout)
	if err != nil {
		return nil, err
	}
	cfg.Timeout = timeout

	if rl := rc.RateLimit; rl != nil {
		cfg.RateLimit = &RateLimitConfig{
			RequestsPerSecond: rl.RequestsPerSecond,
			Burst:             rl.Burst,
			PerHost:           rl.PerHost,
		}
	}

	if cb := rc.CircuitBreaker; cb != nil {
		recovery, err := parseDuration("circuit_breaker.recovery_timeout", cb.RecoveryTimeout)
		if err != nil {
			return nil, err
		}
		cfg.CircuitBreaker = &CircuitBreakerConfig{
			FailureThreshold: cb.FailureThreshold,
			RecoveryTimeout:  recovery,
			SuccessThreshold: cb.SuccessThreshold,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
