package ddrouter

import "encoding/json"

// DecodeFunc decodes a success body into v, which is always a non-nil pointer.
type DecodeFunc func(data []byte, v any) error

type routerOptions struct {
	session   *Session
	ephemeral bool
	scheduler Scheduler
	decode    DecodeFunc
}

// Option configures a Router.
type Option func(*routerOptions)

// WithSession dispatches on s instead of the process-wide default session.
func WithSession(s *Session) Option {
	return func(o *routerOptions) {
		o.session = s
	}
}

// WithEphemeralSession derives an isolated session from the configured one
// at construction time. See Session.Ephemeral.
func WithEphemeralSession() Option {
	return func(o *routerOptions) {
		o.ephemeral = true
	}
}

// WithScheduler sets where Future subscribers are called. The default is GoScheduler.
func WithScheduler(s Scheduler) Option {
	return func(o *routerOptions) {
		o.scheduler = s
	}
}

// WithDecoder replaces json.Unmarshal for success bodies. Error bodies are
// still decoded into P with json.Unmarshal.
func WithDecoder(fn DecodeFunc) Option {
	return func(o *routerOptions) {
		o.decode = fn
	}
}

func defaultRouterOptions() routerOptions {
	return routerOptions{
		scheduler: GoScheduler,
		decode:    json.Unmarshal,
	}
}
