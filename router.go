package ddrouter

import (
	"context"
	"errors"
)

// Empty is the result type for endpoints whose success body is ignored.
// Request[Empty] never decodes the body.
type Empty struct{}

// Router issues requests for endpoints whose error bodies decode as P.
// A Router captures its session when it is created and is safe for
// concurrent use.
type Router[P any] struct {
	session   *Session
	scheduler Scheduler
	decode    DecodeFunc
}

// New creates a router. Without WithSession it uses DefaultSession at the
// time of the call; if Initialise has not run, every request fails with
// ErrNoSession.
func New[P any](opts ...Option) *Router[P] {
	o := defaultRouterOptions()
	for _, opt := range opts {
		opt(&o)
	}

	session := o.session
	if session == nil {
		session = DefaultSession()
	}
	if session != nil && o.ephemeral {
		session = session.Ephemeral()
	}

	if o.scheduler == nil {
		o.scheduler = GoScheduler
	}
	if o.decode == nil {
		o.decode = defaultRouterOptions().decode
	}

	return &Router[P]{
		session:   session,
		scheduler: o.scheduler,
		decode:    o.decode,
	}
}

// Session returns the session the router dispatches on, or nil.
func (r *Router[P]) Session() *Session {
	return r.session
}

// RequestRaw dispatches ep and completes with the undecoded success body.
func (r *Router[P]) RequestRaw(ctx context.Context, ep Endpoint) *Future[[]byte] {
	return Go(ctx, r.scheduler, func(ctx context.Context) ([]byte, error) {
		return r.do(ctx, ep)
	})
}

// Request dispatches ep and decodes the success body into T. A body that
// does not decode fails with KindSerialize. When T is Empty the body is not
// decoded.
func Request[T, P any](ctx context.Context, r *Router[P], ep Endpoint) *Future[T] {
	return Go(ctx, r.scheduler, func(ctx context.Context) (T, error) {
		var result T
		body, err := r.do(ctx, ep)
		if err != nil {
			return result, err
		}
		if _, ok := any(result).(Empty); ok {
			return result, nil
		}
		if err := r.decode(body, &result); err != nil {
			return result, newAPIError[P](KindSerialize, err)
		}
		return result, nil
	})
}

// do runs build, dispatch and classify for one request.
func (r *Router[P]) do(ctx context.Context, ep Endpoint) ([]byte, error) {
	wire, err := r.BuildRequest(ep)
	if err != nil {
		r.recordError(err, "", "")
		return nil, err
	}

	method, rawURL := wire.Method, wire.URL.String()

	outcome, err := dispatch[P](ctx, r.session, wire)
	if err != nil {
		r.recordError(err, method, urlLabel(wire.URL))
		return nil, err
	}

	body, err := classify[P](outcome.StatusCode, outcome.Body)
	if err != nil {
		var apiErr *APIError[P]
		if errors.As(err, &apiErr) {
			apiErr.Method, apiErr.URL = method, rawURL
		}
		r.recordError(err, method, urlLabel(wire.URL))
		return nil, err
	}
	return body, nil
}

func (r *Router[P]) recordError(err error, method, endpoint string) {
	if r.session == nil {
		return
	}
	kind, _ := KindOf(err)
	r.session.Metrics().RecordError(kind, method, endpoint)
	if r.session.Verbose() {
		r.session.Logger().Debug("Request error", "kind", kind.String(), "method", method, "endpoint", endpoint, "error", err.Error())
	}
}
