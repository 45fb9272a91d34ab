package ddrouter

import (
	"errors"
	"net/http"
)

// errNilResponse reports a transport that answered without a response or
// without a body.
var errNilResponse = errors.New("transport returned no response")

// RoundTripper is the transport interface seen by middleware.
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// Middleware wraps one exchange. It must call next exactly once to forward
// the request, or return without calling it to short-circuit.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripperFunc adapts a function to RoundTripper and http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(req).
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// chain wraps base with middleware so that middleware[0] runs first.
func chain(base http.RoundTripper, middleware []Middleware) http.RoundTripper {
	if len(middleware) == 0 {
		return base
	}

	current := RoundTripperFunc(base.RoundTrip)

	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return mw(r, next)
		})
	}

	return current
}

// requireResponse rejects a (nil, nil) answer from base before http.Client
// replaces it with a generic error, or a nil body before it substitutes an
// empty one.
func requireResponse(base http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		resp, err := base.RoundTrip(req)
		if err != nil {
			return resp, err
		}
		if resp == nil || resp.Body == nil {
			return nil, errNilResponse
		}
		return resp, nil
	})
}
