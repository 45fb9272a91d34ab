package ddrouter

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies one variant of the closed pipeline error taxonomy.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNullData
	KindInternal
	KindSerialize
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindTooManyRequests
	KindForbidden
	KindServerError
	KindServiceUnavailable
	KindTransport
	KindTimeout
)

// Sentinel errors, one per ErrorKind. Every pipeline error matches exactly
// one of them with errors.Is.
var (
	ErrUnknown            = errors.New("ddrouter: unknown error")
	ErrNullData           = errors.New("ddrouter: null data")
	ErrInternal           = errors.New("ddrouter: internal error")
	ErrSerialize          = errors.New("ddrouter: serialize error")
	ErrBadRequest         = errors.New("ddrouter: bad request")
	ErrUnauthorized       = errors.New("ddrouter: unauthorized")
	ErrNotFound           = errors.New("ddrouter: not found")
	ErrTooManyRequests    = errors.New("ddrouter: too many requests")
	ErrForbidden          = errors.New("ddrouter: forbidden")
	ErrServerError        = errors.New("ddrouter: server error")
	ErrServiceUnavailable = errors.New("ddrouter: service unavailable")
	ErrTransport          = errors.New("ddrouter: transport error")
	ErrTimeout            = errors.New("ddrouter: timeout")
)

// Errors that are not taxonomy variants.
var (
	// ErrCanceled is returned by Future.Await and Future.Result after Cancel.
	ErrCanceled = errors.New("ddrouter: request canceled")

	// ErrCircuitOpen is the transport-level cause reported while the circuit breaker is open.
	ErrCircuitOpen = errors.New("ddrouter: circuit open")

	// ErrNoSession is returned when a router has no session to dispatch on.
	ErrNoSession = errors.New("ddrouter: session not initialised")
)

var kindSentinels = [...]error{
	KindUnknown:            ErrUnknown,
	KindNullData:           ErrNullData,
	KindInternal:           ErrInternal,
	KindSerialize:          ErrSerialize,
	KindBadRequest:         ErrBadRequest,
	KindUnauthorized:       ErrUnauthorized,
	KindNotFound:           ErrNotFound,
	KindTooManyRequests:    ErrTooManyRequests,
	KindForbidden:          ErrForbidden,
	KindServerError:        ErrServerError,
	KindServiceUnavailable: ErrServiceUnavailable,
	KindTransport:          ErrTransport,
	KindTimeout:            ErrTimeout,
}

var kindNames = [...]string{
	KindUnknown:            "UnknownError",
	KindNullData:           "NullData",
	KindInternal:           "InternalError",
	KindSerialize:          "SerializeError",
	KindBadRequest:         "BadRequest",
	KindUnauthorized:       "Unauthorized",
	KindNotFound:           "NotFound",
	KindTooManyRequests:    "TooManyRequests",
	KindForbidden:          "Forbidden",
	KindServerError:        "ServerError",
	KindServiceUnavailable: "ServiceUnavailable",
	KindTransport:          "TransportError",
	KindTimeout:            "TimeoutError",
}

// String returns the variant name, e.g. "NotFound".
func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindNames[k]
}

// Sentinel returns the sentinel error matching k.
func (k ErrorKind) Sentinel() error {
	if k < 0 || int(k) >= len(kindSentinels) {
		return ErrUnknown
	}
	return kindSentinels[k]
}

// carriesPayload reports whether the variant may hold a decoded error body.
func (k ErrorKind) carriesPayload() bool {
	switch k {
	case KindUnknown, KindBadRequest, KindUnauthorized, KindForbidden, KindServerError:
		return true
	default:
		return false
	}
}

// APIError is the pipeline error, parameterized by the domain error-body
// type P. Payload is only ever set for the UnknownError, BadRequest,
// Unauthorized, Forbidden and ServerError variants, and is nil when the
// response body could not be decoded as P.
type APIError[P any] struct {
	Kind       ErrorKind
	StatusCode int
	Payload    *P
	Cause      error
	Method     string
	URL        string
}

func newAPIError[P any](kind ErrorKind, cause error) *APIError[P] {
	return &APIError[P]{Kind: kind, Cause: cause}
}

// Error implements error.
func (e *APIError[P]) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.Sentinel().Error()
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Method != "" && e.URL != "" {
		msg = fmt.Sprintf("%s [%s %s]", msg, e.Method, e.URL)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *APIError[P]) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches the sentinel of the error kind, or another APIError of the same kind.
func (e *APIError[P]) Is(target error) bool {
	if e == nil {
		return false
	}
	if target == e.Kind.Sentinel() {
		return true
	}
	if other, ok := target.(*APIError[P]); ok {
		return other.Kind == e.Kind
	}
	return false
}

// ErrorKind returns the variant.
func (e *APIError[P]) ErrorKind() ErrorKind {
	return e.Kind
}

// HasPayload reports whether a decoded error body is attached.
func (e *APIError[P]) HasPayload() bool {
	return e != nil && e.Payload != nil
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *APIError[P]) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Kind: %s\n", e.Kind)
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if e.Payload != nil {
		info += fmt.Sprintf("Payload: %+v\n", *e.Payload)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

// TimeoutError is the bridge-time variant: the bounded wait elapsed before
// the request completed.
type TimeoutError struct {
	Timeout time.Duration
}

// Error implements error.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s after %v", ErrTimeout, e.Timeout)
}

// Is matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ErrorKind returns KindTimeout.
func (e *TimeoutError) ErrorKind() ErrorKind {
	return KindTimeout
}

// BlockingError wraps a pipeline failure observed by the bounded-wait adapter.
type BlockingError struct {
	Err error
}

// Error implements error.
func (e *BlockingError) Error() string {
	return fmt.Sprintf("ddrouter: blocking request failed: %v", e.Err)
}

// Unwrap returns the wrapped pipeline error.
func (e *BlockingError) Unwrap() error {
	return e.Err
}

type kindedError interface {
	error
	ErrorKind() ErrorKind
}

// KindOf returns the taxonomy variant of err, looking through wrappers.
// The boolean is false when err is not a pipeline error.
func KindOf(err error) (ErrorKind, bool) {
	var ke kindedError
	if errors.As(err, &ke) {
		return ke.ErrorKind(), true
	}
	return KindUnknown, false
}

// IsTransient reports whether err is a failure that might succeed if the
// caller issues the request again: transport failures, bridge timeouts,
// 429, 503 and other 5xx responses. The router itself never retries.
func IsTransient(err error) bool {
	kind, ok := KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case KindTransport, KindTimeout, KindTooManyRequests, KindServiceUnavailable, KindServerError:
		return true
	default:
		return false
	}
}
