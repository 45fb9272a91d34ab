// Package ddrouter is a typed HTTP request pipeline: an Endpoint is built into
// a WireRequest, dispatched over a Session, classified by status code into a
// closed error taxonomy and decoded into a caller-specified type.
//
//   - Endpoint descriptors with ordered query items and NoBody / BodyAndQuery payloads
//   - JSON and URL-form body encoding
//   - Status classification into *APIError[P] with best-effort error-body decoding
//   - Cancellable Future results with scheduler-delivered callbacks
//   - A bounded-wait adapter (ToBlockingResult) for synchronous callers
//   - Shared and ephemeral sessions with a middleware chain, circuit breaker,
//     per-host rate limiting, Prometheus metrics and zap debug logging
//
// Typical usage:
//
//	if err := ddrouter.Initialise(ddrouter.Config{Timeout: 10 * time.Second}); err != nil {
//	    log.Fatal(err)
//	}
//	router := ddrouter.New[APIErrorBody]()
//	quotes, err := ddrouter.Request[Quote](ctx, router, RandomQuote{}).ToBlockingResult(5 * time.Second)
//
// Nothing is retried. Errors match their kind with errors.Is against the
// sentinels (ErrNotFound, ErrTooManyRequests, ...) and IsTransient reports
// whether issuing the request again may help.
package ddrouter
