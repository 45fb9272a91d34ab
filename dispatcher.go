package ddrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RawOutcome is the result of a successful transport exchange.
type RawOutcome struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// dispatch performs exactly one exchange of wire over the session client.
// Transport failures are KindTransport; a missing response or body is
// KindNullData. Exactly one of the results is non-nil.
func dispatch[P any](ctx context.Context, s *Session, wire *WireRequest) (*RawOutcome, error) {
	if wire.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wire.Timeout)
		defer cancel()
	}

	req, err := wire.HTTPRequest(ctx)
	if err != nil {
		return nil, newAPIError[P](KindInternal, err)
	}

	method, endpoint := req.Method, endpointLabel(req)
	metrics := s.Metrics()

	var requestID string
	if s.Verbose() {
		requestID = uuid.NewString()
		logRequest(s.logger, requestID, wire)
	}

	start := time.Now()
	metrics.RecordRequestStart(method, endpoint)
	resp, err := s.client.Do(req)
	metrics.RecordRequestEnd(method, endpoint)

	if err != nil {
		if s.Verbose() {
			s.logger.Warn("Request failed", "requestID", requestID, "error", err.Error(), "duration", time.Since(start))
		}
		if errors.Is(err, errNilResponse) {
			return nil, &APIError[P]{Kind: KindNullData, Method: method, URL: wire.URL.String()}
		}
		return nil, &APIError[P]{Kind: KindTransport, Cause: err, Method: method, URL: wire.URL.String()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError[P]{Kind: KindNullData, Cause: err, Method: method, URL: wire.URL.String()}
	}

	duration := time.Since(start)
	metrics.RecordRequest(method, endpoint, resp.StatusCode, duration)

	if s.Verbose() {
		logResponse(s.logger, requestID, resp, body, duration)
	}

	return &RawOutcome{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       nonNilBytes(body),
	}, nil
}

func logRequest(logger Logger, requestID string, wire *WireRequest) {
	logger.Debug("Sending request",
		"requestID", requestID,
		"method", wire.Method,
		"url", wire.URL.String(),
		"headers", wire.Header,
		"timeout", wire.Timeout,
		"body", prettyJSON(wire.Body),
	)
}

func logResponse(logger Logger, requestID string, resp *http.Response, body []byte, duration time.Duration) {
	logger.Debug("Received response",
		"requestID", requestID,
		"statusCode", resp.StatusCode,
		"headers", resp.Header,
		"duration", duration,
		"body", prettyJSON(body),
	)
}

// prettyJSON indents a JSON body for logs. Other bodies are returned verbatim.
func prettyJSON(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}
