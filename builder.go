package ddrouter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// WireRequest is a fully resolved request, ready for the transport.
type WireRequest struct {
	URL     *url.URL
	Method  string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// HTTPRequest converts the wire request into an *http.Request bound to ctx.
// It performs no I/O.
func (w *WireRequest) HTTPRequest(ctx context.Context) (*http.Request, error) {
	if w.URL == nil {
		return nil, errors.New("wire request has no URL")
	}
	var body io.Reader
	if w.Body != nil {
		body = bytes.NewReader(w.Body)
	}
	req, err := http.NewRequestWithContext(ctx, w.Method, w.URL.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header = w.Header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	return req, nil
}

// BuildRequest composes ep and the router's session defaults into a
// WireRequest. Failures are *APIError[P] of kind InternalError or
// SerializeError, and KindUnknown wrapping ErrNoSession when the router has
// no session.
func (r *Router[P]) BuildRequest(ep Endpoint) (*WireRequest, error) {
	if r.session == nil {
		return nil, newAPIError[P](KindUnknown, ErrNoSession)
	}
	return buildRequest[P](ep, r.session.Timeout())
}

func buildRequest[P any](ep Endpoint, timeout time.Duration) (*WireRequest, error) {
	if ep == nil {
		return nil, newAPIError[P](KindInternal, errors.New("nil endpoint"))
	}

	u, err := resolveURL(ep.BaseURL(), ep.Path())
	if err != nil {
		return nil, newAPIError[P](KindInternal, err)
	}

	if query := ep.Query(); len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	method := strings.ToUpper(string(ep.Method()))
	if method == "" {
		return nil, newAPIError[P](KindInternal, errors.New("empty method"))
	}

	draft := &WireRequest{
		URL:     u,
		Method:  method,
		Header:  make(http.Header),
		Timeout: timeout,
	}

	for key, value := range ep.Headers() {
		draft.Header.Set(key, value)
	}

	if draft.Header.Get(headerContentType) == "" {
		draft.Header.Set(headerContentType, contentTypeJSON)
	}

	if err := encodeParameters[P](draft, ep.Payload()); err != nil {
		return nil, err
	}

	return draft, nil
}

// resolveURL appends path to base as a path component. The result always has
// an absolute path, even when base has none.
func resolveURL(base *url.URL, path string) (*url.URL, error) {
	if base == nil {
		return nil, errors.New("nil base URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New("base URL is not absolute: " + base.String())
	}
	if path == "" {
		u := *base
		return &u, nil
	}
	u := *base
	if u.Path == "" {
		u.Path, u.RawPath = "/", ""
	}
	return u.JoinPath(path), nil
}

// Encode renders the items in order as a URL query string.
func (q Query) Encode() string {
	var b strings.Builder
	for i, item := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(item.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(item.Value))
	}
	return b.String()
}
