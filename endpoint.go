package ddrouter

import (
	"net/url"
)

// Method is an HTTP request method.
type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodConnect Method = "CONNECT"
	MethodTrace   Method = "TRACE"
)

// Endpoint describes one logical HTTP call. Implementations must be
// deterministic: repeated reads return the same values and never mutate
// state, so the same Endpoint always builds the same WireRequest.
type Endpoint interface {
	BaseURL() *url.URL
	Path() string
	Method() Method
	// Query returns the query items. A non-empty Query replaces any query
	// already present on BaseURL rather than merging with it.
	Query() Query
	// Headers returns additional request headers, or nil for none.
	Headers() map[string]string
	Payload() Payload
}

// QueryItem is a single name/value pair of the request query string.
type QueryItem struct {
	Name  string
	Value string
}

// Query is an ordered set of query items. Order is preserved on the wire.
type Query []QueryItem

// Encoding selects how a BodyAndQuery payload body is serialized.
type Encoding int

const (
	// EncodingJSON serializes the body as a JSON document.
	EncodingJSON Encoding = iota
	// EncodingURL serializes the body as `&`-joined key=value pairs.
	EncodingURL
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingURL:
		return "url"
	default:
		return "unknown"
	}
}

// PayloadKind tags the Payload variant.
type PayloadKind int

const (
	// PayloadNone carries no body and no extra query parameters.
	PayloadNone PayloadKind = iota
	// PayloadBodyAndQuery carries an encodable body and/or query parameters.
	PayloadBodyAndQuery
)

// Payload is the request body variant of an Endpoint. The zero value is
// NoBody. Construct other variants with BodyAndQuery.
type Payload struct {
	Kind     PayloadKind
	Body     any
	Params   map[string]any
	Encoding Encoding
}

// NoBody returns the empty payload.
func NoBody() Payload {
	return Payload{Kind: PayloadNone}
}

// BodyAndQuery returns a payload with an optional body (nil for none) and
// optional query parameters merged into the request URL.
func BodyAndQuery(body any, params map[string]any, encoding Encoding) Payload {
	return Payload{
		Kind:     PayloadBodyAndQuery,
		Body:     body,
		Params:   params,
		Encoding: encoding,
	}
}
