package ddrouter

import (
	"net/url"
	"testing"
)

func newDraft(t *testing.T, rawURL string) *WireRequest {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", rawURL, err)
	}
	return &WireRequest{URL: u, Method: "POST"}
}

func TestEncodeParametersNoBody(t *testing.T) {
	draft := newDraft(t, "https://api.example.com/x?keep=1")

	if err := encodeParameters[APIMessage](draft, NoBody()); err != nil {
		t.Fatalf("encodeParameters() returned error: %v", err)
	}
	if draft.Body != nil {
		t.Errorf("Expected no body, got %q", draft.Body)
	}
	if draft.URL.RawQuery != "keep=1" {
		t.Errorf("Expected query to be untouched, got %s", draft.URL.RawQuery)
	}
}

func TestEncodeParametersJSONBody(t *testing.T) {
	type item struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	draft := newDraft(t, "https://api.example.com/items")

	err := encodeParameters[APIMessage](draft, BodyAndQuery(item{Name: "pen", Count: 2}, nil, EncodingJSON))
	if err != nil {
		t.Fatalf("encodeParameters() returned error: %v", err)
	}
	if got := string(draft.Body); got != `{"name":"pen","count":2}` {
		t.Errorf("Expected JSON body, got %s", got)
	}
}

func TestEncodeParametersFormBody(t *testing.T) {
	draft := newDraft(t, "https://api.example.com/login")

	body := map[string]string{"user": "ada", "pass": "a&b c"}
	if err := encodeParameters[APIMessage](draft, BodyAndQuery(body, nil, EncodingURL)); err != nil {
		t.Fatalf("encodeParameters() returned error: %v", err)
	}
	if got, want := string(draft.Body), "pass=a%26b+c&user=ada"; got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestEncodeParametersFormRejectsNonStringValues(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"number value", map[string]any{"n": 1}},
		{"nested object", map[string]any{"o": map[string]string{"a": "b"}}},
		{"array document", []string{"a"}},
		{"scalar document", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := newDraft(t, "https://api.example.com")
			err := encodeParameters[APIMessage](draft, BodyAndQuery(tt.body, nil, EncodingURL))
			assertKind(t, err, KindSerialize)
		})
	}
}

func TestEncodeParametersUnknownEncoding(t *testing.T) {
	draft := newDraft(t, "https://api.example.com")
	err := encodeParameters[APIMessage](draft, BodyAndQuery(map[string]string{"a": "b"}, nil, Encoding(9)))
	assertKind(t, err, KindSerialize)
}

func TestEncodeParametersMergesQueryParams(t *testing.T) {
	draft := newDraft(t, "https://api.example.com/x?fixed=yes")

	params := map[string]any{"page": 2, "sort": "name asc"}
	if err := encodeParameters[APIMessage](draft, BodyAndQuery(nil, params, EncodingJSON)); err != nil {
		t.Fatalf("encodeParameters() returned error: %v", err)
	}
	if got, want := draft.URL.RawQuery, "fixed=yes&page=2&sort=name+asc"; got != want {
		t.Errorf("Expected query %s, got %s", want, got)
	}
	if draft.Body != nil {
		t.Errorf("Expected no body for a nil payload body, got %q", draft.Body)
	}
}

func TestEncodeParametersParamsWithoutURL(t *testing.T) {
	draft := &WireRequest{Method: "GET"}
	err := encodeParameters[APIMessage](draft, BodyAndQuery(nil, map[string]any{"a": 1}, EncodingJSON))
	assertKind(t, err, KindInternal)
}

func TestEncodingString(t *testing.T) {
	if EncodingJSON.String() != "json" || EncodingURL.String() != "url" || Encoding(5).String() != "unknown" {
		t.Errorf("Unexpected encoding names: %s %s %s", EncodingJSON, EncodingURL, Encoding(5))
	}
}
