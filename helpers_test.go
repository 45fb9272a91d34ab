package ddrouter

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const failedWriteResponseMsg = "Failed to write response: %v"

// testEndpoint is a configurable Endpoint fixture.
type testEndpoint struct {
	base    string
	path    string
	method  Method
	query   Query
	headers map[string]string
	payload Payload
}

func (e testEndpoint) BaseURL() *url.URL {
	u, err := url.Parse(e.base)
	if err != nil {
		return nil
	}
	return u
}

func (e testEndpoint) Path() string               { return e.path }
func (e testEndpoint) Query() Query               { return e.query }
func (e testEndpoint) Headers() map[string]string { return e.headers }
func (e testEndpoint) Payload() Payload           { return e.payload }

func (e testEndpoint) Method() Method {
	if e.method == "" {
		return MethodGet
	}
	return e.method
}

// Quote mirrors the quotes API fixture.
type Quote struct {
	En     string `json:"en"`
	Author string `json:"author"`
}

// APIMessage is the error body used by the fixtures.
type APIMessage struct {
	Message string `json:"message"`
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession() returned error: %v", err)
	}
	return s
}

func newTestRouter(t *testing.T, cfg Config, opts ...Option) *Router[APIMessage] {
	t.Helper()
	opts = append([]Option{WithSession(newTestSession(t, cfg))}, opts...)
	return New[APIMessage](opts...)
}

// statusServer replies to every request with status and body.
func statusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf(failedWriteResponseMsg, err)
		}
	})
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s error, got nil", want)
	}
	got, ok := KindOf(err)
	if !ok {
		t.Fatalf("Expected a pipeline error, got %T: %v", err, err)
	}
	if got != want {
		t.Fatalf("Expected kind %s, got %s (%v)", want, got, err)
	}
}
