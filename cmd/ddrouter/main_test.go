package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ambiyansyah-risyal/ddrouter"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected GET method, got %s", r.Method)
		}
		if got := r.Header.Get("User-Agent"); got != ddrouter.UserAgent() {
			t.Errorf("Expected User-Agent %s, got %s", ddrouter.UserAgent(), got)
		}
		if got := r.URL.RawQuery; got != "a=1&b=two+words" {
			t.Errorf("Unexpected query %s", got)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	stdout, _, err := execute(t, server.URL+"/items?a=1", "-q", "b=two words")
	if err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
	if stdout != "{\"ok\":true}\n" {
		t.Errorf("Unexpected output %q", stdout)
	}
}

func TestPostJSONAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Method != "POST" {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if got := r.Header.Get("X-Token"); got != "abc" {
			t.Errorf("Expected X-Token abc, got %q", got)
		}
		if got := string(body); got != `{"name":"pen"}` {
			t.Errorf("Unexpected body %s", got)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	_, _, err := execute(t, "-X", "post", "-H", "X-Token: abc", "-d", `{"name":"pen"}`, server.URL)
	if err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
}

func TestPostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("Unexpected Content-Type %s", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() returned error: %v", err)
		}
		if got := r.PostForm.Get("user"); got != "ada" {
			t.Errorf("Expected user=ada, got %q", got)
		}
	}))
	defer server.Close()

	if _, _, err := execute(t, "-X", "POST", "--form", "-d", `{"user":"ada"}`, server.URL); err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
}

func TestErrorOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"reason":"nope"}`))
	}))
	defer server.Close()

	_, stderr, err := execute(t, server.URL)
	if err == nil {
		t.Fatal("Expected an error for a 403 response")
	}
	for _, want := range []string{"Error Kind: Forbidden", "Status Code: 403", "nope"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("Expected stderr to contain %q, got:\n%s", want, stderr)
		}
	}
}

func TestConfigFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "ddrouter.yaml")
	if err := os.WriteFile(path, []byte("timeout: 5s\nrate_limit:\n  requests_per_second: 10\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	stdout, _, err := execute(t, "--config", path, server.URL)
	if err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
	if stdout != "ok\n" {
		t.Errorf("Unexpected output %q", stdout)
	}
}

func TestInvalidArguments(t *testing.T) {
	tests := [][]string{
		{},
		{"http://example.com", "-H", "no-colon"},
		{"http://example.com", "-d", "{not json"},
		{"http://example.com", "--config", "/does/not/exist.yaml"},
	}

	for _, args := range tests {
		if _, _, err := execute(t, args...); err == nil {
			t.Errorf("Expected an error for args %v", args)
		}
	}
}
