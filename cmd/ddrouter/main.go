// Command ddrouter issues a single request through the ddrouter pipeline and
// prints the response body, or the classified error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ambiyansyah-risyal/ddrouter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// cliOptions collects the command line flags.
type cliOptions struct {
	method     string
	headers    []string
	query      []string
	data       string
	form       bool
	configPath string
	timeout    time.Duration
	wait       time.Duration
	verbose    bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           "ddrouter URL",
		Short:         "Send one HTTP request and print the classified result",
		Version:       ddrouter.Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), opts, args[0], stdout)
			if err != nil {
				fmt.Fprintln(stderr, renderError(err))
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.method, "request", "X", "GET", "HTTP method")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	flags.StringArrayVarP(&opts.query, "query", "q", nil, "query item as name=value (repeatable)")
	flags.StringVarP(&opts.data, "data", "d", "", "JSON request body")
	flags.BoolVar(&opts.form, "form", false, "send the JSON body object URL-form encoded")
	flags.StringVar(&opts.configPath, "config", "", "YAML session configuration file")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (overrides the config file)")
	flags.DurationVar(&opts.wait, "wait", 2*time.Minute, "maximum time to wait for the result")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and responses")

	return cmd
}

func run(ctx context.Context, opts *cliOptions, rawURL string, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := &ddrouter.Config{}
	if opts.configPath != "" {
		loaded, err := ddrouter.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.timeout > 0 {
		cfg.Timeout = opts.timeout
	}
	if opts.verbose {
		cfg.Verbose = true
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()
		cfg.Logger = ddrouter.NewZapLogger(logger)
	}

	session, err := ddrouter.NewSession(*cfg)
	if err != nil {
		return err
	}

	ep, err := newCLIEndpoint(opts, rawURL)
	if err != nil {
		return err
	}

	router := ddrouter.New[errorBody](ddrouter.WithSession(session))
	results, err := router.RequestRaw(ctx, ep).ToBlockingResult(opts.wait)
	if err != nil {
		return err
	}
	for _, body := range results {
		if _, err := stdout.Write(body); err != nil {
			return err
		}
		if len(body) > 0 && body[len(body)-1] != '\n' {
			fmt.Fprintln(stdout)
		}
	}
	return nil
}

// renderError prints the diagnostic block of pipeline errors.
func renderError(err error) string {
	var apiErr *ddrouter.APIError[errorBody]
	if errors.As(err, &apiErr) {
		return strings.TrimRight(apiErr.DebugInfo(), "\n")
	}
	return "Error: " + err.Error()
}

// errorBody keeps an error response verbatim so DebugInfo prints it as text.
type errorBody struct {
	raw json.RawMessage
}

func (b *errorBody) UnmarshalJSON(data []byte) error {
	b.raw = append(b.raw[:0], data...)
	return nil
}

func (b errorBody) String() string {
	return string(b.raw)
}

// cliEndpoint is an Endpoint assembled from command line flags.
type cliEndpoint struct {
	base    *url.URL
	method  ddrouter.Method
	query   ddrouter.Query
	headers map[string]string
	payload ddrouter.Payload
}

var _ ddrouter.Endpoint = &cliEndpoint{}

func newCLIEndpoint(opts *cliOptions, rawURL string) (*cliEndpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	ep := &cliEndpoint{
		base:    u,
		method:  ddrouter.Method(strings.ToUpper(opts.method)),
		headers: map[string]string{"User-Agent": ddrouter.UserAgent()},
		payload: ddrouter.NoBody(),
	}

	for _, h := range opts.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q", h)
		}
		ep.headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	for _, q := range opts.query {
		name, value, _ := strings.Cut(q, "=")
		ep.query = append(ep.query, ddrouter.QueryItem{Name: name, Value: value})
	}

	if opts.data != "" {
		var body any
		if err := json.Unmarshal([]byte(opts.data), &body); err != nil {
			return nil, fmt.Errorf("parse --data: %w", err)
		}
		encoding := ddrouter.EncodingJSON
		if opts.form {
			encoding = ddrouter.EncodingURL
			if _, ok := ep.headers["Content-Type"]; !ok {
				ep.headers["Content-Type"] = "application/x-www-form-urlencoded"
			}
		}
		ep.payload = ddrouter.BodyAndQuery(body, nil, encoding)
	}

	return ep, nil
}

func (e *cliEndpoint) BaseURL() *url.URL          { return e.base }
func (e *cliEndpoint) Path() string               { return "" }
func (e *cliEndpoint) Method() ddrouter.Method    { return e.method }
func (e *cliEndpoint) Headers() map[string]string { return e.headers }
func (e *cliEndpoint) Payload() ddrouter.Payload  { return e.payload }

// Query returns the URL's own query followed by the -q items, since a
// non-empty endpoint query replaces the URL query.
func (e *cliEndpoint) Query() ddrouter.Query {
	if len(e.query) == 0 {
		return nil
	}
	var items ddrouter.Query
	for _, pair := range strings.Split(e.base.RawQuery, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		name, _ = url.QueryUnescape(name)
		value, _ = url.QueryUnescape(value)
		items = append(items, ddrouter.QueryItem{Name: name, Value: value})
	}
	return append(items, e.query...)
}
