package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitchain/packages/chain"
	"github.com/abdul-hamid-achik/hitchain/packages/core/config"
	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
	"github.com/abdul-hamid-achik/hitchain/packages/matchers"
	"github.com/abdul-hamid-achik/hitchain/packages/output"
)

type checkOptions struct {
	configFile string
	envFiles   []string
	baseURI    string
	timeout    string
	proxy      string
	insecure   bool
	noColor    bool
	verbose    bool
	output     string

	params      []string
	queryParams []string
	formParams  []string
	headers     []string
	cookies     []string
	body        string
	contentType string
	basicAuth   string
	bearerToken string

	expectStatus      int
	expectContentType string
	expectContains    []string
	expectPaths       []string
	expectHeaders     []string
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <method> <path>",
		Short: "Send one request and verify the response",
		Long: `Send one HTTP request built from flags and verify the response.

Relative paths are resolved against the base URI, port and base path from
the config file, HITCHAIN_* environment variables and --base-uri, in that
order of precedence (flags win).

Examples:
  hitchain check POST /greet -p firstName=John -p lastName=Doe --expect-path greeting="Greetings John Doe"
  hitchain check GET /lotto --expect-status 404 --expect-body-contains "Not found"
  hitchain check POST /jsonBody -d '{"message":"hello world"}' --content-type JSON
  hitchain check GET https://api.example.com/users/1 -H "Accept: application/json" -o json`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", getEnvString("HITCHAIN_CONFIG", ""), "Path to config file (env: HITCHAIN_CONFIG)")
	f.StringArrayVar(&opts.envFiles, "env-file", []string{".env"}, "Env files with HITCHAIN_* variables")
	f.StringVar(&opts.baseURI, "base-uri", "", "Base URI for relative paths")
	f.StringVar(&opts.timeout, "timeout", "", "Request timeout (e.g., 30s, 1m)")
	f.StringVar(&opts.proxy, "proxy", "", "Proxy URL for HTTP requests")
	f.BoolVarP(&opts.insecure, "insecure", "k", false, "Disable SSL certificate validation")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Print the request and response")
	f.StringVarP(&opts.output, "output", "o", output.FormatConsole, "Output format: console, json")

	f.StringArrayVarP(&opts.params, "param", "p", nil, "Parameter name=value (query for GET, form for POST)")
	f.StringArrayVar(&opts.queryParams, "query", nil, "Query parameter name=value")
	f.StringArrayVar(&opts.formParams, "form", nil, "Form parameter name=value")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, `Header "Name: value"`)
	f.StringArrayVar(&opts.cookies, "cookie", nil, "Cookie name=value")
	f.StringVarP(&opts.body, "body", "d", "", "Request body; @file reads it from a file")
	f.StringVar(&opts.contentType, "content-type", "", "Request content type (JSON, XML, TEXT, URLENC, BINARY or a MIME type)")
	f.StringVar(&opts.basicAuth, "basic-auth", "", "Basic auth user:password")
	f.StringVar(&opts.bearerToken, "bearer", "", "Bearer token")

	f.IntVar(&opts.expectStatus, "expect-status", 0, "Expected status code")
	f.StringVar(&opts.expectContentType, "expect-content-type", "", "Expected response content type")
	f.StringArrayVar(&opts.expectContains, "expect-body-contains", nil, "Text the body must contain")
	f.StringArrayVar(&opts.expectPaths, "expect-path", nil, "JSON path and expected value, path=value (value parsed as JSON when valid)")
	f.StringArrayVar(&opts.expectHeaders, "expect-header", nil, `Expected header "Name: value"`)

	return cmd
}

// recordingTransport keeps the last request so it can be reported.
type recordingTransport struct {
	next chain.Transport
	last *hithttp.Request
}

func (t *recordingTransport) Do(ctx context.Context, req *hithttp.Request) (*hithttp.Response, error) {
	t.last = req
	return t.next.Do(ctx, req)
}

func runCheck(cmd *cobra.Command, opts *checkOptions, method, path string) error {
	cfg, err := loadCheckConfig(opts)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	formatter, err := output.NewFormatter(opts.output, cmd.OutOrStdout(), opts.verbose, cfg.GetNoColor())
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	transport := &recordingTransport{next: chain.NewTransport(cfg)}
	client := chain.New(cfg, chain.WithTransport(transport))

	spec, err := buildCheck(client, opts)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	start := time.Now()
	resp, err := trigger(spec, method, path)

	result := &output.Result{
		Name:     strings.ToUpper(method) + " " + path,
		Request:  transport.last,
		Duration: time.Since(start),
	}
	if resp != nil {
		result.Response = resp.Raw()
		result.Duration = resp.Duration()
	}

	var assertErr *chain.AssertionError
	code := ExitSuccess
	switch {
	case err == nil:
	case errors.As(err, &assertErr):
		result.Failure = assertErr.Failure()
		code = ExitTestFailure
	case errors.Is(err, chain.ErrInvalidArgument):
		return withExitCode(ExitUsageError, err)
	default:
		result.Err = err
		code = ExitNetworkError
	}

	formatter.FormatResult(result)
	if f, ok := formatter.(output.Flushable); ok {
		if err := f.Flush(result.Duration); err != nil {
			return err
		}
	}

	if code != ExitSuccess {
		return withExitCode(code, err)
	}
	return nil
}

// loadCheckConfig layers the config file, the environment and the flags.
func loadCheckConfig(opts *checkOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}

	envCfg, err := config.LoadFromEnv(opts.envFiles...)
	if err != nil {
		return nil, err
	}
	cfg = cfg.Merge(envCfg)

	flagCfg := &config.Config{
		BaseURI: opts.baseURI,
		Proxy:   opts.proxy,
	}
	if opts.timeout != "" {
		d, err := time.ParseDuration(opts.timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", opts.timeout, err)
		}
		flagCfg.Timeout = int(d.Milliseconds())
	}
	if opts.insecure {
		flagCfg.ValidateSSL = config.BoolPtr(false)
	}
	if opts.noColor {
		flagCfg.NoColor = config.BoolPtr(true)
	}

	cfg = cfg.Merge(flagCfg)
	if cfg.Proxy != "" {
		if _, err := hithttp.ParseProxyURL(cfg.Proxy); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func buildCheck(client *chain.Client, opts *checkOptions) (*chain.RequestSpec, error) {
	spec := client.Given()

	for _, group := range []struct {
		values []string
		sep    string
		add    func(name string, value any) *chain.RequestSpec
	}{
		{opts.params, "=", spec.Param},
		{opts.queryParams, "=", spec.QueryParam},
		{opts.formParams, "=", spec.FormParam},
		{opts.headers, ":", spec.Header},
		{opts.cookies, "=", spec.Cookie},
	} {
		for _, raw := range group.values {
			name, value, err := splitPair(raw, group.sep)
			if err != nil {
				return nil, err
			}
			group.add(name, value)
		}
	}

	if opts.body != "" {
		body, err := readBody(opts.body)
		if err != nil {
			return nil, err
		}
		spec.Body(body)
	}
	if opts.contentType != "" {
		spec.ContentType(hithttp.ContentType(opts.contentType))
	}
	if opts.basicAuth != "" {
		user, pass, ok := strings.Cut(opts.basicAuth, ":")
		if !ok {
			return nil, fmt.Errorf("--basic-auth must be user:password")
		}
		spec.BasicAuth(user, pass)
	}
	if opts.bearerToken != "" {
		spec.BearerToken(opts.bearerToken)
	}

	expect := spec.Expect()
	if opts.expectStatus != 0 {
		expect.StatusCode(opts.expectStatus)
	}
	if opts.expectContentType != "" {
		expect.ContentType(hithttp.ContentType(opts.expectContentType))
	}
	for _, s := range opts.expectContains {
		expect.Body(matchers.ContainsString(s))
	}
	for _, raw := range opts.expectHeaders {
		name, value, err := splitPair(raw, ":")
		if err != nil {
			return nil, err
		}
		expect.Header(name, matchers.EqualTo(value))
	}
	for _, raw := range opts.expectPaths {
		path, value, err := splitPair(raw, "=")
		if err != nil {
			return nil, err
		}
		expect.BodyAt(path, matchers.EqualTo(parseExpected(value)))
	}

	return spec, spec.Err()
}

func splitPair(raw, sep string) (string, string, error) {
	name, value, ok := strings.Cut(raw, sep)
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("%q: expected name%svalue", raw, sep)
	}
	if sep == ":" {
		value = strings.TrimSpace(value)
	}
	return name, value, nil
}

// readBody returns the body flag, reading @file references as raw bytes.
func readBody(value string) (any, error) {
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	data, err := os.ReadFile(value[1:])
	if err != nil {
		return nil, fmt.Errorf("cannot read body file: %w", err)
	}
	return data, nil
}

// parseExpected decodes value as JSON so numbers, booleans and null compare
// by value; anything else is a plain string.
func parseExpected(value string) any {
	var v any
	if err := json.Unmarshal([]byte(value), &v); err == nil {
		return v
	}
	return value
}

func trigger(spec *chain.RequestSpec, method, path string) (*chain.Response, error) {
	switch strings.ToUpper(method) {
	case "GET":
		return spec.Get(path)
	case "POST":
		return spec.Post(path)
	case "PUT":
		return spec.Put(path)
	case "PATCH":
		return spec.Patch(path)
	case "DELETE":
		return spec.Delete(path)
	case "HEAD":
		return spec.Head(path)
	case "OPTIONS":
		return spec.Options(path)
	}
	return nil, fmt.Errorf("%w: unsupported method %q", chain.ErrInvalidArgument, method)
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
