package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
	"github.com/fatih/color"
)

const maxBodyLen = 2048

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if len(val) > maxLen {
			return fmt.Sprintf("%q...", val[:maxLen])
		}
		return fmt.Sprintf("%q", val)
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case map[string]string:
		return fmt.Sprintf("{map with %d entries}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithVerbose prints the full request and response for every result,
// not only for failing ones.
func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) colorize(attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if f.noColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}

func (f *ConsoleFormatter) FormatResult(result *Result) {
	green := f.colorize(color.FgGreen)
	red := f.colorize(color.FgRed)
	cyan := f.colorize(color.FgCyan)

	name := result.Name
	if name == "" && result.Request != nil {
		name = result.Request.Method + " " + result.Request.URL
	}

	switch {
	case result.Err != nil:
		fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), name, red(fmt.Sprintf("(%v)", result.Err)))
	case result.Passed():
		fmt.Fprintf(f.writer, "  %s %s %s\n", green("✓"), name, cyan(fmt.Sprintf("(%dms)", result.Duration.Milliseconds())))
	default:
		fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), name, cyan(fmt.Sprintf("(%dms)", result.Duration.Milliseconds())))
		f.FormatFailure(result.Failure)
	}

	if f.verbose || !result.Passed() {
		if result.Request != nil {
			f.FormatRequest(result.Request)
		}
		if result.Response != nil {
			f.FormatResponse(result.Response)
		}
	}
}

// FormatFailure prints the expected and actual values of a failed expectation
func (f *ConsoleFormatter) FormatFailure(failure *Failure) {
	if failure == nil {
		return
	}
	red := f.colorize(color.FgRed)

	subject := failure.Description
	if failure.Path != "" {
		subject += " at " + failure.Path
	}
	fmt.Fprintf(f.writer, "    %s %s\n", red("→"), subject)
	fmt.Fprintf(f.writer, "      Expected: %s\n", failure.Expected)
	fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(failure.Actual, 100))
	if failure.Message != "" {
		fmt.Fprintf(f.writer, "      %s\n", failure.Message)
	}
}

// FormatRequest prints the request line, headers, cookies and body
func (f *ConsoleFormatter) FormatRequest(req *hithttp.Request) {
	bold := f.colorize(color.Bold)

	fmt.Fprintf(f.writer, "    %s %s %s\n", bold("Request:"), req.Method, req.BuildURL())
	f.formatHeaders(req.Headers)
	for _, c := range req.Cookies {
		fmt.Fprintf(f.writer, "      Cookie: %s=%s\n", c.Name, c.Value)
	}
	if len(req.FormParams) > 0 {
		fmt.Fprintf(f.writer, "      Form: %s\n", hithttp.EncodeParams(req.FormParams))
	}
	f.formatBody(req.Body)
}

// FormatResponse prints the status line, headers and body
func (f *ConsoleFormatter) FormatResponse(resp *hithttp.Response) {
	bold := f.colorize(color.Bold)
	status := f.statusColor(resp)

	fmt.Fprintf(f.writer, "    %s %s (%dms)\n", bold("Response:"), status(resp.Status), resp.DurationMs())
	f.formatHeaders(resp.Headers)
	f.formatBody(resp.Body)
}

func (f *ConsoleFormatter) statusColor(resp *hithttp.Response) func(a ...any) string {
	switch {
	case resp.IsSuccess():
		return f.colorize(color.FgGreen)
	case resp.IsRedirect():
		return f.colorize(color.FgCyan)
	case resp.IsClientError():
		return f.colorize(color.FgYellow)
	case resp.IsServerError():
		return f.colorize(color.FgRed)
	}
	return f.colorize(color.Reset)
}

func (f *ConsoleFormatter) formatHeaders(headers map[string]string) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(f.writer, "      %s: %s\n", k, headers[k])
	}
}

func (f *ConsoleFormatter) formatBody(body []byte) {
	if len(body) == 0 {
		return
	}
	if !utf8.Valid(body) {
		fmt.Fprintf(f.writer, "      [%d bytes of binary data]\n", len(body))
		return
	}
	text := string(body)
	if len(text) > maxBodyLen {
		text = text[:maxBodyLen] + "..."
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(f.writer, "      %s\n", line)
	}
}
