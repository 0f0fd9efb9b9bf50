package output

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Checks   []JSONCheck `json:"checks"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the check summary
type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONCheck represents a single executed request
type JSONCheck struct {
	Name     string        `json:"name,omitempty"`
	Passed   bool          `json:"passed"`
	Duration float64       `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Request  *JSONRequest  `json:"request,omitempty"`
	Response *JSONResponse `json:"response,omitempty"`
	Failure  *JSONFailure  `json:"failure,omitempty"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// JSONResponse represents response details
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body,omitempty"`
	Duration   float64           `json:"duration"`
}

// JSONFailure represents the first failed expectation
type JSONFailure struct {
	Description string `json:"description"`
	Path        string `json:"path,omitempty"`
	Expected    string `json:"expected"`
	Actual      any    `json:"actual"`
	Message     string `json:"message,omitempty"`
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	writer  io.Writer
	results []JSONCheck
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONCheck, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *Result) {
	check := JSONCheck{
		Name:     result.Name,
		Passed:   result.Passed(),
		Duration: float64(result.Duration.Milliseconds()),
	}

	if result.Err != nil {
		check.Error = result.Err.Error()
	}

	if result.Request != nil {
		check.Request = &JSONRequest{
			Method:  result.Request.Method,
			URL:     result.Request.BuildURL(),
			Headers: result.Request.Headers,
		}
	}

	if result.Response != nil {
		check.Response = &JSONResponse{
			StatusCode: result.Response.StatusCode,
			Status:     result.Response.Status,
			Headers:    result.Response.Headers,
			Duration:   float64(result.Response.Duration.Milliseconds()),
		}
		if !check.Passed {
			check.Response.Body = result.Response.BodyString()
		}
	}

	if fl := result.Failure; fl != nil {
		check.Failure = &JSONFailure{
			Description: fl.Description,
			Path:        fl.Path,
			Expected:    fl.Expected,
			Actual:      fl.Actual,
			Message:     fl.Message,
		}
	}

	f.results = append(f.results, check)
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed int
	for _, c := range f.results {
		if c.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:  len(f.results),
			Passed: passed,
			Failed: failed,
		},
		Checks:   f.results,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
