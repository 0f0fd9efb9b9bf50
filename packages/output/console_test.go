package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() *hithttp.Request {
	req := hithttp.NewRequest("POST", "http://localhost:8080/greet")
	req.SetHeader("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	req.AddFormParam("firstName", "John")
	req.AddFormParam("lastName", "Doe")
	req.AddCookie("session", "abc")
	return req
}

func sampleResponse() *hithttp.Response {
	return &hithttp.Response{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(`{"greeting":"Greetings John Doe"}`),
		Duration:   12 * time.Millisecond,
	}
}

func TestConsoleFormatter(t *testing.T) {
	t.Run("passing result is one line", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

		f.FormatResult(&Result{Request: sampleRequest(), Response: sampleResponse(), Duration: 12 * time.Millisecond})

		out := buf.String()
		assert.Contains(t, out, "✓ POST http://localhost:8080/greet")
		assert.NotContains(t, out, "Request:")
	})

	t.Run("failure prints request and response", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

		f.FormatResult(&Result{
			Request:  sampleRequest(),
			Response: sampleResponse(),
			Failure: &Failure{
				Description: "body",
				Path:        "greeting",
				Expected:    `"Greetings Jane Doe"`,
				Actual:      "Greetings John Doe",
			},
		})

		out := buf.String()
		assert.Contains(t, out, "✗")
		assert.Contains(t, out, "→ body at greeting")
		assert.Contains(t, out, `Expected: "Greetings Jane Doe"`)
		assert.Contains(t, out, `Actual:   "Greetings John Doe"`)
		assert.Contains(t, out, "Request: POST http://localhost:8080/greet")
		assert.Contains(t, out, "Form: firstName=John&lastName=Doe")
		assert.Contains(t, out, "Cookie: session=abc")
		assert.Contains(t, out, "Response: 200 OK")
		assert.Contains(t, out, `{"greeting":"Greetings John Doe"}`)
	})

	t.Run("transport error", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

		f.FormatResult(&Result{Name: "greet", Err: errors.New("connection refused")})
		assert.Contains(t, buf.String(), "x greet (connection refused)")
	})

	t.Run("binary body is summarized", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

		resp := sampleResponse()
		resp.Body = []byte{0xff, 0xfe, 0x00}
		f.FormatResponse(resp)
		assert.Contains(t, buf.String(), "[3 bytes of binary data]")
	})
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "null", formatValue(nil, 10))
	assert.Equal(t, `"abc"`, formatValue("abc", 10))
	assert.Equal(t, `"ab"...`, formatValue("abcdef", 2))
	assert.Equal(t, "[array with 2 items]", formatValue([]any{1, 2}, 10))
	assert.Equal(t, "{object with 1 keys}", formatValue(map[string]any{"a": 1}, 10))
	assert.Equal(t, "42", formatValue(42, 10))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(&Result{Name: "ok", Request: sampleRequest(), Response: sampleResponse()})
	f.FormatResult(&Result{
		Name:     "bad",
		Request:  sampleRequest(),
		Response: sampleResponse(),
		Failure:  &Failure{Description: "status code", Expected: "404", Actual: 200},
	})
	require.NoError(t, f.Flush(time.Second))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, JSONSummary{Total: 2, Passed: 1, Failed: 1}, out.Summary)
	require.Len(t, out.Checks, 2)
	assert.Empty(t, out.Checks[0].Response.Body)
	assert.Equal(t, `{"greeting":"Greetings John Doe"}`, out.Checks[1].Response.Body)
	assert.Equal(t, "status code", out.Checks[1].Failure.Description)
	assert.Equal(t, float64(1000), out.Duration)
}

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer

	f, err := NewFormatter("console", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	f, err = NewFormatter("JSON", &buf, false, true)
	require.NoError(t, err)
	_, ok := f.(Flushable)
	assert.True(t, ok)

	_, err = NewFormatter("junit", &buf, false, true)
	assert.Error(t, err)
}
