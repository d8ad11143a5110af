package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leofalp/sqlcopilot/providers/observability"
)

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// HeaderOption is a single extra header applied to an outbound request after
// the defaults, so it can override Content-Type, Accept or Authorization.
type HeaderOption struct {
	Key   string
	Value string
}

// StatusError is returned for every non-2xx response. It keeps the numeric
// code and the status text separately so callers can surface both.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("non-2xx status %d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("non-2xx status %d %s: %s", e.StatusCode, e.Status, TruncateString(e.Body, 200))
}

// CloseWithLog closes body and logs the failure instead of returning it, so a
// close error never overrides the primary error of the caller.
func CloseWithLog(body io.Closer) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// DoSync performs one HTTP request and reads the whole response body.
// A nil body sends no payload (GET); anything else is encoded as JSON.
//
// Error Handling Strategy:
//   - Context errors (timeout, cancellation) are propagated immediately
//   - Connection failures are wrapped with the request verb
//   - Non-2xx responses return a *StatusError holding the body preview
//   - The response body is always closed; close errors are only logged
func DoSync(ctx context.Context, client *http.Client, method, url, apiKey string, body any, headers ...HeaderOption) (*http.Response, []byte, error) {
	res, err := send(ctx, client, method, url, apiKey, body, "http.request", headers)
	if err != nil {
		return res, nil, err
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, respBody, newStatusError(res, respBody)
	}

	return res, respBody, nil
}

// DoStream performs an HTTP request and returns the raw response with body
// left open for incremental reading. The caller is responsible for closing
// the body. On error paths the body is read and closed before returning.
func DoStream(ctx context.Context, client *http.Client, method, url, apiKey string, body any, headers ...HeaderOption) (*http.Response, error) {
	res, err := send(ctx, client, method, url, apiKey, body, "http.stream_request", headers)
	if err != nil {
		return res, err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer CloseWithLog(res.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
		if readErr != nil {
			return res, &StatusError{StatusCode: res.StatusCode, Status: statusText(res)}
		}
		return res, newStatusError(res, errorBody)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent("http.stream_response.started",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
		)
	}

	return res, nil
}

func send(ctx context.Context, client *http.Client, method, url, apiKey string, body any, eventPrefix string, headers []HeaderOption) (*http.Response, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var reader io.Reader
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error marshaling body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	if span != nil {
		span.AddEvent(eventPrefix+".prepared",
			observability.String(observability.AttrHTTPMethod, method),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(encoded)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	start := time.Now()
	res, err := httpClient.Do(req)
	if err != nil {
		if span != nil {
			span.AddEvent(eventPrefix+".error",
				observability.Error(err),
				observability.Duration("http.request.duration", time.Since(start)),
			)
		}
		return res, fmt.Errorf("error sending %s request: %w", method, err)
	}

	return res, nil
}

func newStatusError(res *http.Response, body []byte) *StatusError {
	return &StatusError{
		StatusCode: res.StatusCode,
		Status:     statusText(res),
		Body:       string(body),
	}
}

// statusText strips the numeric prefix from res.Status ("404 Not Found").
func statusText(res *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if text == "" {
		text = http.StatusText(res.StatusCode)
	}
	return text
}
