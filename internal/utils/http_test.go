package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoSync_PostSendsJSONAndBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected JSON content type, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer header, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"prompt":"hi"}` {
			t.Errorf("unexpected body %s", body)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	_, body, err := DoSync(context.Background(), server.Client(), http.MethodPost, server.URL, "secret", map[string]string{"prompt": "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected response body %s", body)
	}
}

// TestDoSync_GetHasNoBody verifies that a nil body sends neither a payload
// nor a Content-Type header, and that header options are applied.
func TestDoSync_GetHasNoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "" {
			t.Errorf("expected no content type, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no authorization without api key, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != "text/plain" {
			t.Errorf("expected custom Accept header, got %q", got)
		}
		w.Write([]byte("pong"))
	}))
	defer server.Close()

	_, body, err := DoSync(context.Background(), nil, http.MethodGet, server.URL, "", nil, HeaderOption{Key: "Accept", Value: "text/plain"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "pong" {
		t.Errorf("expected pong, got %s", body)
	}
}

func TestDoSync_Non2xxReturnsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, _, err := DoSync(context.Background(), server.Client(), http.MethodPost, server.URL, "", map[string]string{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", statusErr.StatusCode)
	}
	if statusErr.Status != "Too Many Requests" {
		t.Errorf("expected status text, got %q", statusErr.Status)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error message should carry the status code: %v", err)
	}
}

func TestDoStream_LeavesBodyOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("expected event-stream Accept, got %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: one\n\ndata: two\n\n"))
	}))
	defer server.Close()

	res, err := DoStream(context.Background(), server.Client(), http.MethodPost, server.URL, "", map[string]bool{"stream": true},
		HeaderOption{Key: "Accept", Value: "text/event-stream"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer CloseWithLog(res.Body)

	var payloads []string
	err = ReadLines(context.Background(), res.Body, func(line string) bool {
		if payload, ok := StripSSE(line); ok {
			payloads = append(payloads, payload)
		}
		return true
	})
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if strings.Join(payloads, ",") != "one,two" {
		t.Errorf("expected one,two got %q", payloads)
	}
}

func TestDoStream_Non2xxClosesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := DoStream(context.Background(), server.Client(), http.MethodGet, server.URL, "", nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", statusErr.StatusCode)
	}
	if !strings.Contains(statusErr.Body, "bad key") {
		t.Errorf("expected body preview, got %q", statusErr.Body)
	}
}

func TestDoSync_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, _, err := DoSync(context.Background(), nil, http.MethodGet, url, "", nil)
	if err == nil {
		t.Fatal("expected connection error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Errorf("connection failure must not look like an HTTP status error")
	}
}
