package aliyun

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/sqlcopilot/providers/ai"
)

func testConfig() ai.Config {
	return ai.Config{Provider: ai.ProviderAliyun, APIKey: "sk-dash"}
}

func TestNew(t *testing.T) {
	t.Setenv("DASHSCOPE_API_BASE_URL", "")
	if p := New(); p.baseURL != defaultBaseURL || p.Name() != ai.ProviderAliyun {
		t.Errorf("unexpected provider %+v", p)
	}
	t.Setenv("DASHSCOPE_API_BASE_URL", "https://dashscope-intl.aliyuncs.com/api/v1")
	if p := New(); p.baseURL != "https://dashscope-intl.aliyuncs.com/api/v1" {
		t.Errorf("expected env base URL, got %q", p.baseURL)
	}
}

func TestSendOnceTranslationRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != generationEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-dash" {
			t.Errorf("expected bearer auth, got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-DashScope-SSE") != "" {
			t.Error("one-shot requests must not enable SSE")
		}

		var req generationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			return
		}
		if req.Model != "qwen-mt-turbo" {
			t.Errorf("expected default model, got %q", req.Model)
		}
		if len(req.Input.Messages) != 1 || req.Input.Messages[0].Content != "你好世界" || req.Input.Messages[0].Role != "user" {
			t.Errorf("unexpected messages %+v", req.Input.Messages)
		}
		opts := req.Parameters.TranslationOptions
		if opts.SourceLang != "Chinese" || opts.TargetLang != "English" {
			t.Errorf("unexpected translation options %+v", opts)
		}

		fmt.Fprint(w, `{"output":{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"Hello world"}}]},"request_id":"r1"}`)
	}))
	defer server.Close()

	text, err := New().WithBaseURL(server.URL).SendOnce(context.Background(), "你好世界", testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Hello world" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestSendOnceFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"output":{}}`)
	}))
	defer server.Close()

	text, err := New().WithBaseURL(server.URL).SendOnce(context.Background(), "q", testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != ai.FallbackTranslation {
		t.Errorf("expected translation fallback, got %q", text)
	}
}

func TestSendOnceOutputText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"output":{"text":"Good morning"}}`)
	}))
	defer server.Close()

	text, _ := New().WithBaseURL(server.URL).SendOnce(context.Background(), "早上好", testConfig())
	if text != "Good morning" {
		t.Errorf("expected output.text, got %q", text)
	}
}

func TestSendOnceHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":"InvalidParameter","message":"bad model"}`)
	}))
	defer server.Close()

	_, err := New().WithBaseURL(server.URL).SendOnce(context.Background(), "q", testConfig())
	if ai.StatusCode(err) != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func streamServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-DashScope-SSE") != "enable" {
			t.Errorf("expected X-DashScope-SSE: enable, got %q", r.Header.Get("X-DashScope-SSE"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for i, frame := range frames {
			fmt.Fprintf(w, "id:%d\nevent:result\n:HTTP_STATUS/200\ndata:%s\n\n", i+1, frame)
		}
	}))
}

func collect(t *testing.T, server *httptest.Server) []string {
	t.Helper()
	stream, err := New().WithBaseURL(server.URL).SendStream(context.Background(), "q", testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var chunks []string
	if err := stream.Each(func(chunk string) { chunks = append(chunks, chunk) }); err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	return chunks
}

func TestSendStreamCumulativeFrames(t *testing.T) {
	server := streamServer(t,
		`{"output":{"choices":[{"message":{"content":"SELECT"}}]}}`,
		`{"output":{"choices":[{"message":{"content":"SELECT 1"}}]}}`,
		`{"output":{"choices":[{"message":{"content":"SELECT 1"}}]}}`,
	)
	defer server.Close()

	chunks := collect(t, server)
	if len(chunks) != 2 || chunks[0] != "SELECT" || chunks[1] != " 1" {
		t.Errorf("expected [SELECT, \" 1\"], got %q", chunks)
	}
}

func TestSendStreamDeltaFrames(t *testing.T) {
	server := streamServer(t,
		`{"output":{"choices":[{"delta":{"content":"Hello"}}]}}`,
		`{"output":{"choices":[{"delta":{"content":" world"}}]}}`,
		`{"output":{"choices":[{"delta":{"content":" world"}}]}}`,
		`{"output":{"finish_reason":"stop"}}`,
	)
	defer server.Close()

	chunks := collect(t, server)
	if len(chunks) != 2 || chunks[0] != "Hello" || chunks[1] != " world" {
		t.Errorf("expected [Hello, \" world\"], got %q", chunks)
	}
}

func TestSendStreamMixedFrames(t *testing.T) {
	server := streamServer(t,
		`{"output":{"choices":[{"delta":{"content":"SEL"}}]}}`,
		`{"output":{"choices":[{"delta":{"content":"ECT"}}]}}`,
		`{"output":{"choices":[{"message":{"content":"SELECT 1"}}]}}`,
		`{"output":{"choices":[{"message":{"content":"SELECT 1"}}]}}`,
	)
	defer server.Close()

	chunks := collect(t, server)
	if strings.Join(chunks, "") != "SELECT 1" || len(chunks) != 3 {
		t.Errorf("expected [SEL, ECT, \" 1\"], got %q", chunks)
	}
}

func TestSendStreamOutputText(t *testing.T) {
	server := streamServer(t,
		`{"output":{"text":"Good"}}`,
		`{"output":{"text":"Good morning"}}`,
	)
	defer server.Close()

	chunks := collect(t, server)
	if len(chunks) != 2 || chunks[1] != " morning" {
		t.Errorf("expected cumulative output.text to be reduced, got %q", chunks)
	}
}
