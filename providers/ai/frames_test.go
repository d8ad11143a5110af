package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		mode     FrameMode
		ok       bool
		done     bool
		raw      bool
		hasValue bool
	}{
		{name: "sse json", line: `data: {"sql":"x"}`, mode: FrameStrict, ok: true, hasValue: true},
		{name: "ndjson", line: `{"sql":"x"}`, mode: FrameStrict, ok: true, hasValue: true},
		{name: "done", line: "data: [DONE]", mode: FrameStrict, ok: true, done: true},
		{name: "bare done", line: "[DONE]", mode: FrameLenient, ok: true, done: true},
		{name: "comment", line: ": keep-alive", mode: FrameLenient},
		{name: "event field", line: "event: message", mode: FrameLenient},
		{name: "empty data", line: "data:", mode: FrameStrict},
		{name: "strict drops text", line: "SELECT 1", mode: FrameStrict},
		{name: "strict drops broken json", line: `{"sql":"x"`, mode: FrameStrict},
		{name: "lenient forwards text", line: "SELECT 1", mode: FrameLenient, ok: true, raw: true},
		{name: "lenient repairs json", line: `{"sql":"x"`, mode: FrameLenient, ok: true, hasValue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, ok := DecodeFrame(tt.line, tt.mode)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if frame.Done != tt.done || frame.Raw != tt.raw || (frame.Value != nil) != tt.hasValue {
				t.Errorf("unexpected frame %+v", frame)
			}
		})
	}
}

func TestNewLineStreamStopsAtDone(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"SEL\"}}]}\n" +
		": ping\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ECT\"}}]}\n" +
		"data: [DONE]\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n"
	rules := MustRules("choices[0].delta.content")

	text, err := NewLineStream(context.Background(), io.NopCloser(strings.NewReader(body)), FrameStrict, RuleHandler(rules)).Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "SELECT" {
		t.Errorf("expected SELECT, got %q", text)
	}
}

func TestNewLineStreamFlushesTrailingLine(t *testing.T) {
	body := "{\"response\":\"SELECT \"}\n{\"response\":\"1\"}"

	text, err := CollectLines(context.Background(), []byte(body), FrameStrict, RuleHandler(MustRules("response")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "SELECT 1" {
		t.Errorf("expected trailing line to be processed, got %q", text)
	}
}

func TestNewLineStreamLenientMixesTextAndJSON(t *testing.T) {
	body := "SELECT *\n{\"text\":\" FROM t\"}\n"

	text, err := CollectLines(context.Background(), []byte(body), FrameLenient, RuleHandler(MustRules("text")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "SELECT * FROM t" {
		t.Errorf("unexpected text %q", text)
	}
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestNewLineStreamClosesBodyOnEarlyStop(t *testing.T) {
	body := &closeRecorder{Reader: strings.NewReader("{\"sql\":\"a\"}\n{\"sql\":\"b\"}\n")}
	stream := NewLineStream(context.Background(), body, FrameStrict, RuleHandler(MustRules("sql")))

	var pieces []string
	for piece, err := range stream.Iter() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pieces = append(pieces, piece)
		break
	}

	if len(pieces) != 1 || pieces[0] != "a" {
		t.Errorf("unexpected pieces %v", pieces)
	}
	if !body.closed {
		t.Error("expected body to be closed after early stop")
	}
}

type brokenReader struct {
	sent bool
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if !b.sent {
		b.sent = true
		return copy(p, "{\"sql\":\"partial\"}\n"), nil
	}
	return 0, errors.New("connection reset")
}

func TestNewLineStreamYieldsTransportError(t *testing.T) {
	stream := NewLineStream(context.Background(), io.NopCloser(&brokenReader{}), FrameStrict, RuleHandler(MustRules("sql")))

	text, err := stream.Collect()
	if text != "partial" {
		t.Errorf("expected partial text before the failure, got %q", text)
	}
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected transport error, got %v", err)
	}
}
