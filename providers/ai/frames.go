package ai

import (
	"bytes"
	"context"
	"io"

	"github.com/leofalp/sqlcopilot/internal/utils"
)

// DoneSentinel is the explicit end-of-stream marker used by OpenAI-style
// event streams.
const DoneSentinel = "[DONE]"

// FrameMode decides what happens to a line that is not valid JSON.
type FrameMode int

const (
	// FrameStrict drops lines that are not valid JSON.
	FrameStrict FrameMode = iota
	// FrameLenient repairs JSON-looking lines and forwards anything else
	// verbatim, to tolerate backends that stream plain text.
	FrameLenient
)

// Frame is one logical line of a streamed body after SSE normalisation.
type Frame struct {
	Payload string // line with any "data:" prefix removed
	Value   any    // decoded JSON; nil when Raw
	Raw     bool   // lenient mode only: Payload is not JSON
	Done    bool   // Payload is the DoneSentinel
}

// DecodeFrame normalises one line. ok is false for lines that carry nothing:
// blanks, SSE comments and fields, and (in strict mode) malformed JSON.
func DecodeFrame(line string, mode FrameMode) (frame Frame, ok bool) {
	payload, ok := utils.StripSSE(line)
	if !ok {
		return Frame{}, false
	}
	if payload == DoneSentinel {
		return Frame{Payload: payload, Done: true}, true
	}

	value, err := utils.ParseJSON(payload, mode == FrameLenient)
	if err != nil {
		if mode == FrameStrict {
			return Frame{}, false
		}
		return Frame{Payload: payload, Raw: true}, true
	}
	return Frame{Payload: payload, Value: value}, true
}

// FrameHandler turns one decoded frame into the text to forward. An empty
// result forwards nothing.
type FrameHandler func(frame Frame) string

// RuleHandler forwards the first delta matched by rules, and raw lines
// verbatim.
func RuleHandler(rules Rules) FrameHandler {
	return func(frame Frame) string {
		if frame.Raw {
			return frame.Payload
		}
		text, _ := rules.Extract(frame.Value)
		return text
	}
}

// NewLineStream builds a TextStream over body. Every logical line goes
// through DecodeFrame and handle; the DoneSentinel ends the stream and the
// trailing unterminated line is flushed through the same rule. The body is
// closed when the iterator finishes or the caller stops early.
func NewLineStream(ctx context.Context, body io.ReadCloser, mode FrameMode, handle FrameHandler) *TextStream {
	return NewTextStream(func(yield func(string, error) bool) {
		defer utils.CloseWithLog(body)

		stopped := false
		err := utils.ReadLines(ctx, body, func(line string) bool {
			frame, ok := DecodeFrame(line, mode)
			if !ok {
				return true
			}
			if frame.Done {
				return false
			}
			piece := handle(frame)
			if piece == "" {
				return true
			}
			if !yield(piece, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield("", err)
		}
	})
}

// CollectLines runs an already buffered body through the line rule and
// concatenates every forwarded piece.
func CollectLines(ctx context.Context, body []byte, mode FrameMode, handle FrameHandler) (string, error) {
	return NewLineStream(ctx, io.NopCloser(bytes.NewReader(body)), mode, handle).Collect()
}
