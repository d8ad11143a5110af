package ai

import (
	"iter"
	"strings"
)

// TextStream wraps a streaming iterator of text pieces. It supports
// range-based iteration, a callback form matching the façade contract, and
// Collect for callers that only want the final text.
//
// Important: callers must consume the stream, either by iterating with Iter()
// (including breaking out of the loop early), by calling Each, or by calling
// Collect. The adapter holds the HTTP response body open until the iterator
// completes or is abandoned.
type TextStream struct {
	iterator iter.Seq2[string, error]
}

// NewTextStream creates a TextStream from a raw iterator. The iterator yields
// text pieces with a nil error, and may yield a non-nil error to signal a
// mid-stream failure, after which it stops.
func NewTextStream(iterator iter.Seq2[string, error]) *TextStream {
	return &TextStream{iterator: iterator}
}

// NewSingleChunkStream wraps an already complete text as a one-piece stream.
// Empty text produces an empty stream.
func NewSingleChunkStream(text string) *TextStream {
	return NewTextStream(func(yield func(string, error) bool) {
		if text != "" {
			yield(text, nil)
		}
	})
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
// Example:
//
//	for piece, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(piece)
//	}
func (stream *TextStream) Iter() iter.Seq2[string, error] {
	return stream.iterator
}

// Each calls onChunk for every piece in order and returns the first
// mid-stream error, if any.
func (stream *TextStream) Each(onChunk func(chunk string)) error {
	for piece, err := range stream.iterator {
		if err != nil {
			return err
		}
		onChunk(piece)
	}
	return nil
}

// Collect consumes the entire stream and returns the concatenated text. Any
// mid-stream error terminates collection and returns the partial text with
// the error.
func (stream *TextStream) Collect() (string, error) {
	var builder strings.Builder
	err := stream.Each(func(chunk string) {
		builder.WriteString(chunk)
	})
	return builder.String(), err
}
