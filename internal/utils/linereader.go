package utils

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

// maxLineSize is the maximum size of a single buffered line (1 MB). Long
// completions delivered as one NDJSON line fit comfortably; anything larger
// is treated as a broken stream.
const maxLineSize = 1 * 1024 * 1024

// readChunkSize is how many bytes ReadLines asks the transport for per read.
const readChunkSize = 32 * 1024

// LineReader turns an incrementally delivered byte stream into logical lines.
// Chunks may split a line, a JSON value or a multi-byte UTF-8 sequence at any
// byte; the incomplete tail stays buffered until the next Feed or Flush.
//
// Bytes are only decoded once a whole line is available. Because '\n' never
// appears inside a multi-byte UTF-8 sequence, a split rune is always carried
// over intact.
type LineReader struct {
	buffer []byte
}

// NewLineReader returns an empty LineReader.
func NewLineReader() *LineReader {
	return &LineReader{}
}

// Feed appends chunk to the buffer and returns every complete line that is
// non-empty after trimming, in order.
func (r *LineReader) Feed(chunk []byte) []string {
	r.buffer = append(r.buffer, chunk...)

	var lines []string
	for {
		idx := bytes.IndexByte(r.buffer, '\n')
		if idx < 0 {
			break
		}
		line := decodeLine(r.buffer[:idx])
		r.buffer = r.buffer[idx+1:]
		if line != "" {
			lines = append(lines, line)
		}
	}

	// Drop the consumed prefix so the backing array does not grow forever.
	if len(r.buffer) == 0 {
		r.buffer = nil
	} else {
		r.buffer = append([]byte(nil), r.buffer...)
	}

	return lines
}

// Flush returns the buffered remainder as one final line. ok is false when
// the remainder is blank. The reader is empty afterwards.
func (r *LineReader) Flush() (line string, ok bool) {
	line = decodeLine(r.buffer)
	r.buffer = nil
	return line, line != ""
}

// Buffered reports how many bytes of an unterminated line are pending.
func (r *LineReader) Buffered() int {
	return len(r.buffer)
}

// decodeLine converts raw line bytes to a trimmed string. Invalid UTF-8 is
// replaced with U+FFFD, matching a non-fatal text decoder.
func decodeLine(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), "\uFFFD"))
}

// ReadLines pumps reader through a LineReader and calls fn for every logical
// line, including the flushed trailing line at EOF. It stops early when fn
// returns false or ctx is cancelled. Reads block until bytes arrive or the
// transport closes.
func ReadLines(ctx context.Context, reader io.Reader, fn func(line string) bool) error {
	lineReader := NewLineReader()
	chunk := make([]byte, readChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := reader.Read(chunk)
		if n > 0 {
			for _, line := range lineReader.Feed(chunk[:n]) {
				if !fn(line) {
					return nil
				}
			}
			if lineReader.Buffered() > maxLineSize {
				return fmt.Errorf("line exceeds %d bytes: %w", maxLineSize, bufio.ErrTooLong)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("stream read error: %w", readErr)
		}
	}

	if line, ok := lineReader.Flush(); ok {
		fn(line)
	}
	return nil
}

// StripSSE normalises one logical line of an event-stream or NDJSON body.
// A leading "data:" prefix is removed; blank payloads, SSE comments (":")
// and the other SSE fields (event:, id:, retry:) yield ok=false.
func StripSSE(line string) (payload string, ok bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return "", false
	case strings.HasPrefix(line, ":"):
		return "", false
	case strings.HasPrefix(line, "data:"):
		payload = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		return payload, payload != ""
	case strings.HasPrefix(line, "event:"), strings.HasPrefix(line, "id:"), strings.HasPrefix(line, "retry:"):
		return "", false
	}
	return line, true
}
