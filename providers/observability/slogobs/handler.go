package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Handler is a slog.Handler writing compact or JSON lines. Attributes added
// with WithAttrs and WithGroup are flattened to dotted keys.
type Handler struct {
	format Format
	level  slog.Leveler
	output io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string
}

// NewHandler returns a Handler writing to output at or above level.
func NewHandler(output io.Writer, format Format, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		format: format,
		level:  level,
		output: output,
		mu:     &sync.Mutex{},
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	fields := make(map[string]any, record.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		addAttr(fields, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		addAttr(fields, h.prefix, attr)
		return true
	})

	var line []byte
	if h.format == FormatJSON {
		fields["time"] = record.Time.Format("2006-01-02T15:04:05.000Z07:00")
		fields["level"] = levelString(record.Level)
		fields["msg"] = record.Message
		encoded, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		line = encoded
	} else {
		line = fmt.Appendf(nil, "%s %5s %s", record.Time.Format("2006-01-02 15:04:05"), levelString(record.Level), record.Message)
		if len(fields) > 0 {
			encoded, err := json.Marshal(fields)
			if err != nil {
				encoded = []byte(`{"attrs":"unencodable"}`)
			}
			line = append(line, ' ')
			line = append(line, encoded...)
		}
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		attr.Key = h.prefix + attr.Key
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func addAttr(fields map[string]any, prefix string, attr slog.Attr) {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		for _, member := range value.Group() {
			addAttr(fields, prefix+attr.Key+".", member)
		}
		return
	}
	if attr.Key == "" {
		return
	}
	switch value.Kind() {
	case slog.KindDuration:
		fields[prefix+attr.Key] = value.Duration().String()
	case slog.KindTime:
		fields[prefix+attr.Key] = value.Time().Format("2006-01-02T15:04:05Z07:00")
	default:
		fields[prefix+attr.Key] = value.Any()
	}
}
