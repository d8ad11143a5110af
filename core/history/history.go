// Package history keeps the conversation shown next to the prompt box. The
// whole conversation is stored as one JSON array under a fixed key so every
// kv backend can hold it.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/sqlcopilot/providers/kv"
	"github.com/leofalp/sqlcopilot/providers/observability"
)

// StoreKey is the kv key of the persisted conversation.
const StoreKey = "translationMessages"

// ErrMessageNotFound is returned by AppendChunk for an unknown id.
var ErrMessageNotFound = errors.New("history: message not found")

// MessageType tells who wrote a message.
type MessageType string

const (
	TypeUser      MessageType = "user"
	TypeAssistant MessageType = "assistant"
)

// Message is one conversation entry. Timestamp is in Unix milliseconds, the
// format the stored record has always used.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
}

// Time returns Timestamp as a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// History serialises read-modify-write cycles on the stored array. It does
// not cache: the store is the source of truth.
type History struct {
	store kv.Store
	now   func() time.Time

	mu sync.Mutex
}

func New(store kv.Store) *History {
	return &History{store: store, now: time.Now}
}

// List returns the stored conversation, oldest first. A missing record is
// an empty conversation; a corrupt one is logged and treated as empty.
func (h *History) List(ctx context.Context) ([]Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

// Append adds a message and returns it with its generated id and timestamp.
func (h *History) Append(ctx context.Context, messageType MessageType, content string) (Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	messages, err := h.load(ctx)
	if err != nil {
		return Message{}, err
	}

	message := Message{
		ID:        uuid.NewString(),
		Type:      messageType,
		Content:   content,
		Timestamp: h.now().UnixMilli(),
	}
	messages = append(messages, message)

	if err := h.save(ctx, messages); err != nil {
		return Message{}, err
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventHistoryAppend,
			observability.String(observability.AttrHistoryID, message.ID),
			observability.Int(observability.AttrHistoryCount, len(messages)),
		)
	}

	return message, nil
}

// AppendChunk appends text to the content of message id and persists the
// result. Streaming replies grow one chunk at a time this way.
func (h *History) AppendChunk(ctx context.Context, id, text string) (Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	messages, err := h.load(ctx)
	if err != nil {
		return Message{}, err
	}

	for i := range messages {
		if messages[i].ID != id {
			continue
		}
		messages[i].Content += text
		if err := h.save(ctx, messages); err != nil {
			return Message{}, err
		}
		return messages[i], nil
	}

	return Message{}, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
}

// Clear removes the stored conversation.
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Delete(ctx, StoreKey); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}

func (h *History) load(ctx context.Context) ([]Message, error) {
	raw, err := h.store.Get(ctx, StoreKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		slog.WarnContext(ctx, "discarding unreadable message history",
			slog.String(observability.AttrStoreKey, StoreKey),
			slog.String(observability.AttrError, err.Error()),
			slog.Int("size", len(raw)),
		)
		return nil, nil
	}
	return messages, nil
}

func (h *History) save(ctx context.Context, messages []Message) error {
	if err := kv.SetJSON(ctx, h.store, StoreKey, messages); err != nil {
		return fmt.Errorf("history: save: %w", err)
	}
	return nil
}
