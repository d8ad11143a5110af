package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/leofalp/sqlcopilot/providers/observability"
)

// Action names a runtime message.
type Action string

const (
	ActionInsertSQL   Action = "insertSQL"
	ActionShowPanel   Action = "showPanel"
	ActionTogglePanel Action = "togglePanel"
	ActionOpenPanel   Action = "openPanel"
)

// CommandTogglePanel is the keyboard shortcut command name.
const CommandTogglePanel = "toggle-panel"

// defaultBuffer is the per-subscriber channel capacity.
const defaultBuffer = 16

var (
	ErrUnknownAction  = errors.New("messaging: unknown action")
	ErrUnknownCommand = errors.New("messaging: unknown command")
	ErrEmptySQL       = errors.New("messaging: insertSQL requires sql")
)

// Message is what agents receive. SQL is only set for insertSQL.
type Message struct {
	Action Action `json:"action"`
	SQL    string `json:"sql,omitempty"`
}

// Response is the reply to a dispatched message.
type Response struct {
	Success bool `json:"success"`

	// Delivered is the number of agents that received the message.
	Delivered int `json:"delivered"`
}

// Subscription is one agent's inbox. Receive from C until it is closed.
type Subscription struct {
	C <-chan Message

	hub  *Hub
	id   uint64
	once sync.Once
}

// Close unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s.id)
	})
}

// Hub fans messages out to every subscribed agent. Delivery never blocks:
// an agent whose inbox is full misses the message.
type Hub struct {
	observer observability.Provider
	buffer   int

	mu          sync.RWMutex
	nextID      uint64
	subscribers map[uint64]chan Message
}

// Option configures a Hub.
type Option func(*Hub)

// WithObserver counts dispatched messages and logs dropped deliveries.
func WithObserver(observer observability.Provider) Option {
	return func(h *Hub) {
		h.observer = observer
	}
}

// WithBuffer sets the inbox capacity of new subscriptions.
func WithBuffer(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.buffer = size
		}
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		buffer:      defaultBuffer,
		subscribers: make(map[uint64]chan Message),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new agent.
func (h *Hub) Subscribe() *Subscription {
	inbox := make(chan Message, h.buffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subscribers[id] = inbox
	h.mu.Unlock()

	return &Subscription{C: inbox, hub: h, id: id}
}

// Subscribers returns the number of connected agents.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if inbox, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(inbox)
	}
}

// Dispatch routes message. Panel actions always succeed; openPanel is
// broadcast as showPanel. insertSQL succeeds only when at least one agent
// received it.
func (h *Hub) Dispatch(ctx context.Context, message Message) (Response, error) {
	switch message.Action {
	case ActionOpenPanel:
		delivered := h.broadcast(ctx, Message{Action: ActionShowPanel})
		return h.reply(ctx, message.Action, Response{Success: true, Delivered: delivered}), nil

	case ActionShowPanel, ActionTogglePanel:
		delivered := h.broadcast(ctx, Message{Action: message.Action})
		return h.reply(ctx, message.Action, Response{Success: true, Delivered: delivered}), nil

	case ActionInsertSQL:
		if strings.TrimSpace(message.SQL) == "" {
			return Response{}, ErrEmptySQL
		}
		delivered := h.broadcast(ctx, message)
		return h.reply(ctx, message.Action, Response{Success: delivered > 0, Delivered: delivered}), nil
	}

	return Response{}, fmt.Errorf("%w: %q", ErrUnknownAction, message.Action)
}

// Command handles a keyboard shortcut.
func (h *Hub) Command(ctx context.Context, command string) (Response, error) {
	if command != CommandTogglePanel {
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	return h.Dispatch(ctx, Message{Action: ActionTogglePanel})
}

func (h *Hub) broadcast(ctx context.Context, message Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, inbox := range h.subscribers {
		select {
		case inbox <- message:
			delivered++
		default:
			if h.observer != nil {
				h.observer.Warn(ctx, "agent inbox full, message dropped",
					observability.String(observability.AttrMessageAction, string(message.Action)),
					observability.Int64("message.subscriber", int64(id)),
				)
			}
		}
	}
	return delivered
}

func (h *Hub) reply(ctx context.Context, action Action, response Response) Response {
	if h.observer == nil {
		return response
	}

	outcome := "success"
	if !response.Success {
		outcome = "error"
	}
	h.observer.Counter(observability.MetricMessagesDispatched).Add(ctx, 1,
		observability.String(observability.AttrMessageAction, string(action)),
		observability.String(observability.AttrOutcome, outcome),
	)
	h.observer.Debug(ctx, "runtime message dispatched",
		observability.String(observability.AttrMessageAction, string(action)),
		observability.Int(observability.AttrSubscribers, response.Delivered),
	)
	return response
}
