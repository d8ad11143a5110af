package copilot

import (
	"context"

	"github.com/leofalp/sqlcopilot/providers/ai"
)

// Request is what flows through the middleware chain: the user prompt and
// the normalised configuration that selects the adapter.
type Request struct {
	Prompt string
	Config ai.Config
}

// SendFunc sends a request and returns the extracted text. It is the base
// unit threaded through the send middleware chain.
type SendFunc func(ctx context.Context, request Request) (string, error)

// StreamFunc sends a request with streaming enabled and returns the text
// stream. It is the base unit threaded through the stream middleware chain.
type StreamFunc func(ctx context.Context, request Request) (*ai.TextStream, error)

// Middleware wraps the next SendFunc. Middlewares are applied
// outermost-first: the first one in the slice runs first.
type Middleware func(next SendFunc) SendFunc

// StreamMiddleware is the streaming counterpart of Middleware. It may wrap
// the returned TextStream to observe the pieces as they are consumed.
type StreamMiddleware func(next StreamFunc) StreamFunc

// MiddlewareConfig pairs a send middleware with its optional streaming
// counterpart. Send is required; a nil Stream means streaming calls bypass
// this entry.
type MiddlewareConfig struct {
	Send   Middleware
	Stream StreamMiddleware
}

// buildSendChain wraps base with every middleware, in reverse so that
// middlewares[0] is the outermost wrapper.
func buildSendChain(base SendFunc, middlewares []MiddlewareConfig) SendFunc {
	chain := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i].Send(chain)
	}
	return chain
}

// buildStreamChain is buildSendChain for streams. Entries without a Stream
// middleware are skipped.
func buildStreamChain(base StreamFunc, middlewares []MiddlewareConfig) StreamFunc {
	chain := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i].Stream != nil {
			chain = middlewares[i].Stream(chain)
		}
	}
	return chain
}
