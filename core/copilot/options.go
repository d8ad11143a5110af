package copilot

import (
	"github.com/leofalp/sqlcopilot/providers/ai"
	"github.com/leofalp/sqlcopilot/providers/observability"
)

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithObserver enables spans, request metrics and log events. The
// observability middleware becomes the outermost entry of the chain.
func WithObserver(observer observability.Provider) Option {
	return func(m *Manager) {
		m.observer = observer
	}
}

// WithMiddleware appends middlewares to the call chain, in order.
func WithMiddleware(middlewares ...MiddlewareConfig) Option {
	return func(m *Manager) {
		m.middlewares = append(m.middlewares, middlewares...)
	}
}

// WithAdapter registers adapter under its own name, replacing the default
// adapter for that provider.
func WithAdapter(adapter ai.Adapter) Option {
	return func(m *Manager) {
		m.adapters[adapter.Name()] = adapter
	}
}
