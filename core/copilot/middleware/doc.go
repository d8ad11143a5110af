// Package middleware provides optional wrappers for the copilot call chain.
//
// Pass them to copilot.New with copilot.WithMiddleware:
//
//	manager := copilot.New(store,
//	    copilot.WithMiddleware(middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard)),
//	)
package middleware
