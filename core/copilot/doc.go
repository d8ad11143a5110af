// Package copilot is the façade every surface talks to. A [Manager] owns the
// persisted provider configuration, keeps it cached in memory and dispatches
// prompts to the adapter registered for the configured provider.
//
// Calls go through a middleware chain built once in [New]. [WithObserver]
// prepends spans and request metrics; package middleware adds structured
// logging.
//
// Basic usage:
//
//	manager := copilot.New(inmemory.New())
//	err := manager.SetConfig(ctx, ai.Config{Provider: ai.ProviderOpenAI, APIKey: key})
//	sql, err := manager.CallAPI(ctx, "list users created today")
package copilot
