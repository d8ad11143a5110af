package ai

import (
	"context"
	"net/http"
)

// Adapter is the capability every provider variant implements. The façade
// holds one Adapter per ProviderName and dispatches on the configured name.
//
// Both operations send exactly one HTTP request shaped the way the provider
// documents it. Non-2xx responses fail with *HTTPError. Neither operation
// retries.
type Adapter interface {
	// Name returns the provider this adapter serves.
	Name() ProviderName

	// SendOnce sends prompt and blocks until the whole response is read.
	// The returned text is the first non-empty match of the adapter's
	// ordered extraction rules, or the adapter's fallback literal.
	SendOnce(ctx context.Context, prompt string, config Config) (string, error)

	// SendStream sends prompt with streaming enabled and returns a
	// TextStream over the incremental text pieces. Pre-stream errors
	// (missing endpoint, non-2xx, network) are returned directly;
	// transport errors after the first byte are yielded by the iterator.
	SendStream(ctx context.Context, prompt string, config Config) (*TextStream, error)
}

// Configurable is implemented by adapters whose base URL and HTTP client can
// be replaced, which is how tests and proxies redirect provider-fixed
// endpoints.
type Configurable interface {
	WithBaseURL(baseURL string) Adapter
	WithHttpClient(httpClient *http.Client) Adapter
}
