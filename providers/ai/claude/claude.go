package claude

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/leofalp/sqlcopilot/internal/utils"
	"github.com/leofalp/sqlcopilot/providers/ai"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	messagesEndpoint = "/messages"

	// anthropicVersion pins the response format independently of the URL.
	anthropicVersion = "2023-06-01"
)

// Provider talks to the Messages endpoint.
type Provider struct {
	baseURL string
	client  *http.Client
}

var (
	_ ai.Adapter      = (*Provider)(nil)
	_ ai.Configurable = (*Provider)(nil)
)

// New returns a Provider for ANTHROPIC_API_BASE_URL, defaulting to
// https://api.anthropic.com/v1.
func New() *Provider {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithBaseURL overrides the API base URL, for proxies and tests.
func (p *Provider) WithBaseURL(baseURL string) ai.Adapter {
	p.baseURL = baseURL
	return p
}

// WithHttpClient replaces the HTTP client used for API calls.
func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Adapter {
	p.client = httpClient
	return p
}

func (p *Provider) Name() ai.ProviderName {
	return ai.ProviderClaude
}

// headers builds the credential and version headers. Anthropic does not
// accept Bearer tokens, so the API key never goes through Authorization.
func headers(apiKey string, extra ...utils.HeaderOption) []utils.HeaderOption {
	return append([]utils.HeaderOption{
		{Key: "x-api-key", Value: apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}, extra...)
}

// SendOnce sends a single Messages request and returns the first text block.
func (p *Provider) SendOnce(ctx context.Context, prompt string, config ai.Config) (string, error) {
	config = config.Normalized()
	url := p.baseURL + messagesEndpoint
	ai.TraceRequest(ctx, ai.ProviderClaude, url, config, false)

	_, body, err := utils.DoSync(ctx, p.client, http.MethodPost, url, "", newMessagesRequest(prompt, config, false), headers(config.APIKey)...)
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	value, err := utils.ParseJSON(string(body), false)
	if err != nil {
		return "", fmt.Errorf("failed to decode claude response: %w", err)
	}
	return responseRules.ExtractOr(value, ai.FallbackSQL), nil
}

// SendStream sends a streaming Messages request. Text arrives in
// content_block_delta events; every other event type matches no rule and is
// skipped. The stream ends when the server closes the connection.
func (p *Provider) SendStream(ctx context.Context, prompt string, config ai.Config) (*ai.TextStream, error) {
	config = config.Normalized()
	url := p.baseURL + messagesEndpoint
	ai.TraceRequest(ctx, ai.ProviderClaude, url, config, true)

	res, err := utils.DoStream(ctx, p.client, http.MethodPost, url, "", newMessagesRequest(prompt, config, true),
		headers(config.APIKey, utils.HeaderOption{Key: "Accept", Value: "text/event-stream"})...,
	)
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	return ai.NewLineStream(ctx, res.Body, ai.FrameStrict, ai.RuleHandler(deltaRules)), nil
}
