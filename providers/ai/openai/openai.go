package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/leofalp/sqlcopilot/internal/utils"
	"github.com/leofalp/sqlcopilot/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// Provider talks to the chat completions endpoint.
type Provider struct {
	baseURL string
	client  *http.Client
}

var (
	_ ai.Adapter      = (*Provider)(nil)
	_ ai.Configurable = (*Provider)(nil)
)

// New returns a Provider for OPENAI_API_BASE_URL, or the public API when unset.
func New() *Provider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithBaseURL sets the base URL for the API
func (p *Provider) WithBaseURL(baseURL string) ai.Adapter {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Adapter {
	p.client = httpClient
	return p
}

func (p *Provider) Name() ai.ProviderName {
	return ai.ProviderOpenAI
}

// SendOnce posts a non-streaming chat completion and extracts the answer.
func (p *Provider) SendOnce(ctx context.Context, prompt string, config ai.Config) (string, error) {
	config = config.Normalized()
	url := p.baseURL + chatCompletionsEndpoint
	ai.TraceRequest(ctx, ai.ProviderOpenAI, url, config, false)

	_, body, err := utils.DoSync(ctx, p.client, http.MethodPost, url, config.APIKey, newChatRequest(prompt, config, false))
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	value, err := utils.ParseJSON(string(body), false)
	if err != nil {
		return "", fmt.Errorf("failed to decode openai response: %w", err)
	}
	return responseRules.ExtractOr(value, ai.FallbackSQL), nil
}

// SendStream posts a chat completion with stream enabled. Frames are
// "data: {...}" lines terminated by "data: [DONE]".
func (p *Provider) SendStream(ctx context.Context, prompt string, config ai.Config) (*ai.TextStream, error) {
	config = config.Normalized()
	url := p.baseURL + chatCompletionsEndpoint
	ai.TraceRequest(ctx, ai.ProviderOpenAI, url, config, true)

	res, err := utils.DoStream(ctx, p.client, http.MethodPost, url, config.APIKey, newChatRequest(prompt, config, true),
		utils.HeaderOption{Key: "Accept", Value: "text/event-stream"},
	)
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	return ai.NewLineStream(ctx, res.Body, ai.FrameStrict, ai.RuleHandler(deltaRules)), nil
}
