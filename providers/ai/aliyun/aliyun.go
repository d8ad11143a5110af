package aliyun

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/leofalp/sqlcopilot/internal/utils"
	"github.com/leofalp/sqlcopilot/providers/ai"
)

const (
	defaultBaseURL     = "https://dashscope.aliyuncs.com/api/v1"
	generationEndpoint = "/services/aigc/text-generation/generation"
)

// Provider talks to the DashScope text generation endpoint.
type Provider struct {
	baseURL string
	client  *http.Client
}

var (
	_ ai.Adapter      = (*Provider)(nil)
	_ ai.Configurable = (*Provider)(nil)
)

// New returns a Provider for DASHSCOPE_API_BASE_URL, defaulting to the public
// DashScope API.
func New() *Provider {
	baseURL := os.Getenv("DASHSCOPE_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (p *Provider) WithBaseURL(baseURL string) ai.Adapter {
	p.baseURL = baseURL
	return p
}

func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Adapter {
	p.client = httpClient
	return p
}

func (p *Provider) Name() ai.ProviderName {
	return ai.ProviderAliyun
}

// SendOnce requests a translation without the SSE header.
func (p *Provider) SendOnce(ctx context.Context, prompt string, config ai.Config) (string, error) {
	config = config.Normalized()
	url := p.baseURL + generationEndpoint
	ai.TraceRequest(ctx, ai.ProviderAliyun, url, config, false)

	_, body, err := utils.DoSync(ctx, p.client, http.MethodPost, url, config.APIKey, newGenerationRequest(prompt, config))
	if err != nil {
		return "", fmt.Errorf("aliyun translation API error: %w", err)
	}

	value, err := utils.ParseJSON(string(body), false)
	if err != nil {
		return "", fmt.Errorf("failed to decode aliyun response: %w", err)
	}
	return responseRules.ExtractOr(value, ai.FallbackTranslation), nil
}

// SendStream enables DashScope SSE with the X-DashScope-SSE header. The body
// carries no stream flag.
func (p *Provider) SendStream(ctx context.Context, prompt string, config ai.Config) (*ai.TextStream, error) {
	config = config.Normalized()
	url := p.baseURL + generationEndpoint
	ai.TraceRequest(ctx, ai.ProviderAliyun, url, config, true)

	res, err := utils.DoStream(ctx, p.client, http.MethodPost, url, config.APIKey, newGenerationRequest(prompt, config),
		utils.HeaderOption{Key: "X-DashScope-SSE", Value: "enable"},
		utils.HeaderOption{Key: "Accept", Value: "text/event-stream"},
	)
	if err != nil {
		return nil, fmt.Errorf("aliyun translation API error: %w", err)
	}

	return ai.NewLineStream(ctx, res.Body, ai.FrameStrict, newFrameHandler()), nil
}

// newFrameHandler prefers delta framing and falls back to cumulative framing,
// sharing one deduper across the whole stream.
func newFrameHandler() ai.FrameHandler {
	d := &deduper{}
	return func(frame ai.Frame) string {
		if text, ok := deltaRules.Extract(frame.Value); ok {
			return d.delta(text)
		}
		if text, ok := fullRules.Extract(frame.Value); ok {
			return d.full(text)
		}
		return ""
	}
}
