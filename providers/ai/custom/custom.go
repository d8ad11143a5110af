package custom

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/sqlcopilot/internal/utils"
	"github.com/leofalp/sqlcopilot/providers/ai"
)

// Provider calls the endpoint stored in the configuration.
type Provider struct {
	client *http.Client
}

var _ ai.Adapter = (*Provider)(nil)

func New() *Provider {
	return &Provider{client: &http.Client{}}
}

// WithHttpClient replaces the HTTP client used for API calls.
func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Adapter {
	p.client = httpClient
	return p
}

func (p *Provider) Name() ai.ProviderName {
	return ai.ProviderCustom
}

// request describes the single outbound call for a configuration.
type request struct {
	method  string
	url     string
	body    any
	headers []utils.HeaderOption
}

func newRequest(prompt string, config ai.Config, stream bool) (request, error) {
	if strings.TrimSpace(config.Endpoint) == "" {
		return request{}, ai.ErrEndpointMissing
	}

	if config.RequestMethod == http.MethodGet {
		endpoint, err := url.Parse(config.Endpoint)
		if err != nil {
			return request{}, fmt.Errorf("invalid custom endpoint %q: %w", config.Endpoint, err)
		}
		query := endpoint.Query()
		query.Set(config.PromptParamKey, prompt)
		endpoint.RawQuery = query.Encode()

		return request{
			method:  http.MethodGet,
			url:     endpoint.String(),
			headers: []utils.HeaderOption{{Key: "Accept", Value: acceptAny}},
		}, nil
	}

	req := request{
		method: http.MethodPost,
		url:    config.Endpoint,
		body:   newPostBody(prompt, config, stream),
	}
	if stream {
		req.headers = []utils.HeaderOption{{Key: "Accept", Value: acceptAny}}
	}
	return req, nil
}

// SendOnce calls the endpoint and decodes the reply by content type.
func (p *Provider) SendOnce(ctx context.Context, prompt string, config ai.Config) (string, error) {
	config = config.Normalized()
	req, err := newRequest(prompt, config, false)
	if err != nil {
		return "", err
	}
	ai.TraceRequest(ctx, ai.ProviderCustom, config.Endpoint, config, false)

	res, body, err := utils.DoSync(ctx, p.client, req.method, req.url, config.APIKey, req.body, req.headers...)
	if err != nil {
		return "", fmt.Errorf("custom API error: %w", err)
	}

	return decodeReply(ctx, res.Header.Get("Content-Type"), body)
}

// decodeReply picks the decoding path from the content type:
//   - JSON (not NDJSON): parsed once, ordered rules, fallback literal
//   - HTML: converted to Markdown
//   - anything else, or JSON that fails to parse: the whole body is tried as
//     one JSON object first, then lenient line accumulation
func decodeReply(ctx context.Context, contentType string, body []byte) (string, error) {
	contentType = strings.ToLower(contentType)

	switch {
	case strings.Contains(contentType, "json") && !strings.Contains(contentType, "ndjson"):
		if value, err := utils.ParseJSON(string(body), false); err == nil {
			return responseRules.ExtractOr(value, ai.FallbackSQL), nil
		}
	case strings.Contains(contentType, "text/html"):
		markdown, err := htmltomarkdown.ConvertString(string(body))
		if err == nil && strings.TrimSpace(markdown) != "" {
			return strings.TrimSpace(markdown), nil
		}
	}

	// A pretty-printed document split into lines would be garbled.
	if value, err := utils.ParseJSON(string(body), false); err == nil {
		if _, isObject := value.(map[string]any); isObject {
			if text, ok := responseRules.Extract(value); ok {
				return text, nil
			}
		}
	}

	text, err := ai.CollectLines(ctx, body, ai.FrameLenient, ai.RuleHandler(lineRules))
	if err != nil {
		return "", err
	}
	if text == "" {
		return ai.FallbackSQL, nil
	}
	return text, nil
}

// SendStream calls the endpoint and forwards every line leniently: JSON
// frames through the line rules, anything else verbatim.
func (p *Provider) SendStream(ctx context.Context, prompt string, config ai.Config) (*ai.TextStream, error) {
	config = config.Normalized()
	req, err := newRequest(prompt, config, true)
	if err != nil {
		return nil, err
	}
	ai.TraceRequest(ctx, ai.ProviderCustom, config.Endpoint, config, true)

	res, err := utils.DoStream(ctx, p.client, req.method, req.url, config.APIKey, req.body, req.headers...)
	if err != nil {
		return nil, fmt.Errorf("custom API error: %w", err)
	}

	return ai.NewLineStream(ctx, res.Body, ai.FrameLenient, ai.RuleHandler(lineRules)), nil
}
