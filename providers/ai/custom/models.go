package custom

import "github.com/leofalp/sqlcopilot/providers/ai"

// acceptAny is sent on GET requests so servers may answer with whatever
// framing they support.
const acceptAny = "text/event-stream, application/x-ndjson, application/json;q=0.9, */*;q=0.8"

// purposeGenerateSQL tells multi-purpose internal gateways what to do.
const purposeGenerateSQL = "generate_sql"

// newPostBody builds {<key>: prompt, purpose, max_tokens, temperature[, stream]}.
func newPostBody(prompt string, config ai.Config, stream bool) map[string]any {
	body := map[string]any{
		config.PromptParamKey: prompt,
		"purpose":             purposeGenerateSQL,
		"max_tokens":          config.MaxTokens,
		"temperature":         config.Temperature,
	}
	if stream {
		body["stream"] = true
	}
	return body
}

var (
	// responseRules apply to a reply that is a single JSON document.
	responseRules = ai.MustRules(
		"sql",
		"text",
		"content",
		"result",
		"choices[0].text",
		"choices[0].message.content",
	)

	// lineRules apply to every line of a line-oriented reply.
	lineRules = ai.MustRules(
		"response",
		"sql",
		"text",
		"content",
		"delta",
		"choices[0].delta.content",
		"choices[0].text",
	)
)
