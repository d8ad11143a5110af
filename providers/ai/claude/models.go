package claude

import "github.com/leofalp/sqlcopilot/providers/ai"

const instruction = "You are a professional SQL expert. Generate an accurate and efficient SQL query from the following description: "

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesRequest is the Messages API body. max_tokens is mandatory there.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
	Stream    bool      `json:"stream,omitempty"`
}

func newMessagesRequest(prompt string, config ai.Config, stream bool) messagesRequest {
	return messagesRequest{
		Model:     config.Model,
		MaxTokens: config.MaxTokens,
		Messages:  []message{{Role: "user", Content: instruction + prompt}},
		Stream:    stream,
	}
}

var (
	responseRules = ai.MustRules(
		"content[0].text",
		"sql",
		"text",
		"content",
		"result",
		"choices[0].message.content",
	)

	// content_block_delta events carry delta.text; some proxies rename it.
	deltaRules = ai.MustRules(
		"delta.text",
		"delta.content",
		"response",
		"sql",
		"text",
		"content",
		"choices[0].delta.content",
		"choices[0].text",
	)
)
