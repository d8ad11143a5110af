package openai

import "github.com/leofalp/sqlcopilot/providers/ai"

// systemPrompt frames every request as SQL generation.
const systemPrompt = "You are a professional SQL expert. Generate an accurate and efficient SQL query from the user's description."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

func newChatRequest(prompt string, config ai.Config, stream bool) chatRequest {
	return chatRequest{
		Model: config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   config.MaxTokens,
		Temperature: config.Temperature,
		Stream:      stream,
	}
}

var (
	// responseRules are tried in order against a complete chat completion.
	responseRules = ai.MustRules(
		"choices[0].message.content",
		"choices[0].text",
		"sql",
		"text",
		"content",
		"result",
	)

	// deltaRules are tried in order against each streamed frame.
	deltaRules = ai.MustRules(
		"choices[0].delta.content",
		"response",
		"sql",
		"text",
		"content",
		"delta",
		"choices[0].text",
	)
)
