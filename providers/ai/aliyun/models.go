package aliyun

import "github.com/leofalp/sqlcopilot/providers/ai"

type message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type input struct {
	Messages []message `json:"messages"`
}

type translationOptions struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type parameters struct {
	TranslationOptions translationOptions `json:"translation_options"`
}

type generationRequest struct {
	Model      string     `json:"model"`
	Input      input      `json:"input"`
	Parameters parameters `json:"parameters"`
}

func newGenerationRequest(prompt string, config ai.Config) generationRequest {
	return generationRequest{
		Model: config.Model,
		Input: input{Messages: []message{{Content: prompt, Role: "user"}}},
		Parameters: parameters{TranslationOptions: translationOptions{
			SourceLang: config.SourceLang,
			TargetLang: config.TargetLang,
		}},
	}
}

var (
	responseRules = ai.MustRules(
		"output.choices[0].message.content",
		"output.text",
		"sql",
		"text",
		"content",
		"result",
	)

	// deltaRules match incremental framing.
	deltaRules = ai.MustRules("output.choices[0].delta.content")

	// fullRules match cumulative framing, where each frame repeats the text
	// generated so far.
	fullRules = ai.MustRules("output.choices[0].message.content", "output.text")
)
