package ai

import "strings"

/*
	##### PROVIDER CONFIGURATION #####
*/

// ProviderName identifies which adapter serves a configuration.
type ProviderName string

const (
	ProviderCustom ProviderName = "custom" // User supplied endpoint, GET or POST
	ProviderAliyun ProviderName = "aliyun" // Aliyun DashScope text generation (translation)
	ProviderOpenAI ProviderName = "openai" // OpenAI chat completions
	ProviderClaude ProviderName = "claude" // Anthropic messages
)

// Providers lists every supported provider in display order.
var Providers = []ProviderName{ProviderCustom, ProviderAliyun, ProviderOpenAI, ProviderClaude}

// Config is the persisted provider record. JSON keys match the stored blob so
// records written by older clients load unchanged.
type Config struct {
	Endpoint       string       `json:"endpoint"                 validate:"required_if=Provider custom,omitempty,url"`
	APIKey         string       `json:"apiKey,omitempty"`
	Provider       ProviderName `json:"provider"                 validate:"required,oneof=custom aliyun openai claude"`
	Model          string       `json:"model,omitempty"`
	MaxTokens      int          `json:"maxTokens"                validate:"gt=0"`
	Temperature    float64      `json:"temperature"              validate:"gte=0,lte=2"`
	RequestMethod  string       `json:"requestMethod,omitempty"  validate:"omitempty,oneof=GET POST"`
	PromptParamKey string       `json:"promptParamKey,omitempty"`
	SourceLang     string       `json:"sourceLang,omitempty"`
	TargetLang     string       `json:"targetLang,omitempty"`
}

const (
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.3
	DefaultMethod      = "POST"
	DefaultSourceLang  = "Chinese"
	DefaultTargetLang  = "English"

	// DefaultGetParamKey and DefaultPostParamKey are the prompt parameter
	// names used when none is configured.
	DefaultGetParamKey  = "q"
	DefaultPostParamKey = "prompt"
)

// DefaultModel returns the model used when a configuration leaves it empty.
// The custom provider has no default.
func DefaultModel(provider ProviderName) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-3.5-turbo"
	case ProviderClaude:
		return "claude-3-sonnet-20240229"
	case ProviderAliyun:
		return "qwen-mt-turbo"
	default:
		return ""
	}
}

// Normalized returns a copy of c with every unset optional field replaced by
// its documented default. Zero MaxTokens or Temperature count as unset.
// The result always has a non-empty Provider.
func (c Config) Normalized() Config {
	if c.Provider == "" {
		c.Provider = ProviderCustom
	}
	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	c.RequestMethod = strings.ToUpper(strings.TrimSpace(c.RequestMethod))
	if c.RequestMethod == "" {
		c.RequestMethod = DefaultMethod
	}
	c.PromptParamKey = strings.TrimSpace(c.PromptParamKey)
	if c.PromptParamKey == "" {
		c.PromptParamKey = DefaultPromptParamKey(c.RequestMethod)
	}
	if c.SourceLang == "" {
		c.SourceLang = DefaultSourceLang
	}
	if c.TargetLang == "" {
		c.TargetLang = DefaultTargetLang
	}
	return c
}

// DefaultPromptParamKey returns "q" for GET and "prompt" for every other method.
func DefaultPromptParamKey(method string) string {
	if strings.EqualFold(method, "GET") {
		return DefaultGetParamKey
	}
	return DefaultPostParamKey
}

// IsTranslation reports whether the configured provider translates text
// rather than generating SQL.
func (c Config) IsTranslation() bool {
	return c.Provider == ProviderAliyun
}
