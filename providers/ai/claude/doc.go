// Package claude implements ai.Adapter for Anthropic's Messages API.
//
// Authentication uses the x-api-key header with a pinned anthropic-version.
// The prompt is sent as one user message prefixed with the SQL-expert
// instruction, since the request carries no system field.
package claude
