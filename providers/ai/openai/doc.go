// Package openai implements ai.Adapter for the OpenAI chat completions API.
//
// Requests carry a fixed SQL-expert system message followed by the user
// prompt. [New] reads OPENAI_API_BASE_URL so OpenAI-compatible gateways can
// be targeted without code changes.
package openai
