// Package custom implements ai.Adapter for a user supplied endpoint.
//
// GET requests carry the prompt in a single query parameter; POST requests
// send a small JSON body with the prompt under a configurable key. Replies
// are decoded by content type: one JSON document, an HTML page converted to
// Markdown, or a line-oriented body (SSE, NDJSON or plain text) read
// leniently so unknown backends still produce text.
package custom
