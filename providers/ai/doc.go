// Package ai holds the provider-agnostic pieces shared by every adapter:
// the persisted [Config], the [Adapter] contract, the [TextStream] iterator,
// ordered extraction [Rules] and the line framing used to decode streamed
// bodies ([NewLineStream], [DecodeFrame]).
//
// Adapters live in sub-packages (openai, claude, aliyun, custom). Each one
// shapes a single HTTP request the way its backend expects and reduces the
// reply to plain text by walking its own rule table; nothing here knows about
// a particular wire format.
package ai
