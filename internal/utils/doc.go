// Package utils provides shared low-level helpers used by the provider
// adapters. It covers HTTP request helpers for both one-shot and streaming
// communication with text-generation APIs, the incremental line reader every
// streaming path is built on, lenient JSON decoding, and a small elapsed-time
// timer.
//
// Key entry points: [DoSync] for one-shot round-trips, [DoStream] together
// with [ReadLines] and [StripSSE] for event-stream and NDJSON bodies,
// [ParseJSON] for frame decoding, and [Timer] for measuring latency.
package utils
