// Package slogobs implements observability.Provider on top of log/slog.
//
// Spans become debug log lines, counters and histograms keep a running value
// in memory and log each update, and the Logger methods map to slog levels
// with an extra TRACE level below DEBUG. Output format and level come from
// SQLCOPILOT_LOG_FORMAT and SQLCOPILOT_LOG_LEVEL unless overridden with
// [WithFormat] and [WithLevel].
package slogobs
