package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

const (
	envLogFormat = "SQLCOPILOT_LOG_FORMAT"
	envLogLevel  = "SQLCOPILOT_LOG_LEVEL"
)

// LevelTrace is more verbose than slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// Format is the log line layout.
type Format string

const (
	// FormatCompact is one line per record with attributes as a JSON object:
	// 2026-01-02 15:04:05  INFO message {"key":"value"}
	FormatCompact Format = "compact"

	// FormatJSON is one JSON object per record, for log aggregation.
	FormatJSON Format = "json"
)

// ParseFormat maps a case-insensitive name to a Format, defaulting to compact.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatCompact
}

// FormatFromEnv reads SQLCOPILOT_LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(os.Getenv(envLogFormat))
}

// ParseLevel maps TRACE, DEBUG, INFO, WARN/WARNING and ERROR
// (case-insensitive) to a slog.Level. ok is false for anything else, in which
// case INFO is returned.
func ParseLevel(s string) (level slog.Level, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, true
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LevelFromEnv reads SQLCOPILOT_LOG_LEVEL, defaulting to INFO.
func LevelFromEnv() slog.Level {
	level, _ := ParseLevel(os.Getenv(envLogLevel))
	return level
}

// levelString names a level, folding custom levels into the nearest bucket.
func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
