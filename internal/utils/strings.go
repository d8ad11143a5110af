package utils

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxStringLength bounds prompts and replies written to logs.
const DefaultMaxStringLength = 500

// PrettyJSON renders object as two-space indented JSON for terminal output.
// A value that cannot be encoded renders as an {"error": ...} object.
func PrettyJSON(object any) string {
	encoded, err := json.MarshalIndent(object, "", "  ")
	if err != nil {
		fallback, _ := json.Marshal(map[string]string{"error": "failed to marshal to JSON: " + err.Error()})
		return string(fallback)
	}
	return string(encoded)
}

// TruncateString keeps at most maxLen bytes of s and notes the original
// length. The cut never splits a UTF-8 sequence, so Chinese prompts stay
// readable in logs. maxLen <= 0 means DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}

	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (truncated, total: %d bytes)", s[:cut], len(s))
}

func TruncateStringDefault(s string) string {
	return TruncateString(s, DefaultMaxStringLength)
}
