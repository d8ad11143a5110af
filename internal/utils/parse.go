package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseJSON decodes content into a generic JSON value (map[string]any,
// []any, string, float64, bool or nil).
//
// When repair is true and strict decoding fails, content that looks like a
// JSON object or array is passed through jsonrepair and decoded again. Plain
// text is never repaired, so a lenient caller can still tell prose from a
// damaged frame.
func ParseJSON(content string, repair bool) (any, error) {
	var value any
	err := json.Unmarshal([]byte(content), &value)
	if err == nil {
		return value, nil
	}
	if !repair || !looksLikeJSONContainer(content) {
		return nil, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return nil, fmt.Errorf("failed to repair JSON: unmarshal error: %w, repair error: %v", err, repairErr)
	}

	var repairedValue any
	if err = json.Unmarshal([]byte(repaired), &repairedValue); err != nil {
		return nil, fmt.Errorf("failed to unmarshal repaired JSON: %w (original content: %s)", err, TruncateStringDefault(content))
	}
	return repairedValue, nil
}

func looksLikeJSONContainer(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
