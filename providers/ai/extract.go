package ai

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// FallbackSQL is returned when a SQL response matched no extraction rule.
	FallbackSQL = "Unable to generate SQL query"

	// FallbackTranslation is returned when a translation response matched no
	// extraction rule.
	FallbackTranslation = "Unable to generate translation"
)

// Rule is one extraction path into a decoded JSON value, written in the
// familiar dotted form: "sql", "choices[0].message.content".
// Name segments index objects and bracketed integers index arrays.
type Rule struct {
	expr     string
	segments []any
}

// ParseRule compiles a dotted path expression.
func ParseRule(expr string) (Rule, error) {
	if strings.TrimSpace(expr) == "" {
		return Rule{}, fmt.Errorf("empty rule expression")
	}

	var segments []any
	for _, part := range strings.Split(expr, ".") {
		name, rest, _ := strings.Cut(part, "[")
		if name == "" && rest == "" {
			return Rule{}, fmt.Errorf("rule %q: empty segment", expr)
		}
		if name != "" {
			segments = append(segments, name)
		}
		for rest != "" {
			indexText, after, found := strings.Cut(rest, "]")
			if !found {
				return Rule{}, fmt.Errorf("rule %q: unterminated index", expr)
			}
			index, err := strconv.Atoi(indexText)
			if err != nil || index < 0 {
				return Rule{}, fmt.Errorf("rule %q: invalid index %q", expr, indexText)
			}
			segments = append(segments, index)
			rest = strings.TrimPrefix(after, "[")
		}
	}

	return Rule{expr: expr, segments: segments}, nil
}

// String returns the expression the rule was compiled from.
func (r Rule) String() string {
	return r.expr
}

// Lookup walks value along the rule and returns the string found there.
// ok is false when the path is missing, the target is not a string, or the
// string is empty.
func (r Rule) Lookup(value any) (text string, ok bool) {
	current := value
	for _, segment := range r.segments {
		switch key := segment.(type) {
		case string:
			object, isObject := current.(map[string]any)
			if !isObject {
				return "", false
			}
			current, ok = object[key]
			if !ok {
				return "", false
			}
		case int:
			array, isArray := current.([]any)
			if !isArray || key >= len(array) {
				return "", false
			}
			current = array[key]
		}
	}

	text, ok = current.(string)
	return text, ok && text != ""
}

// Rules is an ordered extraction contract: earlier rules win.
type Rules []Rule

// MustRules compiles expressions in order and panics on a malformed one. It
// is meant for package-level rule tables.
func MustRules(exprs ...string) Rules {
	rules := make(Rules, 0, len(exprs))
	for _, expr := range exprs {
		rule, err := ParseRule(expr)
		if err != nil {
			panic(err)
		}
		rules = append(rules, rule)
	}
	return rules
}

// Extract returns the first non-empty string matched by the rules, in order.
func (rules Rules) Extract(value any) (string, bool) {
	for _, rule := range rules {
		if text, ok := rule.Lookup(value); ok {
			return text, true
		}
	}
	return "", false
}

// ExtractOr is Extract with a literal fallback for responses that match
// nothing, so the user always sees some text.
func (rules Rules) ExtractOr(value any, fallback string) string {
	if text, ok := rules.Extract(value); ok {
		return text
	}
	return fallback
}

// Exprs returns the rule expressions in precedence order.
func (rules Rules) Exprs() []string {
	exprs := make([]string, len(rules))
	for i, rule := range rules {
		exprs[i] = rule.expr
	}
	return exprs
}
