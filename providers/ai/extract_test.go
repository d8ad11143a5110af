package ai

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		t.Fatalf("invalid fixture %q: %v", raw, err)
	}
	return value
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		expr    string
		want    []any
		wantErr bool
	}{
		{expr: "sql", want: []any{"sql"}},
		{expr: "choices[0].message.content", want: []any{"choices", 0, "message", "content"}},
		{expr: "output.choices[1].delta.content", want: []any{"output", "choices", 1, "delta", "content"}},
		{expr: "matrix[0][2]", want: []any{"matrix", 0, 2}},
		{expr: "", wantErr: true},
		{expr: "a..b", wantErr: true},
		{expr: "choices[x]", wantErr: true},
		{expr: "choices[0", wantErr: true},
		{expr: "choices[-1]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rule, err := ParseRule(tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rule.segments) != len(tt.want) {
				t.Fatalf("segments = %v, want %v", rule.segments, tt.want)
			}
			for i := range tt.want {
				if rule.segments[i] != tt.want[i] {
					t.Errorf("segment %d = %v, want %v", i, rule.segments[i], tt.want[i])
				}
			}
			if rule.String() != tt.expr {
				t.Errorf("String() = %q, want %q", rule.String(), tt.expr)
			}
		})
	}
}

func TestRulesExtractOrder(t *testing.T) {
	rules := MustRules("choices[0].message.content", "choices[0].text", "sql", "text", "content", "result")

	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{"first rule wins", `{"choices":[{"message":{"content":"SELECT 1"},"text":"other"}],"sql":"x"}`, "SELECT 1", true},
		{"second rule", `{"choices":[{"text":"SELECT 2"}]}`, "SELECT 2", true},
		{"plain field", `{"sql":"SELECT * FROM users"}`, "SELECT * FROM users", true},
		{"empty string skipped", `{"sql":"","text":"SELECT 3"}`, "SELECT 3", true},
		{"non string skipped", `{"sql":42,"result":"SELECT 4"}`, "SELECT 4", true},
		{"out of range index", `{"choices":[],"content":"SELECT 5"}`, "SELECT 5", true},
		{"wrong container type", `{"choices":{"0":{"text":"no"}}}`, "", false},
		{"no match", `{"unexpected":"value"}`, "", false},
		{"array root", `["SELECT 1"]`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rules.Extract(decode(t, tt.body))
			if got != tt.want || ok != tt.ok {
				t.Errorf("Extract() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRulesExtractOr(t *testing.T) {
	rules := MustRules("sql")

	if got := rules.ExtractOr(decode(t, `{"other":"x"}`), FallbackSQL); got != FallbackSQL {
		t.Errorf("expected fallback, got %q", got)
	}
	if got := rules.ExtractOr(decode(t, `{"sql":"SELECT 1"}`), FallbackSQL); got != "SELECT 1" {
		t.Errorf("expected extracted text, got %q", got)
	}
}

func TestMustRulesPanicsOnBadExpression(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for malformed rule")
		}
	}()
	MustRules("sql", "choices[")
}

func TestRulesExprs(t *testing.T) {
	exprs := MustRules("a", "b[0].c").Exprs()
	if len(exprs) != 2 || exprs[0] != "a" || exprs[1] != "b[0].c" {
		t.Errorf("unexpected exprs %v", exprs)
	}
}
