package utils

import "testing"

func TestParseJSON_ValidObject(t *testing.T) {
	value, err := ParseJSON(`{"sql":"SELECT 1"}`, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	object, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", value)
	}
	if object["sql"] != "SELECT 1" {
		t.Errorf("expected sql=SELECT 1, got %v", object["sql"])
	}
}

// TestParseJSON_StrictRejectsBrokenObject verifies that repair only happens
// when the caller asks for it.
func TestParseJSON_StrictRejectsBrokenObject(t *testing.T) {
	if _, err := ParseJSON(`{text: 'abc'}`, false); err == nil {
		t.Error("expected strict parse to fail on single-quoted object")
	}
}

func TestParseJSON_RepairsBrokenObject(t *testing.T) {
	value, err := ParseJSON(`{text: 'abc'}`, true)
	if err != nil {
		t.Fatalf("expected repaired parse to succeed, got %v", err)
	}
	object, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", value)
	}
	if object["text"] != "abc" {
		t.Errorf("expected text=abc, got %v", object["text"])
	}
}

// TestParseJSON_PlainTextNotRepaired verifies that prose stays an error even
// in repair mode, so lenient callers can forward it verbatim.
func TestParseJSON_PlainTextNotRepaired(t *testing.T) {
	if _, err := ParseJSON("SELECT * FROM users", true); err == nil {
		t.Error("expected plain text to be rejected")
	}
}
