package httputil

import (
	"encoding/json"
	"testing"
)

func TestOptionalString_UnmarshalJSON(t *testing.T) {
	type body struct {
		Icon OptionalString `json:"icon"`
	}

	tests := []struct {
		name        string
		input       string
		wantPresent bool
		wantValue   *string
	}{
		{name: "absent", input: `{}`, wantPresent: false},
		{name: "null", input: `{"icon": null}`, wantPresent: true},
		{name: "empty string", input: `{"icon": ""}`, wantPresent: true, wantValue: strPtr("")},
		{name: "value", input: `{"icon": "📁"}`, wantPresent: true, wantValue: strPtr("📁")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b body
			if err := json.Unmarshal([]byte(tt.input), &b); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if b.Icon.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", b.Icon.Present, tt.wantPresent)
			}
			switch {
			case tt.wantValue == nil && b.Icon.Value != nil:
				t.Errorf("Value = %q, want nil", *b.Icon.Value)
			case tt.wantValue != nil && (b.Icon.Value == nil || *b.Icon.Value != *tt.wantValue):
				t.Errorf("Value = %v, want %q", b.Icon.Value, *tt.wantValue)
			}
		})
	}
}

func TestOptionalString_RejectsNonString(t *testing.T) {
	var o OptionalString
	if err := json.Unmarshal([]byte(`42`), &o); err == nil {
		t.Fatal("expected error for non-string value")
	}
}

func strPtr(s string) *string { return &s }
