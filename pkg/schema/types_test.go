package schema

import "testing"

func TestScalarTypes(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
	}{
		{String(), "hello", false},
		{String(), 42, true},
		{String(), nil, true},
		{Int(), 42, false},
		{Int(), int64(42), false},
		{Int(), float64(42), false},  // whole number from JSON
		{Int(), float64(42.5), true}, // not whole
		{Int(), "42", true},
		{Float(), 3.14, false},
		{Float(), 3, false},
		{Float(), "3.14", true},
		{Bool(), true, false},
		{Bool(), "true", true},
		{Object(), map[string]any{"a": 1}, false},
		{Object(), []any{1}, true},
		{Object(), nil, true},
		{Any(), nil, false},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Validate(%v) error = %v, wantErr %v", tt.typ.Name(), tt.value, err, tt.wantErr)
		}
	}
}

func TestSliceType(t *testing.T) {
	typ := Slice(String())
	if typ.Name() != "[string]" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "[string]")
	}
	if err := typ.Validate([]any{"a", "b"}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := typ.Validate([]any{"a", 1}); err == nil {
		t.Error("Validate() should reject mixed elements")
	}
	if err := typ.Validate("a"); err == nil {
		t.Error("Validate() should reject non-slice")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"string", "string", false},
		{"text", "string", false},
		{"integer", "int", false},
		{"number", "float", false},
		{"boolean", "bool", false},
		{"map", "object", false},
		{"", "any", false},
		{"[int]", "[int]", false},
		{"[[bool]]", "[[bool]]", false},
		{"uuid", "", true},
		{"[uuid]", "", true},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got.Name() != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.in, got.Name(), tt.want)
		}
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{"x", "string"},
		{true, "bool"},
		{7, "int"},
		{float64(7), "int"},
		{7.5, "float"},
		{map[string]any{}, "object"},
		{[]string{"a"}, "array"},
		{nil, "null"},
	}

	for _, tt := range tests {
		if got := Infer(tt.value); got != tt.want {
			t.Errorf("Infer(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
