package schema

import "testing"

func TestSchemaValidate_Success(t *testing.T) {
	s := Schema{
		"name":  String(),
		"age":   Int(),
		"tags":  Slice(String()),
		"agree": Bool(),
	}

	data := map[string]any{
		"name":       "Ana",
		"age":        float64(31),
		"tags":       []any{"a"},
		"undeclared": 12,
	}

	if err := s.Validate(data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestSchemaValidate_MissingIsNotAnError(t *testing.T) {
	s := Schema{"name": String()}
	if err := s.Validate(map[string]any{}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestSchemaValidate_Mismatches(t *testing.T) {
	s := Schema{"name": String(), "age": Int()}

	err := s.Validate(map[string]any{"name": 1, "age": "old"})
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	got := Mismatches(err)
	if len(got) != 2 {
		t.Fatalf("Mismatches() = %d, want 2", len(got))
	}
	// Sorted by variable name.
	if got[0].Variable != "age" || got[0].Expected != "int" {
		t.Errorf("first mismatch = %+v", got[0])
	}
	if got[1].Variable != "name" {
		t.Errorf("second mismatch = %+v", got[1])
	}
}

func TestSchemaCheck(t *testing.T) {
	s := Schema{"age": Int()}
	if err := s.Check("age", 3); err != nil {
		t.Errorf("Check() error = %v", err)
	}
	if err := s.Check("other", "x"); err != nil {
		t.Errorf("Check() undeclared error = %v", err)
	}
	if len(Mismatches(s.Check("age", "x"))) != 1 {
		t.Error("Check() should report a mismatch")
	}
}

func TestParseDeclarations(t *testing.T) {
	s, err := ParseDeclarations(map[string]string{"a": "int", "b": "", "c": "[string]"})
	if err != nil {
		t.Fatalf("ParseDeclarations() error = %v", err)
	}
	if len(s) != 2 {
		t.Errorf("len = %d, want 2", len(s))
	}

	if _, err := ParseDeclarations(map[string]string{"a": "uuid"}); err == nil {
		t.Error("ParseDeclarations() should reject unsupported types")
	}
}
