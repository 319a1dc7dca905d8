package schema

import "sort"

// Schema maps variable names to their declared types.
type Schema map[string]Type

// ParseDeclarations builds a schema from name → type-string pairs.
// Entries with an empty type are skipped.
func ParseDeclarations(types map[string]string) (Schema, error) {
	out := make(Schema, len(types))
	for name, typeStr := range types {
		if typeStr == "" {
			continue
		}
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, &MismatchError{Variable: name, Expected: typeStr, Reason: err.Error()}
		}
		out[name] = t
	}
	return out, nil
}

// Check validates a single value against the schema. Undeclared names always pass.
func (s Schema) Check(name string, value any) error {
	t, ok := s[name]
	if !ok {
		return nil
	}
	if err := t.Validate(value); err != nil {
		return &MismatchError{Variable: name, Expected: t.Name(), Reason: err.Error()}
	}
	return nil
}

// Validate checks every present value of data that has a declaration.
// Missing values are not an error: variables are filled during the conversation.
func (s Schema) Validate(data map[string]any) error {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := s.Check(name, data[name]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
