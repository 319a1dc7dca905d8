// Package schema provides the small type system used by variable declarations.
//
// Scripts may declare a type for a variable ("string", "int", "float", "bool",
// "object", "any" or a slice such as "[string]"). The engine uses it to label
// stored values and to flag writes that do not match the declaration:
//
//	t, err := schema.ParseType("[string]")
//	if err != nil {
//	    // unsupported declaration
//	}
//	if err := t.Validate([]any{"a", "b"}); err != nil {
//	    // mismatch
//	}
//
// Values coming from JSON decoding (float64, []any, map[string]any) are accepted
// by the matching types. Infer returns the type name a value would be stored with.
package schema
