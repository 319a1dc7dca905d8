package schema

import (
	"fmt"
	"reflect"
)

// Type defines the contract for variable type checks.
type Type interface {
	// Name returns the declaration name of the type (e.g., "string", "[int]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

type intType struct{}

func (intType) Name() string { return "int" }

func (intType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// JSON numbers decode as float64; whole numbers are accepted.
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

type objectType struct{}

func (objectType) Name() string { return "object" }

func (objectType) Validate(value any) error {
	if value == nil || reflect.ValueOf(value).Kind() != reflect.Map {
		return fmt.Errorf("expected object, got %T", value)
	}
	return nil
}

type anyType struct{}

func (anyType) Name() string         { return "any" }
func (anyType) Validate(_ any) error { return nil }

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected slice, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// String creates a string type.
func String() Type { return stringType{} }

// Int creates an integer type.
func Int() Type { return intType{} }

// Float creates a float type.
func Float() Type { return floatType{} }

// Bool creates a boolean type.
func Bool() Type { return boolType{} }

// Object creates a map type.
func Object() Type { return objectType{} }

// Any accepts every value.
func Any() Type { return anyType{} }

// Slice creates a slice type for elements of the given type.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// ParseType converts a declaration string into a Type.
// An empty string means "any".
func ParseType(typeStr string) (Type, error) {
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elem, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}

	switch typeStr {
	case "string", "text":
		return String(), nil
	case "int", "integer":
		return Int(), nil
	case "float", "number":
		return Float(), nil
	case "bool", "boolean":
		return Bool(), nil
	case "object", "map":
		return Object(), nil
	case "", "any":
		return Any(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// Infer returns the type name used to label a stored value.
func Infer(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32:
		return "float"
	case float64:
		if v == float64(int64(v)) {
			return "int"
		}
		return "float"
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}
