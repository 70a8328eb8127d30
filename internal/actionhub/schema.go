// Package actionhub is the name-to-handler action registry (spec.md
// §4.7): ExecuteAction resolves a dotted "service.action" name, runs
// its declared input schema against the caller's data (from_config
// precedence, optional-union empty-string coercion, advisory
// constraints on optional fields), and invokes the registered handler,
// returning the universal success/error envelope (pkg/errors.Envelope).
package actionhub

// FieldType is one of an action input field's declared value shapes.
// A field with more than one Type is a union; per spec.md §4.7 step 5,
// union-typed fields skip constraint enforcement entirely.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeList   FieldType = "list"
	TypeMap    FieldType = "map"
	TypeNull   FieldType = "null"
)

// FieldSchema is one property's validation rule, the shape spec.md
// §4.7 calls "{type, optional, min_length, max_length, min, max, enum,
// pattern, from_config}".
type FieldSchema struct {
	Types      []FieldType
	Optional   bool
	MinLength  *int
	MaxLength  *int
	Min        *float64
	Max        *float64
	Enum       []any
	Pattern    string
	FromConfig bool
}

// IsUnion reports whether the field declares more than one member type.
func (f FieldSchema) IsUnion() bool { return len(f.Types) > 1 }

// AcceptsNull reports whether TypeNull is one of the field's member
// types -- the precondition for empty-string-to-nil coercion on a
// non-string union field (spec.md §4.7 step 4).
func (f FieldSchema) AcceptsNull() bool {
	for _, t := range f.Types {
		if t == TypeNull {
			return true
		}
	}
	return false
}

// IsStringTyped reports whether string is the field's sole declared
// type -- the case that keeps an empty string as "" instead of nil.
func (f FieldSchema) IsStringTyped() bool {
	return len(f.Types) == 1 && f.Types[0] == TypeString
}

// Schema is one action's full input contract: property name -> rule.
type Schema struct {
	Properties map[string]FieldSchema
}
