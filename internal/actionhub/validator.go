package actionhub

import (
	"fmt"
	"regexp"

	"github.com/vensus137/coreness-go/pkg/errors"
)

// Validate runs spec.md §4.7 steps 2-5 against data, returning a new
// map with from_config fills and empty-string coercions applied. It
// never mutates the caller's data.
func Validate(op string, schema Schema, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}

	cfg, _ := data["_config"].(map[string]any)

	for name, field := range schema.Properties {
		v, present := out[name]

		// step 3: from_config fill, data.<field> wins over data._config.<field>
		if !present && field.FromConfig && cfg != nil {
			if cv, ok := cfg[name]; ok {
				v, present = cv, true
				out[name] = cv
			}
		}

		if !present {
			if field.Optional {
				continue
			}
			return nil, errors.WithCode(op, errors.CodeValidation,
				fmt.Sprintf("missing required field %q", name))
		}

		// step 4: optional union empty-string -> nil, non-string target only
		if s, ok := v.(string); ok && s == "" && field.Optional && field.IsUnion() &&
			field.AcceptsNull() && !field.IsStringTyped() {
			out[name] = nil
			continue
		}

		// step 5: union types skip constraint enforcement entirely
		if field.IsUnion() {
			continue
		}

		if err := checkConstraints(op, name, field, out[name]); err != nil {
			if field.Optional {
				// advisory on optional fields: the violation is dropped
				// without logging and never fails validation.
				continue
			}
			return nil, err
		}
	}

	return out, nil
}

func checkConstraints(op, name string, field FieldSchema, v any) error {
	fail := func(msg string) error {
		return errors.WithCode(op, errors.CodeValidation, fmt.Sprintf("field %q %s", name, msg))
	}

	if s, ok := v.(string); ok {
		if field.MinLength != nil && len(s) < *field.MinLength {
			return fail(fmt.Sprintf("shorter than min_length %d", *field.MinLength))
		}
		if field.MaxLength != nil && len(s) > *field.MaxLength {
			return fail(fmt.Sprintf("longer than max_length %d", *field.MaxLength))
		}
		if field.Pattern != "" {
			re, err := regexp.Compile(field.Pattern)
			if err == nil && !re.MatchString(s) {
				return fail("does not match pattern")
			}
		}
	}

	if n, ok := asFloat(v); ok {
		if field.Min != nil && n < *field.Min {
			return fail(fmt.Sprintf("below min %v", *field.Min))
		}
		if field.Max != nil && n > *field.Max {
			return fail(fmt.Sprintf("above max %v", *field.Max))
		}
	}

	if len(field.Enum) > 0 && !inEnum(v, field.Enum) {
		return fail("not one of the allowed enum values")
	}

	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func inEnum(v any, enum []any) bool {
	for _, e := range enum {
		if e == v {
			return true
		}
	}
	return false
}
