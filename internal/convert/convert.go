// Package convert turns arbitrary Go values -- structs, pointers,
// slices, maps of any key/value type, []byte, time.Time -- into a tree
// of only maps, slices, and scalars: the shape the placeholder expander
// and Action Hub input validator walk without reflecting themselves.
package convert

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const defaultMaxDepth = 100

// ToMap recursively converts v, detecting reference cycles through
// pointers, maps, and slices and breaking them with a placeholder
// string rather than recursing forever.
func ToMap(v any) any {
	return toSafeValue(v, 0, make(map[uintptr]bool), defaultMaxDepth)
}

func toSafeValue(value any, depth int, seen map[uintptr]bool, maxDepth int) any {
	if depth > maxDepth {
		return "<max_recursion_depth_" + typeName(value) + ">"
	}
	if value == nil {
		return nil
	}

	switch t := value.(type) {
	case string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool:
		return t
	case []byte:
		return "bytes:" + hex.EncodeToString(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		if g := guard(seen, rv.Pointer(), value); g != "" {
			return g
		}
		defer delete(seen, rv.Pointer())
		return toSafeValue(rv.Elem().Interface(), depth+1, seen, maxDepth)

	case reflect.Map:
		if addr := rv.Pointer(); addr != 0 {
			if g := guard(seen, addr, value); g != "" {
				return g
			}
			defer delete(seen, addr)
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = toSafeValue(iter.Value().Interface(), depth+1, seen, maxDepth)
		}
		return out

	case reflect.Slice:
		if addr := rv.Pointer(); addr != 0 {
			if g := guard(seen, addr, value); g != "" {
				return g
			}
			defer delete(seen, addr)
		}
		return sliceToSafeValue(rv, depth, seen, maxDepth)

	case reflect.Array:
		return sliceToSafeValue(rv, depth, seen, maxDepth)

	case reflect.Struct:
		if rv.CanAddr() {
			if addr := rv.Addr().Pointer(); addr != 0 {
				if g := guard(seen, addr, value); g != "" {
					return g
				}
				defer delete(seen, addr)
			}
		}
		return structToSafeValue(rv, depth, seen, maxDepth)

	default:
		return fmt.Sprint(value)
	}
}

func sliceToSafeValue(rv reflect.Value, depth int, seen map[uintptr]bool, maxDepth int) any {
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = toSafeValue(rv.Index(i).Interface(), depth+1, seen, maxDepth)
	}
	return out
}

func structToSafeValue(rv reflect.Value, depth int, seen map[uintptr]bool, maxDepth int) any {
	rt := rv.Type()
	out := make(map[string]any, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		out[f.Name] = toSafeValue(rv.Field(i).Interface(), depth+1, seen, maxDepth)
	}
	return out
}

// guard marks addr as in-progress and returns "" the first time it's
// seen, or a cyclic-reference placeholder on a repeat visit.
func guard(seen map[uintptr]bool, addr uintptr, value any) string {
	if seen[addr] {
		return "<cyclic_reference_" + typeName(value) + ">"
	}
	seen[addr] = true
	return ""
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// StringToType sniffs a raw string value's likely native type, the way
// a value read out of a text-typed database column or form field needs
// to be re-typed before it reaches scenario placeholder evaluation: a
// JSON array/object decodes, a bare integer or float parses, "true"/
// "false" become bool, anything else stays a string.
func StringToType(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			switch parsed.(type) {
			case []any, map[string]any:
				return parsed
			}
		}
	}
	if !strings.Contains(trimmed, ".") {
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if strings.ContainsAny(trimmed, ".eE") {
			return f
		}
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
