package placeholder

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// modifierFunc receives the value produced by the previous step of the
// chain (or the resolved source, for the first modifier) plus this
// modifier's raw argument text and the path-resolution root, and
// returns the next value. A modifier that can't meaningfully apply to
// its input returns the value unchanged -- per the "unknown modifiers
// or type-incompatible operands leave the value untouched" rule, no
// modifier aborts the surrounding step.
type modifierFunc func(value any, arg string, root any) any

var registry = map[string]modifierFunc{}

func init() {
	registerDataShapeModifiers()
	registerArithmeticModifiers()
	registerTemporalModifiers()
	registerConditionalModifiers()
}

var titleCaser = cases.Title(language.Und)

func registerDataShapeModifiers() {
	registry["length"] = modLength
	registry["truncate"] = modTruncate
	registry["regex"] = modRegexExtract
	registry["list"] = modList
	registry["comma"] = modComma
	registry["expand"] = func(value any, _ string, _ any) any { return value }
	registry["code"] = modCode
	registry["upper"] = func(value any, _ string, _ any) any { return stringMap(value, strings.ToUpper) }
	registry["lower"] = func(value any, _ string, _ any) any { return stringMap(value, strings.ToLower) }
	registry["title"] = func(value any, _ string, _ any) any { return stringMap(value, titleCaser.String) }
	registry["capitalize"] = func(value any, _ string, _ any) any { return stringMap(value, capitalize) }
	registry["case"] = modCase
}

func stringMap(value any, fn func(string) string) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	return fn(s)
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

func modCase(value any, arg string, _ any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	switch strings.TrimSpace(arg) {
	case "upper":
		return strings.ToUpper(s)
	case "lower":
		return strings.ToLower(s)
	}
	return value
}

func modLength(value any, _ string, _ any) any {
	if s, ok := value.(string); ok {
		return len([]rune(s))
	}
	if list, ok := asAnySlice(value); ok {
		return len(list)
	}
	return value
}

// modTruncate shortens a string to n runes total, the last three of
// which are "..." once the string needs cutting at all.
func modTruncate(value any, arg string, _ any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n <= 0 {
		return value
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// modRegexExtract returns arg's first match in value, or value unchanged
// on a compile error or no match.
func modRegexExtract(value any, arg string, _ any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	re, err := regexp.Compile(arg)
	if err != nil {
		return value
	}
	m := re.FindString(s)
	if m == "" {
		return value
	}
	return m
}

func modList(value any, _ string, _ any) any {
	list, ok := asAnySlice(value)
	if !ok {
		return value
	}
	var b strings.Builder
	for i, item := range list {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• ")
		b.WriteString(toStringFallback(item))
	}
	return b.String()
}

func modComma(value any, _ string, _ any) any {
	list, ok := asAnySlice(value)
	if !ok {
		return value
	}
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = toStringFallback(item)
	}
	return strings.Join(parts, ", ")
}

func modCode(value any, _ string, _ any) any {
	return "<code>" + toStringFallback(value) + "</code>"
}

func asAnySlice(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
