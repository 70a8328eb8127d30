package placeholder

import (
	"fmt"
	"strings"

	"github.com/vensus137/coreness-go/internal/pathresolve"
)

// readyChecker is satisfied by task handles whose completion state the
// "ready"/"not_ready" modifiers can inspect directly.
type readyChecker interface {
	Ready() bool
}

func registerConditionalModifiers() {
	registry["exists"] = modExists
	registry["is_null"] = modIsNull
	registry["equals"] = modEquals
	registry["in_list"] = modInList
	registry["ready"] = modReady
	registry["not_ready"] = modNotReady
	registry["value"] = modValue
	registry["fallback"] = modFallback
}

// modExists is true whenever value isn't nil or Missing -- it does not
// treat an empty string or false as absent, unlike is_null.
func modExists(value any, _ string, _ any) any {
	return !(value == nil || pathresolve.IsMissing(value))
}

// modIsNull treats Missing, nil, and "" as null.
func modIsNull(value any, _ string, _ any) any {
	if value == nil || pathresolve.IsMissing(value) {
		return true
	}
	if s, ok := value.(string); ok && s == "" {
		return true
	}
	return false
}

func modEquals(value any, arg string, root any) any {
	expected := expandArg(arg, root)
	return looseEqual(value, expected)
}

func modInList(value any, arg string, root any) any {
	expanded := expandArg(arg, root)
	s, _ := expanded.(string)
	if s == "" {
		s = toStringFallback(expanded)
	}
	target := toStringFallback(value)
	for _, item := range strings.Split(s, ",") {
		if strings.TrimSpace(item) == target {
			return true
		}
	}
	return false
}

// modReady/modNotReady type-assert the raw value against readyChecker;
// anything else -- including a plain string -- answers false to both,
// rather than falling back to a generic truthiness check.
func modReady(value any, _ string, _ any) any {
	rc, ok := value.(readyChecker)
	if !ok {
		return false
	}
	return rc.Ready()
}

func modNotReady(value any, _ string, _ any) any {
	rc, ok := value.(readyChecker)
	if !ok {
		return false
	}
	return !rc.Ready()
}

// modValue replaces value with arg's expansion only when value is the
// boolean true; any other value passes through unchanged.
func modValue(value any, arg string, root any) any {
	b, ok := value.(bool)
	if !ok || !b {
		return value
	}
	return expandArg(arg, root)
}

// modFallback replaces value with arg's expansion whenever value is
// falsy in the Python-truthiness sense: Missing, nil, "", false, or 0.
func modFallback(value any, arg string, root any) any {
	if !isFalsy(value) {
		return value
	}
	return expandArg(arg, root)
}

func isFalsy(v any) bool {
	if v == nil || pathresolve.IsMissing(v) {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	}
	return false
}

func looseEqual(a, b any) bool {
	if a == nil || pathresolve.IsMissing(a) {
		return b == nil || pathresolve.IsMissing(b)
	}
	if b == nil || pathresolve.IsMissing(b) {
		return false
	}
	af, _, aOk := toNumber(a)
	bf, _, bOk := toNumber(b)
	if aOk && bOk {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
