package placeholder

import (
	"fmt"

	"github.com/vensus137/coreness-go/internal/pathresolve"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// evalPlaceholder evaluates raw (a whole "{...}" template, braces
// included) against root: resolve its source, thread the result through
// every modifier, and type-infer a plain-string result. A parse failure
// or a final Missing/nil value both fall back to raw itself -- an
// unresolved placeholder stays visible in its original form.
func evalPlaceholder(raw string, root any) (any, error) {
	tmpl, err := parseCached(raw)
	if err != nil {
		return raw, nil
	}

	value, err := resolveSource(tmpl.source, root)
	if err != nil {
		return nil, err
	}

	for _, m := range tmpl.modifiers {
		value = applyModifier(value, m, root)
	}

	if value == nil || pathresolve.IsMissing(value) {
		return raw, nil
	}

	if tmpl.source.kind != sourceLiteral {
		if s, ok := value.(string); ok {
			value = inferType(s)
		}
	}
	return value, nil
}

func resolveSource(src templateSource, root any) (any, error) {
	switch src.kind {
	case sourceLiteral:
		return src.literal, nil
	case sourcePath:
		v := pathresolve.Resolve(root, src.path)
		if v == nil {
			return pathresolve.Missing{}, nil
		}
		return v, nil
	case sourceNested:
		return ExpandText(src.nested, root)
	}
	return pathresolve.Missing{}, nil
}

// conditionalAware modifiers want to see a raw nil/Missing value
// themselves (to test for it, or to replace it) rather than have the
// eval loop short-circuit past them.
var conditionalAware = map[string]bool{
	"is_null": true, "exists": true, "fallback": true, "value": true,
	"equals": true, "in_list": true, "ready": true, "not_ready": true,
}

func applyModifier(value any, spec modifierSpec, root any) any {
	if !conditionalAware[spec.name] {
		if value == nil || pathresolve.IsMissing(value) {
			return pathresolve.Missing{}
		}
	}
	fn, ok := registry[spec.name]
	if !ok {
		logger.Warnw("placeholder: unknown modifier, leaving value unchanged",
			"modifier", spec.name)
		return value
	}
	return fn(value, spec.arg, root)
}

// expandArg evaluates a modifier's raw argument text as its own
// interpolation template, so arguments like "equals:{expected_status}"
// or "value:Hello {user_name}" resolve their embedded placeholders
// before use. An argument with no placeholders evaluates to itself.
func expandArg(arg string, root any) any {
	v, err := ExpandText(arg, root)
	if err != nil {
		return arg
	}
	return v
}

func toStringFallback(v any) string {
	return fmt.Sprint(v)
}
