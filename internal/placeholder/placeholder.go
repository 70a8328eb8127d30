// Package placeholder implements the "{source|modifier:arg|...}" template
// language scenario step parameters are written in: a brace-depth-aware
// scanner finds placeholders inside arbitrary text, a small parser reads
// each one into a (source, modifiers) pair, and an evaluator resolves the
// source against a context root and threads the result through every
// modifier left to right.
//
// A placeholder whose source can't be resolved, or whose modifier chain
// bottoms out at the absent-value sentinel, renders back as its own
// original "{...}" text -- unresolved placeholders stay visible in
// scenario output instead of silently disappearing. A single modifier
// failure (bad regex, wrong operand type, unknown modifier name) leaves
// the value untouched rather than aborting the step; only an unknown
// modifier name logs a warning.
package placeholder

import (
	"strings"

	"github.com/vensus137/coreness-go/internal/pathresolve"
)

const (
	opParse = "placeholder.parse"
	opEval  = "placeholder.eval"
)

// Expand recursively resolves every placeholder reachable from v: a
// string is evaluated as an interpolation template, a map or slice is
// walked field by field and element by element. A list element that is
// itself a single whole "{source|...|expand}" placeholder resolving to
// a list is spliced into the surrounding list one level deep -- the
// shape scenario authors use to build a row-of-buttons keyboard from a
// cached array of arrays.
func Expand(v any, root any) (any, error) {
	return expandValue(v, root)
}

// ExpandText evaluates template as a single interpolation string: every
// top-level placeholder is resolved and substituted. When template is
// itself exactly one placeholder with no surrounding text, the
// placeholder's native resolved type (int, bool, list, ...) is returned
// directly instead of being stringified.
func ExpandText(template string, root any) (any, error) {
	runes := []rune(template)
	spans := scanTopLevel(runes)
	if len(spans) == 0 {
		return template, nil
	}
	if len(spans) == 1 && spans[0].start == 0 && spans[0].end == len(runes) {
		return evalPlaceholder(template, root)
	}

	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(string(runes[last:sp.start]))
		raw := string(runes[sp.start:sp.end])
		v, err := evalPlaceholder(raw, root)
		if err != nil {
			return nil, err
		}
		b.WriteString(stringify(v))
		last = sp.end
	}
	b.WriteString(string(runes[last:]))
	return b.String(), nil
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if pathresolve.IsMissing(v) {
		return ""
	}
	return toStringFallback(v)
}
