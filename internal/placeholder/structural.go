package placeholder

import "strings"

// expandValue recursively resolves placeholders in v: strings are
// evaluated as templates, maps and slices are walked member by member.
func expandValue(v any, root any) (any, error) {
	switch tv := v.(type) {
	case string:
		if spliced, did, err := trySpliceExpand(tv, root); err != nil {
			return nil, err
		} else if did {
			return spliced, nil
		}
		return ExpandText(tv, root)
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, val := range tv {
			nv, err := expandValue(val, root)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		return expandList(tv, root)
	default:
		return v, nil
	}
}

// expandList walks a slice element by element. An element that is a
// single whole "{source|...|expand}" placeholder resolving to a list
// has its elements spliced directly into the result instead of becoming
// one nested-list element -- the shape a per-row array-of-arrays
// keyboard definition is built from.
func expandList(items []any, root any) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, el := range items {
		s, ok := el.(string)
		if ok {
			if spliced, did, err := trySpliceExpand(s, root); err != nil {
				return nil, err
			} else if did {
				out = append(out, spliced...)
				continue
			}
		}
		nv, err := expandValue(el, root)
		if err != nil {
			return nil, err
		}
		out = append(out, nv)
	}
	return out, nil
}

// trySpliceExpand reports whether s is a whole placeholder whose last
// modifier is "expand" and whose resolved value is a list; when it is,
// that list is returned for the caller to splice in place of s.
func trySpliceExpand(s string, root any) ([]any, bool, error) {
	trimmed := strings.TrimSpace(s)
	runes := []rune(trimmed)
	if len(runes) < 2 || runes[0] != '{' || runes[len(runes)-1] != '}' {
		return nil, false, nil
	}
	spans := scanTopLevel(runes)
	if len(spans) != 1 || spans[0].start != 0 || spans[0].end != len(runes) {
		return nil, false, nil
	}
	tmpl, err := parseCached(trimmed)
	if err != nil || len(tmpl.modifiers) == 0 {
		return nil, false, nil
	}
	if tmpl.modifiers[len(tmpl.modifiers)-1].name != "expand" {
		return nil, false, nil
	}
	value, err := evalPlaceholder(trimmed, root)
	if err != nil {
		return nil, false, err
	}
	list, ok := value.([]any)
	if !ok {
		return nil, false, nil
	}
	return list, true, nil
}
