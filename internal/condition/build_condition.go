package condition

import (
	"fmt"
	"strings"
)

// Field is one "$key == value" equality clause inside a FieldSet.
type Field struct {
	Key   string
	Value any
}

// FieldSet is one scenario trigger's matcher configuration: a set of
// equality fields ANDed together, plus an optional hand-written Condition
// clause appended to the same AND group. BuildCondition joins multiple
// FieldSets with OR, mirroring how a scenario with several trigger entries
// matches if any one of them does.
type FieldSet struct {
	Fields    []Field
	Condition string
}

// BuildCondition renders sets into a single condition-DSL string this
// package's own Compile can parse: each set becomes "($k1 == v1 and $k2 ==
// v2 and <condition>)", and sets are joined with " or ". Fields render in
// the order given -- callers must supply that order explicitly since a Go
// map has none, unlike the ordered dict the original trigger matcher reads
// (see original_source/plugins/utilities/core/condition_parser/tests/test_build_condition.py).
func BuildCondition(sets []FieldSet) string {
	groups := make([]string, 0, len(sets))
	for _, set := range sets {
		parts := make([]string, 0, len(set.Fields)+1)
		for _, f := range set.Fields {
			parts = append(parts, fmt.Sprintf("$%s == %s", f.Key, formatLiteral(f.Value)))
		}
		if set.Condition != "" {
			parts = append(parts, set.Condition)
		}
		groups = append(groups, "("+strings.Join(parts, " and ")+")")
	}
	return strings.Join(groups, " or ")
}

func formatLiteral(v any) string {
	switch tv := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(tv, "'", "\\'") + "'"
	case bool:
		if tv {
			return "true"
		}
		return "false"
	case nil:
		return "None"
	default:
		return fmt.Sprint(tv)
	}
}
