package condition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vensus137/coreness-go/internal/pathresolve"
	apperr "github.com/vensus137/coreness-go/pkg/errors"
)

func (o pathOperand) resolve(root any) any {
	return pathresolve.Resolve(root, o.path)
}

func (o literalOperand) resolve(any) any {
	return o.value
}

func (n *andNode) eval(root any) (bool, error) {
	l, err := n.left.eval(root)
	if err != nil {
		return false, err
	}
	if !l {
		return false, nil
	}
	return n.right.eval(root)
}

func (n *orNode) eval(root any) (bool, error) {
	l, err := n.left.eval(root)
	if err != nil {
		return false, err
	}
	if l {
		return true, nil
	}
	return n.right.eval(root)
}

func (n *notNode) eval(root any) (bool, error) {
	v, err := n.inner.eval(root)
	if err != nil {
		return false, err
	}
	return !v, nil
}

func (n *isNullNode) eval(root any) (bool, error) {
	v := n.operand.resolve(root)
	result := isNullValue(v)
	if n.negate {
		return !result, nil
	}
	return result, nil
}

func isNullValue(v any) bool {
	if pathresolve.IsMissing(v) || v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	return false
}

func (n *inNode) eval(root any) (bool, error) {
	left := n.left.resolve(root)
	found := false
	if !pathresolve.IsMissing(left) {
		for _, item := range n.list {
			if looseEqual(left, item.resolve(root)) {
				found = true
				break
			}
		}
	}
	if n.negate {
		return !found, nil
	}
	return found, nil
}

func (n *compareNode) eval(root any) (bool, error) {
	left := n.left.resolve(root)
	right := n.right.resolve(root)

	if n.op == tokEq {
		return valueEquals(left, right), nil
	}
	if n.op == tokNeq {
		return !valueEquals(left, right), nil
	}

	// Every other operator treats a missing left-hand field as false: a
	// field that isn't present can't be greater than, contain, or match
	// anything.
	if pathresolve.IsMissing(left) {
		return false, nil
	}

	switch n.op {
	case tokGt, tokLt, tokGe, tokLe:
		return compareOrdering(n.op, left, right)
	case tokContains, tokNotContains:
		hay := fmt.Sprint(left)
		needle := fmt.Sprint(right)
		contains := strings.Contains(hay, needle)
		if n.op == tokNotContains {
			return !contains, nil
		}
		return contains, nil
	case tokRegexKw:
		pattern, _ := right.(string)
		matched, err := regexp.MatchString(pattern, fmt.Sprint(left))
		if err != nil {
			return false, apperr.WithCode("condition.eval", apperr.CodeParse, "invalid regex pattern "+pattern)
		}
		return matched, nil
	}
	return false, apperr.WithCode("condition.eval", apperr.CodeInternal, "unhandled comparison operator")
}

// valueEquals implements the DSL's None/string/number/bool equality rules:
// an absent field equals only the literal None; a present value is compared
// with numeric coercion when one side is numeric and the other a numeric
// string, otherwise by direct equality.
func valueEquals(left, right any) bool {
	if right == nil {
		return pathresolve.IsMissing(left) || left == nil
	}
	if pathresolve.IsMissing(left) {
		return false
	}
	return looseEqual(left, right)
}

func looseEqual(left, right any) bool {
	if left == nil {
		return right == nil
	}
	switch rv := right.(type) {
	case string:
		if lv, ok := left.(string); ok {
			return lv == rv
		}
		if lf, ok := toFloat(left); ok {
			if rf, err := strconv.ParseFloat(strings.TrimSpace(rv), 64); err == nil {
				return lf == rf
			}
		}
		return fmt.Sprint(left) == rv
	case bool:
		if lb, ok := left.(bool); ok {
			return lb == rv
		}
		return false
	case float64:
		if lf, ok := toFloat(left); ok {
			return lf == rv
		}
		return false
	}
	return left == right
}

func compareOrdering(op tokenKind, left, right any) (bool, error) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		return applyOrdering(op, lf < rf, lf == rf, lf > rf), nil
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		return applyOrdering(op, ls < rs, ls == rs, ls > rs), nil
	}
	return false, nil
}

func applyOrdering(op tokenKind, lt, eq, gt bool) bool {
	switch op {
	case tokGt:
		return gt
	case tokLt:
		return lt
	case tokGe:
		return gt || eq
	case tokLe:
		return lt || eq
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
