// Package condition implements spec.md §4.3's boolean condition DSL: the
// "$path OP literal" comparison grammar trigger conditions and scenario
// step conditions are written in, compiled once and evaluated many times
// against a path-resolution root (typically event.Context.ToMap()).
//
// Grammar, tightest to loosest binding: parenthesized groups; a leading
// "not" over the parenthesized group or comparison after it; a single comparison ("==", "!=", ">",
// "<", ">=", "<=", "~" contains, "!~" not-contains, "regex", "in"/"not in",
// "is_null"/"not is_null"); "and"; "or". $path operands use
// internal/pathresolve's dotted+bracket-index syntax.
package condition

import "sync"

// Compiled is a parsed condition, ready to Eval repeatedly without
// re-lexing or re-parsing the source string.
type Compiled struct {
	root node
	src  string
}

// String returns the original source the condition was compiled from.
func (c *Compiled) String() string { return c.src }

var compiledCache sync.Map // string (condition source) -> *Compiled

// Compile lexes and parses src into a reusable Compiled condition,
// caching by source string so a guard re-evaluated across many events
// (the scenario engine's hot path) only lexes and parses it once -- the
// same shape as internal/placeholder's parseCached.
func Compile(src string) (*Compiled, error) {
	if v, ok := compiledCache.Load(src); ok {
		return v.(*Compiled), nil
	}
	lex := newLexer(src)
	toks, err := lex.tokens()
	if err != nil {
		return nil, err
	}
	n, err := newParser(toks).parse()
	if err != nil {
		return nil, err
	}
	c := &Compiled{root: n, src: src}
	compiledCache.Store(src, c)
	return c, nil
}

// Eval evaluates the condition against root, a hierarchical map/slice
// structure (e.g. event.Context.ToMap()).
func (c *Compiled) Eval(root any) (bool, error) {
	return c.root.eval(root)
}

// Match is the one-shot convenience form: compile src and evaluate it
// immediately against root. Callers evaluating the same condition
// repeatedly (a scenario's trigger, run per incoming event) should Compile
// once and reuse the *Compiled instead.
func Match(src string, root any) (bool, error) {
	c, err := Compile(src)
	if err != nil {
		return false, err
	}
	return c.Eval(root)
}
