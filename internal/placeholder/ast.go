package placeholder

type span struct {
	start, end int // rune indices; end is exclusive, past the closing brace
}

type sourceKind int

const (
	sourcePath sourceKind = iota
	sourceLiteral
	sourceNested
)

// templateSource is the part of a placeholder before its first "|".
type templateSource struct {
	kind    sourceKind
	path    string // sourcePath: dotted-path-with-bracket-index, internal/pathresolve syntax
	literal any    // sourceLiteral: the already-unescaped quoted text
	nested  string // sourceNested: raw "{...}" text of a double-brace source
}

// modifierSpec is one "|name" or "|name:arg" or "|+arg" segment. arg is
// kept as raw, unevaluated text since it may itself embed placeholders
// (arithmetic operands, equals/value/fallback targets).
type modifierSpec struct {
	name string
	arg  string
}

// Template is a parsed, cacheable placeholder body.
type Template struct {
	raw       string
	source    templateSource
	modifiers []modifierSpec
}
