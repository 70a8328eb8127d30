package placeholder

import (
	"strings"
	"sync"

	apperr "github.com/vensus137/coreness-go/pkg/errors"
)

var templateCache sync.Map // string (raw "{...}" text) -> *Template

// parseCached parses raw once and reuses the result for every later call
// with the same text, per the "cache by template hash" evaluation rule --
// the raw string itself serves as its own hash key.
func parseCached(raw string) (*Template, error) {
	if v, ok := templateCache.Load(raw); ok {
		return v.(*Template), nil
	}
	t, err := parseTemplate(raw)
	if err != nil {
		return nil, err
	}
	templateCache.Store(raw, t)
	return t, nil
}

func parseTemplate(raw string) (*Template, error) {
	runes := []rune(raw)
	if len(runes) < 2 || runes[0] != '{' || runes[len(runes)-1] != '}' {
		return nil, apperr.WithCode(opParse, apperr.CodeParse, "placeholder: not a \"{...}\" template: "+raw)
	}
	body := string(runes[1 : len(runes)-1])
	segs := splitSegments(body)
	if len(segs) == 0 || strings.TrimSpace(segs[0]) == "" {
		return nil, apperr.WithCode(opParse, apperr.CodeParse, "placeholder: empty source in "+raw)
	}

	src, err := parseSource(strings.TrimSpace(segs[0]))
	if err != nil {
		return nil, err
	}

	mods := make([]modifierSpec, 0, len(segs)-1)
	for _, seg := range segs[1:] {
		mods = append(mods, parseModifierSpec(strings.TrimSpace(seg)))
	}

	return &Template{raw: raw, source: src, modifiers: mods}, nil
}

func parseSource(text string) (templateSource, error) {
	if text == "" {
		return templateSource{}, apperr.WithCode(opParse, apperr.CodeParse, "placeholder: empty source")
	}
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return templateSource{kind: sourceNested, nested: text}, nil
	}
	if text[0] == '\'' || text[0] == '"' {
		lit, err := unquoteLiteral(text)
		if err != nil {
			return templateSource{}, err
		}
		return templateSource{kind: sourceLiteral, literal: lit}, nil
	}
	return templateSource{kind: sourcePath, path: text}, nil
}

// unquoteLiteral strips text's matching leading/trailing quote and
// resolves \' and \" escapes, the only two this grammar recognizes.
func unquoteLiteral(text string) (string, error) {
	quote := rune(text[0])
	runes := []rune(text)
	if len(runes) < 2 || runes[len(runes)-1] != quote {
		return "", apperr.WithCode(opParse, apperr.CodeParse, "placeholder: unterminated literal: "+text)
	}
	var b strings.Builder
	for i := 1; i < len(runes)-1; i++ {
		if runes[i] == '\\' && i+1 < len(runes)-1 && (runes[i+1] == '\'' || runes[i+1] == '"') {
			b.WriteRune(runes[i+1])
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String(), nil
}

// parseModifierSpec splits one "|"-delimited segment into a modifier
// name and its raw argument text. An arithmetic modifier's operator
// character ("+", "-", "*", "/", "%") doubles as its name, with no colon
// before the operand; every other modifier splits on its first colon.
func parseModifierSpec(raw string) modifierSpec {
	if raw == "" {
		return modifierSpec{}
	}
	if strings.ContainsRune("+-*/%", rune(raw[0])) {
		return modifierSpec{name: raw[:1], arg: raw[1:]}
	}
	if idx := strings.IndexByte(raw, ':'); idx >= 0 {
		return modifierSpec{name: raw[:idx], arg: raw[idx+1:]}
	}
	return modifierSpec{name: raw}
}
