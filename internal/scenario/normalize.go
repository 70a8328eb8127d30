package scenario

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// emojiRanges covers the Unicode blocks Telegram button text commonly
// carries emoji from (grounded on button_mapper.py's emoji.replace_emoji
// call): emoticons, misc symbols/pictographs, transport, supplemental
// symbols, dingbats, and the variation-selector/ZWJ control points that
// glue multi-codepoint emoji together.
var emojiRanges = []*unicode.RangeTable{
	{R16: []unicode.Range16{{0x2600, 0x27BF, 1}, {0xFE0F, 0xFE0F, 1}, {0x200D, 0x200D, 1}}},
	{R32: []unicode.Range32{
		{0x1F300, 0x1FAFF, 1},
		{0x1F000, 0x1F0FF, 1},
	}},
}

var nonCallbackChars = regexp.MustCompile(`[^a-z0-9 _-]`)
var whitespaceRun = regexp.MustCompile(`\s+`)
var underscoreRun = regexp.MustCompile(`_+`)

// callbackDataLimit matches the Telegram callback_data byte budget
// (64-byte vendor limit, 60 used for headroom), per button_mapper.py.
const callbackDataLimit = 60

// normalizeCallback reproduces button_mapper.py's normalize(): strip
// emoji, lowercase, transliterate to ASCII (diacritic stripping via
// Unicode NFD decomposition -- the closest stdlib/x-text equivalent to
// unidecode for the common accented-Latin case; scripts with no Latin
// decomposition, e.g. Cyrillic or CJK, fall through to the next step
// and are dropped rather than transliterated), strip remaining
// non [a-z0-9 _-] runes, collapse
// whitespace to underscores, collapse/trim repeated underscores, and
// truncate to the callback_data length budget.
func normalizeCallback(text string) string {
	text = stripEmoji(text)
	text = strings.ToLower(strings.TrimSpace(text))
	text = transliterate(text)
	text = nonCallbackChars.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, "_")
	text = underscoreRun.ReplaceAllString(text, "_")
	text = strings.Trim(text, "_")
	runesOut := []rune(text)
	if len(runesOut) > callbackDataLimit {
		runesOut = runesOut[:callbackDataLimit]
	}
	return string(runesOut)
}

func stripEmoji(s string) string {
	var b strings.Builder
	for _, r := range s {
		skip := false
		for _, rt := range emojiRanges {
			if unicode.Is(rt, r) {
				skip = true
				break
			}
		}
		if !skip {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func transliterate(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}
