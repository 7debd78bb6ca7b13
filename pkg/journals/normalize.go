package journals

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// punctuationMap folds typography variants to ASCII so the same title
// from different sources normalizes identically.
var punctuationMap = map[rune]rune{
	'’': '\'', // right single quotation mark
	'‘': '\'', // left single quotation mark
	'`': '\'', // grave accent
	'´': '\'', // acute accent
	'′': '\'', // prime
	'“': '"',  // left double quotation mark
	'”': '"',  // right double quotation mark
	'„': '"',  // double low-9 quotation mark
	'–': '-',  // en dash
	' ': ' ',  // no-break space
}

// trailingParenthetical matches format-variant suffixes such as
// "(Online)", "(Print)" or "(En ligne)".
var trailingParenthetical = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// diacriticStripper removes combining marks after NFD decomposition,
// turning e.g. "Médecine" into "Medecine".
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// titleKeyPunctuation is the punctuation replaced by spaces when
// building matching keys.
const titleKeyPunctuation = ".,;:!?'\"()-&/"

// NormalizeTitle cleans a display title: trims wrapping quotes (CSV
// artifacts), replaces control characters and zero-width characters,
// folds typography variants to ASCII, and collapses whitespace. The
// result is meant for output; matching uses TitleKey.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	if strings.HasPrefix(title, `"`) && strings.HasSuffix(title, `"`) && len(title) > 1 {
		title = strings.TrimSpace(title[1 : len(title)-1])
	}

	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r < 0x20 || (r >= 0x80 && r <= 0x9F):
			b.WriteRune(' ')
		case r == '\u200b' || r == '\u200c' || r == '\u200d' || r == '\ufeff' || r == '\ufffd' || r == '\u00ad':
			// zero-width and soft hyphen: drop
		default:
			if mapped, ok := punctuationMap[r]; ok {
				r = mapped
			}
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// TitleKey builds the normalized matching key used for grouping and
// reference matching: NormalizeTitle, trailing format parenthetical
// stripped, diacritics removed, lowercased, punctuation replaced by
// spaces, whitespace collapsed. Returns empty for empty titles.
func TitleKey(title string) string {
	title = NormalizeTitle(title)
	if title == "" {
		return ""
	}

	title = trailingParenthetical.ReplaceAllString(title, "")

	if stripped, _, err := transform.String(diacriticStripper, title); err == nil {
		title = stripped
	}

	title = strings.ToLower(title)
	title = strings.Map(func(r rune) rune {
		if strings.ContainsRune(titleKeyPunctuation, r) {
			return ' '
		}
		return r
	}, title)

	return strings.Join(strings.Fields(title), " ")
}
