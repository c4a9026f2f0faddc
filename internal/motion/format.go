package motion

import (
	"regexp"
	"strings"
)

// blankRun matches one newline followed by two or more blank (possibly
// whitespace-only) lines.
var blankRun = regexp.MustCompile(`\n([ \t]*\n){2,}`)

// numberRun matches a maximal digit run including embedded dots and
// commas ("12.5", "1.2.3", "1 000" is split on the space).
var numberRun = regexp.MustCompile(`\d[\d.,]*\d|\d`)

// decimalToken matches exactly the digits-dot-digits shape eligible for
// the locale decimal rewrite.
var decimalToken = regexp.MustCompile(`^\d+\.\d+$`)

// Format normalizes raw generated text into the canonical motion form.
// It is pure and idempotent: Format(Format(x)) == Format(x).
//
// Two normalizations:
//   - runs of 2+ blank lines collapse into exactly one blank line;
//   - dot decimals become Swedish comma decimals, but only in tokens
//     that are exactly digits.digits. Multi-segment runs such as
//     "1.2.3" are left untouched entirely: rewriting their leftmost
//     pair would produce "1,2.3", which a second pass would mangle
//     further, breaking idempotency.
func Format(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = blankRun.ReplaceAllString(s, "\n\n")
	s = numberRun.ReplaceAllStringFunc(s, func(tok string) string {
		if decimalToken.MatchString(tok) {
			return strings.Replace(tok, ".", ",", 1)
		}
		return tok
	})
	return s
}
