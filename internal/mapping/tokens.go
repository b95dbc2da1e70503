package mapping

import "strings"

var quoteNormalizer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// ParseTokens splits comma-separated rule tokens as typed by a person.
// Curly quotes are straightened, surrounding quotes and whitespace are
// stripped and blank entries are dropped.
//
//	`yes, “Y”, 'x',,` -> ["yes", "Y", "x"]
func ParseTokens(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if tok := cleanToken(part); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// FormatTokens joins tokens for display in the same comma-separated form.
func FormatTokens(tokens []string) string {
	return strings.Join(tokens, ",")
}

func cleanToken(s string) string {
	s = quoteNormalizer.Replace(strings.TrimSpace(s))
	s = strings.Trim(strings.TrimSpace(s), `"`)
	s = strings.Trim(s, "'")
	return strings.TrimSpace(s)
}
