package batch

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/mcp-pdf-filler/internal/form"
)

// MaxBaseNameLength caps derived file names, in characters, before the extension.
const MaxBaseNameLength = 70

// nameColumnCandidates are the column names, after any "Sheet::" prefix,
// that are tried when no explicit name column is configured.
var nameColumnCandidates = map[string]bool{
	"File_No":  true,
	"ID":       true,
	"Name":     true,
	"PDF_Name": true,
	"filename": true,
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-. ]+`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// SafeFilename turns arbitrary cell text into a file name base: runs of
// characters outside letters, digits, "_", "-", "." and space become "_",
// then runs of spaces collapse to one and the result is truncated. Tabs and
// newlines count as unsafe, so they turn into "_" before the collapse. An
// empty result becomes "row".
func SafeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = unsafeFilenameChars.ReplaceAllString(s, "_")
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	if s == "" {
		return "row"
	}
	if utf8.RuneCountInString(s) > MaxBaseNameLength {
		s = string([]rune(s)[:MaxBaseNameLength])
		s = strings.TrimRightFunc(s, func(r rune) bool { return r == ' ' || r == '\t' })
	}
	return s
}

// DetectNameColumn picks the column that names output files. preferred wins
// when it is one of columns; otherwise the first column whose last "::"
// segment is a well-known identifier column. "" means rows are numbered.
func DetectNameColumn(columns []string, preferred string) string {
	if preferred != "" {
		for _, c := range columns {
			if c == preferred {
				return c
			}
		}
	}
	for _, c := range columns {
		parts := strings.Split(c, "::")
		if nameColumnCandidates[parts[len(parts)-1]] {
			return c
		}
	}
	return ""
}

// namer hands out unique output file names for a batch.
type namer struct {
	column string
	used   map[string]bool
}

func newNamer(column string) *namer {
	return &namer{column: column, used: make(map[string]bool)}
}

// next returns the file name for the one-based row number.
func (n *namer) next(rowNumber int, row form.Row) string {
	base := fmt.Sprintf("row_%03d", rowNumber)
	if n.column != "" {
		if v := strings.TrimSpace(row[n.column]); v != "" {
			base = SafeFilename(v)
		}
	}

	name := base + ".pdf"
	for k := 2; n.used[name]; k++ {
		name = fmt.Sprintf("%s_%d.pdf", base, k)
	}
	n.used[name] = true
	return name
}
