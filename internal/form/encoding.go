package form

import (
	"encoding/hex"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/unicode"
)

// encodeText converts s into a PDF text string object: an escaped literal
// for 7-bit input, otherwise UTF-16BE with a byte order mark as a hex string.
func encodeText(s string) types.Object {
	s = strings.ToValidUTF8(s, "�")
	if isASCII(s) {
		return types.StringLiteral(escapeLiteral(s))
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return types.StringLiteral(escapeLiteral(s))
	}
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString(b)))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`(`, `\(`,
	`)`, `\)`,
	"\r", `\r`,
	"\n", `\n`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}
