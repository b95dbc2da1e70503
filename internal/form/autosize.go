package form

import "regexp"

// AutosizeOutcome records what happened to a text field's /DA.
type AutosizeOutcome int

const (
	AutosizeDisabled AutosizeOutcome = iota
	AutosizeApplied
	AutosizeSkipped // no size token, or the size was already 0
	AutosizeNoDA
	AutosizeFailed // /DA present but unreadable or not writable
)

func (a AutosizeOutcome) String() string {
	switch a {
	case AutosizeApplied:
		return "applied"
	case AutosizeSkipped:
		return "skipped"
	case AutosizeNoDA:
		return "no_da"
	case AutosizeFailed:
		return "failed"
	default:
		return "disabled"
	}
}

// fontSizeOperator matches "<size> Tf" preceded by whitespace.
var fontSizeOperator = regexp.MustCompile(`(\s)(-?\d+(?:\.\d+)?)\s+Tf\b`)

// AutosizeDA rewrites the first font-size operand in a default appearance
// string to 0, which viewers treat as auto-size. Only the first "size Tf"
// pair is touched. changed is false when there is nothing to rewrite.
//
//	"/Helv 10 Tf 0 g" -> "/Helv 0 Tf 0 g"
func AutosizeDA(da string) (rewritten string, changed bool) {
	loc := fontSizeOperator.FindStringSubmatchIndex(da)
	if loc == nil {
		return da, false
	}
	rewritten = da[:loc[0]] + da[loc[2]:loc[3]] + "0 Tf" + da[loc[1]:]
	return rewritten, rewritten != da
}
