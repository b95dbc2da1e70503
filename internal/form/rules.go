package form

import (
	"strings"

	"golang.org/x/text/cases"
)

// Polarity is the outcome applied when a value matches neither token set.
type Polarity string

const (
	PolarityOn  Polarity = "on"
	PolarityOff Polarity = "off"
)

// IsOn reports whether p means checked. Anything but "on" is off.
func (p Polarity) IsOn() bool {
	return strings.EqualFold(strings.TrimSpace(string(p)), string(PolarityOn))
}

// Outcome is the bucket a cell value falls into under a Rule.
type Outcome int

const (
	OutcomeChecked Outcome = iota + 1
	OutcomeUnchecked
	OutcomeDefault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeChecked:
		return "checked"
	case OutcomeUnchecked:
		return "unchecked"
	case OutcomeDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Rule maps textual cell values onto a button state.
type Rule struct {
	CheckedValues   []string `json:"checked_values"`
	UncheckedValues []string `json:"unchecked_values"`
	Default         Polarity `json:"default"`
}

// DefaultRule is applied to every button field without an explicit rule.
// "male"/"female" are carried over verbatim from the rule set the tool
// has always shipped; they are constants, not inferred semantics.
func DefaultRule() Rule {
	return Rule{
		CheckedValues:   []string{"yes", "true", "1", "x", "on", "checked", "male"},
		UncheckedValues: []string{"no", "false", "0", "off", "unchecked", "", "female"},
		Default:         PolarityOff,
	}
}

// Classify places value in exactly one bucket: the checked set is consulted
// first, then the unchecked set, otherwise the default. Matching trims
// surrounding whitespace and ignores case on both sides.
func (r Rule) Classify(value string) Outcome {
	v := foldToken(value)
	if containsToken(r.CheckedValues, v) {
		return OutcomeChecked
	}
	if containsToken(r.UncheckedValues, v) {
		return OutcomeUnchecked
	}
	return OutcomeDefault
}

// Decide classifies value and resolves the bucket to checked/unchecked.
func (r Rule) Decide(value string) (Outcome, bool) {
	outcome := r.Classify(value)
	switch outcome {
	case OutcomeChecked:
		return outcome, true
	case OutcomeUnchecked:
		return outcome, false
	default:
		return outcome, r.Default.IsOn()
	}
}

// Clone returns a deep copy.
func (r Rule) Clone() Rule {
	return Rule{
		CheckedValues:   cloneStrings(r.CheckedValues),
		UncheckedValues: cloneStrings(r.UncheckedValues),
		Default:         r.Default,
	}
}

// RuleSet holds per-field rules keyed by field name.
type RuleSet map[string]Rule

// For returns the rule for field, falling back to DefaultRule.
func (rs RuleSet) For(field string) Rule {
	if r, ok := rs[field]; ok {
		return r
	}
	return DefaultRule()
}

func foldToken(s string) string {
	// A Caser keeps state, so one is built per call.
	return cases.Fold().String(strings.TrimSpace(s))
}

func containsToken(tokens []string, folded string) bool {
	for _, t := range tokens {
		if foldToken(t) == folded {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
