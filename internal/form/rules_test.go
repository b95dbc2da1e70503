package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRule_Classify(t *testing.T) {
	rule := DefaultRule()

	tests := []struct {
		value   string
		outcome Outcome
		checked bool
	}{
		{"yes", OutcomeChecked, true},
		{"YES", OutcomeChecked, true},
		{"  True ", OutcomeChecked, true},
		{"1", OutcomeChecked, true},
		{"x", OutcomeChecked, true},
		{"X", OutcomeChecked, true},
		{"on", OutcomeChecked, true},
		{"Checked", OutcomeChecked, true},
		{"Male", OutcomeChecked, true},
		{"no", OutcomeUnchecked, false},
		{"FALSE", OutcomeUnchecked, false},
		{"0", OutcomeUnchecked, false},
		{"off", OutcomeUnchecked, false},
		{"unchecked", OutcomeUnchecked, false},
		{"", OutcomeUnchecked, false},
		{"   ", OutcomeUnchecked, false},
		{"female", OutcomeUnchecked, false},
		{"Y", OutcomeDefault, false},
		{"maybe", OutcomeDefault, false},
		{"2", OutcomeDefault, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			outcome, checked := rule.Decide(tt.value)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.checked, checked)
			assert.Equal(t, tt.outcome, rule.Classify(tt.value))
		})
	}
}

func TestRule_CheckedSetWinsOverlap(t *testing.T) {
	rule := Rule{
		CheckedValues:   []string{"both"},
		UncheckedValues: []string{"BOTH"},
		Default:         PolarityOff,
	}

	outcome, checked := rule.Decide("Both")
	assert.Equal(t, OutcomeChecked, outcome)
	assert.True(t, checked)
}

func TestRule_DefaultPolarity(t *testing.T) {
	tests := []struct {
		name     string
		polarity Polarity
		want     bool
	}{
		{name: "on", polarity: PolarityOn, want: true},
		{name: "upper on", polarity: Polarity(" ON "), want: true},
		{name: "off", polarity: PolarityOff, want: false},
		{name: "empty", polarity: "", want: false},
		{name: "garbage", polarity: "sometimes", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := Rule{CheckedValues: []string{"a"}, UncheckedValues: []string{"b"}, Default: tt.polarity}
			outcome, checked := rule.Decide("unlisted")
			assert.Equal(t, OutcomeDefault, outcome)
			assert.Equal(t, tt.want, checked)
		})
	}
}

func TestRule_Deterministic(t *testing.T) {
	rule := DefaultRule()
	for _, v := range []string{"yes", "no", "maybe", ""} {
		o1, c1 := rule.Decide(v)
		o2, c2 := rule.Decide(v)
		assert.Equal(t, o1, o2)
		assert.Equal(t, c1, c2)
	}
}

func TestRule_Clone(t *testing.T) {
	orig := DefaultRule()
	clone := orig.Clone()
	clone.CheckedValues[0] = "changed"

	assert.Equal(t, "yes", orig.CheckedValues[0])
	assert.Nil(t, Rule{}.Clone().CheckedValues)
}

func TestRuleSet_For(t *testing.T) {
	custom := Rule{CheckedValues: []string{"si"}, Default: PolarityOn}
	rs := RuleSet{"Spanish": custom}

	assert.Equal(t, custom, rs.For("Spanish"))
	assert.Equal(t, DefaultRule(), rs.For("Other"))

	var empty RuleSet
	assert.Equal(t, DefaultRule(), empty.For("Anything"))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "checked", OutcomeChecked.String())
	assert.Equal(t, "unchecked", OutcomeUnchecked.String())
	assert.Equal(t, "default", OutcomeDefault.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}
