// Package mapping holds the field-to-column mapping and per-field checkbox
// rules, and moves them in and out of the portable JSON snapshot format.
package mapping

import (
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/a3tai/mcp-pdf-filler/internal/form"
)

// Config is the user-editable part of a fill: which column feeds which field
// and how button fields interpret cell text.
type Config struct {
	Mapping map[string]string `json:"mapping"`
	Rules   form.RuleSet      `json:"rules"`
}

// New returns an empty configuration.
func New() Config {
	return Config{
		Mapping: make(map[string]string),
		Rules:   make(form.RuleSet),
	}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := Config{
		Mapping: maps.Clone(c.Mapping),
		Rules:   make(form.RuleSet, len(c.Rules)),
	}
	if out.Mapping == nil {
		out.Mapping = make(map[string]string)
	}
	for field, rule := range c.Rules {
		out.Rules[field] = rule.Clone()
	}
	return out
}

// FillConfig converts the configuration into the value handed to the fill
// engine. The result shares nothing with c.
func (c Config) FillConfig(forceAutosize bool, logger *slog.Logger) form.FillConfig {
	cp := c.Clone()
	return form.FillConfig{
		Mapping:       cp.Mapping,
		Rules:         cp.Rules,
		ForceAutosize: forceAutosize,
		Logger:        logger,
	}
}

// MappedFields returns the field names that have a non-empty column, sorted.
func (c Config) MappedFields() []string {
	out := make([]string, 0, len(c.Mapping))
	for field, column := range c.Mapping {
		if column != "" {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

// FilterFields returns the names containing query, ignoring case, in their
// original order. An empty query returns every name.
func FilterFields(names []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(names)
	}
	var out []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, name)
		}
	}
	return out
}
