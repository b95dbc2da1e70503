package mapping

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/a3tai/mcp-pdf-filler/internal/form"
)

// TimestampLayout formats Snapshot.ExportedAt.
const TimestampLayout = "2006-01-02 15:04:05"

// Snapshot is the portable JSON form of a Config, tied to the template and
// data file it was built against.
type Snapshot struct {
	PDFHash    string            `json:"pdf_hash"`
	ExcelHash  string            `json:"excel_hash"`
	PDFName    string            `json:"pdf_name"`
	ExcelName  string            `json:"excel_name"`
	Mapping    map[string]string `json:"mapping"`
	Rules      form.RuleSet      `json:"rules"`
	ExportedAt string            `json:"exported_at"`
}

// Source identifies one input file by name and content.
type Source struct {
	Name string
	Data []byte
}

// Hash returns the hex SHA-256 of the source content.
func (s Source) Hash() string {
	return HashBytes(s.Data)
}

// HashBytes returns the hex SHA-256 of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Export captures cfg together with the identity of its template and data.
func Export(cfg Config, template, data Source, now time.Time) *Snapshot {
	cp := cfg.Clone()
	return &Snapshot{
		PDFHash:    template.Hash(),
		ExcelHash:  data.Hash(),
		PDFName:    template.Name,
		ExcelName:  data.Name,
		Mapping:    cp.Mapping,
		Rules:      cp.Rules,
		ExportedAt: now.Format(TimestampLayout),
	}
}

// Marshal encodes the snapshot as indented JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode config snapshot: %w", err)
	}
	return b, nil
}

// Parse decodes a snapshot.
func Parse(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("invalid config snapshot: %w", err)
	}
	return &s, nil
}

// Target is what an imported snapshot is reconciled against. A nil Catalog
// or nil Columns disables the corresponding check; an empty hash disables
// the corresponding mismatch warning.
type Target struct {
	Catalog      *form.Catalog
	Columns      []string
	TemplateHash string
	DataHash     string
}

// Import reconciles s with the current template and data. Mapping entries
// naming a missing field or column and rules for missing fields are dropped;
// every drop and every hash mismatch produces a warning. Import never fails.
func Import(s *Snapshot, target Target) (Config, []string) {
	cfg := New()
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if target.TemplateHash != "" && s.PDFHash != "" && s.PDFHash != target.TemplateHash {
		warnf("PDF template differs from the one this config was exported with (%s)", displayName(s.PDFName))
	}
	if target.DataHash != "" && s.ExcelHash != "" && s.ExcelHash != target.DataHash {
		warnf("data file differs from the one this config was exported with (%s)", displayName(s.ExcelName))
	}

	var columns map[string]bool
	if target.Columns != nil {
		columns = make(map[string]bool, len(target.Columns))
		for _, c := range target.Columns {
			columns[c] = true
		}
	}

	for _, field := range sortedKeys(s.Mapping) {
		column := s.Mapping[field]
		if column == "" {
			continue
		}
		if target.Catalog != nil && !target.Catalog.Has(field) {
			warnf("mapping for field %q dropped: field not in template", field)
			continue
		}
		if columns != nil && !columns[column] {
			warnf("mapping for field %q dropped: column %q not in data", field, column)
			continue
		}
		cfg.Mapping[field] = column
	}

	for _, field := range sortedKeys(s.Rules) {
		rule := s.Rules[field].Clone()
		if target.Catalog != nil && !target.Catalog.Has(field) {
			warnf("checkbox rule for field %q dropped: field not in template", field)
			continue
		}
		switch p := form.Polarity(strings.ToLower(strings.TrimSpace(string(rule.Default)))); p {
		case form.PolarityOn, form.PolarityOff:
			rule.Default = p
		default:
			warnf("checkbox rule for field %q: default %q is not on/off, using off", field, rule.Default)
			rule.Default = form.PolarityOff
		}
		cfg.Rules[field] = rule
	}

	return cfg, warnings
}

func displayName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return name
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
