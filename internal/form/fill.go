package form

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// flagReadOnly is bit 1 of /Ff.
const flagReadOnly = 1

// Row is one data record: column name to stringified cell value.
type Row map[string]string

// FillConfig is everything a fill needs besides the template and the row.
// It is passed by value and never retained, so concurrent fills of separate
// documents can share one FillConfig.
type FillConfig struct {
	// Mapping maps field name to data column. Unmapped fields are untouched.
	Mapping map[string]string
	// Rules holds per-field checkbox rules; missing entries use DefaultRule.
	Rules RuleSet
	// ForceAutosize rewrites text field /DA font sizes to 0.
	ForceAutosize bool
	// Logger receives per-field debug records. Nil disables logging.
	Logger *slog.Logger
}

// FieldResult describes one written field.
type FieldResult struct {
	Name     string          `json:"name"`
	Type     FieldType       `json:"type"`
	Column   string          `json:"column"`
	Input    string          `json:"input"`
	Written  string          `json:"written"`
	Outcome  Outcome         `json:"outcome,omitempty"`
	Autosize AutosizeOutcome `json:"autosize,omitempty"`
}

// FillResult is the outcome of filling one document.
type FillResult struct {
	Filled int           `json:"filled"`
	Fields []FieldResult `json:"fields"`
}

// Fill writes row into every mapped field of the document and returns how
// many fields were written. Fields whose mapped column is missing from row
// are skipped without error.
func (d *Document) Fill(row Row, cfg FillConfig) (*FillResult, error) {
	if !d.HasFields() {
		return nil, templateError(KindEmptyFieldList, ErrNoFields, "")
	}

	d.SetNeedAppearances()

	result := &FillResult{}
	for n := range d.Fields() {
		name := n.Name()
		if name == "" {
			continue
		}
		column, mapped := cfg.Mapping[name]
		if !mapped || column == "" {
			continue
		}
		value, present := row[column]
		if !present {
			continue
		}

		var fr FieldResult
		if n.IsButton() {
			fr = fillButton(n, value, cfg.Rules.For(name))
		} else {
			fr = fillText(n, value, cfg.ForceAutosize)
		}
		fr.Name = name
		fr.Column = column

		if cfg.Logger != nil {
			cfg.Logger.Debug("filled field",
				slog.String("field", name),
				slog.String("type", string(fr.Type)),
				slog.String("input", value),
				slog.String("written", fr.Written),
				slog.String("outcome", fr.Outcome.String()),
				slog.String("autosize", fr.Autosize.String()))
		}

		result.Fields = append(result.Fields, fr)
		result.Filled++
	}

	return result, nil
}

func fillButton(n *Node, value string, rule Rule) FieldResult {
	outcome, checked := rule.Decide(value)
	state := OffState
	if checked {
		state = OnState(n)
	}

	n.dict["V"] = types.Name(state)

	// /AS has to land on whichever node renders: the kids when there are any.
	if kids := n.Kids(); len(kids) > 0 {
		for _, kid := range kids {
			kid.dict["AS"] = types.Name(state)
		}
	} else {
		n.dict["AS"] = types.Name(state)
	}

	return FieldResult{
		Type:    TypeCheckboxOrRadio,
		Input:   value,
		Written: state,
		Outcome: outcome,
	}
}

func fillText(n *Node, value string, autosize bool) FieldResult {
	fr := FieldResult{
		Type:     TypeText,
		Input:    value,
		Written:  value,
		Autosize: AutosizeDisabled,
	}
	if autosize {
		fr.Autosize = applyAutosize(n)
	}

	n.dict["V"] = encodeText(value)

	delete(n.dict, "AP")
	for _, kid := range n.Kids() {
		if kid.Name() == "" {
			delete(kid.dict, "AP")
		}
	}

	if flags := n.Flags(); flags&flagReadOnly != 0 {
		if rest := flags &^ flagReadOnly; rest != 0 {
			n.dict["Ff"] = types.Integer(rest)
		} else {
			delete(n.dict, "Ff")
		}
	}

	return fr
}

func applyAutosize(n *Node) AutosizeOutcome {
	if _, found := n.dict.Find("DA"); !found {
		return AutosizeNoDA
	}
	da, ok := n.DefaultAppearance()
	if !ok {
		return AutosizeFailed
	}
	rewritten, changed := AutosizeDA(da)
	if !changed {
		return AutosizeSkipped
	}
	n.dict["DA"] = encodeText(rewritten)
	return AutosizeApplied
}

// FillTemplate parses a private copy of template, fills it with row and
// writes the result to w. The template bytes are never modified.
func FillTemplate(template []byte, row Row, cfg FillConfig, w io.Writer) (*FillResult, error) {
	d, err := Open(bytes.NewReader(template))
	if err != nil {
		return nil, err
	}
	result, err := d.Fill(row, cfg)
	if err != nil {
		return nil, err
	}
	if err := d.Write(w); err != nil {
		return nil, err
	}
	return result, nil
}
