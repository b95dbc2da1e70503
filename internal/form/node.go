package form

import (
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FieldType is the canonical classification of a logical field.
type FieldType string

const (
	TypeText            FieldType = "text"
	TypeCheckboxOrRadio FieldType = "checkbox_or_radio"
)

// maxInheritDepth bounds /Parent chains so malformed documents cannot loop.
const maxInheritDepth = 32

// Rect is a widget rectangle: lower-left x, lower-left y, upper-right x, upper-right y.
type Rect [4]float64

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r[2] - r[0] }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r[3] - r[1] }

// Node is one entry of a form field tree: a field, a widget, or a merged
// field/widget. Value, appearance, children and geometry are all optional and
// may live on a parent or on a kid, so every accessor tolerates absence.
type Node struct {
	xref *model.XRefTable
	dict types.Dict
}

func newNode(xref *model.XRefTable, dict types.Dict) *Node {
	return &Node{xref: xref, dict: dict}
}

// Dict exposes the underlying dictionary. Mutations are visible to the document.
func (n *Node) Dict() types.Dict {
	return n.dict
}

// Name returns the cleaned partial field name (/T), or "" when absent.
func (n *Node) Name() string {
	return CleanName(n.rawName(n.dict))
}

// ResolvedName returns the node's own name, or the name of the nearest named
// ancestor for widgets that carry no /T of their own.
func (n *Node) ResolvedName() string {
	d := n.dict
	for depth := 0; d != nil && depth < maxInheritDepth; depth++ {
		if name := CleanName(n.rawName(d)); name != "" {
			return name
		}
		d = n.parent(d)
	}
	return ""
}

func (n *Node) rawName(d types.Dict) string {
	o, found := d.Find("T")
	if !found || o == nil {
		return ""
	}
	if s, err := n.xref.DereferenceStringOrHexLiteral(o, model.V10, nil); err == nil {
		return s
	}
	// Some producers write the name as a PDF name instead of a string.
	if name, err := n.xref.DereferenceName(o, model.V10, nil); err == nil {
		return string(name)
	}
	return ""
}

func (n *Node) parent(d types.Dict) types.Dict {
	o, found := d.Find("Parent")
	if !found || o == nil {
		return nil
	}
	p, err := n.xref.DereferenceDict(o)
	if err != nil {
		return nil
	}
	return p
}

// Type classifies the node from /FT, inheriting through /Parent when the node
// has none. Anything that is not a button is text.
func (n *Node) Type() FieldType {
	d := n.dict
	for depth := 0; d != nil && depth < maxInheritDepth; depth++ {
		if o, found := d.Find("FT"); found && o != nil {
			ft, err := n.xref.DereferenceName(o, model.V10, nil)
			if err == nil && string(ft) == "Btn" {
				return TypeCheckboxOrRadio
			}
			return TypeText
		}
		d = n.parent(d)
	}
	return TypeText
}

// IsButton reports whether the node classifies as checkbox_or_radio.
func (n *Node) IsButton() bool {
	return n.Type() == TypeCheckboxOrRadio
}

// IsWidget reports whether the node is a widget annotation.
func (n *Node) IsWidget() bool {
	o, found := n.dict.Find("Subtype")
	if !found || o == nil {
		return false
	}
	st, err := n.xref.DereferenceName(o, model.V10, nil)
	return err == nil && string(st) == "Widget"
}

// Value returns the node's own /V as text: names without the slash, strings decoded.
func (n *Node) Value() string {
	o, found := n.dict.Find("V")
	if !found || o == nil {
		return ""
	}
	if name, err := n.xref.DereferenceName(o, model.V10, nil); err == nil {
		return string(name)
	}
	if s, err := n.xref.DereferenceStringOrHexLiteral(o, model.V10, nil); err == nil {
		return s
	}
	return ""
}

// AppearanceState returns the node's /AS name, or "" when unset.
func (n *Node) AppearanceState() string {
	o, found := n.dict.Find("AS")
	if !found || o == nil {
		return ""
	}
	name, err := n.xref.DereferenceName(o, model.V10, nil)
	if err != nil {
		return ""
	}
	return string(name)
}

// DefaultAppearance returns the node's own /DA string.
func (n *Node) DefaultAppearance() (string, bool) {
	o, found := n.dict.Find("DA")
	if !found || o == nil {
		return "", false
	}
	s, err := n.xref.DereferenceStringOrHexLiteral(o, model.V10, nil)
	if err != nil {
		return "", false
	}
	return s, true
}

// HasAppearance reports whether the node carries an /AP dictionary.
func (n *Node) HasAppearance() bool {
	o, found := n.dict.Find("AP")
	return found && o != nil
}

// AppearanceStates lists the keys of the node's normal appearance
// sub-dictionary (/AP /N), sorted so that selection is deterministic. It
// returns nil when /N is absent or is a single stream.
func (n *Node) AppearanceStates() []string {
	apObj, found := n.dict.Find("AP")
	if !found || apObj == nil {
		return nil
	}
	ap, err := n.xref.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return nil
	}
	nObj, found := ap.Find("N")
	if !found || nObj == nil {
		return nil
	}
	normal, err := n.xref.DereferenceDict(nObj)
	if err != nil || normal == nil {
		return nil
	}
	keys := make([]string, 0, len(normal))
	for k := range normal {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flags returns the /Ff field flags, or 0.
func (n *Node) Flags() int {
	o, found := n.dict.Find("Ff")
	if !found || o == nil {
		return 0
	}
	i, err := n.xref.DereferenceInteger(o)
	if err != nil || i == nil {
		return 0
	}
	return int(*i)
}

// Rect parses the node's /Rect from its first four entries. ok is false when
// the entry is missing, shorter than four or holds a non-number among them.
func (n *Node) Rect() (r Rect, ok bool) {
	o, found := n.dict.Find("Rect")
	if !found || o == nil {
		return r, false
	}
	arr, err := n.xref.DereferenceArray(o)
	if err != nil || len(arr) < 4 {
		return r, false
	}
	for i, v := range arr[:4] {
		f, err := n.xref.DereferenceNumber(v)
		if err != nil {
			return Rect{}, false
		}
		r[i] = f
	}
	return r, true
}

// Kids resolves the node's /Kids. Entries that cannot be resolved are dropped.
func (n *Node) Kids() []*Node {
	arr := n.kidObjects()
	kids := make([]*Node, 0, len(arr))
	for _, o := range arr {
		d, err := n.xref.DereferenceDict(o)
		if err != nil || d == nil {
			continue
		}
		kids = append(kids, newNode(n.xref, d))
	}
	return kids
}

func (n *Node) kidObjects() types.Array {
	o, found := n.dict.Find("Kids")
	if !found || o == nil {
		return nil
	}
	arr, err := n.xref.DereferenceArray(o)
	if err != nil {
		return nil
	}
	return arr
}

// CleanName trims whitespace and strips one layer of literal-string
// parentheses, an artifact some encoders leave on /T values.
func CleanName(raw string) string {
	name := strings.TrimSpace(raw)
	if len(name) >= 2 && strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")") {
		name = name[1 : len(name)-1]
	}
	return strings.TrimSpace(name)
}
