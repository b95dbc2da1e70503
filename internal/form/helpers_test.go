package form

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-filler/internal/form/formtest"
)

func openTemplate(t *testing.T, pdf []byte) *Document {
	t.Helper()
	d, err := OpenBytes(pdf)
	require.NoError(t, err)
	return d
}

func findField(t *testing.T, d *Document, name string) *Node {
	t.Helper()
	for n := range d.Fields() {
		if n.Name() == name {
			return n
		}
	}
	t.Fatalf("field %q not found", name)
	return nil
}

func widgetsNamed(d *Document, name string) []*Node {
	var out []*Node
	for _, w := range d.Widgets() {
		if w.ResolvedName() == name {
			out = append(out, w)
		}
	}
	return out
}

// radioForm has a button parent "Gender" without its own appearance and two
// kid widgets on separate pages; only the second kid names an on state.
func radioForm() []byte {
	b := formtest.NewBuilder()
	parent := b.Reserve()
	offOnly := b.Stream("q Q")
	kid1 := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /Parent %s /AS /Off "+
		"/Rect [10 10 20 20] /AP << /N << /Off %s >> >> >>", formtest.Ref(parent), formtest.Ref(offOnly)))
	kid2 := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /Parent %s /AS /Off "+
		"/Rect [30 30 40 40] /AP %s >>", formtest.Ref(parent), b.CheckboxAppearance("1")))
	b.Set(parent, fmt.Sprintf("<< /FT /Btn /Ff 49152 /T (Gender) /Kids %s >>", formtest.Refs(kid1, kid2)))
	return b.Document([]int{parent}, [][]int{{kid1}, {kid2}}, "")
}
