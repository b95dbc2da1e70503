package pdf

import (
	"bytes"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-pdf-filler/internal/form"
)

// maxInheritanceDepth bounds the /Parent walk for inherited page attributes.
const maxInheritanceDepth = 32

// DefaultPageBox is US Letter, used when a page declares no usable MediaBox.
var DefaultPageBox = form.Rect{0, 0, 612, 792}

// PageBox returns the MediaBox of the zero-based page, inheriting it from the
// page tree when the page does not set one. Unreadable documents get
// DefaultPageBox.
func PageBox(template []byte, pageIndex int) (box form.Rect) {
	defer func() {
		if recover() != nil {
			box = DefaultPageBox
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return DefaultPageBox
	}
	if pageIndex < 0 || pageIndex >= r.NumPage() {
		return DefaultPageBox
	}

	page := r.Page(pageIndex + 1)
	if page.V.IsNull() {
		return DefaultPageBox
	}

	node := page.V
	for depth := 0; depth < maxInheritanceDepth && !node.IsNull(); depth++ {
		if box, ok := mediaBox(node.Key("MediaBox")); ok {
			return box
		}
		node = node.Key("Parent")
	}
	return DefaultPageBox
}

func mediaBox(v pdf.Value) (form.Rect, bool) {
	if v.Kind() != pdf.Array || v.Len() < 4 {
		return form.Rect{}, false
	}

	var box form.Rect
	for i := 0; i < 4; i++ {
		n := v.Index(i)
		if n.Kind() != pdf.Integer && n.Kind() != pdf.Real {
			return form.Rect{}, false
		}
		box[i] = n.Float64()
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return form.Rect{}, false
	}
	return box, true
}
