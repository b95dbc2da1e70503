// Package formtest builds small AcroForm PDFs in memory for tests.
package formtest

import (
	"bytes"
	"fmt"
	"strings"
)

// Builder accumulates numbered indirect objects and serializes them with a
// correct cross-reference table.
type Builder struct {
	objects []string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends an object body and returns its object number.
func (b *Builder) Add(body string) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

// Reserve allocates an object number whose body is supplied later with Set.
func (b *Builder) Reserve() int {
	return b.Add("null")
}

// Set replaces the body of object num.
func (b *Builder) Set(num int, body string) {
	b.objects[num-1] = body
}

// Stream adds a stream object holding content.
func (b *Builder) Stream(content string) int {
	return b.Add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
}

// Bytes serializes the file with object root as the document catalog.
func (b *Builder) Bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.objects)+1, root, xref)

	return buf.Bytes()
}

// Ref formats an indirect reference to object num.
func Ref(num int) string {
	return fmt.Sprintf("%d 0 R", num)
}

// Refs formats an array of indirect references.
func Refs(nums ...int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = Ref(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Document assembles the catalog, page tree and AcroForm around fields.
// pages lists, per page, the annotation object numbers placed on it.
// acroExtra is appended verbatim inside the AcroForm dictionary.
func (b *Builder) Document(fields []int, pages [][]int, acroExtra string) []byte {
	pagesNum := b.Reserve()
	pageNums := make([]int, len(pages))
	for i, annots := range pages {
		body := fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 612 792]", Ref(pagesNum))
		if len(annots) > 0 {
			body += " /Annots " + Refs(annots...)
		}
		pageNums[i] = b.Add(body + " >>")
	}
	b.Set(pagesNum, fmt.Sprintf("<< /Type /Pages /Kids %s /Count %d >>", Refs(pageNums...), len(pageNums)))

	acro := b.Add(fmt.Sprintf("<< /Fields %s /DA (/Helv 0 Tf 0 g)%s >>", Refs(fields...), acroExtra))
	root := b.Add(fmt.Sprintf("<< /Type /Catalog /Pages %s /AcroForm %s >>", Ref(pagesNum), Ref(acro)))
	return b.Bytes(root)
}

// CheckboxAppearance adds the on/off appearance streams and returns an /AP
// dictionary naming onState and Off.
func (b *Builder) CheckboxAppearance(onState string) string {
	on := b.Stream("q Q")
	off := b.Stream("q Q")
	return fmt.Sprintf("<< /N << /%s %s /Off %s >> >>", onState, Ref(on), Ref(off))
}

// ConsentForm is a one-page template with a text field "Name" (fixed 10pt
// font, cached appearance, read-only) and a checkbox "Agree" whose on state
// is "Yes".
func ConsentForm() []byte {
	b := NewBuilder()
	textAP := b.Stream("/Tx BMC EMC")
	name := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Tx /T (Name) /Ff 1 "+
		"/DA (/Helv 10 Tf 0 g) /Rect [50 700 300 720] /AP << /N %s >> >>", Ref(textAP)))
	agree := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Btn /T (Agree) /V /Off /AS /Off "+
		"/Rect [50 650 64 664] /AP %s >>", b.CheckboxAppearance("Yes")))
	return b.Document([]int{name, agree}, [][]int{{name, agree}}, "")
}
