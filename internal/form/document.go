package form

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxPageTreeDepth bounds the page tree walk.
const maxPageTreeDepth = 64

// Document is a parsed PDF with a supported interactive form. Each Document
// is an isolated working copy: mutations never reach the bytes it was read from.
type Document struct {
	ctx      *model.Context
	acroForm types.Dict
}

// Open parses a PDF and verifies it has an AcroForm that is not XFA based.
func Open(rs io.ReadSeeker) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, templateError(KindUnreadable, fmt.Errorf("%w: %w", ErrUnreadableInput, err),
			"failed to read PDF context")
	}

	root, err := ctx.Catalog()
	if err != nil {
		return nil, templateError(KindUnreadable, fmt.Errorf("%w: %w", ErrUnreadableInput, err),
			"failed to get catalog")
	}

	acroFormObj, found := root.Find("AcroForm")
	if !found || acroFormObj == nil {
		return nil, templateError(KindMissingAcroForm, ErrNoAcroForm, "")
	}

	acroForm, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroForm == nil {
		return nil, templateError(KindMissingAcroForm, ErrNoAcroForm, "")
	}

	if xfa, found := acroForm.Find("XFA"); found && xfa != nil {
		return nil, templateError(KindXFA, ErrXFAUnsupported, "")
	}

	return &Document{ctx: ctx, acroForm: acroForm}, nil
}

// OpenBytes parses a fresh working copy of template.
func OpenBytes(template []byte) (*Document, error) {
	return Open(bytes.NewReader(template))
}

// OpenFile parses the PDF at path.
func OpenFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()
	return Open(f)
}

// Fields walks the AcroForm field tree.
func (d *Document) Fields() iter.Seq[*Node] {
	return Walk(d.ctx.XRefTable, d.fieldArray())
}

// HasFields reports whether /AcroForm /Fields has at least one entry.
func (d *Document) HasFields() bool {
	return len(d.fieldArray()) > 0
}

func (d *Document) fieldArray() types.Array {
	o, found := d.acroForm.Find("Fields")
	if !found || o == nil {
		return nil
	}
	arr, err := d.ctx.DereferenceArray(o)
	if err != nil {
		return nil
	}
	return arr
}

// Pages returns the leaf page dictionaries in document order.
func (d *Document) Pages() []types.Dict {
	root, err := d.ctx.Catalog()
	if err != nil {
		return nil
	}
	pagesObj, found := root.Find("Pages")
	if !found || pagesObj == nil {
		return nil
	}

	var pages []types.Dict
	seen := make(map[int]bool)

	var visit func(o types.Object, depth int)
	visit = func(o types.Object, depth int) {
		if depth > maxPageTreeDepth {
			return
		}
		if nr, ok := objectNumber(o); ok {
			if seen[nr] {
				return
			}
			seen[nr] = true
		}
		node, err := d.ctx.DereferenceDict(o)
		if err != nil || node == nil {
			return
		}
		if kidsObj, found := node.Find("Kids"); found && kidsObj != nil {
			kids, err := d.ctx.DereferenceArray(kidsObj)
			if err != nil {
				return
			}
			for _, kid := range kids {
				visit(kid, depth+1)
			}
			return
		}
		pages = append(pages, node)
	}
	visit(pagesObj, 0)

	return pages
}

// PageCount returns the number of leaf pages.
func (d *Document) PageCount() int {
	return len(d.Pages())
}

// Widgets yields every widget annotation found directly in page /Annots
// arrays together with its zero-based page index. This does not depend on
// the AcroForm tree, which some documents leave incomplete.
func (d *Document) Widgets() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		for pageIndex, page := range d.Pages() {
			annotsObj, found := page.Find("Annots")
			if !found || annotsObj == nil {
				continue
			}
			annots, err := d.ctx.DereferenceArray(annotsObj)
			if err != nil {
				continue
			}
			for _, a := range annots {
				ad, err := d.ctx.DereferenceDict(a)
				if err != nil || ad == nil {
					continue
				}
				n := newNode(d.ctx.XRefTable, ad)
				if !n.IsWidget() {
					continue
				}
				if !yield(pageIndex, n) {
					return
				}
			}
		}
	}
}

// SetNeedAppearances asks viewers to regenerate every field appearance on open.
func (d *Document) SetNeedAppearances() {
	d.acroForm["NeedAppearances"] = types.Boolean(true)
}

// NeedAppearances reports the current /NeedAppearances flag.
func (d *Document) NeedAppearances() bool {
	o, found := d.acroForm.Find("NeedAppearances")
	if !found || o == nil {
		return false
	}
	b, ok := o.(types.Boolean)
	return ok && bool(b)
}

// Write serializes the document.
func (d *Document) Write(w io.Writer) error {
	if err := api.WriteContext(d.ctx, w); err != nil {
		return templateError(KindWrite, err, "failed to write PDF")
	}
	return nil
}

// Bytes serializes the document into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
