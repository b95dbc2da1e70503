package form

import (
	"iter"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Walk yields every node reachable from fields through /Kids, depth-first,
// each parent before its children. The sequence is lazy and can be ranged
// over repeatedly. Indirect objects already visited in the current pass are
// not revisited, which keeps cyclic /Kids references finite.
func Walk(xref *model.XRefTable, fields types.Array) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		seen := make(map[int]bool)
		walkNodes(xref, fields, seen, yield)
	}
}

func walkNodes(xref *model.XRefTable, objs types.Array, seen map[int]bool, yield func(*Node) bool) bool {
	for _, o := range objs {
		if nr, ok := objectNumber(o); ok {
			if seen[nr] {
				continue
			}
			seen[nr] = true
		}

		d, err := xref.DereferenceDict(o)
		if err != nil || d == nil {
			continue
		}

		n := newNode(xref, d)
		if !yield(n) {
			return false
		}

		if kids := n.kidObjects(); len(kids) > 0 {
			if !walkNodes(xref, kids, seen, yield) {
				return false
			}
		}
	}
	return true
}

func objectNumber(o types.Object) (int, bool) {
	switch ref := o.(type) {
	case types.IndirectRef:
		return ref.ObjectNumber.Value(), true
	case *types.IndirectRef:
		if ref == nil {
			return 0, false
		}
		return ref.ObjectNumber.Value(), true
	}
	return 0, false
}
