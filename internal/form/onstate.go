package form

// OffState is the universal appearance state for an unchecked button.
const OffState = "Off"

// FallbackOnState is used when no appearance dictionary names an on state.
const FallbackOnState = "Yes"

// OnState discovers the document-specific appearance state that means
// "checked" for a button field. The field's own /AP /N is searched first,
// then each kid widget's in /Kids order; the first key other than Off wins
// and is returned verbatim ("Yes", "1", "Checkbox_40", ...). When nothing
// qualifies the result is FallbackOnState, never OffState.
func OnState(n *Node) string {
	if state, ok := firstOnState(n); ok {
		return state
	}
	for _, kid := range n.Kids() {
		if state, ok := firstOnState(kid); ok {
			return state
		}
	}
	return FallbackOnState
}

func firstOnState(n *Node) (string, bool) {
	for _, key := range n.AppearanceStates() {
		if key != OffState && key != "" {
			return key, true
		}
	}
	return "", false
}
