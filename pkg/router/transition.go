package router

// Direction is the page transition chosen for a navigation.
type Direction string

const (
	// DirectionNone means no slide animation.
	DirectionNone Direction = "none"
	// DirectionForward slides the new page in from the right.
	DirectionForward Direction = "forward"
	// DirectionBack slides the new page in from the left.
	DirectionBack Direction = "back"
)

// Transition compares meta indexes: going to a deeper index is forward,
// going to a shallower one is back. Equal indexes, the first navigation
// and unresolved locations get no transition.
func Transition(from, to *Resolution) Direction {
	if !from.Matched() || !to.Matched() {
		return DirectionNone
	}
	switch {
	case to.Meta.Index > from.Meta.Index:
		return DirectionForward
	case to.Meta.Index < from.Meta.Index:
		return DirectionBack
	default:
		return DirectionNone
	}
}
