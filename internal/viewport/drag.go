package viewport

// Button identifies which pointer button drives a drag. Primary drags
// select, secondary drags pan.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// DragState tracks where a drag gesture stands. Presentation frameworks
// tend to report no motion until the pointer crosses a drag threshold, so
// the machine keeps the press origin around and reconstructs the true
// origin-to-current delta when motion first arrives. Without that the
// opening pixels of every drag would be lost.
type DragState int

const (
	// NotDragging is the initial and terminal state.
	NotDragging DragState = iota
	// DownButNotDragging means the button is pressed but no motion has
	// been reported yet.
	DownButNotDragging
	// Dragging means motion has been reported since the press.
	Dragging
)

func (s DragState) String() string {
	switch s {
	case NotDragging:
		return "not dragging"
	case DownButNotDragging:
		return "down but not dragging"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// DragState returns the machine's current state.
func (v *View) DragState() DragState { return v.drag }

// PointerDown arms the machine with the press position. A press that is
// released without motion changes nothing else.
func (v *View) PointerDown(pos Point) {
	if v.drag != NotDragging {
		return
	}
	v.drag = DownButNotDragging
	v.dragOrigin = pos
}

// PointerUp ends any drag in progress.
func (v *View) PointerUp() {
	v.drag = NotDragging
}

// Drag reports pointer motion at pos while btn is held. delta is the
// motion the presentation layer measured this frame; on the first motion
// of a drag it is replaced by the full origin-to-current delta and the
// selection anchor is fixed at the origin's data coordinate. Dragging
// takes over from live-follow. Motion without a registered press is
// ignored.
func (v *View) Drag(btn Button, pos Point, delta Point) {
	switch v.drag {
	case NotDragging:
		return
	case DownButNotDragging:
		delta = Point{X: pos.X - v.dragOrigin.X, Y: pos.Y - v.dragOrigin.Y}
		v.anchor = v.ScreenToDataX(v.dragOrigin.X)
		v.drag = Dragging
		v.live = false
	}

	switch btn {
	case ButtonPrimary:
		// A new drag replaces the previous selection. The start stays
		// fixed at the anchor; the end tracks the pointer, renormalized
		// so Start <= End holds whichever way the drag runs.
		v.sel = makeSelection(v.anchor, v.ScreenToDataX(pos.X), v.dataLen)
		v.hasSel = true
	case ButtonSecondary:
		v.Pan(delta.X)
	}
}
