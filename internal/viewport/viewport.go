// Package viewport maps screen-pixel coordinates onto an ever-growing
// sample array. A View owns the pan, zoom, and selection state for one
// open clip; transforms use floor rounding throughout so adjacent pixel
// columns cover seamless, half-open sample ranges. A View belongs to one
// presentation consumer and is never shared across threads.
package viewport

import "math"

const (
	// MinScale is the finest zoom: one sample per pixel.
	MinScale = 1.0
	// DefaultScale is the samples-per-pixel ratio a fresh view opens at.
	DefaultScale = 1024.0
)

// Point is a screen-space position or motion delta in whole pixels.
type Point struct {
	X, Y int
}

// Range is a half-open span of sample indexes.
type Range struct {
	Start, End int
}

// Empty reports whether the range covers no samples. ColumnRange returns
// an empty range for columns beyond the available data; iteration stops
// there.
func (r Range) Empty() bool { return r.Start >= r.End }

// Len returns the number of samples the range covers.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start
}

// Selection is the half-open sample range produced by a primary-button
// drag. Start <= End always holds; both ends are clamped to the data
// length observed when the selection was last updated.
type Selection struct {
	Start, End int
}

// Empty reports whether the selection covers no samples.
func (s Selection) Empty() bool { return s.Start >= s.End }

// Len returns the number of selected samples.
func (s Selection) Len() int {
	if s.Empty() {
		return 0
	}
	return s.End - s.Start
}

// makeSelection normalizes two data coordinates into a selection clamped
// to [0, dataLen].
func makeSelection(a, b, dataLen int) Selection {
	if a > b {
		a, b = b, a
	}
	return Selection{
		Start: clamp(a, 0, dataLen),
		End:   clamp(b, 0, dataLen),
	}
}

// View is the pan/zoom/selection state of one clip view. The zero value
// is not usable; call New.
type View struct {
	width  int
	height int

	// hscale is samples per pixel, at least MinScale. vscale stretches
	// amplitudes vertically.
	hscale float64
	vscale float64

	// offset is the data coordinate of the leftmost visible column,
	// never negative.
	offset int

	// live makes Track pin the newest sample to the right edge.
	live bool

	// dataLen is the store length observed by the last Track call.
	dataLen int

	sel    Selection
	hasSel bool

	drag       DragState
	dragOrigin Point
	anchor     int

	cursor    Point
	hasCursor bool
}

// New returns a live-following view of the given pixel size.
func New(width, height int) *View {
	v := &View{
		hscale: DefaultScale,
		vscale: 1,
		live:   true,
	}
	v.Resize(width, height)
	return v
}

// Resize adopts the pixel area granted by the presentation layer.
// Dimensions are pinned to at least one pixel.
func (v *View) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	v.width = width
	v.height = height
}

func (v *View) Width() int  { return v.width }
func (v *View) Height() int { return v.height }

// Scale returns the horizontal scale in samples per pixel.
func (v *View) Scale() float64 { return v.hscale }

// VScale returns the vertical amplitude scale.
func (v *View) VScale() float64 { return v.vscale }

// SetVScale changes the amplitude stretch, clamped to at least 1.
func (v *View) SetVScale(s float64) {
	if s < 1 {
		s = 1
	}
	v.vscale = s
}

// Offset returns the data coordinate of the leftmost visible column.
func (v *View) Offset() int { return v.offset }

// DataLen returns the store length observed by the last Track call.
func (v *View) DataLen() int { return v.dataLen }

// Live reports whether the view follows the newest data.
func (v *View) Live() bool { return v.live }

// SetLive turns live-follow on or off. Turning it on takes effect at the
// next Track call.
func (v *View) SetLive(live bool) { v.live = live }

// screenToDataNoOffset converts a pixel distance to a sample distance.
func (v *View) screenToDataNoOffset(x int) int {
	return int(math.Floor(float64(x) * v.hscale))
}

// dataToScreenNoOffset converts a sample distance to a pixel distance.
func (v *View) dataToScreenNoOffset(d int) int {
	return int(math.Floor(float64(d) / v.hscale))
}

// ScreenToDataX converts a pixel column to the first sample it covers.
func (v *View) ScreenToDataX(x int) int {
	return v.screenToDataNoOffset(x) + v.offset
}

// DataToScreenX converts a sample index to the pixel column covering it.
// Columns left of the view come back negative; callers clamp as needed.
func (v *View) DataToScreenX(d int) int {
	return v.dataToScreenNoOffset(d - v.offset)
}

// ColumnRange returns the half-open sample range covered by pixel column
// x. The end is clamped to the tracked data length, so a column beyond
// the available data yields an empty range.
func (v *View) ColumnRange(x int) Range {
	return Range{
		Start: v.ScreenToDataX(x),
		End:   clamp(v.ScreenToDataX(x+1), 0, v.dataLen),
	}
}

// DataRangeToScreen maps a sample range onto pixel columns, both ends
// clamped to the view width.
func (v *View) DataRangeToScreen(r Range) Range {
	return Range{
		Start: clamp(v.DataToScreenX(r.Start), 0, v.width),
		End:   clamp(v.DataToScreenX(r.End), 0, v.width),
	}
}

// SampleToY maps a normalized sample value to a pixel row. Zero amplitude
// lands mid-height; full scale reaches the edges at vscale 1. Rows
// outside [0, height) mean the scaled amplitude clips.
func (v *View) SampleToY(sample float32) int {
	half := float64(v.height) / 2
	return int(math.Floor(v.vscale*float64(sample)*half + half))
}

// Track records the store's current length. While live, the offset is
// recomputed so the newest sample sits in the rightmost column; once the
// data is shorter than the visible window the offset stays at zero.
func (v *View) Track(total int) {
	if total < 0 {
		total = 0
	}
	v.dataLen = total

	if !v.live {
		return
	}
	offset := total - v.screenToDataNoOffset(v.width)
	if offset < 0 {
		offset = 0
	}
	v.offset = offset
}

// SetScale changes the horizontal scale, preserving the data coordinate
// under the aboutX column. Scales clamp to MinScale; an unchanged scale
// is a no-op. While live the offset is left alone, live-follow rederives
// it at the next Track.
func (v *View) SetScale(scale float64, aboutX int) {
	if scale < MinScale {
		scale = MinScale
	}
	if scale == v.hscale {
		return
	}

	keep := v.ScreenToDataX(aboutX)
	v.hscale = scale
	if v.live {
		return
	}

	offset := keep - v.screenToDataNoOffset(aboutX)
	if offset < 0 {
		offset = 0
	}
	v.offset = offset
}

// ZoomBy multiplies the scale by factor, zooming about the hovered column
// when a cursor is present and the view center otherwise. Factors above 1
// zoom out.
func (v *View) ZoomBy(factor float64) {
	about := v.width / 2
	if v.hasCursor {
		about = v.cursor.X
	}
	v.SetScale(v.hscale*factor, about)
}

// Pan shifts the view by a pixel delta, positive dragging the data
// rightward. Panning takes over from live-follow and clamps at the start
// of the recording.
func (v *View) Pan(dx int) {
	v.live = false
	offset := v.offset - v.screenToDataNoOffset(dx)
	if offset < 0 {
		offset = 0
	}
	v.offset = offset
}

// Hover records the cursor position. ZoomBy anchors to it.
func (v *View) Hover(pos Point) {
	v.cursor = pos
	v.hasCursor = true
}

// HoverEnd clears the cursor when the pointer leaves the view.
func (v *View) HoverEnd() {
	v.cursor = Point{}
	v.hasCursor = false
}

// Cursor returns the last hovered position and whether one is present.
func (v *View) Cursor() (Point, bool) {
	return v.cursor, v.hasCursor
}

// Selection returns the current selection and whether one exists.
func (v *View) Selection() (Selection, bool) {
	return v.sel, v.hasSel
}

// ClearSelection drops the selection.
func (v *View) ClearSelection() {
	v.sel = Selection{}
	v.hasSel = false
}

// BucketMinMax summarizes one column's bucket of samples by its extremes,
// the values an amplitude renderer draws the column between. An empty
// bucket reports zeroes.
func BucketMinMax(bucket []float32) (lo, hi float32) {
	if len(bucket) == 0 {
		return 0, 0
	}
	lo, hi = bucket[0], bucket[0]
	for _, s := range bucket[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
