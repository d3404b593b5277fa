package viewport

import "testing"

// newReviewView returns a non-live view with a known scale and offset 0,
// the shape most transform tests want.
func newReviewView(width, height int, scale float64) *View {
	v := New(width, height)
	v.SetLive(false)
	v.SetScale(scale, 0)
	return v
}

func TestScreenToDataFloors(t *testing.T) {
	v := newReviewView(100, 256, 2.5)

	if got := v.ScreenToDataX(3); got != 7 {
		t.Errorf("ScreenToDataX(3) at scale 2.5: expected 7, got %d", got)
	}
	if got := v.DataToScreenX(7); got != 2 {
		t.Errorf("DataToScreenX(7) at scale 2.5: expected 2, got %d", got)
	}

	// The same points shifted by a pan keep flooring consistently.
	v.Pan(-4) // offset 10
	if v.Offset() != 10 {
		t.Fatalf("expected offset 10 after pan, got %d", v.Offset())
	}
	if got := v.ScreenToDataX(3); got != 17 {
		t.Errorf("ScreenToDataX(3) with offset 10: expected 17, got %d", got)
	}
	if got := v.DataToScreenX(17); got != 2 {
		t.Errorf("DataToScreenX(17) with offset 10: expected 2, got %d", got)
	}
}

func TestColumnRangeCoversWidth(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Track(1500)

	if got := v.ColumnRange(0); got.Start != 0 || got.End != 10 {
		t.Errorf("column 0: expected [0,10), got [%d,%d)", got.Start, got.End)
	}
	if got := v.ColumnRange(99); got.Start != 990 || got.End != 1000 {
		t.Errorf("column 99: expected [990,1000), got [%d,%d)", got.Start, got.End)
	}

	// Adjacent columns tile the data with no gaps or overlaps.
	for x := 1; x < 100; x++ {
		if v.ColumnRange(x).Start != v.ColumnRange(x-1).End {
			t.Fatalf("columns %d and %d do not tile", x-1, x)
		}
	}
}

func TestColumnRangePartialBucket(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Track(995)

	got := v.ColumnRange(99)
	if got.Start != 990 || got.End != 995 {
		t.Errorf("expected partial bucket [990,995), got [%d,%d)", got.Start, got.End)
	}
	if got.Empty() || got.Len() != 5 {
		t.Errorf("partial bucket should hold 5 samples, got %d", got.Len())
	}
}

func TestColumnRangeEmptyBeyondData(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Track(950)

	// Columns are consumed in order until the first empty range.
	drawn := 0
	for x := 0; x < v.Width(); x++ {
		if v.ColumnRange(x).Empty() {
			break
		}
		drawn++
	}
	if drawn != 95 {
		t.Errorf("expected 95 drawable columns for 950 samples, got %d", drawn)
	}
	if !v.ColumnRange(95).Empty() {
		t.Error("column 95 should be empty at 950 samples")
	}
}

func TestColumnRangeEmptyData(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Track(0)

	for _, x := range []int{0, 1, 50, 99} {
		if !v.ColumnRange(x).Empty() {
			t.Errorf("column %d should be empty with no data", x)
		}
	}
}

func TestTrackLiveFollowsNewestSample(t *testing.T) {
	v := New(100, 256)
	v.SetScale(10, 0)
	if !v.Live() {
		t.Fatal("new views should be live")
	}

	// Less data than the window shows: pinned to the start.
	v.Track(500)
	if v.Offset() != 0 {
		t.Errorf("expected offset 0 with 500 of 1000 visible samples, got %d", v.Offset())
	}

	// More data than fits: the newest sample lands in the last column.
	v.Track(1500)
	if v.Offset() != 500 {
		t.Errorf("expected offset 500, got %d", v.Offset())
	}
	last := v.ColumnRange(v.Width() - 1)
	if last.Empty() || last.End != 1500 {
		t.Errorf("rightmost column should end at the newest sample, got [%d,%d)", last.Start, last.End)
	}

	// Growth keeps the right edge pinned.
	v.Track(1507)
	if got := v.ColumnRange(v.Width() - 1).End; got != 1507 {
		t.Errorf("right edge should track growth, got %d", got)
	}
}

func TestTrackWithoutLiveKeepsOffset(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Pan(-1) // offset 10
	v.Track(5000)

	if v.Offset() != 10 {
		t.Errorf("non-live track must not move the offset, got %d", v.Offset())
	}
	if v.DataLen() != 5000 {
		t.Errorf("track must record the data length, got %d", v.DataLen())
	}
}

func TestSetScaleClampsToMinimum(t *testing.T) {
	v := newReviewView(100, 256, 10)

	v.SetScale(0.25, 0)
	if v.Scale() != MinScale {
		t.Errorf("expected scale clamped to %v, got %v", MinScale, v.Scale())
	}
}

func TestSetScaleUnchangedIsNoop(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Pan(-50) // offset 500

	v.SetScale(10, 99)
	if v.Offset() != 500 {
		t.Errorf("same-scale SetScale must leave the offset, got %d", v.Offset())
	}
}

func TestSetScalePreservesHoveredCoordinate(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Track(20000)
	v.Pan(-50) // offset 500

	const aboutX = 40
	for _, scale := range []float64{5, 2.5, 13, 1} {
		before := v.ScreenToDataX(aboutX)
		v.SetScale(scale, aboutX)
		if after := v.ScreenToDataX(aboutX); after != before {
			t.Errorf("scale %v: coordinate under column %d moved from %d to %d",
				scale, aboutX, before, after)
		}
	}
}

func TestSetScaleClampsOffsetNearStart(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Track(20000)
	v.Pan(-50) // offset 500

	// Zooming out this far would need a negative offset to keep the
	// hovered coordinate in place; it clamps to the recording start.
	v.SetScale(1024, 40)
	if v.Offset() != 0 {
		t.Errorf("expected offset clamped to 0, got %d", v.Offset())
	}
}

func TestSetScaleWhileLiveLeavesOffset(t *testing.T) {
	v := New(100, 256)
	v.SetScale(10, 0)
	v.Track(5000) // offset 4000

	v.SetScale(20, 50)
	if v.Offset() != 4000 {
		t.Errorf("live zoom must not touch the offset, got %d", v.Offset())
	}

	// Live-follow rederives the offset from the new scale.
	v.Track(5000)
	if v.Offset() != 3000 {
		t.Errorf("expected offset 3000 after live re-track at scale 20, got %d", v.Offset())
	}
}

func TestZoomByAnchorsToCursor(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Track(20000)
	v.Pan(-50) // offset 500

	v.Hover(Point{X: 25, Y: 10})
	before := v.ScreenToDataX(25)
	v.ZoomBy(0.5)
	if v.Scale() != 5 {
		t.Errorf("expected scale 5 after halving, got %v", v.Scale())
	}
	if after := v.ScreenToDataX(25); after != before {
		t.Errorf("zoom about cursor moved its coordinate from %d to %d", before, after)
	}

	// Without a cursor the view center is the anchor.
	v.HoverEnd()
	center := v.ScreenToDataX(50)
	v.ZoomBy(2)
	if after := v.ScreenToDataX(50); after != center {
		t.Errorf("centered zoom moved the middle coordinate from %d to %d", center, after)
	}
}

func TestPanClampsAtStart(t *testing.T) {
	v := New(100, 256)
	v.SetScale(10, 0)

	v.Pan(5)
	if v.Offset() != 0 {
		t.Errorf("panning past the start must clamp to 0, got %d", v.Offset())
	}
	if v.Live() {
		t.Error("panning must disable live-follow")
	}

	v.Pan(-3)
	if v.Offset() != 30 {
		t.Errorf("expected offset 30, got %d", v.Offset())
	}
}

func TestSampleToY(t *testing.T) {
	v := newReviewView(100, 256, 10)

	cases := []struct {
		sample float32
		want   int
	}{
		{0, 128},
		{1, 256},
		{-1, 0},
		{0.5, 192},
		{-0.5, 64},
	}
	for _, c := range cases {
		if got := v.SampleToY(c.sample); got != c.want {
			t.Errorf("SampleToY(%f): expected %d, got %d", c.sample, c.want, got)
		}
	}

	// Vertical gain pushes rows outside the drawable band, which is how
	// renderers detect clipping.
	v.SetVScale(2)
	if got := v.SampleToY(1); got != 384 {
		t.Errorf("SampleToY(1) at vscale 2: expected 384, got %d", got)
	}
	if got := v.SampleToY(-1); got != -128 {
		t.Errorf("SampleToY(-1) at vscale 2: expected -128, got %d", got)
	}
}

func TestSetVScaleClamps(t *testing.T) {
	v := New(100, 256)
	v.SetVScale(0.1)
	if v.VScale() != 1 {
		t.Errorf("expected vscale clamped to 1, got %v", v.VScale())
	}
}

func TestDataRangeToScreenClamps(t *testing.T) {
	v := newReviewView(100, 256, 10)
	v.Track(20000)
	v.Pan(-50) // offset 500

	if got := v.DataRangeToScreen(Range{Start: 0, End: 20000}); got.Start != 0 || got.End != 100 {
		t.Errorf("full-data range should clamp to the view, got [%d,%d)", got.Start, got.End)
	}
	if got := v.DataRangeToScreen(Range{Start: 600, End: 650}); got.Start != 10 || got.End != 15 {
		t.Errorf("expected [10,15), got [%d,%d)", got.Start, got.End)
	}
}

func TestBucketMinMax(t *testing.T) {
	if lo, hi := BucketMinMax(nil); lo != 0 || hi != 0 {
		t.Errorf("empty bucket: expected zeroes, got (%f,%f)", lo, hi)
	}
	if lo, hi := BucketMinMax([]float32{0.5}); lo != 0.5 || hi != 0.5 {
		t.Errorf("single sample: expected (0.5,0.5), got (%f,%f)", lo, hi)
	}
	lo, hi := BucketMinMax([]float32{-0.25, 0.75, -1, 0.5})
	if lo != -1 || hi != 0.75 {
		t.Errorf("expected (-1,0.75), got (%f,%f)", lo, hi)
	}
}

func TestResizePinsToOnePixel(t *testing.T) {
	v := New(0, 0)
	if v.Width() != 1 || v.Height() != 1 {
		t.Errorf("expected 1x1 minimum, got %dx%d", v.Width(), v.Height())
	}

	v.Resize(-5, 10)
	if v.Width() != 1 || v.Height() != 10 {
		t.Errorf("expected 1x10, got %dx%d", v.Width(), v.Height())
	}
}

func TestRangeLen(t *testing.T) {
	if got := (Range{Start: 3, End: 8}).Len(); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if got := (Range{Start: 8, End: 3}).Len(); got != 0 {
		t.Errorf("inverted range should have length 0, got %d", got)
	}
	if !(Range{Start: 4, End: 4}).Empty() {
		t.Error("zero-width range should be empty")
	}
}
