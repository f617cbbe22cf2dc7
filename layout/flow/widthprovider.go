package flow

import "github.com/andreyvit/flowtype/layout"

// WidthProvider answers how much horizontal space is available to a
// paragraph line as a function of how far down the region it starts,
// grounded on
// original_source/crates/typst-layout/src/inline/width_provider.rs.
//
// Implementations must be cheap to query repeatedly: the paragraph layouter
// queries the provider once per line, on every refinement pass.
type WidthProvider interface {
	// WidthAt returns the width info for a line whose top sits at
	// cumulativeHeight below the top of the paragraph.
	WidthAt(cumulativeHeight layout.Abs) WidthInfo

	// BaseWidth returns the width a caller should assume before any line
	// has been measured (e.g. for a first-fit estimate).
	BaseWidth() layout.Abs

	// IsConstant reports whether WidthAt returns the same value regardless
	// of cumulativeHeight, letting the line breaker skip re-querying on
	// every line when no cutout is active.
	IsConstant() bool
}

// FixedWidth is the trivial WidthProvider used when no cutout is active:
// every line gets the full region width.
type FixedWidth struct {
	Width layout.Abs
}

var _ WidthProvider = FixedWidth{}
var _ WidthInRangeProvider = FixedWidth{}

func (f FixedWidth) WidthAt(layout.Abs) WidthInfo { return FullWidth(f.Width) }
func (f FixedWidth) BaseWidth() layout.Abs        { return f.Width }
func (f FixedWidth) IsConstant() bool             { return true }
func (f FixedWidth) WidthInRangeAt(layout.Abs, layout.Abs) WidthInfo {
	return FullWidth(f.Width)
}

// CutoutWidth is the WidthProvider used while a wrap or masthead cutout is
// active in the current region: each query re-evaluates WidthInRange
// against the cutout list, so lines narrow and widen as the cursor passes
// alongside and beyond the sidebar.
type CutoutWidth struct {
	RegionWidth layout.Abs
	Cutouts     []Cutout
	// YOffset shifts cumulativeHeight into the region's own coordinate
	// space; nonzero when the paragraph does not start at the region top
	// (e.g. a paragraph placed below earlier content in the region).
	YOffset layout.Abs
	Dir     layout.Dir
}

var _ WidthProvider = CutoutWidth{}

func (c CutoutWidth) WidthAt(cumulativeHeight layout.Abs) WidthInfo {
	y := c.YOffset + cumulativeHeight
	return WidthAt(c.RegionWidth, y, c.Cutouts, c.Dir)
}

func (c CutoutWidth) BaseWidth() layout.Abs {
	return c.RegionWidth
}

func (c CutoutWidth) IsConstant() bool {
	return len(c.Cutouts) == 0
}

// WidthInRangeProvider answers a range query directly, used by the line
// breaker when it wants the worst-case width over a whole candidate line's
// height span rather than a single point, matching the original's
// line-measurement call that passes the line's [top, bottom) span.
type WidthInRangeProvider interface {
	WidthProvider
	WidthInRangeAt(yStart, yEnd layout.Abs) WidthInfo
}

var _ WidthInRangeProvider = CutoutWidth{}

func (c CutoutWidth) WidthInRangeAt(yStart, yEnd layout.Abs) WidthInfo {
	return WidthInRange(c.RegionWidth, c.YOffset+yStart, c.YOffset+yEnd, c.Cutouts, c.Dir)
}
