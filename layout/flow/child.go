package flow

import "github.com/andreyvit/flowtype/layout"

// Child is one item of the Collector's output: the flat list Distribute
// consumes, one per region pass (spec.md §3 "Prepared child"). Unlike
// Element, a Child already knows its own geometry or how to produce it
// on demand — collection has resolved styles, split paragraphs into
// lines, and classified spacing weakness.
type Child interface {
	isChild()
}

// TagChild carries an introspection tag to its final position in the
// frame tree without consuming space.
type TagChild struct {
	Location Location
}

func (TagChild) isChild() {}

// RelChild is resolved (non-fractional) vertical spacing: a definite
// length, possibly weak and subject to collapse against adjacent weak
// spacing and region boundaries (spec.md §4.3 "weak-spacing collapse").
type RelChild struct {
	Amount   layout.Relative
	Weakness uint8
}

func (RelChild) isChild() {}

// FrChild is fractional vertical spacing, resolved only once the region's
// total height and the sum of competing fractions are known.
type FrChild struct {
	Amount   layout.Fr
	Weakness uint8
}

func (FrChild) isChild() {}

// LineChild is a single already-broken paragraph line. Need is the height
// the line requires together with the neighbouring lines widow/orphan
// prevention keeps it with (spec.md §4.3's need formula; the paragraph's
// Costs only switch that prevention on or off): the Distributor consults it
// when a line would fall at a region boundary.
type LineChild struct {
	Frame *layout.Frame
	Align layout.HAlign
	Need  float64
}

func (LineChild) isChild() {}

// ParChild groups the LineChildren of one paragraph together with the
// width provider that produced them, so a Distributor that must re-lay
// the paragraph out after a cutout changed (a ParSpill resumption, or a
// relayout triggered by a wrap appearing mid-paragraph) can ask the
// ParagraphLayouter to lay the whole paragraph out again and skip the lines
// already placed.
type ParChild struct {
	Location Location
	Content  ParagraphContent
	Align    layout.HAlign
	Leading  layout.Abs
	Spacing  layout.Relative
	Costs    Costs

	Lines []LineChild
	Width WidthProvider
}

func (ParChild) isChild() {}

// SingleChild is a non-breaking block child, laid out once against the
// current region via SingleBlockLayouter. Sticky children migrate to the
// following region together with the sticky run they're attached to if
// the whole run doesn't fit (spec.md §4.4 "sticky"). Alone records that the
// block element held exactly one child (ChildCount == 1); the Distributor
// does not read it.
type SingleChild struct {
	Location Location
	Content  BlockContent
	Align    layout.Axes[layout.FixedAlignment]
	Sticky   bool
	Alone    bool
	Fr       *layout.Fr

	cache CachedCell[*layout.Frame] // keyed on region size, spec.md §4.6
}

func (SingleChild) isChild() {}

// Layout lays the child out against region, caching the result so a
// relayout retry against the same region doesn't redo the work; a retry
// against a differently-sized region (e.g. after a Wrap/Masthead narrowed
// it) misses the cache and relays out, per spec.md §5.
func (c *SingleChild) Layout(engine *Engine, region layout.Region) (*layout.Frame, error) {
	key := childCellKey(c.Location, region.Size, nil)
	if frame, ok := c.cache.Get(key); ok {
		return frame, nil
	}
	frame, err := engine.Single.LayoutSingle(c.Content, region)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, frame)
	return frame, nil
}

// MultiChild is a block child that may itself span several regions.
type MultiChild struct {
	Location Location
	Content  BlockContent
	Align    layout.Axes[layout.FixedAlignment]
	Sticky   bool
	Alone    bool
}

func (MultiChild) isChild() {}

// Layout lays the child out against the available regions, returning a
// fragment with one frame per region it consumed.
func (c *MultiChild) Layout(engine *Engine, regions layout.Regions) (*layout.Fragment, error) {
	return engine.Multi.LayoutMulti(c.Content, regions)
}

// PlacedChild floats to an aligned position, outside the normal vertical
// cursor (spec.md §4.3 "placement").
type PlacedChild struct {
	Location  Location
	Content   BlockContent
	AlignX    layout.FixedAlignment
	AlignY    *layout.FixedAlignment
	Scope     PlacementScope
	Float     bool
	Clearance layout.Abs
	Delta     layout.Axes[layout.Relative]

	cache CachedCell[*layout.Frame] // keyed on region size, spec.md §4.6
}

func (PlacedChild) isChild() {}

func (c *PlacedChild) Layout(engine *Engine, region layout.Region) (*layout.Frame, error) {
	key := childCellKey(c.Location, region.Size, nil)
	if frame, ok := c.cache.Get(key); ok {
		return frame, nil
	}
	frame, err := engine.Single.LayoutSingle(c.Content, region)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, frame)
	return frame, nil
}

// WrapChild introduces a cutout sized to its laid-out body.
type WrapChild struct {
	Location  Location
	Side      layout.CutoutSide
	Body      BlockContent
	Clearance layout.Abs
	Scope     PlacementScope

	frame *layout.Frame
}

func (WrapChild) isChild() {}

// MastheadChild introduces an explicit-width cutout with an overflow
// policy.
type MastheadChild struct {
	Location  Location
	Side      layout.CutoutSide
	Width     layout.Abs
	Body      BlockContent
	Clearance layout.Abs
	Overflow  MastheadOverflow
	Scope     PlacementScope

	frame *layout.Frame
}

func (MastheadChild) isChild() {}

// FlushChild forces pending weak/fractional spacing to resolve.
type FlushChild struct{}

func (FlushChild) isChild() {}

// BreakChild ends the current column. Weak is true for a soft colbreak
// dropped when the column is already empty.
type BreakChild struct {
	Weak bool
}

func (BreakChild) isChild() {}
