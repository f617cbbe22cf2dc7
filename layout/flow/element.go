package flow

import "github.com/andreyvit/flowtype/layout"

// Element is one item of the style-resolved input sequence the Collector
// consumes (spec.md §3 "Elements"). Each concrete type below corresponds
// to one of the element kinds spec.md names; flow never constructs these
// itself, only reads the fields it needs to produce a prepared Child.
type Element interface {
	isElement()
}

// TagElement carries an opaque introspection tag through collection
// unchanged, becoming a TagChild.
type TagElement struct {
	Location Location
}

func (TagElement) isElement() {}

// VElement is explicit vertical spacing: a fixed amount (weak or strong)
// or a fractional amount, per spec.md's weak-spacing collapse rules.
type VElement struct {
	Amount   layout.Relative
	Fr       layout.Fr
	IsFr     bool
	Weakness uint8 // 0 = strong; 1-5 = weak, per spec.md's collapse ladder
}

func (VElement) isElement() {}

// ParagraphElement is style-resolved paragraph text, laid out through the
// engine's ParagraphLayouter collaborator and split into individual Line
// children.
type ParagraphElement struct {
	Location Location
	Content  ParagraphContent
	Align    layout.HAlign
	Leading  layout.Abs
	Spacing  layout.Relative
	Costs    Costs
}

func (ParagraphElement) isElement() {}

// Costs mirrors Typst's ParCosts: the widow/orphan avoidance weights the
// Collector consults when deciding whether a paragraph's first/last line
// may be split off alone at a region boundary (spec.md §4.3 "need").
type Costs struct {
	Orphan float64
	Widow  float64
}

// SpacingWeakness is the ordinal weight of a resolved above/below block
// spacing value, reflecting where it came from (spec.md §4.3 "resolve
// above/below spacing with fallback ... weakness 2/3/4 depending on
// source").
type SpacingWeakness = uint8

const (
	WeaknessFractionalDefault SpacingWeakness = 2
	WeaknessBlockCustom       SpacingWeakness = 3
	WeaknessParagraphAuto     SpacingWeakness = 4
	WeaknessIntraparagraph    SpacingWeakness = 5
)

// BlockElement is a block-level child: a figure, table, nested flow, or
// similar. Breakable selects whether the Collector emits a Single or Multi
// prepared child; a non-nil Fr forces Single regardless of Breakable, since
// a fractionally sized block cannot itself span regions.
type BlockElement struct {
	Location Location
	Content  BlockContent
	Breakable bool
	Sticky   bool
	Fr       *layout.Fr
	// ChildCount is the number of children the block's own content holds;
	// the Collector sets the prepared child's Alone flag from
	// ChildCount == 1 (spec.md §4.3 "alone = (children.len() == 1)").
	ChildCount int

	// Above/Below are the resolved spacing amounts to emit as Rel children
	// bracketing this block. A nil value falls back to ParSpacing at
	// WeaknessParagraphAuto; an explicit value carries WeaknessBlockCustom.
	Above       *layout.Relative
	Below       *layout.Relative
	ParSpacing  layout.Relative
}

func (BlockElement) isElement() {}

// PlacedElement floats out of normal flow to an aligned position within
// the region (or parent scope), per spec.md §4.3's placement rules.
type PlacedElement struct {
	Location  Location
	Content   BlockContent
	AlignX    *layout.FixedAlignment
	AlignY    *layout.FixedAlignment // nil means automatic
	Scope     PlacementScope
	Float     bool
	Clearance layout.Abs
	Delta     layout.Axes[layout.Relative]
}

func (PlacedElement) isElement() {}

// WrapElement introduces a cutout sized to its laid-out body, on the side
// resolved from Side against the ambient direction (spec.md §4.7).
type WrapElement struct {
	Location  Location
	Side      layout.OuterHAlignment
	Body      BlockContent
	Clearance layout.Abs // zero means "use flow/config default"
	Scope     PlacementScope
}

func (WrapElement) isElement() {}

// MastheadElement introduces a cutout of an explicit width, independent of
// its body's measured size, with an overflow policy (spec.md §4.7).
type MastheadElement struct {
	Location  Location
	Side      layout.OuterHAlignment
	Width     layout.Abs
	Body      BlockContent
	Clearance layout.Abs // zero means "use flow/config default"
	Overflow  MastheadOverflow
	Scope     PlacementScope
}

func (MastheadElement) isElement() {}

// MastheadOverflow selects what happens when a masthead's body overflows
// its region, per original_source/.../masthead.rs.
type MastheadOverflow int

const (
	// MastheadOverflowClip truncates the body frame and emits a warning.
	MastheadOverflowClip MastheadOverflow = iota
	// MastheadOverflowPaginate continues the overflow in a later region.
	MastheadOverflowPaginate
)

// FlushElement forces all pending fractional/weak spacing to resolve
// immediately, without otherwise producing visible content.
type FlushElement struct{}

func (FlushElement) isElement() {}

// ColbreakElement ends the current column; Weak colbreaks are dropped if
// the column is already empty.
type ColbreakElement struct {
	Weak bool
}

func (ColbreakElement) isElement() {}

// PagebreakElement ends the current page. Per spec.md §6's failure table,
// it is a fatal SourceError when encountered inside a nested container
// scope rather than the root flow.
type PagebreakElement struct {
	Location Location
}

func (PagebreakElement) isElement() {}
