package flow

import "github.com/andreyvit/flowtype/layout"

// FlowMode distinguishes the root flow (where Pagebreak is legal) from a
// nested container flow (where it is rejected), per spec.md §6's failure
// table ("Pagebreak inside container").
type FlowMode int

const (
	FlowModeRoot FlowMode = iota
	FlowModeContainer
)

// ParSituation tracks whether the previous element was a paragraph, for
// heuristics around paragraph spacing collapse (spec.md §9 open question:
// whether Wrap/Masthead/Block should also count as "Consecutive" is left
// unresolved upstream and carried forward here as Other).
type ParSituation int

const (
	ParSituationOther ParSituation = iota
	ParSituationConsecutive
)

// collector holds the mutable state threaded through one Collect call.
type collector struct {
	engine         *Engine
	base           layout.Size
	expand         layout.Axes[bool]
	mode           FlowMode
	useDeferredPar bool
	parSituation   ParSituation
	children       []Child
}

// Collect transforms a style-resolved element stream into the flat prepared
// child list the Distributor consumes (spec.md §4.3). It pre-scans for any
// Wrap/Masthead: if one is present every paragraph is deferred as a Par
// child instead of being pre-laid-out as Line children, since a sidebar
// cutout may not exist yet — or may change — by the time the paragraph's
// region is actually distributed.
func Collect(engine *Engine, elements []Element, base layout.Size, expand layout.Axes[bool], mode FlowMode) ([]Child, error) {
	c := &collector{
		engine: engine,
		base:   base,
		expand: expand,
		mode:   mode,
	}
	c.useDeferredPar = hasCutoutElement(elements)

	for _, el := range elements {
		if err := c.collectOne(el); err != nil {
			return nil, err
		}
	}
	return c.children, nil
}

func hasCutoutElement(elements []Element) bool {
	for _, el := range elements {
		switch el.(type) {
		case WrapElement, MastheadElement:
			return true
		}
	}
	return false
}

func (c *collector) push(child Child) {
	c.children = append(c.children, child)
}

func (c *collector) warn(message string, loc Location) {
	if c.engine != nil && c.engine.Warnings != nil {
		c.engine.Warnings.Warn(message, loc)
	}
}

func (c *collector) collectOne(el Element) error {
	switch e := el.(type) {
	case TagElement:
		c.push(TagChild{Location: e.Location})

	case VElement:
		if e.IsFr {
			c.push(FrChild{Amount: e.Fr, Weakness: e.Weakness})
		} else {
			c.push(RelChild{Amount: e.Amount, Weakness: e.Weakness})
		}

	case ParagraphElement:
		if err := c.collectParagraph(e); err != nil {
			return err
		}
		c.parSituation = ParSituationConsecutive

	case BlockElement:
		c.collectBlock(e)
		c.parSituation = ParSituationOther

	case PlacedElement:
		if err := c.collectPlaced(e); err != nil {
			return err
		}
		c.parSituation = ParSituationOther

	case WrapElement:
		c.push(&WrapChild{
			Location:  e.Location,
			Side:      e.Side.ToCutoutSide(c.dir()),
			Body:      e.Body,
			Clearance: e.Clearance,
			Scope:     e.Scope,
		})
		c.parSituation = ParSituationOther

	case MastheadElement:
		c.push(&MastheadChild{
			Location:  e.Location,
			Side:      e.Side.ToCutoutSide(c.dir()),
			Width:     e.Width,
			Body:      e.Body,
			Clearance: e.Clearance,
			Overflow:  e.Overflow,
			Scope:     e.Scope,
		})
		c.parSituation = ParSituationOther

	case FlushElement:
		c.push(FlushChild{})

	case ColbreakElement:
		c.push(BreakChild{Weak: e.Weak})

	case PagebreakElement:
		if c.mode == FlowModeContainer {
			return errPagebreakInContainer
		}
		// Pagebreaks at the root are handled by page composition above
		// flow (out of scope here); nothing to push.

	default:
		c.warn(unknownElementWarning(el), locationOf(el))
	}
	return nil
}

// dir returns the ambient text direction used to resolve logical
// Wrap/Masthead sides into physical cutout sides. Style resolution lives
// outside this package; until it is threaded through, left-to-right is
// assumed, matching the collector's lack of any other direction signal in
// spec.md's data model.
func (c *collector) dir() layout.Dir {
	return layout.DirLTR
}

func (c *collector) collectParagraph(e ParagraphElement) error {
	if c.useDeferredPar {
		c.push(&ParChild{
			Location: e.Location,
			Content:  e.Content,
			Costs:    e.Costs,
			Spacing:  e.Spacing,
			Align:    e.Align,
			Leading:  e.Leading,
		})
		return nil
	}

	combined, _, _ := c.engine.Paragraphs.LayoutParagraph(
		e.Content,
		FixedWidth{Width: c.base.Width},
		0,
		layout.Infinite(),
	)

	frames := framesOf(combined)
	c.push(RelChild{Amount: e.Spacing, Weakness: WeaknessParagraphAuto})
	c.emitLines(frames, e.Align, e.Leading, e.Costs, 0)
	c.push(RelChild{Amount: e.Spacing, Weakness: WeaknessParagraphAuto})
	return nil
}

// framesOf extracts the per-line frame slice out of the single combined
// frame a ParagraphLayouter call returns. The non-deferred collection path
// pre-lays the whole paragraph at once (no cutout can still be pending
// once we know none exists), then re-splits it here so the same
// line-emission routine in emitLines (needed by both paths, per spec.md
// §4.3/§4.4's shared "line emission" routine) sees individual lines.
func framesOf(combined *layout.Frame) []*layout.Frame {
	if combined == nil {
		return nil
	}
	out := make([]*layout.Frame, 0, len(combined.Items()))
	for _, raw := range combined.Items() {
		pos, ok := raw.(layout.PositionedItem)
		if !ok {
			continue
		}
		if gi, ok := pos.Item.(layout.GroupItem); ok {
			out = append(out, gi.Frame)
		}
	}
	return out
}

// emitLines is the line-emission routine of spec.md §4.3: given already
// laid-out line frames, a leading, and widow/orphan costs, it computes
// `need` for each line and pushes Rel(leading) + Line children.
//
// skip is the number of lines already emitted in a prior region (nonzero
// only when resuming a ParSpill); it does not change the need formula,
// which is defined over the full line set, but callers that only want the
// remaining lines slice before calling this pass the already-trimmed
// slice and skip=0 — see distribute.go's spill resumption path for the
// exact trimming semantics.
func (c *collector) emitLines(frames []*layout.Frame, align layout.HAlign, leading layout.Abs, costs Costs, skip int) {
	lines, needs := computeLineNeeds(frames, leading, costs)
	for i, frame := range lines {
		if i > 0 {
			c.push(RelChild{Amount: layout.Relative{Abs: leading}, Weakness: WeaknessIntraparagraph})
		}
		c.push(LineChild{Frame: frame, Align: align, Need: float64(needs[i])})
	}
}

// computeLineNeeds implements spec.md §4.3's widow/orphan need formula.
// h[i] is the height of line i; l is the leading. prevent_all collapses to
// the orphan-prevention case plus the last line's height chained on.
func computeLineNeeds(frames []*layout.Frame, leading layout.Abs, costs Costs) ([]*layout.Frame, []layout.Abs) {
	n := len(frames)
	h := make([]layout.Abs, n)
	for i, f := range frames {
		if f != nil {
			h[i] = f.Height()
		}
	}
	nonEmpty := func(i int) bool { return i >= 0 && i < n && h[i] > 0 }

	preventOrphans := costs.Orphan > 0 && n >= 2 && nonEmpty(1)
	preventWidows := costs.Widow > 0 && n >= 2 && nonEmpty(n-2)
	preventAll := n == 3 && preventOrphans && preventWidows

	needs := make([]layout.Abs, n)
	for i := range frames {
		switch {
		case i == 0 && preventAll:
			needs[i] = h[0] + leading + h[1] + leading + h[n-1]
		case i == 0 && preventOrphans:
			needs[i] = h[0] + leading + h[1]
		case i >= 2 && i+2 == n && preventWidows:
			needs[i] = h[n-2] + leading + h[n-1]
		default:
			needs[i] = h[i]
		}
	}
	return frames, needs
}

func (c *collector) collectBlock(e BlockElement) {
	above := e.Above
	aboveWeakness := SpacingWeakness(WeaknessBlockCustom)
	if above == nil {
		v := e.ParSpacing
		above = &v
		aboveWeakness = WeaknessParagraphAuto
	}
	below := e.Below
	belowWeakness := SpacingWeakness(WeaknessBlockCustom)
	if below == nil {
		v := e.ParSpacing
		below = &v
		belowWeakness = WeaknessParagraphAuto
	}

	c.push(RelChild{Amount: *above, Weakness: aboveWeakness})

	alone := e.ChildCount == 1
	align := layout.Axes[layout.FixedAlignment]{X: layout.FixedAlignStart, Y: layout.FixedAlignStart}
	if !e.Breakable || e.Fr != nil {
		c.push(&SingleChild{
			Location: e.Location,
			Content:  e.Content,
			Align:    align,
			Sticky:   e.Sticky,
			Alone:    alone,
			Fr:       e.Fr,
		})
	} else {
		c.push(&MultiChild{
			Location: e.Location,
			Content:  e.Content,
			Align:    align,
			Sticky:   e.Sticky,
			Alone:    alone,
		})
	}

	c.push(RelChild{Amount: *below, Weakness: belowWeakness})
}

func (c *collector) collectPlaced(e PlacedElement) error {
	if e.Float {
		if e.AlignY != nil {
			switch *e.AlignY {
			case layout.FixedAlignStart, layout.FixedAlignEnd:
				// ok
			default:
				return errFloatBadVAlign
			}
		}
	} else {
		if e.AlignY == nil {
			return errNonFloatAutoAlign
		}
		if e.Scope == PlacementScopeParent {
			return errParentScopeNonFloat
		}
	}

	alignX := layout.FixedAlignStart
	if e.AlignX != nil {
		alignX = *e.AlignX
	}

	c.push(&PlacedChild{
		Location:  e.Location,
		Content:   e.Content,
		AlignX:    alignX,
		AlignY:    e.AlignY,
		Scope:     e.Scope,
		Float:     e.Float,
		Clearance: e.Clearance,
		Delta:     e.Delta,
	})
	return nil
}

func unknownElementWarning(el Element) string {
	return elementName(el) + " was ignored during paged export"
}

func elementName(el Element) string {
	switch el.(type) {
	case TagElement:
		return "tag"
	case VElement:
		return "v"
	case ParagraphElement:
		return "paragraph"
	case BlockElement:
		return "block"
	case PlacedElement:
		return "place"
	case WrapElement:
		return "wrap"
	case MastheadElement:
		return "masthead"
	case FlushElement:
		return "flush"
	case ColbreakElement:
		return "colbreak"
	case PagebreakElement:
		return "pagebreak"
	default:
		return "element"
	}
}

func locationOf(el Element) Location {
	switch e := el.(type) {
	case TagElement:
		return e.Location
	case ParagraphElement:
		return e.Location
	case BlockElement:
		return e.Location
	case PlacedElement:
		return e.Location
	case WrapElement:
		return e.Location
	case MastheadElement:
		return e.Location
	case PagebreakElement:
		return e.Location
	default:
		return 0
	}
}
