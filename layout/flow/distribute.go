package flow

import "github.com/andreyvit/flowtype/layout"

// RelayoutRequired is returned by Distribute when a wrap, masthead, or
// float changed the available space partway through processing the
// region (spec.md §4.4 "Relayout(state)"). The composer has already
// updated its cutout/float state by the time this is returned; the caller
// re-issues Distribute with the same regions value to redo the region
// from scratch against the new state (spec.md §5 "Relayout signal").
type RelayoutRequired struct {
	Scope PlacementScope
}

func (RelayoutRequired) Error() string {
	return "flow: region must be redistributed under updated cutout/float state"
}

// item is one entry of the Distributor's growing output vector, aligned
// and positioned only at finalization (spec.md §4.4 "Item variants").
type item interface{ isItem() }

type tagItem struct{ Location Location }

func (tagItem) isItem() {}

type absItem struct {
	Amount   layout.Abs
	Weakness uint8
}

func (absItem) isItem() {}

type frItem struct {
	Amount   layout.Fr
	Weakness uint8
	Block    *SingleChild // non-nil when this fraction belongs to a fractionally-sized block
}

func (frItem) isItem() {}

type outFrameItem struct {
	Frame *layout.Frame
	Align layout.Axes[layout.FixedAlignment]
}

func (outFrameItem) isItem() {}

type outPlacedItem struct {
	Frame *layout.Frame
	Ref   *PlacedChild
}

func (outPlacedItem) isItem() {}

// stickyState tracks the in-progress sticky run, per spec.md §4.4 "Sticky
// groups". snapshot is nil when no sticky run is pending.
type stickyState struct {
	snapshot *regionSnapshot
}

// regionSnapshot captures enough of the Distributor's state to rewind to
// an earlier point — used both for sticky migration and for the
// "everything in this region was migratable" finalization rule.
type regionSnapshot struct {
	itemsLen   int
	usedHeight layout.Abs
	workIndex  int
}

// Distributor fills one region with prepared children (spec.md §4.4). A
// fresh Distributor is created per Distribute call; persistent state
// (the work cursor, spills, cutouts, floats) lives on the Composer.
type Distributor struct {
	composer Composer
	regions  *layout.Regions
	items    []item
	used     layout.Abs
	sticky   stickyState
}

// Distribute packs prepared children from composer's work queue into
// regions, producing one frame. It consumes any pending multi-spill or
// par-spill first (spec.md §4.4 "Entry protocol").
func Distribute(composer Composer, regions *layout.Regions) (*layout.Frame, error) {
	d := &Distributor{composer: composer, regions: regions}
	return d.run()
}

func (d *Distributor) snapshot() regionSnapshot {
	return regionSnapshot{
		itemsLen:   len(d.items),
		usedHeight: d.used,
		workIndex:  d.composer.Work().Index,
	}
}

func (d *Distributor) restore(s regionSnapshot) {
	d.items = d.items[:s.itemsLen]
	d.used = s.usedHeight
	d.composer.Work().Index = s.workIndex
}

func (d *Distributor) run() (*layout.Frame, error) {
	entry := d.snapshot()
	work := d.composer.Work()

	if work.Multi != nil {
		st, err := d.consumeMultiSpill()
		if err != nil {
			return nil, err
		}
		if st != nil {
			return d.finishWith(entry, st)
		}
	}
	if work.Par != nil {
		st, err := d.consumeParSpill()
		if err != nil {
			return nil, err
		}
		if st != nil {
			return d.finishWith(entry, st)
		}
	}

	forced := false
	for {
		child, ok := work.Head()
		if !ok {
			break
		}
		st, err := d.processChild(child)
		if err != nil {
			return nil, err
		}
		switch s := st.(type) {
		case nil:
			work.Advance()
			continue
		case stopFinish:
			forced = s.Forced
		case stopRelayout:
			return nil, RelayoutRequired{Scope: s.Scope}
		}
		break
	}

	return d.finalize(entry, forced)
}

// finishWith handles a stop signal returned while consuming a spill before
// the main loop starts (spill resumption can itself finish the region
// immediately, e.g. the spilled content still doesn't fit).
func (d *Distributor) finishWith(entry regionSnapshot, st stop) (*layout.Frame, error) {
	switch s := st.(type) {
	case stopFinish:
		return d.finalize(entry, s.Forced)
	case stopRelayout:
		return nil, RelayoutRequired{Scope: s.Scope}
	default:
		return d.finalize(entry, false)
	}
}

// processChild dispatches one prepared child, per spec.md §4.4's
// per-variant rules. A nil stop return means "Ok: continue".
func (d *Distributor) processChild(child Child) (stop, error) {
	switch c := child.(type) {
	case TagChild:
		d.items = append(d.items, tagItem{Location: c.Location})
		return nil, nil

	case RelChild:
		d.pushRel(c.Amount, c.Weakness)
		return nil, nil

	case FrChild:
		d.pushFr(c.Amount, c.Weakness, nil)
		return nil, nil

	case LineChild:
		return d.processLine(c)

	case *ParChild:
		return d.processPar(c)

	case *SingleChild:
		return d.processSingle(c)

	case *MultiChild:
		return d.processMulti(c)

	case *PlacedChild:
		return d.processPlaced(c)

	case *WrapChild:
		return d.processWrap(c)

	case *MastheadChild:
		return d.processMasthead(c)

	case FlushChild:
		return nil, nil

	case BreakChild:
		return d.processBreak(c)

	default:
		return nil, nil
	}
}

// currentY is the cumulative height consumed so far: the sum of Abs and
// Frame items (spec.md §4.4 "y_offset = current_y()").
func (d *Distributor) currentY() layout.Abs {
	return d.used
}

// scanBack finds the first non-transparent item scanning backward from
// the end, skipping Tag items, strong (weakness-0) Abs items, and
// non-floating Placed items (spec.md §4.4's weak-spacing scan set;
// distribute.rs's keep_weak_*_spacing treats Item::Abs(_, 0) as
// transparent regardless of its amount).
func (d *Distributor) scanBack() int {
	for i := len(d.items) - 1; i >= 0; i-- {
		switch it := d.items[i].(type) {
		case tagItem:
			continue
		case absItem:
			if it.Weakness == 0 {
				continue
			}
			return i
		case outPlacedItem:
			if it.Ref == nil || !it.Ref.Float {
				continue
			}
			return i
		default:
			return i
		}
	}
	return -1
}

func (d *Distributor) resolveVertical(amount layout.Relative) layout.Abs {
	return amount.Resolve(d.regions.Height())
}

// pushRel implements spec.md §4.4's weak-spacing collapse for relative
// spacing. Every Abs item pushed or grown here must also shrink the
// region's remaining height in lockstep (distribute.rs:182's
// `self.regions.size.y -= amount`), the same bookkeeping processLine/
// emitFrame already do for frames, or later Fits() checks would ignore
// space already consumed by spacing.
func (d *Distributor) pushRel(amount layout.Relative, weakness uint8) {
	resolved := d.resolveVertical(amount)
	if weakness == 0 {
		d.items = append(d.items, absItem{Amount: resolved, Weakness: 0})
		d.used += resolved
		d.regions.Size.Height -= resolved
		return
	}

	if idx := d.scanBack(); idx >= 0 {
		switch prev := d.items[idx].(type) {
		case absItem:
			if prev.Weakness >= 1 {
				if weakness <= prev.Weakness && (weakness < prev.Weakness || resolved > prev.Amount) {
					delta := resolved - prev.Amount
					d.used += delta
					d.regions.Size.Height -= delta
					d.items[idx] = absItem{Amount: resolved, Weakness: weakness}
				}
				return
			}
		case frItem:
			if prev.Weakness == 0 && prev.Block == nil {
				return
			}
		}
	}

	d.items = append(d.items, absItem{Amount: resolved, Weakness: weakness})
	d.used += resolved
	d.regions.Size.Height -= resolved
}

// pushFr implements spec.md §4.4's weak-spacing collapse for fractional
// spacing.
func (d *Distributor) pushFr(amount layout.Fr, weakness uint8, block *SingleChild) {
	if weakness == 0 {
		d.items = append(d.items, frItem{Amount: amount, Weakness: 0, Block: block})
		return
	}

	if idx := d.scanBack(); idx >= 0 {
		if prev, ok := d.items[idx].(frItem); ok && prev.Weakness >= 1 && prev.Block == nil {
			if weakness <= prev.Weakness && (weakness < prev.Weakness || amount > prev.Amount) {
				d.items[idx] = frItem{Amount: amount, Weakness: weakness, Block: block}
			}
			return
		}
	}

	d.trimTrailingWeak()
	d.items = append(d.items, frItem{Amount: amount, Weakness: weakness, Block: block})
}

// trimTrailingWeak removes a single trailing weak spacing item (Abs or Fr),
// scanning backward through transparent Tag/Placed/strong-Abs items the
// same way distribute.rs:259-273's trim_spacing does, so e.g. a tag pushed
// after a weak spacer doesn't block the trim. Stops without removing
// anything once it reaches a Frame or an item it can't peek beyond. Used
// both before pushing fractional spacing (it's then safe to trim since no
// stronger fr spacing can exist) and at region finalize.
func (d *Distributor) trimTrailingWeak() {
	for i := len(d.items) - 1; i >= 0; i-- {
		switch it := d.items[i].(type) {
		case absItem:
			if it.Weakness > 0 {
				d.used -= it.Amount
				d.regions.Size.Height += it.Amount
				d.items = append(d.items[:i], d.items[i+1:]...)
				return
			}
			continue
		case frItem:
			if it.Weakness > 0 {
				d.items = append(d.items[:i], d.items[i+1:]...)
			}
			return
		case tagItem, outPlacedItem:
			continue
		default:
			return
		}
	}
}

// hAlignToFixed resolves a paragraph/line HAlign to a FixedAlignment,
// assuming left-to-right direction (see collector.dir's note on direction
// resolution not yet being threaded through from style resolution).
func hAlignToFixed(h layout.HAlign) layout.FixedAlignment {
	switch h {
	case layout.HAlignCenter:
		return layout.FixedAlignCenter
	case layout.HAlignEnd, layout.HAlignRight:
		return layout.FixedAlignEnd
	default:
		return layout.FixedAlignStart
	}
}

func (d *Distributor) processLine(c LineChild) (stop, error) {
	if !d.regions.Size.Height.Fits(layout.Abs(c.Need)) && d.regions.MayProgress() {
		return stopFinish{}, nil
	}
	align := layout.Axes[layout.FixedAlignment]{X: hAlignToFixed(c.Align), Y: layout.FixedAlignStart}
	d.items = append(d.items, outFrameItem{Frame: c.Frame, Align: align})
	d.used += c.Frame.Height()
	d.regions.Size.Height -= c.Frame.Height()
	d.clearStickyOn(c.Frame)
	return nil, nil
}

// processPar handles a deferred paragraph: lay it out against a
// cutout-aware width provider built from the composer's current cutout
// list, then run the shared line-emission-with-spill routine.
func (d *Distributor) processPar(c *ParChild) (stop, error) {
	yOffset := d.currentY()
	width := CutoutWidth{
		RegionWidth: d.regions.Width(),
		Cutouts:     d.composer.Cutouts(),
		YOffset:     yOffset,
		Dir:         layout.DirLTR,
	}
	combined, _, _ := d.composer.Engine().Paragraphs.LayoutParagraph(c.Content, width, 0, layout.Infinite())
	c.Width = width
	c.Lines = nil
	frames := framesOf(combined)
	_, needs := computeLineNeeds(frames, c.Leading, c.Costs)
	for i, f := range frames {
		c.Lines = append(c.Lines, LineChild{Frame: f, Align: c.Align, Need: float64(needs[i])})
	}

	d.pushRel(c.Spacing, WeaknessParagraphAuto)
	st, err := d.emitLinesWithSpill(c, c.Lines, 0, true)
	if err != nil || st != nil {
		return st, err
	}
	d.pushRel(c.Spacing, WeaknessParagraphAuto)
	return nil, nil
}

// emitLinesWithSpill implements spec.md §4.4's "Line-emission-with-spill":
// lines is the full (or already-trimmed-by-skip) set of lines to place;
// skip counts lines already emitted in a prior region; fromFreshPar is
// true only when this call originates from a freshly-processed Par child
// (not from resuming a stored ParSpill), controlling whether the work
// cursor advances when a spill is produced.
func (d *Distributor) emitLinesWithSpill(ref *ParChild, lines []LineChild, skip int, fromFreshPar bool) (stop, error) {
	for i, line := range lines {
		if i > 0 {
			d.pushRel(layout.Relative{Abs: ref.Leading}, WeaknessIntraparagraph)
		}
		fits := d.regions.Size.Height.Fits(line.Frame.Height())
		needFits := d.regions.Size.Height.Fits(layout.Abs(line.Need))
		nextHasRoom := len(d.regions.Backlog) > 0 && d.regions.Backlog[0] >= layout.Abs(line.Need)

		if (!fits && d.regions.MayProgress()) || (!needFits && nextHasRoom) {
			remaining := lines[i:]
			spill := &ParSpill{
				Child:       ref,
				Frames:      framesOfLines(remaining),
				Align:       line.Align,
				Costs:       ref.Costs,
				LinesPlaced: skip + i,
				HadCutout:   len(d.composer.Cutouts()) > 0,
			}
			d.composer.Work().Par = spill
			if fromFreshPar {
				d.composer.Work().Advance()
			}
			return stopFinish{}, nil
		}

		align := layout.Axes[layout.FixedAlignment]{X: hAlignToFixed(line.Align), Y: layout.FixedAlignStart}
		d.items = append(d.items, outFrameItem{Frame: line.Frame, Align: align})
		d.used += line.Frame.Height()
		d.regions.Size.Height -= line.Frame.Height()
		d.clearStickyOn(line.Frame)
	}
	return nil, nil
}

func framesOfLines(lines []LineChild) []*layout.Frame {
	out := make([]*layout.Frame, len(lines))
	for i, l := range lines {
		out[i] = l.Frame
	}
	return out
}

// consumeParSpill resumes a pending ParSpill at the start of a region.
func (d *Distributor) consumeParSpill() (stop, error) {
	work := d.composer.Work()
	spill := work.Par
	work.Par = nil

	lines := make([]LineChild, len(spill.Frames))
	for i, f := range spill.Frames {
		lines[i] = LineChild{Frame: f, Align: spill.Align}
	}

	if spill.NeedsCutoutDropoutRelayout(d.composer.Cutouts()) && spill.Child != nil {
		width := FixedWidth{Width: d.regions.Width()}
		combined, _, _ := d.composer.Engine().Paragraphs.LayoutParagraph(spill.Child.Content, width, 0, layout.Infinite())
		frames := framesOf(combined)
		if spill.LinesPlaced < len(frames) {
			frames = frames[spill.LinesPlaced:]
		} else {
			frames = nil
		}
		_, needs := computeLineNeeds(frames, spill.Child.Leading, spill.Costs)
		lines = lines[:0]
		for i, f := range frames {
			lines = append(lines, LineChild{Frame: f, Align: spill.Align, Need: float64(needs[i])})
		}
	}

	return d.emitLinesWithSpill(spill.Child, lines, spill.LinesPlaced, false)
}

func (d *Distributor) processSingle(c *SingleChild) (stop, error) {
	if c.Fr != nil {
		d.pushFr(*c.Fr, 0, c)
		return nil, nil
	}
	frame, err := c.Layout(d.composer.Engine(), d.regions.First())
	if err != nil {
		return nil, err
	}
	if !d.regions.Size.Height.Fits(frame.Height()) && d.regions.MayProgress() {
		return stopFinish{}, nil
	}
	return d.emitFrame(frame, c.Align, c.Sticky)
}

func (d *Distributor) emitFrame(frame *layout.Frame, align layout.Axes[layout.FixedAlignment], sticky bool) (stop, error) {
	if sticky && d.sticky.snapshot == nil && d.regions.MayProgress() {
		s := d.snapshot()
		d.sticky.snapshot = &s
	}
	d.items = append(d.items, outFrameItem{Frame: frame, Align: align})
	d.used += frame.Height()
	d.regions.Size.Height -= frame.Height()
	if !sticky {
		d.clearStickyOn(frame)
	}
	return nil, nil
}

// clearStickyOn clears a pending sticky snapshot once a non-empty,
// non-sticky frame has been emitted after it (spec.md §4.4 "A subsequent
// non-sticky non-empty frame clears the snapshot").
func (d *Distributor) clearStickyOn(frame *layout.Frame) {
	if d.sticky.snapshot != nil && !frame.IsEmpty() {
		d.sticky.snapshot = nil
	}
}

func (d *Distributor) processMulti(c *MultiChild) (stop, error) {
	if d.regions.IsFull() {
		return stopFinish{}, nil
	}
	fragment, err := c.Layout(d.composer.Engine(), *d.regions)
	if err != nil {
		return nil, err
	}
	if fragment == nil || fragment.IsEmpty() {
		return nil, nil
	}
	first := fragment.First()
	if first.IsEmpty() && fragment.Len() > 1 && d.regions.MayProgress() {
		return stopFinish{}, nil
	}
	st, err := d.emitFrame(first, c.Align, c.Sticky)
	if st != nil || err != nil {
		return st, err
	}
	if fragment.Len() > 1 {
		d.composer.Work().Multi = &MultiSpill{
			Child:         c,
			First:         d.regions.Height(),
			Full:          d.regions.Full,
			MinBacklogLen: fragment.Len() - 1,
			Consumed:      1,
		}
		return stopFinish{}, nil
	}
	return nil, nil
}

func (d *Distributor) consumeMultiSpill() (stop, error) {
	work := d.composer.Work()
	spill := work.Multi
	work.Multi = nil

	fragment, err := spill.Child.Layout(d.composer.Engine(), *spill.Pod(d.regions))
	if err != nil {
		return nil, err
	}
	if fragment.Len() <= spill.Consumed {
		return nil, nil
	}
	frame := fragment.Frames()[spill.Consumed]
	st, err := d.emitFrame(frame, spill.Child.Align, spill.Child.Sticky)
	if st != nil || err != nil {
		return st, err
	}
	if fragment.Len() > spill.Consumed+1 {
		spill.Consumed++
		spill.Extend(d.regions.Height())
		work.Multi = spill
		return stopFinish{}, nil
	}
	return nil, nil
}

func (d *Distributor) processPlaced(c *PlacedChild) (stop, error) {
	if c.Float {
		// Temporarily make the trailing weak spacing's amount available
		// again before delegating: the composer's float handling may
		// trigger a relayout, and that spacing needs to be able to collapse
		// at the resulting break boundary (spec.md §4.4 "Placed";
		// distribute.rs:661-669's weak_spacing restore/un-restore).
		weak := d.weakSpacing()
		d.regions.Size.Height += weak
		st, err := d.composer.Float(c, d.regions, len(d.items) > 0)
		d.regions.Size.Height -= weak
		if err != nil || st != nil {
			return st, err
		}
		return nil, nil
	}
	frame, err := c.Layout(d.composer.Engine(), d.regions.First())
	if err != nil {
		return nil, err
	}
	d.items = append(d.items, outPlacedItem{Frame: frame, Ref: c})
	return nil, nil
}

// weakSpacing returns the amount of trailing weak Abs spacing, scanning
// backward through transparent Tag/Placed/strong-Abs items the same way
// trimTrailingWeak does, without removing anything (distribute.rs:278-287's
// weak_spacing).
func (d *Distributor) weakSpacing() layout.Abs {
	for i := len(d.items) - 1; i >= 0; i-- {
		switch it := d.items[i].(type) {
		case absItem:
			if it.Weakness > 0 {
				return it.Amount
			}
			continue
		case tagItem, outPlacedItem:
			continue
		default:
			return 0
		}
	}
	return 0
}

func (d *Distributor) processWrap(c *WrapChild) (stop, error) {
	y := d.currentY()
	st, err := d.composer.Wrap(c, d.regions, y, len(d.items) > 0)
	return st, err
}

func (d *Distributor) processMasthead(c *MastheadChild) (stop, error) {
	y := d.currentY()
	st, err := d.composer.Masthead(c, d.regions, y, len(d.items) > 0)
	return st, err
}

func (d *Distributor) processBreak(c BreakChild) (stop, error) {
	if c.Weak && len(d.items) == 0 {
		return nil, nil
	}
	if d.regions.MayProgress() {
		d.composer.Work().Advance()
		return stopFinish{Forced: true}, nil
	}
	return nil, nil
}

// isMigratable reports whether an item contributes no meaningful content
// and can be silently carried into the next region (spec.md §4.4
// "Finalization": tags, zero-sized frames carrying only links/tags,
// non-floating placed).
func isMigratable(it item) bool {
	switch v := it.(type) {
	case tagItem:
		return true
	case outFrameItem:
		return v.Frame.IsEmpty()
	case outPlacedItem:
		return v.Ref == nil || !v.Ref.Float
	default:
		return false
	}
}

func (d *Distributor) finalize(entry regionSnapshot, forced bool) (*layout.Frame, error) {
	if forced {
		// Flush pending tags: nothing extra to do, tags are already
		// ordinary items in d.items.
	} else {
		allMigratable := true
		for _, it := range d.items {
			if !isMigratable(it) {
				allMigratable = false
				break
			}
		}
		if allMigratable && len(d.items) > 0 {
			d.restore(entry)
		} else if d.sticky.snapshot != nil {
			d.restore(*d.sticky.snapshot)
			d.sticky.snapshot = nil
		}
	}

	d.trimTrailingWeak()

	totalFr := layout.Fr(0)
	for _, it := range d.items {
		if f, ok := it.(frItem); ok {
			totalFr += f.Amount
		}
	}

	var frSpace layout.Abs
	regionFull := d.regions.Full
	if regionFull.IsFinite() {
		frSpace = (regionFull - d.used).Max(0)
	}

	outSize := layout.Size{
		Width:  d.regions.Size.Width,
		Height: d.used,
	}
	if d.regions.Expand.Y {
		outSize.Height = regionFull
	}
	if d.regions.Expand.X {
		outSize.Width = d.regions.Size.Width
	}

	frame := layout.NewFrame(outSize)
	var y layout.Abs
	var ruler layout.FixedAlignment = layout.FixedAlignStart

	for _, it := range d.items {
		switch v := it.(type) {
		case tagItem:
			frame.Push(layout.Point{X: 0, Y: y}, layout.TagItem{Tag: layout.Tag{}})
		case absItem:
			y += v.Amount
		case frItem:
			if totalFr > 0 {
				share := layout.Abs(float64(v.Amount) / float64(totalFr) * float64(frSpace))
				if v.Block != nil {
					frame2, err := v.Block.Layout(d.composer.Engine(), layout.NewRegion(layout.Size{Width: d.regions.Width(), Height: share}))
					if err == nil && frame2 != nil {
						frame.PushFrame(layout.Point{X: 0, Y: y}, frame2)
					}
				}
				y += share
			}
		case outFrameItem:
			ruler = ruler.Max(v.Align.X)
			x := ruler.Position(outSize.Width - v.Frame.Width())
			frame.PushFrame(layout.Point{X: x, Y: y}, v.Frame)
			y += v.Frame.Height()
		case outPlacedItem:
			x := v.Ref.AlignX.Position(outSize.Width - v.Frame.Width())
			py := y
			if v.Ref.AlignY != nil {
				py = v.Ref.AlignY.Position(outSize.Height - v.Frame.Height())
			}
			frame.PushFrame(layout.Point{X: x, Y: py}, v.Frame)
		}
	}

	return frame, nil
}
