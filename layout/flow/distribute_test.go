package flow

import (
	"testing"

	"github.com/andreyvit/flowtype/layout"
)

func newTestRegions(width, height layout.Abs) *layout.Regions {
	return &layout.Regions{Size: layout.Size{Width: width, Height: height}, Full: height}
}

func newTestDistributor(regions *layout.Regions) *Distributor {
	return &Distributor{regions: regions}
}

// --- Scenario 1 / P1: spacing collapse ---------------------------------

func TestScenario1SpacingCollapse(t *testing.T) {
	regions := newTestRegions(300, 1000)
	d := newTestDistributor(regions)

	d.pushRel(layout.Relative{Abs: 12}, 1)
	d.pushRel(layout.Relative{Abs: 20}, 1)

	if len(d.items) != 1 {
		t.Fatalf("items = %+v, want exactly one collapsed item", d.items)
	}
	got, ok := d.items[0].(absItem)
	if !ok || got.Amount != 20 || got.Weakness != 1 {
		t.Fatalf("items[0] = %+v, want absItem{20, 1}", d.items[0])
	}
	if d.used != 20 {
		t.Errorf("used = %v, want 20", d.used)
	}
}

func TestPushRelWeakCollapseKeepsMax(t *testing.T) {
	// A weaker-or-equal push with a smaller amount is dropped outright,
	// leaving the previously kept item untouched (P1: "contains only one
	// of them ... amount is max").
	regions := newTestRegions(300, 1000)
	d := newTestDistributor(regions)

	d.pushRel(layout.Relative{Abs: 20}, 1)
	d.pushRel(layout.Relative{Abs: 12}, 1)

	if len(d.items) != 1 {
		t.Fatalf("items = %+v, want exactly one item", d.items)
	}
	got := d.items[0].(absItem)
	if got.Amount != 20 {
		t.Errorf("Amount = %v, want 20 (max kept)", got.Amount)
	}
	if d.used != 20 {
		t.Errorf("used = %v, want 20 (no double counting)", d.used)
	}

	// A strong (weakness 0) push never collapses: it is appended after the
	// weak item even with a smaller amount.
	d.pushRel(layout.Relative{Abs: 3}, 0)
	if len(d.items) != 2 {
		t.Fatalf("items = %+v, want the strong push appended", d.items)
	}
}

// --- Comment 1 / P3: pushRel must shrink regions.Size.Height -----------

func TestPushRelDecrementsRegionHeight(t *testing.T) {
	regions := newTestRegions(300, 100)
	d := newTestDistributor(regions)

	d.pushRel(layout.Relative{Abs: 30}, 0)
	if d.used != 30 || d.regions.Size.Height != 70 {
		t.Fatalf("after strong push: used=%v height=%v, want 30/70", d.used, d.regions.Size.Height)
	}

	d.pushRel(layout.Relative{Abs: 10}, 2)
	if d.used != 40 || d.regions.Size.Height != 60 {
		t.Fatalf("after weak push: used=%v height=%v, want 40/60", d.used, d.regions.Size.Height)
	}

	// Growing the same weak item in place must shrink height by only the
	// delta, not the full new amount.
	d.pushRel(layout.Relative{Abs: 25}, 2)
	if d.used != 55 || d.regions.Size.Height != 45 {
		t.Fatalf("after weak grow: used=%v height=%v, want 55/45", d.used, d.regions.Size.Height)
	}
}

// --- P3 property: bookkeeping identity holds across pushes/frames ------

func TestPropertyP3HeightNeverOutrunsUsage(t *testing.T) {
	const initial layout.Abs = 200
	regions := newTestRegions(300, initial)
	d := newTestDistributor(regions)

	d.pushRel(layout.Relative{Abs: 40}, 0)
	frame := layout.NewFrame(layout.Size{Width: 100, Height: 50})
	if _, err := d.emitFrame(frame, layout.Axes[layout.FixedAlignment]{}, false); err != nil {
		t.Fatal(err)
	}
	d.pushRel(layout.Relative{Abs: 10}, 3)

	if d.used+d.regions.Size.Height != initial {
		t.Fatalf("used(%v)+remaining(%v) = %v, want initial %v", d.used, d.regions.Size.Height, d.used+d.regions.Size.Height, initial)
	}

	// Trimming the trailing weak item must migrate its height back.
	d.trimTrailingWeak()
	if d.used+d.regions.Size.Height != initial {
		t.Fatalf("after trim: used(%v)+remaining(%v) != initial %v", d.used, d.regions.Size.Height, initial)
	}
	if d.used != 90 {
		t.Errorf("used after trim = %v, want 90 (40 strong + 50 frame)", d.used)
	}
}

// --- Comment 4: scanBack must treat any strong Abs as transparent -------

func TestScanBackSkipsStrongAbsRegardlessOfAmount(t *testing.T) {
	regions := newTestRegions(300, 1000)
	d := newTestDistributor(regions)

	d.pushFr(1, 2, nil)                        // weak fr, sits behind the strong spacer
	d.pushRel(layout.Relative{Abs: 36}, 0)     // strong, nonzero amount
	d.pushFr(2, 1, nil)                        // stronger weak fr: should reach past the strong item

	if len(d.items) != 2 {
		t.Fatalf("items = %+v, want the fr collapsed into the original slot (2 items)", d.items)
	}
	fr, ok := d.items[0].(frItem)
	if !ok || fr.Amount != 2 || fr.Weakness != 1 {
		t.Fatalf("items[0] = %+v, want frItem{2, 1, nil}", d.items[0])
	}
	if _, ok := d.items[1].(absItem); !ok {
		t.Fatalf("items[1] = %+v, want the strong abs item preserved", d.items[1])
	}
}

// --- Comment 6: trimTrailingWeak must scan through transparent items ---

func TestTrimTrailingWeakScansThroughTagAndPlaced(t *testing.T) {
	regions := newTestRegions(300, 100)
	d := newTestDistributor(regions)

	d.pushRel(layout.Relative{Abs: 15}, 2)
	d.items = append(d.items, tagItem{Location: 1})
	d.items = append(d.items, outPlacedItem{Frame: layout.NewFrame(layout.Size{}), Ref: &PlacedChild{Float: false}})

	d.trimTrailingWeak()

	if d.used != 0 {
		t.Errorf("used = %v, want 0 (weak spacing trimmed)", d.used)
	}
	if d.regions.Size.Height != 100 {
		t.Errorf("height = %v, want 100 (migrated back)", d.regions.Size.Height)
	}
	for _, it := range d.items {
		if _, ok := it.(absItem); ok {
			t.Fatalf("items still contain the weak abs: %+v", d.items)
		}
	}
	if len(d.items) != 2 {
		t.Fatalf("items = %+v, want the tag and placed item preserved", d.items)
	}
}

// --- Comment 5: weakSpacing reads without removing, and restores around Float ---

func TestWeakSpacingIsReadOnly(t *testing.T) {
	regions := newTestRegions(300, 100)
	d := newTestDistributor(regions)
	d.pushRel(layout.Relative{Abs: 12}, 4)

	if got := d.weakSpacing(); got != 12 {
		t.Fatalf("weakSpacing() = %v, want 12", got)
	}
	if len(d.items) != 1 {
		t.Fatalf("weakSpacing must not remove items, got %+v", d.items)
	}
	if d.used != 12 {
		t.Fatalf("weakSpacing must not change used, got %v", d.used)
	}
}

type floatObserver struct {
	observedHeight layout.Abs
	work           *Work
}

func (f *floatObserver) Engine() *Engine { return &Engine{} }
func (f *floatObserver) Work() *Work {
	if f.work == nil {
		f.work = &Work{}
	}
	return f.work
}
func (f *floatObserver) Cutouts() []Cutout                   { return nil }
func (f *floatObserver) InsertionWidth() layout.Abs          { return 0 }
func (f *floatObserver) Footnotes(*layout.Regions, *layout.Frame, layout.Abs, bool) error {
	return nil
}
func (f *floatObserver) Wrap(*WrapChild, *layout.Regions, layout.Abs, bool) (stop, error) {
	return nil, nil
}
func (f *floatObserver) Masthead(*MastheadChild, *layout.Regions, layout.Abs, bool) (stop, error) {
	return nil, nil
}
func (f *floatObserver) Float(child *PlacedChild, regions *layout.Regions, hasFrame bool) (stop, error) {
	f.observedHeight = regions.Size.Height
	return nil, nil
}

var _ Composer = (*floatObserver)(nil)

func TestProcessPlacedFloatRestoresWeakSpacingAroundComposerCall(t *testing.T) {
	regions := newTestRegions(300, 100)
	d := newTestDistributor(regions)
	d.pushRel(layout.Relative{Abs: 15}, 2) // used=15, height=85

	observer := &floatObserver{}
	d.composer = observer

	if _, err := d.processPlaced(&PlacedChild{Float: true}); err != nil {
		t.Fatal(err)
	}

	if observer.observedHeight != 100 {
		t.Errorf("Float observed height %v, want 100 (weak spacing restored)", observer.observedHeight)
	}
	if d.regions.Size.Height != 85 {
		t.Errorf("height after processPlaced = %v, want 85 (restored back)", d.regions.Size.Height)
	}
}

// --- Comment 2: MultiSpill.Pod threads the live region ------------------

func TestMultiSpillPodThreadsLiveRegionAndTrimsBacklog(t *testing.T) {
	last := layout.Abs(50)
	live := &layout.Regions{
		Size:    layout.Size{Width: 123, Height: 999},
		Backlog: []layout.Abs{300, 400, 50, 50},
		Last:    &last,
		Expand:  layout.Axes[bool]{X: true},
	}
	spill := &MultiSpill{
		First:         200,
		Full:          500,
		Backlog:       []layout.Abs{300},
		MinBacklogLen: 1,
	}

	pod := spill.Pod(live)

	if pod.Size.Width != 123 {
		t.Errorf("Width = %v, want live.Width() 123 (was hardcoded 0 before the fix)", pod.Size.Width)
	}
	if pod.Size.Height != spill.First {
		t.Errorf("Height = %v, want spill.First %v", pod.Size.Height, spill.First)
	}
	if pod.Expand != live.Expand {
		t.Errorf("Expand = %+v, want live.Expand %+v", pod.Expand, live.Expand)
	}
	if pod.Last != live.Last {
		t.Errorf("Last = %v, want live.Last", pod.Last)
	}

	want := []layout.Abs{300, 300, 400}
	if len(pod.Backlog) != len(want) {
		t.Fatalf("Backlog = %v, want %v", pod.Backlog, want)
	}
	for i := range want {
		if pod.Backlog[i] != want[i] {
			t.Fatalf("Backlog = %v, want %v", pod.Backlog, want)
		}
	}
}

func TestMultiSpillPodPadsShortBacklog(t *testing.T) {
	last := layout.Abs(10)
	live := &layout.Regions{Size: layout.Size{Width: 80, Height: 10}, Last: &last}
	spill := &MultiSpill{First: 100, Full: 200, MinBacklogLen: 3}

	pod := spill.Pod(live)
	if len(pod.Backlog) != 3 {
		t.Fatalf("Backlog = %v, want length 3 (padded)", pod.Backlog)
	}
}

// --- Comment 3: SingleChild/PlacedChild cache keyed on region size -----

type countingSingleLayouter struct {
	calls int
}

func (c *countingSingleLayouter) LayoutSingle(content BlockContent, region layout.Region) (*layout.Frame, error) {
	c.calls++
	return layout.NewFrame(region.Size), nil
}

type fakeBlockContent struct{}

func (fakeBlockContent) IsBlockContent() {}

func TestSingleChildCacheHitsOnSameRegionSize(t *testing.T) {
	layouter := &countingSingleLayouter{}
	engine := &Engine{Single: layouter}
	c := &SingleChild{Content: fakeBlockContent{}}

	region := layout.Region{Size: layout.Size{Width: 100, Height: 50}}
	f1, err := c.Layout(engine, region)
	if err != nil {
		t.Fatal(err)
	}
	f2, err := c.Layout(engine, region)
	if err != nil {
		t.Fatal(err)
	}
	if layouter.calls != 1 {
		t.Errorf("calls = %d, want 1 (second call should hit the cache)", layouter.calls)
	}
	if f1 != f2 {
		t.Errorf("expected the same cached frame pointer")
	}
}

func TestSingleChildCacheMissesOnDifferentRegionSize(t *testing.T) {
	layouter := &countingSingleLayouter{}
	engine := &Engine{Single: layouter}
	c := &SingleChild{Content: fakeBlockContent{}}

	if _, err := c.Layout(engine, layout.Region{Size: layout.Size{Width: 100, Height: 50}}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Layout(engine, layout.Region{Size: layout.Size{Width: 60, Height: 50}}); err != nil {
		t.Fatal(err)
	}
	if layouter.calls != 2 {
		t.Errorf("calls = %d, want 2 (a narrower region must miss the cache)", layouter.calls)
	}
}

// --- Scenario 2 / widow prevention at the Distributor boundary ---------

func TestScenario2WidowPreventionViaProcessLine(t *testing.T) {
	last := layout.Abs(1000)
	regions := &layout.Regions{Size: layout.Size{Width: 300, Height: 26}, Full: 26, Last: &last}
	d := newTestDistributor(regions)

	line := LineChild{Frame: layout.NewFrame(layout.Size{Width: 300, Height: 10}), Need: 34}
	st, err := d.processLine(line)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(stopFinish); !ok {
		t.Fatalf("stop = %#v, want stopFinish (need exceeds region and MayProgress)", st)
	}
	if len(d.items) != 0 {
		t.Fatalf("items = %+v, want the line migrated, not emitted", d.items)
	}
}

func TestProcessLineEmitsWhenNeedFits(t *testing.T) {
	regions := newTestRegions(300, 26)
	d := newTestDistributor(regions)

	line := LineChild{Frame: layout.NewFrame(layout.Size{Width: 300, Height: 10}), Need: 10}
	st, err := d.processLine(line)
	if err != nil {
		t.Fatal(err)
	}
	if st != nil {
		t.Fatalf("stop = %#v, want nil (line fits)", st)
	}
	if len(d.items) != 1 {
		t.Fatalf("items = %+v, want the line appended", d.items)
	}
	if d.regions.Size.Height != 16 {
		t.Errorf("height = %v, want 16", d.regions.Size.Height)
	}
}

// --- P5: ParSpill.LinesPlaced reflects lines emitted so far -------------

func TestEmitLinesWithSpillRecordsLinesPlaced(t *testing.T) {
	last := layout.Abs(1000)
	regions := &layout.Regions{Size: layout.Size{Width: 300, Height: 15}, Full: 15, Last: &last}
	composer := &floatObserver{}
	d := newTestDistributor(regions)
	d.composer = composer

	ref := &ParChild{Leading: 0}
	lines := []LineChild{
		{Frame: layout.NewFrame(layout.Size{Height: 10}), Need: 10},
		{Frame: layout.NewFrame(layout.Size{Height: 10}), Need: 10}, // doesn't fit after the first
	}

	st, err := d.emitLinesWithSpill(ref, lines, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(stopFinish); !ok {
		t.Fatalf("stop = %#v, want stopFinish", st)
	}
	spill := composer.Work().Par
	if spill == nil {
		t.Fatal("expected a ParSpill to be recorded")
	}
	if spill.LinesPlaced != 3 {
		t.Errorf("LinesPlaced = %d, want 3 (skip=2 plus the one line emitted)", spill.LinesPlaced)
	}
}

// --- Scenario 6: cutout dropout forces a full re-layout on resumption ---

func TestParSpillNeedsCutoutDropoutRelayout(t *testing.T) {
	spill := &ParSpill{HadCutout: true}
	if !spill.NeedsCutoutDropoutRelayout(nil) {
		t.Error("expected a dropout relayout once no cutouts remain")
	}
	if spill.NeedsCutoutDropoutRelayout([]Cutout{{}}) {
		t.Error("a still-active cutout should not trigger dropout relayout")
	}

	noCutout := &ParSpill{HadCutout: false}
	if noCutout.NeedsCutoutDropoutRelayout(nil) {
		t.Error("a paragraph that never had a cutout never needs dropout relayout")
	}
}

// --- Scenario 5 / P4: sticky migration ----------------------------------

type stickyContent struct{ height layout.Abs }

func (stickyContent) IsBlockContent() {}

type stickySingleLayouter struct{}

func (stickySingleLayouter) LayoutSingle(content BlockContent, region layout.Region) (*layout.Frame, error) {
	sc := content.(stickyContent)
	size := layout.Size{Width: region.Size.Width, Height: sc.height}
	frame := layout.NewFrame(size)
	frame.Push(layout.Point{}, layout.ShapeItem{Shape: layout.RectShape{Size: size}})
	return frame, nil
}

type stickyComposer struct {
	engine *Engine
	work   *Work
}

func (c *stickyComposer) Engine() *Engine            { return c.engine }
func (c *stickyComposer) Work() *Work                { return c.work }
func (c *stickyComposer) Cutouts() []Cutout          { return nil }
func (c *stickyComposer) InsertionWidth() layout.Abs { return 0 }
func (c *stickyComposer) Float(*PlacedChild, *layout.Regions, bool) (stop, error)     { return nil, nil }
func (c *stickyComposer) Wrap(*WrapChild, *layout.Regions, layout.Abs, bool) (stop, error) {
	return nil, nil
}
func (c *stickyComposer) Masthead(*MastheadChild, *layout.Regions, layout.Abs, bool) (stop, error) {
	return nil, nil
}
func (c *stickyComposer) Footnotes(*layout.Regions, *layout.Frame, layout.Abs, bool) error {
	return nil
}

var _ Composer = (*stickyComposer)(nil)

func TestScenario5StickyMigration(t *testing.T) {
	engine := &Engine{Single: stickySingleLayouter{}}
	children := []Child{
		&SingleChild{Content: stickyContent{height: 1}, Sticky: true},
		&SingleChild{Content: stickyContent{height: 100}},
	}
	work := NewWork(children)
	composer := &stickyComposer{engine: engine, work: work}

	last := layout.Abs(1000)
	regions := &layout.Regions{Size: layout.Size{Width: 300, Height: 50}, Full: 50, Last: &last}

	frame, err := Distribute(composer, regions)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Height() != 0 {
		t.Errorf("region 1 height = %v, want 0 (everything migrated)", frame.Height())
	}
	if work.Index != 0 {
		t.Errorf("work.Index = %d, want 0 (both children migrated)", work.Index)
	}

	if !regions.Next() {
		t.Fatal("expected a next region")
	}
	frame2, err := Distribute(composer, regions)
	if err != nil {
		t.Fatal(err)
	}
	if frame2.Height() != 101 {
		t.Errorf("region 2 height = %v, want 101 (both blocks fit together)", frame2.Height())
	}
	if !work.Done() {
		t.Error("expected all children consumed after the second region")
	}
}
