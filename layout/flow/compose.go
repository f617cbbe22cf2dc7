package flow

import "github.com/andreyvit/flowtype/layout"

// Work is the composer's mutable cursor over the prepared child list, plus
// the at-most-one multi-spill and at-most-one par-spill pending from a
// prior region (spec.md §3 "Work queue and spill").
type Work struct {
	Children []Child
	Index    int
	Multi    *MultiSpill
	Par      *ParSpill
	Tags     []Location
}

// NewWork starts a cursor at the beginning of a freshly-collected child
// list.
func NewWork(children []Child) *Work {
	return &Work{Children: children}
}

// Head returns the child the cursor currently points at, if any.
func (w *Work) Head() (Child, bool) {
	if w.Index >= len(w.Children) {
		return nil, false
	}
	return w.Children[w.Index], true
}

// Advance moves the cursor past the current child.
func (w *Work) Advance() {
	w.Index++
}

// Done reports whether every child has been consumed.
func (w *Work) Done() bool {
	return w.Index >= len(w.Children)
}

// Clone copies the cursor position and spill pointers (not the underlying
// child slice, which is shared and immutable once collected) so a
// relayout retry can restart from a known-good snapshot.
func (w *Work) Clone() *Work {
	return &Work{
		Children: w.Children,
		Index:    w.Index,
		Multi:    w.Multi,
		Par:      w.Par,
		Tags:     append([]Location(nil), w.Tags...),
	}
}

// Composer is the external collaborator that owns everything that must
// persist across region boundaries: the work cursor and spills, the float
// queue, footnote registration, and the active cutout list (spec.md §6
// "Composer"). flow.Distribute is called once per region by a composer
// implementation; this package ships InMemoryComposer as a reference
// implementation exercised by tests and cmd/flowdemo.
type Composer interface {
	Engine() *Engine
	Work() *Work
	Cutouts() []Cutout
	InsertionWidth() layout.Abs

	// Float delegates a floating Placed child. The composer may need to
	// re-flow the region area to make room, in which case it returns a
	// stopRelayout signal.
	Float(child *PlacedChild, regions *layout.Regions, hasFrame bool) (stop, error)

	// Wrap and Masthead register a sidebar's cutout. The composer decides
	// whether the new cutout requires redoing the current region.
	Wrap(child *WrapChild, regions *layout.Regions, y layout.Abs, hasFrame bool) (stop, error)
	Masthead(child *MastheadChild, regions *layout.Regions, y layout.Abs, hasFrame bool) (stop, error)

	// Footnotes registers footnotes found within frame for later
	// placement by page composition above flow.
	Footnotes(regions *layout.Regions, frame *layout.Frame, height layout.Abs, breakable bool) error
}

// InMemoryComposer is a minimal, non-paginating reference Composer: floats
// are placed immediately against the region they're queued in (no
// deferred float queue across regions), wraps/masthead cutouts are
// recorded directly without ever requesting a relayout, and footnotes are
// collected into a slice for the caller to inspect. It exists to exercise
// flow.Distribute end to end in tests and cmd/flowdemo without a full page
// composer attached.
type InMemoryComposer struct {
	engine       *Engine
	work         *Work
	cutouts      []Cutout
	insertionW   layout.Abs
	footnotes    []*layout.Frame
	placedFloats []*layout.Frame
}

// NewInMemoryComposer builds a Composer around a freshly collected child
// list, ready for repeated Distribute calls.
func NewInMemoryComposer(engine *Engine, children []Child, insertionWidth layout.Abs) *InMemoryComposer {
	return &InMemoryComposer{
		engine:     engine,
		work:       NewWork(children),
		insertionW: insertionWidth,
	}
}

func (c *InMemoryComposer) Engine() *Engine       { return c.engine }
func (c *InMemoryComposer) Work() *Work           { return c.work }
func (c *InMemoryComposer) Cutouts() []Cutout     { return c.cutouts }
func (c *InMemoryComposer) InsertionWidth() layout.Abs { return c.insertionW }

func (c *InMemoryComposer) Float(child *PlacedChild, regions *layout.Regions, hasFrame bool) (stop, error) {
	frame, err := child.Layout(c.engine, regions.First())
	if err != nil {
		return nil, err
	}
	c.placedFloats = append(c.placedFloats, frame)
	return nil, nil
}

func (c *InMemoryComposer) Wrap(child *WrapChild, regions *layout.Regions, y layout.Abs, hasFrame bool) (stop, error) {
	frame, err := c.engine.Single.LayoutSingle(child.Body, regions.First())
	if err != nil {
		return nil, err
	}
	child.frame = frame
	c.cutouts = append(c.cutouts, Cutout{
		YStart:    y,
		YEnd:      regions.Full,
		Side:      child.Side,
		Width:     frame.Width(),
		Clearance: child.Clearance,
	})
	return nil, nil
}

func (c *InMemoryComposer) Masthead(child *MastheadChild, regions *layout.Regions, y layout.Abs, hasFrame bool) (stop, error) {
	region := regions.First()
	frame, err := c.engine.Single.LayoutSingle(child.Body, region.WithSize(layout.Size{Width: child.Width, Height: region.Height()}))
	if err != nil {
		return nil, err
	}
	if frame.Height() > region.Height() {
		// The in-memory reference composer does not model continuations
		// across regions, so MastheadOverflowPaginate is handled like
		// MastheadOverflowClip: warn and truncate the frame to the region.
		if c.engine.Warnings != nil {
			c.engine.Warnings.Warn("masthead content clipped", child.Location)
		}
		frame.SetSize(layout.Size{Width: frame.Width(), Height: region.Height()})
	}
	child.frame = frame
	c.cutouts = append(c.cutouts, Cutout{
		YStart:    y,
		YEnd:      regions.Full,
		Side:      child.Side,
		Width:     child.Width,
		Clearance: child.Clearance,
	})
	return nil, nil
}

func (c *InMemoryComposer) Footnotes(regions *layout.Regions, frame *layout.Frame, height layout.Abs, breakable bool) error {
	c.footnotes = append(c.footnotes, frame)
	return nil
}

// PlacedFloats returns every frame placed by Float so far, for tests and
// cmd/flowdemo to inspect.
func (c *InMemoryComposer) PlacedFloats() []*layout.Frame { return c.placedFloats }

// FootnoteFrames returns every frame registered by Footnotes so far.
func (c *InMemoryComposer) FootnoteFrames() []*layout.Frame { return c.footnotes }
