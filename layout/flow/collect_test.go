package flow

import (
	"testing"

	"github.com/andreyvit/flowtype/layout"
	"github.com/stretchr/testify/require"
)

func frameOfHeight(h layout.Abs) *layout.Frame {
	return layout.NewFrame(layout.Size{Width: 100, Height: h})
}

// TestComputeLineNeedsOrphanWidow exercises spec.md §4.3's need formula: the
// first line must drag the second along (orphan prevention), and the
// second-to-last must drag the last along (widow prevention), unless both
// apply to the same 3-line paragraph, in which case every line chains.
func TestComputeLineNeedsOrphanWidow(t *testing.T) {
	costs := Costs{Orphan: 1, Widow: 1}
	leading := layout.Abs(2)

	t.Run("single line has no neighbors to protect", func(t *testing.T) {
		frames := []*layout.Frame{frameOfHeight(10)}
		_, needs := computeLineNeeds(frames, leading, costs)
		require.Equal(t, []layout.Abs{10}, needs)
	})

	t.Run("two lines: first still needs the second (orphan)", func(t *testing.T) {
		frames := []*layout.Frame{frameOfHeight(10), frameOfHeight(12)}
		_, needs := computeLineNeeds(frames, leading, costs)
		require.Equal(t, layout.Abs(10+2+12), needs[0])
		require.Equal(t, layout.Abs(12), needs[1])
	})

	t.Run("four lines: only the boundary lines chain", func(t *testing.T) {
		frames := []*layout.Frame{frameOfHeight(10), frameOfHeight(11), frameOfHeight(12), frameOfHeight(13)}
		_, needs := computeLineNeeds(frames, leading, costs)
		require.Equal(t, layout.Abs(10+2+11), needs[0], "line 0 drags line 1 along")
		require.Equal(t, layout.Abs(11), needs[1], "middle lines are unaffected")
		require.Equal(t, layout.Abs(12+2+13), needs[2], "line n-2 drags the last line along")
		require.Equal(t, layout.Abs(13), needs[3])
	})

	t.Run("three lines: orphan and widow protection overlap into one chain", func(t *testing.T) {
		frames := []*layout.Frame{frameOfHeight(10), frameOfHeight(11), frameOfHeight(12)}
		_, needs := computeLineNeeds(frames, leading, costs)
		require.Equal(t, layout.Abs(10+2+11+2+12), needs[0])
	})

	t.Run("zero cost disables protection", func(t *testing.T) {
		frames := []*layout.Frame{frameOfHeight(10), frameOfHeight(11)}
		_, needs := computeLineNeeds(frames, leading, Costs{})
		require.Equal(t, layout.Abs(10), needs[0])
		require.Equal(t, layout.Abs(11), needs[1])
	})
}

// TestCollectPagebreakInContainer checks spec.md §6's failure table entry:
// a Pagebreak is fatal inside a nested container flow.
func TestCollectPagebreakInContainer(t *testing.T) {
	engine := &Engine{Warnings: DiscardWarnings{}}
	_, err := Collect(engine, []Element{PagebreakElement{}}, layout.Size{}, layout.Axes[bool]{}, FlowModeContainer)
	require.ErrorIs(t, err, errPagebreakInContainer)
}

func TestCollectPagebreakAtRoot(t *testing.T) {
	engine := &Engine{Warnings: DiscardWarnings{}}
	children, err := Collect(engine, []Element{PagebreakElement{}}, layout.Size{}, layout.Axes[bool]{}, FlowModeRoot)
	require.NoError(t, err)
	require.Empty(t, children)
}

// TestCollectBlockSpacingFallback checks spec.md §4.3: a block with no
// explicit above/below spacing falls back to ParSpacing at
// WeaknessParagraphAuto, while an explicit value carries WeaknessBlockCustom.
func TestCollectBlockSpacingFallback(t *testing.T) {
	engine := &Engine{Warnings: DiscardWarnings{}}

	t.Run("fallback to ParSpacing", func(t *testing.T) {
		parSpacing := layout.Relative{Abs: 5}
		children, err := Collect(engine, []Element{BlockElement{
			Breakable:  false,
			ParSpacing: parSpacing,
			ChildCount: 1,
		}}, layout.Size{}, layout.Axes[bool]{}, FlowModeRoot)
		require.NoError(t, err)
		require.Len(t, children, 3)

		above, ok := children[0].(RelChild)
		require.True(t, ok)
		require.Equal(t, parSpacing, above.Amount)
		require.Equal(t, WeaknessParagraphAuto, above.Weakness)

		below, ok := children[2].(RelChild)
		require.True(t, ok)
		require.Equal(t, WeaknessParagraphAuto, below.Weakness)
	})

	t.Run("explicit spacing carries WeaknessBlockCustom", func(t *testing.T) {
		explicit := layout.Relative{Abs: 9}
		children, err := Collect(engine, []Element{BlockElement{
			Breakable:  false,
			Above:      &explicit,
			Below:      &explicit,
			ChildCount: 1,
		}}, layout.Size{}, layout.Axes[bool]{}, FlowModeRoot)
		require.NoError(t, err)
		above := children[0].(RelChild)
		require.Equal(t, explicit, above.Amount)
		require.Equal(t, WeaknessBlockCustom, above.Weakness)
	})
}

// TestCollectBlockBreakableSelectsMulti checks spec.md §4.3: a breakable
// block with no fractional sizing becomes a MultiChild; anything else
// (non-breakable, or fractionally-sized even if breakable) becomes a
// SingleChild.
func TestCollectBlockBreakableSelectsMulti(t *testing.T) {
	engine := &Engine{Warnings: DiscardWarnings{}}
	fr := layout.Fr(1)

	cases := []struct {
		name      string
		el        BlockElement
		wantMulti bool
	}{
		{"breakable, no fr -> multi", BlockElement{Breakable: true, ChildCount: 1}, true},
		{"non-breakable -> single", BlockElement{Breakable: false, ChildCount: 1}, false},
		{"breakable but fractional -> single", BlockElement{Breakable: true, Fr: &fr, ChildCount: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			children, err := Collect(engine, []Element{tc.el}, layout.Size{}, layout.Axes[bool]{}, FlowModeRoot)
			require.NoError(t, err)
			require.Len(t, children, 3)
			if tc.wantMulti {
				_, ok := children[1].(*MultiChild)
				require.True(t, ok, "expected *MultiChild, got %T", children[1])
			} else {
				_, ok := children[1].(*SingleChild)
				require.True(t, ok, "expected *SingleChild, got %T", children[1])
			}
		})
	}
}

// TestCollectPlacedValidation checks spec.md §4.3's Placed validation rules:
// a non-float placement requires an explicit AlignY, and a parent-scoped
// placement must be a float.
func TestCollectPlacedValidation(t *testing.T) {
	engine := &Engine{Warnings: DiscardWarnings{}}

	t.Run("non-float without AlignY is an error", func(t *testing.T) {
		_, err := Collect(engine, []Element{PlacedElement{Float: false}}, layout.Size{}, layout.Axes[bool]{}, FlowModeRoot)
		require.ErrorIs(t, err, errNonFloatAutoAlign)
	})

	t.Run("parent scope on a non-float is an error", func(t *testing.T) {
		start := layout.FixedAlignStart
		_, err := Collect(engine, []Element{PlacedElement{
			Float:  false,
			AlignY: &start,
			Scope:  PlacementScopeParent,
		}}, layout.Size{}, layout.Axes[bool]{}, FlowModeRoot)
		require.ErrorIs(t, err, errParentScopeNonFloat)
	})

	t.Run("float with bad AlignY is an error", func(t *testing.T) {
		center := layout.FixedAlignCenter
		_, err := Collect(engine, []Element{PlacedElement{
			Float:  true,
			AlignY: &center,
		}}, layout.Size{}, layout.Axes[bool]{}, FlowModeRoot)
		require.ErrorIs(t, err, errFloatBadVAlign)
	})

	t.Run("valid float placement collects cleanly", func(t *testing.T) {
		start := layout.FixedAlignStart
		children, err := Collect(engine, []Element{PlacedElement{
			Float:  true,
			AlignY: &start,
		}}, layout.Size{}, layout.Axes[bool]{}, FlowModeRoot)
		require.NoError(t, err)
		require.Len(t, children, 1)
		_, ok := children[0].(*PlacedChild)
		require.True(t, ok)
	})
}

func TestCollectingWarningsStaysEmptyForKnownElements(t *testing.T) {
	var sink CollectingWarnings
	engine := &Engine{Warnings: &sink}
	_, err := Collect(engine, []Element{TagElement{Location: 7}, FlushElement{}}, layout.Size{}, layout.Axes[bool]{}, FlowModeRoot)
	require.NoError(t, err)
	require.Empty(t, sink.Warnings, "no unknown elements should warn")
}
