package linebreak

import (
	"testing"

	"github.com/andreyvit/flowtype/layout"
	"github.com/andreyvit/flowtype/layout/flow"
	"github.com/andreyvit/flowtype/layout/inline"
	"github.com/stretchr/testify/require"
)

func TestEstimatedLineHeight(t *testing.T) {
	require.Equal(t, layout.Abs(12), estimatedLineHeight(10))
	require.Equal(t, layout.Abs(1), estimatedLineHeight(0), "a non-positive font size falls back to a minimal probe height")
}

// stepWidth is a fake flow.WidthInRangeProvider that reports a constant
// width above a threshold height and a narrower one below it, modeling a
// masthead cutout active only near the top of a region.
type stepWidth struct {
	base      layout.Abs
	narrow    layout.Abs
	threshold layout.Abs
}

func (s stepWidth) WidthAt(y layout.Abs) flow.WidthInfo {
	if y < s.threshold {
		return flow.WidthInfo{Available: s.narrow}
	}
	return flow.WidthInfo{Available: s.base}
}
func (s stepWidth) BaseWidth() layout.Abs { return s.base }
func (s stepWidth) IsConstant() bool      { return false }
func (s stepWidth) WidthInRangeAt(yStart, yEnd layout.Abs) flow.WidthInfo {
	return s.WidthAt(yStart)
}

var _ flow.WidthInRangeProvider = stepWidth{}

func TestNarrowestAssumptionPrefersRangeQuery(t *testing.T) {
	w := stepWidth{base: 300, narrow: 150, threshold: 24}
	lines := make([]inline.Line, 3) // 3 lines at 12pt leading: y = 0, 12, 24
	narrowest, ok := narrowestAssumption(w, lines, 0, 12)
	require.True(t, ok)
	require.Equal(t, inline.Abs(150), narrowest, "two of the three estimated line positions (y = 0, 12) fall under the threshold")
}

func TestNarrowestAssumptionConstantProviderSkipsRefinement(t *testing.T) {
	w := flow.FixedWidth{Width: 300}
	lines := make([]inline.Line, 3)
	_, ok := narrowestAssumption(w, lines, 0, 12)
	require.False(t, ok, "a constant-width provider never needs a refinement pass")
}

func TestNarrowestAssumptionEmptyParagraph(t *testing.T) {
	w := stepWidth{base: 300, narrow: 150, threshold: 24}
	_, ok := narrowestAssumption(w, nil, 0, 12)
	require.False(t, ok)
}

func TestConvertGlyphsNilShapedText(t *testing.T) {
	require.Nil(t, convertGlyphs(nil))
}

func TestContentIsParagraphContent(t *testing.T) {
	var _ flow.ParagraphContent = Content{}
}

func TestLayoutParagraphNilContentReturnsEmptyFrame(t *testing.T) {
	var l Layouter
	frame, consumed, complete := l.LayoutParagraph(emptyContent{}, flow.FixedWidth{Width: 100}, 0, layout.Infinite())
	require.NotNil(t, frame)
	require.Equal(t, layout.Abs(0), consumed)
	require.True(t, complete)
}

type emptyContent struct{}

func (emptyContent) IsParagraphContent() {}
