// Package linebreak adapts layout/inline's Knuth-Plass line breaker into a
// flow.ParagraphLayouter: it re-invokes inline.Linebreak with a narrower
// width whenever the flow.WidthProvider reports the available width has
// shrunk since the assumption the current line set was broken against, so
// a paragraph narrows and widens around a Wrap/Masthead cutout instead of
// the single fixed width inline.Linebreak natively assumes (spec.md §4.2
// "WidthProvider").
package linebreak

import (
	"github.com/andreyvit/flowtype/layout"
	"github.com/andreyvit/flowtype/layout/flow"
	"github.com/andreyvit/flowtype/layout/inline"
)

// maxRefinements bounds how many times a paragraph is re-broken against a
// tighter width before giving up and accepting the last attempt; cutout
// geometry in practice needs at most a couple of passes to converge since
// each pass can only narrow the remaining lines, never widen them back out.
const maxRefinements = 6

// Content is the concrete flow.ParagraphContent this package produces:
// already-shaped, already-prepared paragraph text plus the config that
// drove shaping (justification, hyphenation, alignment, font size). The
// engine never inspects it; only this package's Layouter does.
type Content struct {
	Prep *inline.Preparation
}

func (Content) IsParagraphContent() {}

// NewContent shapes text into a Content ready for repeated line-breaking
// attempts at different widths. ctx supplies the loaded font faces; config
// carries the resolved paragraph style.
func NewContent(ctx *inline.ShapingContext, config *inline.Config, text string) *Content {
	shaped := inline.Shape(ctx, 0, text, config.Dir, derefLang(config.Lang), nil)
	prep := &inline.Preparation{
		Text:   text,
		Config: config,
		Items: []inline.PreparedItem{
			{Range: inline.Range{Start: 0, End: len(text)}, Item: inline.NewTextItem(shaped)},
		},
	}
	return &Content{Prep: prep}
}

func derefLang(l *inline.Lang) inline.Lang {
	if l == nil {
		return ""
	}
	return *l
}

// Layouter implements flow.ParagraphLayouter on top of inline.Linebreak and
// inline.Finalize, re-breaking against a tighter width whenever the
// WidthProvider reports less room than the previous pass assumed.
type Layouter struct{}

var _ flow.ParagraphLayouter = Layouter{}

// LayoutParagraph lays out as many lines of content as fit between
// cumulativeHeight and maxHeight, narrowing the break width to whatever the
// WidthProvider reports at each line's position. It returns the combined
// frame (one GroupItem child per line, per flow.Collect's framesOf
// convention), the height consumed, and whether the whole paragraph fit.
func (Layouter) LayoutParagraph(content flow.ParagraphContent, width flow.WidthProvider, cumulativeHeight, maxHeight layout.Abs) (*layout.Frame, layout.Abs, bool) {
	c, ok := content.(*Content)
	if !ok || c.Prep == nil {
		return layout.NewFrame(layout.Size{}), 0, true
	}

	lineHeight := estimatedLineHeight(c.Prep.Config.FontSize)
	assumed := inline.Abs(width.BaseWidth())
	var lines []inline.Line
	for attempt := 0; attempt < maxRefinements; attempt++ {
		lines = inline.Linebreak(c.Prep, assumed)
		narrowest, ok := narrowestAssumption(width, lines, cumulativeHeight, lineHeight)
		if !ok || narrowest >= assumed {
			break
		}
		assumed = narrowest
	}

	combined := layout.NewFrame(layout.Size{})
	var y layout.Abs
	complete := true
	for _, line := range lines {
		lineWidth := width.WidthAt(cumulativeHeight + y).Available
		final, err := inline.Commit(c.Prep, &line, inline.Abs(lineWidth), inline.Abs(maxHeight))
		if err != nil {
			complete = false
			break
		}
		frame := convertFrame(final)
		if maxHeight.IsFinite() && !maxHeight.Fits(y+frame.Height()) {
			complete = false
			break
		}
		combined.PushFrame(layout.Point{X: 0, Y: y}, frame)
		y += frame.Height()
	}

	combined.SetSize(layout.Size{Width: layout.Abs(assumed), Height: y})
	return combined, y, complete
}

// narrowestAssumption re-queries width at each line's estimated vertical
// span and returns the smallest available width seen, so the caller can
// decide whether the current break needs to be redone against a tighter
// constraint (a wrap/masthead cutout narrower than the paragraph's base
// width). Line positions are only estimates here (exact heights aren't
// known until Commit runs), which is why this is a bounded refinement loop
// rather than a single authoritative pass. ok is false when there is
// nothing to refine against (empty paragraph or a constant-width
// provider).
func narrowestAssumption(width flow.WidthProvider, lines []inline.Line, cumulativeHeight, lineHeight layout.Abs) (inline.Abs, bool) {
	if width.IsConstant() || len(lines) == 0 {
		return 0, false
	}
	y := cumulativeHeight
	narrowest := layout.Abs(width.BaseWidth())
	ranged, isRanged := width.(flow.WidthInRangeProvider)
	for range lines {
		var w layout.Abs
		if isRanged {
			w = ranged.WidthInRangeAt(y, y+lineHeight).Available
		} else {
			w = width.WidthAt(y).Available
		}
		if w < narrowest {
			narrowest = w
		}
		y += lineHeight
	}
	return inline.Abs(narrowest), true
}

// estimatedLineHeight approximates a line's height from the font size using
// the same 1.2x leading ratio inline.buildTextFrame assumes; it only drives
// how far down the region the refinement loop probes for narrower cutout
// width, never the actual frame geometry Commit produces.
func estimatedLineHeight(fontSize inline.Abs) layout.Abs {
	if fontSize <= 0 {
		return 1
	}
	return layout.Abs(fontSize) * 1.2
}

// convertFrame bridges inline.FinalFrame (the line-level output of
// inline.Commit) into a layout.Frame, the tree type flow.Distribute and
// flow.Collect operate on. Text runs become layout.TextItem with glyph
// positions flattened into Em-relative advances; nested frames recurse.
func convertFrame(ff *inline.FinalFrame) *layout.Frame {
	frame := layout.NewFrame(layout.Size{
		Width:  layout.Abs(ff.Size.Width),
		Height: layout.Abs(ff.Size.Height),
	})
	for _, entry := range ff.Items {
		pos := layout.Point{X: layout.Abs(entry.Pos.X), Y: layout.Abs(entry.Pos.Y)}
		switch it := entry.Item.(type) {
		case inline.FinalTextItem:
			frame.Push(pos, layout.TextItem{Glyphs: convertGlyphs(it.Text)})
		}
	}
	return frame
}

func convertGlyphs(shaped *inline.ShapedText) []layout.Glyph {
	if shaped == nil {
		return nil
	}
	kept := shaped.Glyphs.Kept()
	out := make([]layout.Glyph, 0, len(kept))
	for _, g := range kept {
		out = append(out, layout.Glyph{
			ID:       g.GlyphID,
			XAdvance: layout.Em(g.XAdvance),
			XOffset:  layout.Em(g.XOffset),
			YOffset:  layout.Em(g.YOffset),
			Cluster:  g.Range.Start,
		})
	}
	return out
}
