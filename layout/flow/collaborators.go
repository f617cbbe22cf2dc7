package flow

import (
	"log/slog"

	"github.com/andreyvit/flowtype/layout"
)

// WarnSink receives non-fatal diagnostics emitted while collecting or
// distributing (e.g. masthead overflow clipped, a float could not find a
// region). Grounded on boergens-gotypst's foundations.Sink, which plumbs a
// warning sink through every layout call instead of returning warnings out
// of band; unlike Sink (which accumulates a []SourceDiagnostic for a
// caller to inspect after compilation), flow's sink emits immediately
// since nothing here batches a final diagnostics report.
type WarnSink interface {
	Warn(message string, location Location)
}

// DiscardWarnings is a WarnSink that drops everything; useful for tests
// that don't care about diagnostics.
type DiscardWarnings struct{}

func (DiscardWarnings) Warn(string, Location) {}

// CollectingWarnings accumulates every warning in order, mirroring
// boergens-gotypst's foundations.Sink.Warn append-only behavior, for
// callers (tests, flowdemo) that want to inspect diagnostics after a run
// rather than stream them.
type CollectingWarnings struct {
	Warnings []Warning
}

// Warning is one recorded diagnostic.
type Warning struct {
	Message  string
	Location Location
}

func (c *CollectingWarnings) Warn(message string, location Location) {
	c.Warnings = append(c.Warnings, Warning{Message: message, Location: location})
}

// SlogWarnings reports warnings through a structured log/slog.Logger, the
// way flowdemo and other long-running callers want diagnostics to reach
// stderr/ops tooling rather than an in-memory slice.
type SlogWarnings struct {
	Logger *slog.Logger
}

func (s SlogWarnings) Warn(message string, location Location) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(message, slog.Uint64("location", uint64(location)))
}

// Engine bundles the collaborators the Collector and Distributor need but
// do not implement themselves: a locator for minting Locations, a warning
// sink, and the paragraph/block layouters. Passed down through Collect and
// Distribute the way boergens-gotypst threads its Engine through layout
// calls.
type Engine struct {
	Locator    *Locator
	Warnings   WarnSink
	Paragraphs ParagraphLayouter
	Single     SingleBlockLayouter
	Multi      MultiBlockLayouter
}

// ParagraphLayouter is the external collaborator that turns prepared
// paragraph content into laid-out lines given a width provider, rather
// than a single fixed width — this is what lets a paragraph narrow and
// widen around a wrap or masthead cutout. flow/linebreak implements this
// on top of layout/inline.
type ParagraphLayouter interface {
	// LayoutParagraph lays out as many lines as fit starting at
	// cumulativeHeight, returning the produced frame, the total height
	// consumed, and whether every line of the paragraph was placed (false
	// means the remainder must continue as a ParSpill in the next
	// region).
	LayoutParagraph(content ParagraphContent, width WidthProvider, cumulativeHeight, maxHeight layout.Abs) (frame *layout.Frame, consumed layout.Abs, complete bool)
}

// SingleBlockLayouter lays out a block-level child that produces exactly
// one frame per call (spec.md's "Single" prepared child): a figure, a
// table, an image, or similar non-breaking content.
type SingleBlockLayouter interface {
	LayoutSingle(content BlockContent, region layout.Region) (*layout.Frame, error)
}

// MultiBlockLayouter lays out a block-level child that may itself span
// multiple regions (spec.md's "Multi" prepared child): nested flow
// content, a multi-page table, or similar.
type MultiBlockLayouter interface {
	LayoutMulti(content BlockContent, regions layout.Regions) (*layout.Fragment, error)
}

// ParagraphContent is an opaque handle to style-resolved paragraph text;
// flow never inspects it directly, only hands it to a ParagraphLayouter.
// The marker method is exported (unlike Child/Element's sealed interfaces)
// because the concrete content type lives in the collaborator's own
// package (flow/linebreak), not in flow itself.
type ParagraphContent interface {
	IsParagraphContent()
}

// BlockContent is an opaque handle to style-resolved block content; flow
// never inspects it directly, only hands it to a Single/MultiBlockLayouter.
// Exported for the same reason as ParagraphContent.
type BlockContent interface {
	IsBlockContent()
}
