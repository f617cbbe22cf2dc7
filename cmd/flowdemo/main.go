// Command flowdemo runs flow.Collect and flow.Distribute end to end over a
// handful of synthetic elements, paginating across a column backlog and
// printing the size of each resulting frame and placed float. It exercises flow/config's TOML/YAML
// loading the way a real composer would: load once at startup, consult the
// resolved defaults while building the element list, then hand the whole
// list to flow.Collect.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/andreyvit/flowtype/layout"
	"github.com/andreyvit/flowtype/layout/flow"
	"github.com/andreyvit/flowtype/layout/flow/config"
)

// rectContent is a demo BlockContent: a fixed-size rectangle, standing in
// for a figure or table body. flowdemo never shapes real text (no embedded
// font is available to it), so it only exercises the block/placed/wrap side
// of flow, not flow/linebreak.
type rectContent struct {
	size layout.Size
}

func (rectContent) IsBlockContent() {}

// rectLayouter is the demo's SingleBlockLayouter: it clamps the content's
// natural size to the region and draws it as a single RectShape.
type rectLayouter struct{}

func (rectLayouter) LayoutSingle(content flow.BlockContent, region layout.Region) (*layout.Frame, error) {
	rc, ok := content.(rectContent)
	if !ok {
		return layout.NewFrame(layout.Size{}), nil
	}
	size := layout.Size{
		Width:  rc.size.Width.Min(region.Size.Width),
		Height: rc.size.Height,
	}
	if region.Size.Height.IsFinite() {
		size.Height = size.Height.Min(region.Size.Height)
	}
	frame := layout.NewFrame(size)
	frame.Push(layout.Point{}, layout.ShapeItem{Shape: layout.RectShape{Size: size}})
	return frame, nil
}

func main() {
	var (
		configPath = flag.String("config", "", "path to a flow/config TOML or YAML file (defaults to built-in defaults)")
		width      = flag.Float64("width", 360, "column width in points")
		height     = flag.Float64("height", 500, "column height in points")
		columns    = flag.Int("columns", 2, "number of additional columns in the backlog")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			logger.Error("failed to load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	elements := buildElements(cfg)

	locator := &flow.Locator{}
	engine := &flow.Engine{
		Locator:  locator,
		Warnings: flow.SlogWarnings{Logger: logger},
		Single:   rectLayouter{},
	}

	base := layout.Size{Width: layout.Abs(*width), Height: layout.Abs(*height)}
	children, err := flow.Collect(engine, elements, base, layout.Axes[bool]{}, flow.FlowModeRoot)
	if err != nil {
		logger.Error("collect failed", "err", err)
		os.Exit(1)
	}

	composer := flow.NewInMemoryComposer(engine, children, 0)
	regions := layout.NewRegions(base)
	for i := 0; i < *columns; i++ {
		regions.Backlog = append(regions.Backlog, base.Height)
	}

	pageIndex := 0
	for {
		frame, err := flow.Distribute(composer, regions)
		if err != nil {
			if _, ok := err.(flow.RelayoutRequired); ok {
				continue
			}
			logger.Error("distribute failed", "err", err)
			os.Exit(1)
		}
		fmt.Printf("column %d: %.1fx%.1fpt\n", pageIndex, float64(frame.Width()), float64(frame.Height()))
		pageIndex++

		if composer.Work().Done() {
			break
		}
		if !regions.Next() {
			logger.Warn("content remains but no more columns available")
			break
		}
	}

	for i, f := range composer.PlacedFloats() {
		fmt.Printf("float %d: %.1fx%.1fpt\n", i, float64(f.Width()), float64(f.Height()))
	}
}

func loadConfig(path string) (config.Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return config.LoadTOML(path)
	case ".yaml", ".yml":
		return config.LoadYAML(path)
	default:
		return config.Config{}, fmt.Errorf("flowdemo: unrecognized config extension %q", path)
	}
}

// buildElements assembles a small, representative document: a couple of
// spaced blocks, a wrap sidebar, and a floating figure, all resolved
// against cfg's defaults the way a real composer would before calling
// flow.Collect.
func buildElements(cfg config.Config) []flow.Element {
	parSpacing := cfg.ParSpacing.ToLayout()

	return []flow.Element{
		flow.BlockElement{
			Content:    rectContent{size: layout.Size{Width: 200, Height: 80}},
			Breakable:  false,
			ChildCount: 1,
			ParSpacing: parSpacing,
		},
		flow.WrapElement{
			Side:      layout.OuterHAlignStart,
			Body:      rectContent{size: layout.Size{Width: 90, Height: 160}},
			Clearance: cfg.WrapClearanceOr(0),
		},
		flow.BlockElement{
			Content:    rectContent{size: layout.Size{Width: 200, Height: 300}},
			Breakable:  false,
			ChildCount: 1,
			ParSpacing: parSpacing,
		},
		flow.PlacedElement{
			Content: rectContent{size: layout.Size{Width: 120, Height: 60}},
			Float:   true,
			AlignY:  fixedAlign(layout.FixedAlignEnd),
		},
	}
}

func fixedAlign(a layout.FixedAlignment) *layout.FixedAlignment {
	return &a
}
