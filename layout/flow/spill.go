package flow

import "github.com/andreyvit/flowtype/layout"

// MultiSpill is the continuation record for a breakable block that did not
// finish within one region (spec.md §4.5). Resumption re-invokes the
// MultiChild's layout against the merged pod (first height plus the
// collected backlog) and skips the frames already consumed.
type MultiSpill struct {
	Child         *MultiChild
	First         layout.Abs
	Full          layout.Abs
	Backlog       []layout.Abs
	MinBacklogLen int
	Consumed      int
}

// Pod reconstructs the region set this spill should be laid out against:
// the committed first height, followed by the backlog collected so far
// merged with whatever backlog the caller's live regions still carry,
// trimmed of trailing entries that just repeat the live last-region
// height, and clamped so it never shrinks below MinBacklogLen (spec.md's
// "monotonic — prevents shrinking that would invalidate cache keys").
// Width, Expand, and Last are taken from live, the Distributor's current
// regions, since those reflect the real region being resumed into rather
// than anything this spill itself knows about (distribute.rs's
// MultiSpill::layout builds its pod from the caller's live regions the
// same way).
func (s *MultiSpill) Pod(live *layout.Regions) *layout.Regions {
	backlog := append(append([]layout.Abs(nil), s.Backlog...), live.Backlog...)
	for len(backlog) > s.MinBacklogLen && live.Last != nil &&
		len(backlog) > 0 && backlog[len(backlog)-1] == *live.Last {
		backlog = backlog[:len(backlog)-1]
	}
	if len(backlog) < s.MinBacklogLen {
		padded := make([]layout.Abs, s.MinBacklogLen)
		copy(padded, backlog)
		backlog = padded
	}
	return &layout.Regions{
		Size:    layout.Size{Width: live.Width(), Height: s.First},
		Full:    s.Full,
		Backlog: backlog,
		Last:    live.Last,
		Expand:  live.Expand,
	}
}

// Extend records a new backlog region height as it becomes known, raising
// MinBacklogLen so it is never later seen as shorter than this.
func (s *MultiSpill) Extend(height layout.Abs) {
	s.Backlog = append(s.Backlog, height)
	if len(s.Backlog) > s.MinBacklogLen {
		s.MinBacklogLen = len(s.Backlog)
	}
}

// ParSpill is the continuation record for a deferred paragraph that did
// not finish within one region (spec.md §4.5).
type ParSpill struct {
	Child       *ParChild
	Frames      []*layout.Frame
	Align       layout.HAlign
	Leading     layout.Abs
	Costs       Costs
	Spacing     layout.Relative
	LinesPlaced int
	HadCutout   bool
}

// ResumeFrames returns the stored frames, for the simple case where no
// re-layout is required. If the paragraph originally had cutouts but the
// current region has none, the caller must re-lay the whole paragraph at
// full width and skip LinesPlaced lines rather than reusing Frames directly
// (spec.md §4.5, "cutout dropout").
func (s *ParSpill) ResumeFrames() []*layout.Frame {
	return s.Frames
}

// NeedsCutoutDropoutRelayout reports whether the region now distributing
// this spill requires a full re-layout because the paragraph was
// originally laid out under cutouts that no longer apply.
func (s *ParSpill) NeedsCutoutDropoutRelayout(currentCutouts []Cutout) bool {
	return s.HadCutout && len(currentCutouts) == 0
}
