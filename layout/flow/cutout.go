package flow

import (
	"github.com/andreyvit/flowtype/layout"
	"github.com/minio/highwayhash"
)

// Cutout is a vertical exclusion zone on one side of a region, created by a
// Wrap or Masthead sidebar (spec.md §3 "Cutout").
//
// y_start/y_end are half-open and region-relative: [YStart, YEnd). Equality
// and hashing use the raw IEEE-754 bit patterns of the lengths (Abs.Bits)
// rather than float equality, so memoization keyed on a Cutout is
// reproducible across calls with the same nominal geometry.
type Cutout struct {
	YStart    layout.Abs
	YEnd      layout.Abs
	Side      layout.CutoutSide
	Width     layout.Abs
	Clearance layout.Abs
}

// TotalReduction is the full width this cutout removes from its side:
// the sidebar's own width plus its clearance buffer.
func (c Cutout) TotalReduction() layout.Abs {
	return c.Width + c.Clearance
}

// Contains reports whether the cutout is active at the point y.
func (c Cutout) Contains(y layout.Abs) bool {
	return y >= c.YStart && y < c.YEnd
}

// Overlaps reports whether the cutout overlaps the half-open range
// [yStart, yEnd).
func (c Cutout) Overlaps(yStart, yEnd layout.Abs) bool {
	return c.YStart < yEnd && yStart < c.YEnd
}

// hashKey writes the cutout's raw bit patterns into a highwayhash digest so
// two structurally-equal cutouts always hash identically regardless of how
// the floats were produced.
func (c Cutout) hashKey() [40]byte {
	var buf [40]byte
	putU64(buf[0:8], c.YStart.Bits())
	putU64(buf[8:16], c.YEnd.Bits())
	putU64(buf[16:24], uint64(c.Side))
	putU64(buf[24:32], c.Width.Bits())
	putU64(buf[32:40], c.Clearance.Bits())
	return buf
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// WidthInfo is the outcome of a cutout query: the width still available
// plus how much was eaten from each logical side (spec.md §3 "WidthInfo").
type WidthInfo struct {
	Available   layout.Abs
	StartOffset layout.Abs
	EndOffset   layout.Abs
}

// FullWidth returns a WidthInfo for a region with no active cutouts.
func FullWidth(regionWidth layout.Abs) WidthInfo {
	return WidthInfo{Available: regionWidth}
}

// WidthAt computes the available width and side offsets at a single
// vertical position y, per spec.md §4.1. It is a point-query specialization
// of WidthInRange.
func WidthAt(regionWidth, y layout.Abs, cutouts []Cutout, dir layout.Dir) WidthInfo {
	return WidthInRange(regionWidth, y, y, cutouts, dir)
}

// WidthInRange computes the worst-case (narrowest) available width and side
// offsets over the half-open range [yStart, yEnd), per spec.md §4.1.
//
// Per-side reductions are the MAXIMUM total reduction of any applicable
// cutout on that side, never the sum: two overlapping sidebars on the same
// side do not stack, the widest one governs (P2, scenario 4 "Cutout max
// rule"). The available width is clamped at zero. Logical Start/End are
// then mapped to physical offsets via dir: horizontal RTL swaps Start and
// End; vertical directions treat Start as the left offset, matching the
// original's handling of Dir::TTB/Dir::BTT.
//
// An empty range (yStart == yEnd) is a point query: a cutout applies when it
// Contains yStart.
func WidthInRange(regionWidth, yStart, yEnd layout.Abs, cutouts []Cutout, dir layout.Dir) WidthInfo {
	var startReduction, endReduction layout.Abs
	for _, c := range cutouts {
		if yStart == yEnd {
			if !c.Contains(yStart) {
				continue
			}
		} else if !c.Overlaps(yStart, yEnd) {
			continue
		}
		switch c.Side {
		case layout.CutoutSideStart:
			startReduction = startReduction.Max(c.TotalReduction())
		case layout.CutoutSideEnd:
			endReduction = endReduction.Max(c.TotalReduction())
		}
	}

	available := (regionWidth - startReduction - endReduction).Max(0)

	startOffset, endOffset := startReduction, endReduction
	if dir == layout.DirRTL {
		startOffset, endOffset = endOffset, startOffset
	}
	// DirTTB/DirBTT (vertical text) treat the logical Start offset as the
	// left physical offset, same as LTR; no swap needed.

	return WidthInfo{
		Available:   available,
		StartOffset: startOffset,
		EndOffset:   endOffset,
	}
}

// CutoutsContaining returns the subset of cutouts active at point y.
func CutoutsContaining(cutouts []Cutout, y layout.Abs) []Cutout {
	var out []Cutout
	for _, c := range cutouts {
		if c.Contains(y) {
			out = append(out, c)
		}
	}
	return out
}

// CutoutsOverlapping returns the subset of cutouts overlapping the
// half-open range [yStart, yEnd).
func CutoutsOverlapping(cutouts []Cutout, yStart, yEnd layout.Abs) []Cutout {
	var out []Cutout
	for _, c := range cutouts {
		if c.Overlaps(yStart, yEnd) {
			out = append(out, c)
		}
	}
	return out
}

// highwayHashKey is a fixed all-zero key; the cutout/cell fingerprints only
// need collision resistance for in-process memoization, not adversarial
// resistance, so a static zero key is sufficient, matching grailbio-bio's
// use of highwayhash.Sum for non-adversarial content fingerprinting.
var highwayHashKey = make([]byte, 32)

// cutoutsFingerprint folds a cutout slice into a 128-bit highwayhash digest,
// used as the strong hash component of CachedCell inputs that include the
// active cutout list (Single/Multi/Par children).
func cutoutsFingerprint(cutouts []Cutout) (hi, lo uint64) {
	buf := make([]byte, 0, 40*len(cutouts))
	for _, c := range cutouts {
		key := c.hashKey()
		buf = append(buf, key[:]...)
	}
	sum := highwayhash.Sum(buf, highwayHashKey)
	return beU64(sum[0:8]), beU64(sum[8:16])
}

func beU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
