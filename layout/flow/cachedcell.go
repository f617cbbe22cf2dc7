package flow

import (
	"github.com/andreyvit/flowtype/layout"
	"github.com/minio/highwayhash"
)

// cellKey is the 128-bit fingerprint a CachedCell is keyed on, folded from
// whatever inputs a Single/Multi/Par child's layout depends on: its own
// content identity plus the active cutout geometry (spec.md §4.6 "Cached
// cell" — relaying must not recompute a child whose inputs haven't
// changed).
type cellKey struct {
	hi, lo uint64
}

// CachedCell memoizes the single most recent layout of a value keyed by a
// cellKey, so a Distributor retry (triggered by stopRelayout with an
// unchanged cutout geometry) reuses prior work instead of relaying it out.
// Grounded on grailbio-bio's content-addressed caching idiom, adapted here
// with highwayhash supplying the fingerprint instead of a content hash over
// file bytes.
type CachedCell[T any] struct {
	valid bool
	key   cellKey
	value T
}

// Get returns the cached value if key matches the last stored key.
func (c *CachedCell[T]) Get(key cellKey) (T, bool) {
	if c.valid && c.key == key {
		return c.value, true
	}
	var zero T
	return zero, false
}

// Set stores value under key, evicting whatever was cached before.
func (c *CachedCell[T]) Set(key cellKey, value T) {
	c.valid = true
	c.key = key
	c.value = value
}

// Clear empties the cell.
func (c *CachedCell[T]) Clear() {
	var zero T
	c.valid = false
	c.value = zero
}

// childCellKey builds the cache key for a Single/Multi/Par child: the
// child's own Location (its content identity, since two children never
// share a Location) folded with the region size it's being laid out
// against and the cutout geometry active there. Embedding the region size
// is what makes a relayout triggered by a later Wrap/Masthead correctly
// miss the cache instead of reusing a frame sized for the old region
// (spec.md §5 "prior cached layout results remain valid because their
// cache keys embed the region sizes").
func childCellKey(loc Location, size layout.Size, cutouts []Cutout) cellKey {
	buf := make([]byte, 24, 24+40*len(cutouts))
	putU64(buf[0:8], uint64(loc))
	putU64(buf[8:16], size.Width.Bits())
	putU64(buf[16:24], size.Height.Bits())
	for _, c := range cutouts {
		key := c.hashKey()
		buf = append(buf, key[:]...)
	}
	sum := highwayhash.Sum(buf, highwayHashKey)
	return cellKey{hi: beU64(sum[0:8]), lo: beU64(sum[8:16])}
}
