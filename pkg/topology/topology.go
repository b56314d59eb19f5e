// Package topology maps human glyph and zone numbers to frame-table columns.
//
// Every phone model has its own hand-built light layout, so the mapping is
// data rather than logic: one flat lookup table per [glyph.ColumnsModel].
// Glyph and zone numbers are 1-based as written in label files; zone 0
// addresses the whole glyph.
//
// # Resolution
//
// [Resolve] returns the set of columns a directive writes to. Multiple
// columns mean the same level is broadcast to all of them:
//
//	cols, err := topology.Resolve(3, 0, glyph.FifteenZone) // [2 3 4 5]
//	cols, err := topology.Resolve(4, 1, glyph.FifteenZone) // [14]
//
// [ResolveCoarse] returns the 0..4 bucket recorded in the CUSTOM1 index.
//
// An unknown glyph or zone is a TOPOLOGY_ERROR. It is never recoverable: a
// wrong write would light a different physical position.
package topology

import (
	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
)

func lookup(cm glyph.ColumnsModel) (*layout, error) {
	l, ok := layouts[cm]
	if !ok {
		return nil, errors.New(errors.ErrCodeTopology, "no topology for columns model %v", cm)
	}
	return l, nil
}

// Resolve returns the columns addressed by glyph (1-based) and zone
// (1-based, 0 for the whole glyph) under the given columns model. The
// returned slice is a fresh copy.
func Resolve(glyphIndex, zoneIndex int, cm glyph.ColumnsModel) ([]int, error) {
	l, err := lookup(cm)
	if err != nil {
		return nil, err
	}
	g := glyphIndex - 1
	if g < 0 || g >= len(l.whole) {
		return nil, errors.New(errors.ErrCodeTopology, "unknown glyph %d for %v", glyphIndex, cm)
	}

	if zoneIndex == 0 {
		return append([]int(nil), l.whole[g]...), nil
	}

	if l.zones == nil {
		return nil, errors.New(errors.ErrCodeTopology, "%v has no zone addressing (glyph %d, zone %d)", cm, glyphIndex, zoneIndex)
	}
	if zoneIndex < 0 || zoneIndex > l.zoneCounts[g] {
		return nil, errors.New(errors.ErrCodeTopology, "unknown zone %d of glyph %d for %v", zoneIndex, glyphIndex, cm)
	}

	// Earlier subdivided glyphs shift the flat index by their extra zones.
	offset := 0
	for _, n := range l.zoneCounts[:g] {
		if n > 1 {
			offset += n - 1
		}
	}
	idx := g + (zoneIndex - 1) + offset
	if idx >= len(l.zones) {
		return nil, errors.New(errors.ErrCodeTopology, "zone %d of glyph %d is outside the %v table", zoneIndex, glyphIndex, cm)
	}
	return []int{l.zones[idx]}, nil
}

// ResolveCoarse returns the 5-column bucket of glyph (1-based) used by the
// CUSTOM1 index stream.
func ResolveCoarse(glyphIndex int, cm glyph.ColumnsModel) (int, error) {
	l, err := lookup(cm)
	if err != nil {
		return 0, err
	}
	g := glyphIndex - 1
	if g < 0 || g >= len(l.coarse) {
		return 0, errors.New(errors.ErrCodeTopology, "unknown glyph %d for %v", glyphIndex, cm)
	}
	return l.coarse[g], nil
}

// Glyphs returns how many glyphs a phone model has.
func Glyphs(m glyph.PhoneModel) int {
	l, err := lookup(glyph.ColumnsFor(m, true))
	if err != nil {
		return 0
	}
	return len(l.whole)
}

// Zones returns how many zones glyph (1-based) of a phone model has.
// Zero means the glyph cannot be addressed by zone.
func Zones(m glyph.PhoneModel, glyphIndex int) int {
	l, err := lookup(glyph.ColumnsFor(m, true))
	if err != nil || glyphIndex < 1 || glyphIndex > len(l.zoneCounts) {
		return 0
	}
	return l.zoneCounts[glyphIndex-1]
}
