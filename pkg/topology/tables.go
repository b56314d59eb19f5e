package topology

import "github.com/matzehuels/glyphtools/pkg/glyph"

// layout is the static addressing data of one columns model.
//
// whole[g] lists the columns lit by glyph g+1 as a whole. zones is the flat
// per-zone table (nil when the model has no zone addressing); it holds one
// entry per undivided glyph and one entry per zone of a subdivided glyph, in
// glyph order. zoneCounts[g] is the number of zones of glyph g+1 (0 when the
// glyph is not subdivided). coarse[g] is the 5-column bucket for CUSTOM1.
type layout struct {
	whole      [][]int
	zones      []int
	zoneCounts []int
	coarse     []int
}

func span(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func reversed(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := to - 1; i >= from; i-- {
		out = append(out, i)
	}
	return out
}

func concat(parts ...[]int) []int {
	var out []int
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// =============================================================================
// PHONE1: camera, diagonal, battery (4 zones), USB line (8 zones), USB dot
// =============================================================================

var phone1Coarse = []int{0, 1, 2, 3, 4}

var phone1Five = layout{
	whole:  [][]int{{0}, {1}, {2}, {3}, {4}},
	coarse: phone1Coarse,
}

var phone1Fifteen = layout{
	whole: [][]int{{0}, {1}, span(2, 6), span(7, 15), {6}},
	zones: concat(
		[]int{0, 1},
		[]int{4, 5, 2, 3}, // battery: top right, top left, bottom left, bottom right
		reversed(7, 15),   // USB line zone 1 is the top of the line
		[]int{6},
	),
	zoneCounts: []int{0, 0, 4, 8, 0},
	coarse:     phone1Coarse,
}

// =============================================================================
// PHONE2: two camera glyphs, diagonal, six battery glyphs (top right has
// 16 zones), USB line (8 zones), USB dot
// =============================================================================

var phone2Coarse = []int{0, 0, 1, 2, 2, 2, 2, 2, 2, 3, 4}

var phone2Whole = [][]int{
	{0}, {1}, {2},
	span(3, 19),
	{19}, {20}, {21}, {22}, {23},
	span(25, 33),
	{24},
}

var phone2Eleven = layout{
	whole:  phone2Whole,
	coarse: phone2Coarse,
}

var phone2ThirtyThree = layout{
	whole: phone2Whole,
	zones: concat(
		span(0, 24),
		reversed(24, 33), // USB line zone 1 is the top of the line, then the dot
	),
	zoneCounts: []int{0, 0, 0, 16, 0, 0, 0, 0, 0, 8, 0},
	coarse:     phone2Coarse,
}

// =============================================================================
// PHONE2A: top-left arc (24 zones), middle right, bottom left
// =============================================================================

var phone2ACoarse = []int{0, 1, 2}

var phone2AWhole = [][]int{span(0, 24), {24}, {25}}

var phone2AThree = layout{
	whole:  phone2AWhole,
	coarse: phone2ACoarse,
}

var phone2ATwentySix = layout{
	whole:      phone2AWhole,
	zones:      concat(reversed(0, 24), []int{24, 25}),
	zoneCounts: []int{24, 0, 0},
	coarse:     phone2ACoarse,
}

// =============================================================================
// PHONE3A: top left (20 zones), middle right (11 zones), bottom left (5 zones)
// =============================================================================

var phone3ACoarse = []int{0, 1, 2}

var phone3AWhole = [][]int{span(0, 20), span(20, 31), span(31, 36)}

var phone3AThree = layout{
	whole:  phone3AWhole,
	coarse: phone3ACoarse,
}

var phone3AThirtySix = layout{
	whole:      phone3AWhole,
	zones:      span(0, 36),
	zoneCounts: []int{20, 11, 5},
	coarse:     phone3ACoarse,
}

// =============================================================================
// PHONE3: 25x25 matrix, one glyph whose zones are the cells (row-major)
// =============================================================================

var phone3Matrix = layout{
	whole:      [][]int{span(0, 625)},
	zones:      span(0, 625),
	zoneCounts: []int{625},
	coarse:     []int{0},
}

var layouts = map[glyph.ColumnsModel]*layout{
	glyph.FiveZone:          &phone1Five,
	glyph.FifteenZone:       &phone1Fifteen,
	glyph.ElevenZone:        &phone2Eleven,
	glyph.ThirtyThreeZone:   &phone2ThirtyThree,
	glyph.ThreeZone2A:       &phone2AThree,
	glyph.TwentySixZone:     &phone2ATwentySix,
	glyph.ThreeZone3A:       &phone3AThree,
	glyph.ThirtySixZone:     &phone3AThirtySix,
	glyph.SixTwentyFiveZone: &phone3Matrix,
}
