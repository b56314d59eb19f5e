package topology

import (
	"reflect"
	"sort"
	"testing"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		glyph int
		zone  int
		cm    glyph.ColumnsModel
		want  []int
	}{
		{"phone1 5col camera", 1, 0, glyph.FiveZone, []int{0}},
		{"phone1 5col dot", 5, 0, glyph.FiveZone, []int{4}},
		{"phone1 15col battery", 3, 0, glyph.FifteenZone, []int{2, 3, 4, 5}},
		{"phone1 15col usb line", 4, 0, glyph.FifteenZone, []int{7, 8, 9, 10, 11, 12, 13, 14}},
		{"phone1 15col dot", 5, 0, glyph.FifteenZone, []int{6}},
		{"phone1 battery zone 1", 3, 1, glyph.FifteenZone, []int{4}},
		{"phone1 battery zone 4", 3, 4, glyph.FifteenZone, []int{3}},
		{"phone1 usb zone 1", 4, 1, glyph.FifteenZone, []int{14}},
		{"phone1 usb zone 8", 4, 8, glyph.FifteenZone, []int{7}},
		{"phone2 11col camera bottom", 2, 0, glyph.ElevenZone, []int{1}},
		{"phone2 11col usb line", 10, 0, glyph.ElevenZone, []int{25, 26, 27, 28, 29, 30, 31, 32}},
		{"phone2 11col dot", 11, 0, glyph.ElevenZone, []int{24}},
		{"phone2 top right zone 16", 4, 16, glyph.ThirtyThreeZone, []int{18}},
		{"phone2 usb zone 1", 10, 1, glyph.ThirtyThreeZone, []int{32}},
		{"phone2 usb zone 8", 10, 8, glyph.ThirtyThreeZone, []int{25}},
		{"phone2 glyph after subdivided", 5, 0, glyph.ThirtyThreeZone, []int{19}},
		{"phone2a top left zone 1", 1, 1, glyph.TwentySixZone, []int{23}},
		{"phone2a top left zone 24", 1, 24, glyph.TwentySixZone, []int{0}},
		{"phone2a bottom", 3, 0, glyph.TwentySixZone, []int{25}},
		{"phone3a middle zone 1", 2, 1, glyph.ThirtySixZone, []int{20}},
		{"phone3a bottom zone 5", 3, 5, glyph.ThirtySixZone, []int{35}},
		{"phone3 last cell", 1, 625, glyph.SixTwentyFiveZone, []int{624}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.glyph, tt.zone, tt.cm)
			if err != nil {
				t.Fatalf("Resolve(%d, %d, %v) error: %v", tt.glyph, tt.zone, tt.cm, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%d, %d, %v) = %v, want %v", tt.glyph, tt.zone, tt.cm, got, tt.want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name  string
		glyph int
		zone  int
		cm    glyph.ColumnsModel
	}{
		{"glyph zero", 0, 0, glyph.FiveZone},
		{"glyph too large", 6, 0, glyph.FiveZone},
		{"zone in whole-glyph model", 3, 1, glyph.FiveZone},
		{"zone of undivided glyph", 1, 1, glyph.FifteenZone},
		{"zone too large", 3, 5, glyph.FifteenZone},
		{"negative zone", 3, -1, glyph.FifteenZone},
		{"phone2 glyph 12", 12, 0, glyph.ThirtyThreeZone},
		{"phone2a zone 25", 1, 25, glyph.TwentySixZone},
		{"phone3 cell 626", 1, 626, glyph.SixTwentyFiveZone},
		{"unknown model", 1, 0, glyph.ColumnsModel(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.glyph, tt.zone, tt.cm)
			if !errors.Is(err, errors.ErrCodeTopology) {
				t.Errorf("Resolve(%d, %d, %v) error = %v, want topology error", tt.glyph, tt.zone, tt.cm, err)
			}
		})
	}
}

func TestResolveReturnsCopy(t *testing.T) {
	cols, err := Resolve(3, 0, glyph.FifteenZone)
	if err != nil {
		t.Fatal(err)
	}
	cols[0] = 99

	again, _ := Resolve(3, 0, glyph.FifteenZone)
	if again[0] != 2 {
		t.Errorf("mutating a result changed the table: got %v", again)
	}
}

// Every zone model must address each physical column exactly once, and a
// subdivided glyph as a whole must equal the union of its zones.
func TestZoneTablesArePermutations(t *testing.T) {
	for _, m := range glyph.PhoneModels() {
		cm := glyph.ColumnsFor(m, true)
		t.Run(cm.String(), func(t *testing.T) {
			seen := make(map[int]bool)
			for g := 1; g <= Glyphs(m); g++ {
				whole, err := Resolve(g, 0, cm)
				if err != nil {
					t.Fatalf("glyph %d: %v", g, err)
				}

				n := Zones(m, g)
				if n == 0 {
					for _, c := range whole {
						seen[c] = true
					}
					continue
				}

				var union []int
				for z := 1; z <= n; z++ {
					cols, err := Resolve(g, z, cm)
					if err != nil {
						t.Fatalf("glyph %d zone %d: %v", g, z, err)
					}
					for _, c := range cols {
						if seen[c] {
							t.Errorf("column %d addressed twice (glyph %d zone %d)", c, g, z)
						}
						seen[c] = true
					}
					union = append(union, cols...)
				}
				sort.Ints(union)
				sorted := append([]int(nil), whole...)
				sort.Ints(sorted)
				if !reflect.DeepEqual(union, sorted) {
					t.Errorf("glyph %d: zones %v do not cover whole glyph %v", g, union, sorted)
				}
			}

			if len(seen) != cm.Columns() {
				t.Errorf("addressed %d columns, want %d", len(seen), cm.Columns())
			}
			for c := range seen {
				if c < 0 || c >= cm.Columns() {
					t.Errorf("column %d outside [0, %d)", c, cm.Columns())
				}
			}
		})
	}
}

func TestResolveCoarse(t *testing.T) {
	tests := []struct {
		glyph int
		cm    glyph.ColumnsModel
		want  int
	}{
		{1, glyph.FiveZone, 0},
		{4, glyph.FifteenZone, 3},
		{2, glyph.ElevenZone, 0},
		{3, glyph.ThirtyThreeZone, 1},
		{9, glyph.ThirtyThreeZone, 2},
		{10, glyph.ThirtyThreeZone, 3},
		{11, glyph.ElevenZone, 4},
		{3, glyph.TwentySixZone, 2},
		{2, glyph.ThreeZone3A, 1},
		{1, glyph.SixTwentyFiveZone, 0},
	}

	for _, tt := range tests {
		got, err := ResolveCoarse(tt.glyph, tt.cm)
		if err != nil {
			t.Errorf("ResolveCoarse(%d, %v) error: %v", tt.glyph, tt.cm, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveCoarse(%d, %v) = %d, want %d", tt.glyph, tt.cm, got, tt.want)
		}
	}

	if _, err := ResolveCoarse(4, glyph.ThreeZone2A); !errors.Is(err, errors.ErrCodeTopology) {
		t.Errorf("unknown glyph should be a topology error, got %v", err)
	}
}

func TestGlyphsAndZones(t *testing.T) {
	tests := []struct {
		phone  glyph.PhoneModel
		glyphs int
		zones  map[int]int
	}{
		{glyph.Phone1, 5, map[int]int{1: 0, 3: 4, 4: 8, 5: 0}},
		{glyph.Phone2, 11, map[int]int{4: 16, 10: 8, 11: 0}},
		{glyph.Phone2A, 3, map[int]int{1: 24, 2: 0}},
		{glyph.Phone3A, 3, map[int]int{1: 20, 2: 11, 3: 5}},
		{glyph.Phone3, 1, map[int]int{1: 625, 2: 0}},
	}

	for _, tt := range tests {
		if got := Glyphs(tt.phone); got != tt.glyphs {
			t.Errorf("Glyphs(%v) = %d, want %d", tt.phone, got, tt.glyphs)
		}
		for g, want := range tt.zones {
			if got := Zones(tt.phone, g); got != want {
				t.Errorf("Zones(%v, %d) = %d, want %d", tt.phone, g, got, want)
			}
		}
	}
}
