// Package frame builds the Glyph frame table from parsed labels.
//
// The frame table ("AUTHOR" data) has one row per time step and one column
// per physical light. The index ("CUSTOM1" data) has one entry per directive
// recording when it starts and which coarse glyph bucket it lights.
//
// Directives are applied in order with last-write-wins semantics. Writing
// over a non-zero cell is not an error, but the count is reported per label
// so callers can warn about it.
package frame

import (
	"math"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/labels"
	"github.com/matzehuels/glyphtools/pkg/raster"
	"github.com/matzehuels/glyphtools/pkg/topology"
)

// Table is a frame table. Every row has exactly Columns cells.
type Table struct {
	Columns int
	Rows    [][]int
}

// NewTable allocates a zeroed table.
func NewTable(columns, rows int) *Table {
	t := &Table{Columns: columns, Rows: make([][]int, rows)}
	for i := range t.Rows {
		t.Rows[i] = make([]int, columns)
	}
	return t
}

// RowCount returns how many rows a composition of endMS milliseconds needs.
func RowCount(endMS, stepMS float64) int {
	return int(math.Ceil(endMS / stepMS))
}

// Validate checks the table shape and that every level is in [0, maxLevel].
func (t *Table) Validate(maxLevel int) error {
	if _, err := glyph.ColumnsFromWidth(t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if len(row) != t.Columns {
			return errors.New(errors.ErrCodeFormat, "row %d has %d columns, expected %d", i, len(row), t.Columns)
		}
		for j, v := range row {
			if v < 0 || v > maxLevel {
				return errors.New(errors.ErrCodeValidation, "level %d at row %d column %d is out of range [0, %d]", v, i, j, maxLevel)
			}
		}
	}
	return nil
}

// Pad appends n empty rows.
func (t *Table) Pad(n int) {
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, make([]int, t.Columns))
	}
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{Columns: t.Columns, Rows: make([][]int, len(t.Rows))}
	for i, row := range t.Rows {
		c.Rows[i] = append([]int(nil), row...)
	}
	return c
}

// Equal reports whether two tables hold the same cells.
func (t *Table) Equal(o *Table) bool {
	if t.Columns != o.Columns || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if t.Rows[i][j] != o.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

// IndexEntry is one CUSTOM1 record.
type IndexEntry struct {
	StartMS int
	Coarse  int
}

// Index is the CUSTOM1 stream.
type Index []IndexEntry

// Overwrite records how many non-zero cells a label replaced.
type Overwrite struct {
	Label labels.Label
	Cells int
}

// Result is the output of Build.
type Result struct {
	Table      *Table
	Index      Index
	Columns    glyph.ColumnsModel
	Overwrites []Overwrite
}

// Build applies every directive in ls to a fresh table sized by the END
// label. ls must be in start-time order as returned by labels.Parse.
func Build(ls []labels.Label, cm glyph.ColumnsModel, stepMS float64) (*Result, error) {
	if !cm.Valid() {
		return nil, errors.New(errors.ErrCodeInternal, "unknown columns model %v", cm)
	}

	var end *labels.Label
	for i := range ls {
		if ls[i].Kind == labels.End {
			end = &ls[i]
			break
		}
	}
	if end == nil {
		return nil, errors.New(errors.ErrCodeFormat, "no END label found")
	}

	rows := RowCount(end.ToMS, stepMS)
	res := &Result{
		Table:   NewTable(cm.Columns(), rows),
		Columns: cm,
	}

	for _, l := range ls {
		if l.Kind != labels.Normal {
			continue
		}

		cols, err := topology.Resolve(l.Glyph, l.Zone, cm)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTopology, err, "label %q in line %d", l.Text, l.Line)
		}
		coarse, err := topology.ResolveCoarse(l.Glyph, cm)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTopology, err, "label %q in line %d", l.Text, l.Line)
		}

		samples, err := raster.Rasterize(l.FromMS, l.ToMS,
			glyph.AbsoluteLevel(l.LevelFrom), glyph.AbsoluteLevel(l.LevelTo), l.Mode, stepMS)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "label %q in line %d", l.Text, l.Line)
		}

		overwrites := 0
		for _, s := range samples {
			if s.Step < 0 || s.Step >= rows {
				continue
			}
			row := res.Table.Rows[s.Step]
			for _, c := range cols {
				if row[c] != 0 {
					overwrites++
				}
				row[c] = s.Level
			}
		}
		if overwrites > 0 {
			res.Overwrites = append(res.Overwrites, Overwrite{Label: l, Cells: overwrites})
		}

		res.Index = append(res.Index, IndexEntry{
			StartMS: int(math.RoundToEven(l.FromMS)),
			Coarse:  coarse,
		})
	}

	return res, nil
}
