package codec

import (
	"strconv"
	"strings"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/frame"
	"github.com/matzehuels/glyphtools/pkg/glyph"
)

// =============================================================================
// AUTHOR rows
// =============================================================================

// FormatAuthor renders each table row as "a,b,c," text.
func FormatAuthor(t *frame.Table) []string {
	out := make([]string, len(t.Rows))
	var sb strings.Builder
	for i, row := range t.Rows {
		sb.Reset()
		for _, v := range row {
			sb.WriteString(strconv.Itoa(v))
			sb.WriteByte(',')
		}
		out[i] = sb.String()
	}
	return out
}

// ParseAuthor parses AUTHOR rows. Empty cells and blank lines are dropped;
// every remaining row must have the same width, and the width must belong
// to a known columns model.
func ParseAuthor(lines []string) (*frame.Table, error) {
	var rows [][]int
	for n, line := range lines {
		if strings.TrimSpace(strings.ReplaceAll(line, ",", "")) == "" {
			continue
		}
		var row []int
		for _, cell := range strings.Split(line, ",") {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.Atoi(cell)
			if err != nil {
				return nil, errors.Codec(errors.StageRows, err, "AUTHOR line %d is not valid", n+1)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.Codec(errors.StageRows, nil, "AUTHOR data is empty")
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, errors.Codec(errors.StageRows, nil,
				"AUTHOR data has a different number of columns in some lines (row %d has %d, expected %d)", i, len(row), width)
		}
	}
	if _, err := glyph.ColumnsFromWidth(width); err != nil {
		return nil, errors.Codec(errors.StageRows, err, "AUTHOR data has an invalid number of columns")
	}

	return &frame.Table{Columns: width, Rows: rows}, nil
}

// =============================================================================
// CUSTOM1 entries
// =============================================================================

// FormatIndex renders each entry as "start-coarse".
func FormatIndex(ix frame.Index) []string {
	out := make([]string, len(ix))
	for i, e := range ix {
		out[i] = strconv.Itoa(e.StartMS) + "-" + strconv.Itoa(e.Coarse)
	}
	return out
}

// ParseIndex parses CUSTOM1 entries. Blank entries are skipped; every other
// entry must hold exactly two integers.
func ParseIndex(entries []string) (frame.Index, error) {
	ix := frame.Index{}
	for n, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		var nums []int
		for _, part := range strings.Split(entry, "-") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, errors.Codec(errors.StageIndex, err, "CUSTOM1 entry %d (%q) is not valid", n+1, entry)
			}
			nums = append(nums, v)
		}
		if len(nums) != 2 {
			return nil, errors.Codec(errors.StageIndex, nil, "CUSTOM1 entry %d (%q) has an invalid format", n+1, entry)
		}
		ix = append(ix, frame.IndexEntry{StartMS: nums[0], Coarse: nums[1]})
	}
	return ix, nil
}
