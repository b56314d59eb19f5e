// Package labels parses Audacity-style label files into light directives.
//
// A label file is tab-separated text with three fields per row: start
// seconds, end seconds and the label text. Besides light directives such as
// "3.2-0-100-EXP" a file carries three reserved labels:
//
//	0	0	LABEL_VERSION=1
//	0	0	PHONE_MODEL=PHONE1
//	12.5	12.5	END
//
// END fixes the composition length and must be the last label in time.
// Files written before labels were versioned carry neither LABEL_VERSION
// nor PHONE_MODEL and are read as legacy PHONE1 files.
package labels

import (
	"encoding/csv"
	stderrors "errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
)

// File is a parsed and validated label file.
type File struct {
	// Labels holds every label ordered by start time, reserved ones included.
	Labels []Label

	Phone   glyph.PhoneModel
	Version int
	Columns glyph.ColumnsModel
	End     Label

	// Legacy is set for files without LABEL_VERSION and PHONE_MODEL.
	Legacy bool

	// Reordered is set when the input was not sorted by start time.
	Reordered bool
}

// Directives returns the light directives in start-time order.
func (f *File) Directives() []Label {
	var out []Label
	for _, l := range f.Labels {
		if l.Kind == Normal {
			out = append(out, l)
		}
	}
	return out
}

// DurationMS returns the composition length fixed by the END label.
func (f *File) DurationMS() float64 {
	return f.End.ToMS
}

// Parse reads a label file.
//
// Row-level problems (wrong field count, unreadable times) fail at once with
// a FORMAT_ERROR. Problems with individual directives are collected so the
// caller can report all of them together.
func Parse(r io.Reader) (*File, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	f := &File{}
	if err := f.header(rows); err != nil {
		return nil, err
	}

	var problems []error
	var ends []Label
	for i := range rows {
		l := &rows[i]
		switch l.Kind {
		case End:
			ends = append(ends, *l)
		case Normal:
			if err := l.parseDirective(f.Phone); err != nil {
				problems = append(problems, err)
			}
		}
	}

	if len(ends) == 0 {
		return nil, errors.Wrap(errors.ErrCodeFormat, stderrors.Join(problems...),
			"no END label found: set a label named END at the end of the audio")
	}
	if len(problems) > 0 {
		return nil, errors.Join(errors.ErrCodeValidation, problems,
			"%d invalid label(s), check that the file matches %v", len(problems), f.Phone)
	}
	if len(ends) > 1 {
		return nil, errors.New(errors.ErrCodeValidation,
			"more than one END label found (lines %s)", lineList(ends))
	}
	f.End = ends[0]

	f.Reordered = !sort.SliceIsSorted(rows, func(i, j int) bool { return rows[i].FromMS < rows[j].FromMS })
	if f.Reordered {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].FromMS < rows[j].FromMS })
	}

	var beyond []Label
	zoned := false
	for _, l := range rows {
		if l.Kind != End && l.ToMS > f.End.ToMS {
			beyond = append(beyond, l)
		}
		if l.Kind == Normal && l.Zoned() {
			zoned = true
		}
	}
	if len(beyond) > 0 {
		return nil, errors.New(errors.ErrCodeValidation,
			"labels end after the END label, move END to the end of the audio (offending lines: %s)", lineList(beyond))
	}

	f.Labels = rows
	f.Columns = glyph.ColumnsFor(f.Phone, zoned)
	return f, nil
}

// readRows tokenizes the input and classifies every non-blank row.
func readRows(r io.Reader) ([]Label, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var rows []Label
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "malformed label file")
		}
		line, _ := cr.FieldPos(0)

		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) != 3 {
			return nil, errors.New(errors.ErrCodeFormat,
				"invalid label row in line %d: expected 3 tab-separated columns (start, end, text), got %d", line, len(rec))
		}

		from, err := parseTime(rec[0])
		if err != nil || math.IsNaN(from) || math.IsInf(from, 0) || from < 0 {
			return nil, errors.New(errors.ErrCodeFormat, "invalid start time %q in line %d", rec[0], line)
		}
		to, err := parseTime(rec[1])
		if err != nil || math.IsNaN(to) || math.IsInf(to, 0) || to < 0 {
			return nil, errors.New(errors.ErrCodeFormat, "invalid end time %q in line %d", rec[1], line)
		}

		text := strings.TrimSpace(rec[2])
		rows = append(rows, Label{
			Line:   line,
			FromMS: from,
			ToMS:   to,
			Text:   text,
			Kind:   classify(text),
		})
	}
	return rows, nil
}

// header resolves the phone model and label version.
func (f *File) header(rows []Label) error {
	var phones, versions []Label
	for _, l := range rows {
		switch l.Kind {
		case Phone:
			phones = append(phones, l)
		case Version:
			versions = append(versions, l)
		}
	}

	if len(phones) > 1 {
		return errors.New(errors.ErrCodeValidation, "more than one PHONE_MODEL label found (lines %s)", lineList(phones))
	}
	if len(versions) > 1 {
		return errors.New(errors.ErrCodeValidation, "more than one LABEL_VERSION label found (lines %s)", lineList(versions))
	}

	switch {
	case len(phones) == 0 && len(versions) == 0:
		f.Phone = glyph.Phone1
		f.Version = 0
		f.Legacy = true
		return nil
	case len(phones) == 0:
		return errors.New(errors.ErrCodeValidation,
			"no PHONE_MODEL label found: add PHONE_MODEL=<model> (supported: %s)", supportedPhones())
	case len(versions) == 0:
		return errors.New(errors.ErrCodeValidation,
			"no LABEL_VERSION label found: add LABEL_VERSION=%d", glyph.LabelVersion)
	}

	phone, err := glyph.ParsePhoneModel(phoneRE.FindStringSubmatch(phones[0].Text)[1])
	if err != nil {
		return err
	}
	f.Phone = phone

	v, err := strconv.Atoi(versionRE.FindStringSubmatch(versions[0].Text)[1])
	if err != nil || v != glyph.LabelVersion {
		return errors.New(errors.ErrCodeValidation,
			"unsupported label version %q in line %d (supported: %d)", versions[0].Text, versions[0].Line, glyph.LabelVersion)
	}
	f.Version = v
	return nil
}

func supportedPhones() string {
	names := make([]string, 0, len(glyph.PhoneModels()))
	for _, m := range glyph.PhoneModels() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}

func lineList(ls []Label) string {
	parts := make([]string, len(ls))
	for i, l := range ls {
		parts[i] = strconv.Itoa(l.Line)
	}
	return strings.Join(parts, ",")
}
