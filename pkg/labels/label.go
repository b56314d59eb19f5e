package labels

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/topology"
)

// Kind classifies a label by its text.
type Kind int

const (
	Normal Kind = iota
	Version
	Phone
	End
)

func (k Kind) String() string {
	switch k {
	case Version:
		return "LABEL_VERSION"
	case Phone:
		return "PHONE_MODEL"
	case End:
		return "END"
	}
	return "NORMAL"
}

var (
	versionRE = regexp.MustCompile(`^LABEL_VERSION=(\d+)$`)
	phoneRE   = regexp.MustCompile(`^PHONE_MODEL=(\w+)$`)

	// Glyph and zone ranges depend on the phone model and are checked
	// against the topology after matching.
	directiveRE = regexp.MustCompile(`^([1-9]\d*)(?:\.([1-9]\d*))?-(\d{1,2}|100)(?:-(\d{1,2}|100))?(?:-(EXP|LIN|LOG))?$`)
)

// Label is one row of a label file.
//
// FromMS and ToMS are in milliseconds, rounded to three decimals. The
// directive fields (Glyph through Mode) are only set for Normal labels;
// LevelFrom and LevelTo are percentages.
type Label struct {
	Line   int
	FromMS float64
	ToMS   float64
	Text   string
	Kind   Kind

	Glyph     int
	Zone      int
	LevelFrom int
	LevelTo   int
	Mode      glyph.Interpolation
}

// Zoned reports whether the label addresses a single zone.
func (l Label) Zoned() bool {
	return l.Zone != 0
}

func (l Label) String() string {
	return fmt.Sprintf("line %d: %q [%.3fms, %.3fms]", l.Line, l.Text, l.FromMS, l.ToMS)
}

func classify(text string) Kind {
	switch {
	case text == "END":
		return End
	case versionRE.MatchString(text):
		return Version
	case phoneRE.MatchString(text):
		return Phone
	}
	return Normal
}

// parseTime converts a seconds field to milliseconds. A comma is accepted
// as the decimal separator.
func parseTime(field string) (float64, error) {
	s, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(field), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	return roundMS(s * 1000), nil
}

func roundMS(ms float64) float64 {
	return math.RoundToEven(ms*1000) / 1000
}

// parseDirective fills the directive fields of a Normal label and checks
// the glyph and zone numbers against the phone's layout.
func (l *Label) parseDirective(phone glyph.PhoneModel) error {
	m := directiveRE.FindStringSubmatch(l.Text)
	if m == nil {
		return l.invalid()
	}

	l.Glyph, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		l.Zone, _ = strconv.Atoi(m[2])
	}
	l.LevelFrom, _ = strconv.Atoi(m[3])
	l.LevelTo = l.LevelFrom
	if m[4] != "" {
		l.LevelTo, _ = strconv.Atoi(m[4])
	}
	mode, err := glyph.ParseInterpolation(m[5])
	if err != nil {
		return err
	}
	l.Mode = mode

	if l.Glyph > topology.Glyphs(phone) {
		return errors.New(errors.ErrCodeValidation,
			"invalid label text %q in line %d: %v has no glyph %d", l.Text, l.Line, phone, l.Glyph)
	}
	if l.Zone != 0 && l.Zone > topology.Zones(phone, l.Glyph) {
		return errors.New(errors.ErrCodeValidation,
			"invalid label text %q in line %d: glyph %d of %v has no zone %d", l.Text, l.Line, l.Glyph, phone, l.Zone)
	}
	if l.ToMS < l.FromMS {
		return errors.New(errors.ErrCodeValidation,
			"label %q in line %d ends before it starts (%.3fs > %.3fs)", l.Text, l.Line, l.FromMS/1000, l.ToMS/1000)
	}
	return nil
}

func (l *Label) invalid() error {
	if strings.Contains(l.Text, "#") {
		return errors.New(errors.ErrCodeValidation,
			"invalid label text %q in line %d: this looks like the outdated label syntax, migrate the file to the current syntax", l.Text, l.Line)
	}
	return errors.New(errors.ErrCodeValidation,
		"invalid label text %q in line %d: expected <glyph>[.<zone>]-<from%%>[-<to%%>][-EXP|LIN|LOG]", l.Text, l.Line)
}
