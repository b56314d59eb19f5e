// Package glyph defines the shared data model of Glyph compositions: phone
// models, frame-table column models, interpolation laws and the timing and
// light-level constants every other package agrees on.
//
// A composition is a frame table sampled every [TimeStepMS] milliseconds.
// Each row holds one light level per physical column; the width of a row is
// fixed by the [ColumnsModel], which in turn belongs to exactly one
// [PhoneModel].
package glyph

import (
	"math"

	"github.com/matzehuels/glyphtools/pkg/errors"
)

const (
	// TimeStepMS is the frame-table time grid in milliseconds.
	TimeStepMS = 16.666

	// MaxLevel is the highest light level a cell may hold.
	MaxLevel = 4095

	// LegacyMaxLevel is the highest light level of pre-v1 compositions.
	LegacyMaxLevel = 4080

	// LabelVersion is the only supported LABEL_VERSION.
	LabelVersion = 1
)

// AbsoluteLevel converts a 0-100 percentage into a 0-4095 light level,
// rounding half to even.
func AbsoluteLevel(pct int) int {
	return int(math.RoundToEven(float64(pct) * MaxLevel / 100.0))
}

// =============================================================================
// Phone Models
// =============================================================================

// PhoneModel identifies a device family with its own light layout.
type PhoneModel int

const (
	Phone1 PhoneModel = iota
	Phone2
	Phone2A
	Phone3A
	Phone3
)

var phoneNames = map[PhoneModel]string{
	Phone1:  "PHONE1",
	Phone2:  "PHONE2",
	Phone2A: "PHONE2A",
	Phone3A: "PHONE3A",
	Phone3:  "PHONE3",
}

// PhoneModels returns every supported phone model in declaration order.
func PhoneModels() []PhoneModel {
	return []PhoneModel{Phone1, Phone2, Phone2A, Phone3A, Phone3}
}

// String returns the enum name used in label files and NGlyph JSON.
func (m PhoneModel) String() string {
	if s, ok := phoneNames[m]; ok {
		return s
	}
	return "UNKNOWN"
}

// Valid reports whether m is a known phone model.
func (m PhoneModel) Valid() bool {
	_, ok := phoneNames[m]
	return ok
}

// ParsePhoneModel maps an enum name such as "PHONE2A" to its PhoneModel.
func ParsePhoneModel(s string) (PhoneModel, error) {
	for _, m := range PhoneModels() {
		if phoneNames[m] == s {
			return m, nil
		}
	}
	return 0, errors.New(errors.ErrCodeValidation, "unsupported phone model %q (supported: %s)", s, supportedPhones())
}

func supportedPhones() string {
	var out string
	for i, m := range PhoneModels() {
		if i > 0 {
			out += ", "
		}
		out += m.String()
	}
	return out
}

// =============================================================================
// Columns Models
// =============================================================================

// ColumnsModel selects the frame-table width and the topology table used to
// resolve glyph and zone numbers.
type ColumnsModel int

const (
	FiveZone ColumnsModel = iota
	FifteenZone
	ElevenZone
	ThirtyThreeZone
	ThreeZone2A
	TwentySixZone
	ThreeZone3A
	ThirtySixZone
	SixTwentyFiveZone
)

type columnsInfo struct {
	name     string
	phone    PhoneModel
	columns  int
	zoned    bool
	tag      string
	codename string
}

var columnsTable = map[ColumnsModel]columnsInfo{
	FiveZone:          {"FIVE_ZONE", Phone1, 5, false, "5cols", "Spacewar"},
	FifteenZone:       {"FIFTEEN_ZONE", Phone1, 15, true, "5cols", "Spacewar"},
	ElevenZone:        {"ELEVEN_ZONE", Phone2, 33, false, "33cols", "Pong"},
	ThirtyThreeZone:   {"THIRTY_THREE_ZONE", Phone2, 33, true, "33cols", "Pong"},
	ThreeZone2A:       {"THREE_ZONE_2A", Phone2A, 26, false, "26cols", "Pacman"},
	TwentySixZone:     {"TWENTY_SIX_ZONE", Phone2A, 26, true, "26cols", "Pacman"},
	ThreeZone3A:       {"THREE_ZONE_3A", Phone3A, 36, false, "36cols", "Asteroids"},
	ThirtySixZone:     {"THIRTY_SIX_ZONE", Phone3A, 36, true, "36cols", "Asteroids"},
	SixTwentyFiveZone: {"SIX_TWENTY_FIVE_ZONE", Phone3, 625, true, "625cols", "Metroid"},
}

// String returns the enum name, e.g. "THIRTY_THREE_ZONE".
func (c ColumnsModel) String() string {
	if info, ok := columnsTable[c]; ok {
		return info.name
	}
	return "UNKNOWN"
}

// Valid reports whether c is a known columns model.
func (c ColumnsModel) Valid() bool {
	_, ok := columnsTable[c]
	return ok
}

// Columns returns the physical frame-table width. The whole-glyph
// convenience models (ELEVEN_ZONE, THREE_ZONE_2A, THREE_ZONE_3A) write into
// the full zone-width table of their phone.
func (c ColumnsModel) Columns() int {
	return columnsTable[c].columns
}

// Phone returns the phone model c belongs to.
func (c ColumnsModel) Phone() PhoneModel {
	return columnsTable[c].phone
}

// Zoned reports whether c addresses individual zones.
func (c ColumnsModel) Zoned() bool {
	return columnsTable[c].zoned
}

// Tag returns the CUSTOM2 metadata value, e.g. "33cols".
func (c ColumnsModel) Tag() string {
	return columnsTable[c].tag
}

// Codename returns the device codename written into the COMPOSER tag.
func (c ColumnsModel) Codename() string {
	return columnsTable[c].codename
}

// ColumnsFor picks the columns model for a phone. zoned is true when any
// label addresses a single zone. PHONE3 only has the 625-column matrix.
func ColumnsFor(m PhoneModel, zoned bool) ColumnsModel {
	switch m {
	case Phone1:
		if zoned {
			return FifteenZone
		}
		return FiveZone
	case Phone2:
		if zoned {
			return ThirtyThreeZone
		}
		return ElevenZone
	case Phone2A:
		if zoned {
			return TwentySixZone
		}
		return ThreeZone2A
	case Phone3A:
		if zoned {
			return ThirtySixZone
		}
		return ThreeZone3A
	default:
		return SixTwentyFiveZone
	}
}

// widthModels maps a decoded table width back to its canonical model.
var widthModels = map[int]ColumnsModel{
	5:   FiveZone,
	15:  FifteenZone,
	33:  ThirtyThreeZone,
	26:  TwentySixZone,
	36:  ThirtySixZone,
	625: SixTwentyFiveZone,
}

// ColumnsFromWidth returns the model of a decoded table with n columns.
func ColumnsFromWidth(n int) (ColumnsModel, error) {
	if c, ok := widthModels[n]; ok {
		return c, nil
	}
	return 0, errors.New(errors.ErrCodeFormat, "invalid number of columns (%d)", n)
}

// tagPhones is the reverse of ColumnsModel.Tag.
var tagPhones = map[string]PhoneModel{
	"5cols":   Phone1,
	"33cols":  Phone2,
	"26cols":  Phone2A,
	"36cols":  Phone3A,
	"625cols": Phone3,
}

// PhoneFromTag resolves a CUSTOM2 value to its phone model.
func PhoneFromTag(tag string) (PhoneModel, error) {
	if m, ok := tagPhones[tag]; ok {
		return m, nil
	}
	return 0, errors.New(errors.ErrCodeValidation, "invalid CUSTOM2 tag %q", tag)
}

// =============================================================================
// Interpolation
// =============================================================================

// Interpolation is the light curve law between two levels.
type Interpolation int

const (
	Lin Interpolation = iota
	Exp
	Log
)

// String returns the label-text spelling ("LIN", "EXP", "LOG").
func (i Interpolation) String() string {
	switch i {
	case Lin:
		return "LIN"
	case Exp:
		return "EXP"
	case Log:
		return "LOG"
	}
	return "UNKNOWN"
}

// ParseInterpolation parses a label-text mode. The empty string is LIN.
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "", "LIN":
		return Lin, nil
	case "EXP":
		return Exp, nil
	case "LOG":
		return Log, nil
	}
	return 0, errors.New(errors.ErrCodeValidation, "unknown interpolation %q", s)
}
