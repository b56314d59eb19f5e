// Package raster turns a timed light directive into per-step light levels.
//
// Times are snapped to the frame grid ("rastering") and the level curve is
// sampled once per grid step under one of three interpolation laws. All
// rounding is half to even so results match the reference compositions
// bit for bit.
package raster

import (
	"math"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
)

// Sample is one rasterized light level at a grid step.
type Sample struct {
	Step  int
	Level int
}

// StepIndex returns the grid step nearest to ms.
func StepIndex(ms, stepMS float64) int {
	return int(math.RoundToEven(ms / stepMS))
}

// Snap rounds ms to the nearest multiple of stepMS.
func Snap(ms, stepMS float64) float64 {
	return math.RoundToEven(ms/stepMS) * stepMS
}

// Span returns the half-open step range [first, last) covered by a
// directive. A directive that collapses to zero width still covers one step.
func Span(fromMS, toMS, stepMS float64) (first, last int) {
	first = StepIndex(fromMS, stepMS)
	last = StepIndex(toMS, stepMS)
	if last == first {
		last = first + 1
	}
	return first, last
}

// Level computes the light level at offset j of n steps between from and to.
// Equal endpoints give a flat curve for every mode.
func Level(from, to int, mode glyph.Interpolation, j, n int) int {
	if from == to {
		return from
	}
	if n < 1 {
		n = 1
	}
	f, t := float64(from), float64(to)
	x := float64(j) / float64(n)

	var v float64
	switch mode {
	case glyph.Exp:
		lo, hi := math.Max(f, 1), math.Max(t, 1)
		v = lo * math.Pow(hi/lo, x)
	case glyph.Log:
		lo, hi := math.Max(f, 1), math.Max(t, 1)
		v = -hi*math.Pow(hi/lo, -x) + f + t
	default:
		v = f + (t-f)*x
	}
	return int(math.RoundToEven(v))
}

// Rasterize samples the level curve of a directive over the time grid.
//
// Levels are absolute (0..glyph.MaxLevel). A produced level outside that
// range is an internal error: it cannot happen for valid inputs.
func Rasterize(fromMS, toMS float64, from, to int, mode glyph.Interpolation, stepMS float64) ([]Sample, error) {
	if stepMS <= 0 {
		return nil, errors.New(errors.ErrCodeInternal, "time step must be positive, got %v", stepMS)
	}
	first, last := Span(fromMS, toMS, stepMS)
	n := last - first
	if n < 0 {
		return nil, errors.New(errors.ErrCodeInternal, "directive ends before it starts (%vms > %vms)", fromMS, toMS)
	}

	out := make([]Sample, 0, n)
	for j := 0; j < n; j++ {
		level := Level(from, to, mode, j, n)
		if level < 0 || level > glyph.MaxLevel {
			return nil, errors.New(errors.ErrCodeInternal, "rasterized level %d out of range [0, %d] (%v %d->%d, step %d/%d)",
				level, glyph.MaxLevel, mode, from, to, j, n)
		}
		out = append(out, Sample{Step: first + j, Level: level})
	}
	return out, nil
}
