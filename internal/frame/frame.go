// Package frame implements the bounding-box normalizer: it computes a
// tight bounding box over every oscillator phase, enlarges it by the
// caller-supplied padding plus a fixed 2-cell dead margin, and translates
// every phase and the forced-rotor set into the resulting W x H frame.
package frame

import (
	"github.com/pkg/errors"

	"statoropt/internal/pattern"
)

// Margin is the fixed dead-border width added on every side beyond the
// user-supplied pad, guaranteeing two dead rows/columns at the frame edge.
const Margin = 2

// ErrEmptyPattern is returned when there are no live cells in any phase, so
// no bounding box can be computed.
var ErrEmptyPattern = errors.New("frame: no live cells in any phase; cannot compute a bounding box")

// ErrRotorNearMargin is returned when a forced or classified rotor cell
// lies within the 2-cell dead margin, which would let its neighborhood read
// a cell whose liveness isn't well-defined.
var ErrRotorNearMargin = errors.New("frame: a rotor cell lies within the dead margin; its neighborhood would read undefined liveness")

// Result holds the normalized frame dimensions and the translated phases /
// forced-rotor set.
type Result struct {
	W, H         int
	Pats         []pattern.Pattern
	ForcedRotors pattern.Pattern
}

// Normalize computes the union bounding box of pats, pads it by pad+Margin
// on every side, and translates pats and forcedRotors into the resulting
// frame so that the original (xmin, ymin) lands at (pad+Margin, pad+Margin).
func Normalize(pats []pattern.Pattern, forcedRotors pattern.Pattern, pad int) (Result, error) {
	if pad < 0 {
		return Result{}, errors.New("frame: pad must be non-negative")
	}

	minX, maxX, minY, maxY, any := 0, 0, 0, 0, false
	for _, p := range pats {
		for c := range p {
			if !any {
				minX, maxX, minY, maxY = c.X, c.X, c.Y, c.Y
				any = true
				continue
			}
			if c.X < minX {
				minX = c.X
			}
			if c.X > maxX {
				maxX = c.X
			}
			if c.Y < minY {
				minY = c.Y
			}
			if c.Y > maxY {
				maxY = c.Y
			}
		}
	}
	if !any {
		return Result{}, ErrEmptyPattern
	}

	bbMinX := minX - pad - Margin
	bbMaxX := maxX + pad + Margin
	bbMinY := minY - pad - Margin
	bbMaxY := maxY + pad + Margin

	w := bbMaxX - bbMinX + 1
	h := bbMaxY - bbMinY + 1

	shiftedPats := make([]pattern.Pattern, len(pats))
	for i, p := range pats {
		shiftedPats[i] = p.Translate(-bbMinX, -bbMinY)
	}

	return Result{
		W:            w,
		H:            h,
		Pats:         shiftedPats,
		ForcedRotors: forcedRotors.Translate(-bbMinX, -bbMinY),
	}, nil
}

// ValidateRotorMargin checks that every rotor cell lies strictly inside the
// padded region: at least Margin cells away from every edge of the frame.
func ValidateRotorMargin(isRotor [][]bool, w, h int) error {
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if !isRotor[x][y] {
				continue
			}
			if x < Margin || x >= w-Margin || y < Margin || y >= h-Margin {
				return errors.Wrapf(ErrRotorNearMargin, "rotor at (%d,%d) in a %dx%d frame", x, y, w, h)
			}
		}
	}
	return nil
}
