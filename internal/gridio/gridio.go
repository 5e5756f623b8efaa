// Package gridio implements the grid text format shared by the seed
// parser and the solver's renderers: '.' dead, '*' live, 'r' forced dead
// rotor, 'R' forced live rotor. Parsing tolerates ragged line lengths (a
// line shorter than its neighbors just contributes fewer dead cells);
// anything else is a fatal parse error.
package gridio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"statoropt/internal/pattern"
)

// ErrInvalidGlyph is returned when a line contains a character outside the
// recognized grid alphabet.
var ErrInvalidGlyph = errors.New("gridio: unrecognized grid glyph")

// Parse reads a seed grid from r, returning the live-cell pattern and the
// forced-rotor set. Coordinates are (column, row) with row taken from line
// number and column from rune offset within the line.
func Parse(r io.Reader) (pat0 pattern.Pattern, forcedRotors pattern.Pattern, err error) {
	pat0 = pattern.New()
	forcedRotors = pattern.New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	y := 0
	for scanner.Scan() {
		line := scanner.Text()
		x := 0
		for _, ch := range line {
			c := pattern.Cell{X: x, Y: y}
			switch ch {
			case 'r':
				forcedRotors.Set(c)
			case 'R':
				pat0.Set(c)
				forcedRotors.Set(c)
			case '.':
				// dead stator, nothing to record
			case '*':
				pat0.Set(c)
			default:
				return nil, nil, errors.Wrapf(ErrInvalidGlyph, "line %d, column %d: %q", y, x, ch)
			}
			x++
		}
		y++
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "gridio: reading seed grid")
	}

	return pat0, forcedRotors, nil
}

// glyph is the shared final-render alphabet: dead/live crossed with
// rotor/stator.
func glyph(isRotor, live bool) byte {
	switch {
	case isRotor && live:
		return 'R'
	case isRotor && !live:
		return 'r'
	case live:
		return '*'
	default:
		return '.'
	}
}

// RenderFinal writes the optimized grid in the parser's own alphabet, one
// row per line.
func RenderFinal(w io.Writer, ww, hh int, isRotor [][]bool, pat pattern.Pattern) error {
	buf := make([]byte, ww)
	for y := 0; y < hh; y++ {
		for x := 0; x < ww; x++ {
			buf[x] = glyph(isRotor[x][y], pat.Live(pattern.Cell{X: x, Y: y}))
		}
		if _, err := fmt.Fprintf(w, "   %s\n", buf); err != nil {
			return err
		}
	}
	return nil
}

// deltaGlyph is the six-glyph alphabet used to highlight a strip's accepted
// change: rotor cells render as 'r'/'R' unchanged, an unaffected stator
// cell renders as '.'/'*', a removed cell renders 'x', and an added cell
// renders 'o' (spec's rare but real case: trading one stator cell for a
// cheaper arrangement elsewhere within the same strip).
func deltaGlyph(isRotor, before, after bool) byte {
	switch {
	case isRotor && after:
		return 'R'
	case isRotor:
		return 'r'
	case before && after:
		return '*'
	case before && !after:
		return 'x'
	case !before && after:
		return 'o'
	default:
		return '.'
	}
}

// RenderDelta writes a before/after strip render to w, inserting a '-'
// separator row (horizontal strips) or '|' separator columns (vertical
// strips) around the strip's mutable interior, reproducing
// Search::display_delta's layout.
func RenderDelta(w io.Writer, ww, hh int, vertical bool, start, end int, isRotor [][]bool, before, after pattern.Pattern) error {
	row := func(y int) []byte {
		buf := make([]byte, ww)
		for x := 0; x < ww; x++ {
			c := pattern.Cell{X: x, Y: y}
			buf[x] = deltaGlyph(isRotor[x][y], before.Live(c), after.Live(c))
		}
		return buf
	}

	if !vertical {
		sep := make([]byte, ww)
		for i := range sep {
			sep[i] = '-'
		}
		emitRange := func(y0, y1 int) error {
			for y := y0; y < y1; y++ {
				if _, err := fmt.Fprintf(w, "   %s\n", row(y)); err != nil {
					return err
				}
			}
			return nil
		}
		if err := emitRange(0, start+2); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   %s\n", sep); err != nil {
			return err
		}
		if err := emitRange(start+2, end-2); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   %s\n", sep); err != nil {
			return err
		}
		return emitRange(end-2, hh)
	}

	for y := 0; y < hh; y++ {
		buf := row(y)
		if _, err := fmt.Fprintf(w, "   %s|%s|%s\n", buf[:start+2], buf[start+2:end-2], buf[end-2:]); err != nil {
			return err
		}
	}
	return nil
}
