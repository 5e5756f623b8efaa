// Package period implements the period detector: it iterates the life
// stepper until the pattern returns to its initial state, emitting the
// phase sequence pats[0..P).
package period

import (
	"github.com/pkg/errors"

	"statoropt/internal/lifestep"
	"statoropt/internal/pattern"
)

// MaxIterations bounds the number of phases a seed may cycle through before
// detection gives up and reports the seed as non-periodic.
const MaxIterations = 1000

// ErrPeriodBoundExceeded is returned when the seed has not returned to its
// initial state within MaxIterations steps.
var ErrPeriodBoundExceeded = errors.New("period: bound exceeded (seed does not appear to cycle within 1000 steps)")

// ErrNonCyclingSeed is returned when the iterated seed re-enters a prior
// state that is not the seed itself — a "rho" shape rather than a cycle.
var ErrNonCyclingSeed = errors.New("period: seed reaches a prior non-seed state (rho shape, not a pure cycle)")

// Detect iterates lifestep.Step from seed, returning the phase sequence
// pats[0..P) with pats[0] == seed and step(pats[i]) == pats[(i+1) mod P].
func Detect(seed pattern.Pattern) ([]pattern.Pattern, error) {
	seenAt := make(map[string]int)
	var pats []pattern.Pattern

	cur := seed
	for {
		key := cur.Key()
		if t0, ok := seenAt[key]; ok {
			if t0 != 0 {
				return nil, ErrNonCyclingSeed
			}
			break
		}

		t := len(pats)
		if t >= MaxIterations {
			return nil, ErrPeriodBoundExceeded
		}
		pats = append(pats, cur)
		seenAt[key] = t

		cur = lifestep.Step(cur)
	}

	return pats, nil
}
