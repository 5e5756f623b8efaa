// Package lifestep implements the Life stepper: applying Conway's B3/S23
// rule to a sparse live-cell set.
package lifestep

import "statoropt/internal/pattern"

// offsets is the 3x3 Moore neighborhood excluding the center cell.
var offsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// fLive is Conway's B3/S23 rule, expressed as the closed-form identity used
// throughout the solver: a cell with the given liveness and neighbor count
// is live next generation iff 6 <= 2*nh + 1 - live(as 0/1) <= 8, i.e. birth
// on exactly 3 neighbors, survival on 2 or 3.
func fLive(live bool, nh int) bool {
	liveInt := 0
	if live {
		liveInt = 1
	}
	magic := 2*nh + 1 - liveInt
	return magic >= 6 && magic <= 8
}

// Step applies B3/S23 once to p and returns the resulting pattern.
//
// Only cells within the 3x3 neighborhood of some live cell can possibly
// change state (a dead cell surrounded entirely by dead cells stays dead),
// so the candidate set is the union of those neighborhoods rather than the
// whole grid.
func Step(p pattern.Pattern) pattern.Pattern {
	candidates := make(map[pattern.Cell]bool, len(p)*4)
	for c := range p {
		candidates[c] = true
		for _, o := range offsets {
			candidates[pattern.Cell{X: c.X + o[0], Y: c.Y + o[1]}] = true
		}
	}

	out := pattern.New()
	for c := range candidates {
		if fLive(p.Live(c), CountNeighbors(p, c.X, c.Y)) {
			out.Set(c)
		}
	}
	return out
}

// CountNeighbors counts live cells in the 8-neighborhood of (x, y) within p.
// Off-grid / unbounded coordinates are handled naturally since p is a sparse
// set with no implicit edges.
func CountNeighbors(p pattern.Pattern, x, y int) int {
	count := 0
	for _, o := range offsets {
		if p.Live(pattern.Cell{X: x + o[0], Y: y + o[1]}) {
			count++
		}
	}
	return count
}
