// Package allowed implements the allowed-count compiler: for each cell it
// produces the table allowed[live][snh] describing which stator-neighbor
// counts are consistent with every phase transition, reducing "the rotor
// evolution must be preserved" to a per-cell local constraint that the
// strip solver can check with a handful of bit operations.
package allowed

import "statoropt/internal/pattern"

// NumSNH is the number of stator-neighbor-count buckets: 0..=9 inclusive
// (the Moore neighborhood has 8 neighbors, plus the cell itself when it is
// non-rotor and live).
const NumSNH = 10

// Table is the per-cell allowed[live][snh] tensor.
type Table [2][NumSNH]bool

// fLive is Conway's B3/S23 rule in the closed-form identity used
// throughout the solver (see lifestep.fLive; duplicated here to keep this
// package's derivation self-contained and side-effect-free).
func fLive(live, nh int) bool {
	magic := 2*nh + 1 - live
	return magic >= 6 && magic <= 8
}

// Compile derives allowed[x][y] for every cell in a W x H frame, given the
// (already frame-normalized) phase sequence pats, the rotor mask, and the
// frame dimensions. The rotor-neighbor count at (x,y) in phase i is the
// number of live rotor cells in the 3x3 Moore neighborhood (including the
// cell itself if it is rotor and live); off-grid neighbors are clipped
// dead.
func Compile(pats []pattern.Pattern, isRotor [][]bool, w, h int) [][]Table {
	out := make([][]Table, w)
	for x := range out {
		out[x] = make([]Table, h)
	}

	type triple struct {
		live, rnh int
		flive     bool
	}

	p := len(pats)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			rotor := isRotor[x][y]

			c := pattern.Cell{X: x, Y: y}
			triples := make([]triple, p)
			for i := 0; i < p; i++ {
				fpat := pats[(i+1)%p]
				live := 0
				if pats[i].Live(c) {
					live = 1
				}
				triples[i] = triple{
					live:  live,
					rnh:   rotorNeighborCount(pats[i], isRotor, x, y, w, h),
					flive: fpat.Live(c),
				}
			}

			var tbl Table
			for live := 0; live <= 1; live++ {
				for snh := 0; snh < NumSNH; snh++ {
					if rotor {
						if live != 0 {
							tbl[live][snh] = false
							continue
						}
						ok := true
						for _, tr := range triples {
							if fLive(tr.live, snh+tr.rnh) != tr.flive {
								ok = false
								break
							}
						}
						tbl[live][snh] = ok
					} else {
						ok := true
						for _, tr := range triples {
							if fLive(live, snh+tr.rnh) != (live != 0) {
								ok = false
								break
							}
						}
						tbl[live][snh] = ok
					}
				}
			}
			out[x][y] = tbl
		}
	}
	return out
}

// rotorNeighborCount counts live rotor cells in the 3x3 Moore neighborhood
// of (x, y) in phase pat, including (x, y) itself. Coordinates outside
// [0,w) x [0,h) are treated as dead (the frame's dead margin guarantees
// this clipping never affects a legitimate rotor cell; see
// frame.ValidateRotorMargin).
func rotorNeighborCount(pat pattern.Pattern, isRotor [][]bool, x, y, w, h int) int {
	count := 0
	for dx := -1; dx <= 1; dx++ {
		x2 := x + dx
		if x2 < 0 || x2 >= w {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			y2 := y + dy
			if y2 < 0 || y2 >= h {
				continue
			}
			if !isRotor[x2][y2] {
				continue
			}
			if pat.Live(pattern.Cell{X: x2, Y: y2}) {
				count++
			}
		}
	}
	return count
}
