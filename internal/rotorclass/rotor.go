// Package rotorclass implements the rotor classifier: a cell is rotor iff
// its liveness varies across the phase sequence, or it was forced by the
// user.
package rotorclass

import "statoropt/internal/pattern"

// Classify returns is_rotor[x][y] for a W x H frame: true iff the cell's
// liveness differs between any two phases in pats, or the cell is present
// in forced.
func Classify(pats []pattern.Pattern, forced pattern.Pattern, w, h int) [][]bool {
	isRotor := make([][]bool, w)
	for x := range isRotor {
		isRotor[x] = make([]bool, h)
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := pattern.Cell{X: x, Y: y}
			if forced.Live(c) {
				isRotor[x][y] = true
				continue
			}
			first := pats[0].Live(c)
			for _, p := range pats[1:] {
				if p.Live(c) != first {
					isRotor[x][y] = true
					break
				}
			}
		}
	}
	return isRotor
}
