package allowed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"statoropt/internal/pattern"
)

func fromCoords(coords [][2]int) pattern.Pattern {
	p := pattern.New()
	for _, c := range coords {
		p.Set(pattern.Cell{X: c[0], Y: c[1]})
	}
	return p
}

// TestCompileStillLifeForcesLiveStatorCells reproduces boundary case B1: for
// a period-1 pattern every cell is stator, and the allowed table for a live
// stator cell must forbid snh values that would let it die (and vice
// versa for dead cells), so the DP is forced to preserve the pattern
// exactly.
func TestCompileStillLifeForcesLiveStatorCells(t *testing.T) {
	w, h := 6, 6
	block := fromCoords([][2]int{{2, 2}, {3, 2}, {2, 3}, {3, 3}})
	isRotor := make([][]bool, w)
	for x := range isRotor {
		isRotor[x] = make([]bool, h)
	}

	tbl := Compile([]pattern.Pattern{block}, isRotor, w, h)

	// (2,2) is a corner of the 2x2 block; the other three block cells are
	// all within its Moore neighborhood, so its snh (which counts the live
	// cell itself) is 4 in the original pattern. snh=3, i.e. two live
	// neighbors besides itself, also lets it survive and must be allowed.
	require.True(t, tbl[2][2][1][3])
	// snh=2 leaves it a single live neighbor, which does not reproduce
	// survival under B3/S23, so it must be disallowed.
	require.False(t, tbl[2][2][1][2])

	// An empty corner far from the block, e.g. (0,0), must stay dead for
	// all snh other than exactly 3 (birth threshold); in particular
	// snh=0 (unchanged) must be allowed to keep it dead.
	require.True(t, tbl[0][0][0][0])
	require.False(t, tbl[0][0][0][3])
}

func TestCompileRotorCellLiveDimensionForcedToZero(t *testing.T) {
	w, h := 6, 6
	block := fromCoords([][2]int{{2, 2}, {3, 2}, {2, 3}, {3, 3}})
	isRotor := make([][]bool, w)
	for x := range isRotor {
		isRotor[x] = make([]bool, h)
	}
	isRotor[2][2] = true

	tbl := Compile([]pattern.Pattern{block}, isRotor, w, h)
	for snh := 0; snh < NumSNH; snh++ {
		require.False(t, tbl[2][2][1][snh], "rotor cell live-dimension row must be entirely false, snh=%d", snh)
	}
}
