package lifestep

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

func TestStepBlockIsStillLife(t *testing.T) {
	block := fromCoords([][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
	next := Step(block)
	require.Equal(t, block.Key(), next.Key())
}

func TestStepBlinkerOscillatesPeriod2(t *testing.T) {
	horiz := fromCoords([][2]int{{0, 1}, {1, 1}, {2, 1}})
	vert := fromCoords([][2]int{{1, 0}, {1, 1}, {1, 2}})

	got := Step(horiz)
	require.Equal(t, vert.Key(), got.Key())

	got2 := Step(got)
	require.Equal(t, horiz.Key(), got2.Key())
}

func TestCountNeighborsIgnoresSelf(t *testing.T) {
	p := fromCoords([][2]int{{5, 5}, {5, 6}})
	require.Equal(t, 1, CountNeighbors(p, 5, 5))
	require.Equal(t, 1, CountNeighbors(p, 5, 6))
}

func TestStepEmptyPatternStaysEmpty(t *testing.T) {
	next := Step(pattern.New())
	require.Equal(t, 0, next.Len())
}
