// Package scheduler implements the strip scheduler: it carves the frame
// into overlapping horizontal and vertical strips, repeatedly re-solves
// each strip with the strip solver, and accepts a strip's result only
// when it strictly reduces the total stator-cell count, re-enqueueing
// every strip that sees a changed cell (see Strip.Sees). Every
// strip pop, accept, and discard is logged, with an accept additionally
// rendering a before/after delta of the strip.
package scheduler

import (
	"bytes"
	"container/list"
	"math/rand"

	"go.uber.org/zap"

	"statoropt/internal/allowed"
	"statoropt/internal/gridio"
	"statoropt/internal/pattern"
	"statoropt/internal/stripdp"
)

// Axis identifies which grid dimension a Strip sweeps as its long axis.
type Axis int

const (
	// Horizontal strips pack rows [Start, End) into the short axis and
	// sweep the full grid width as the long axis.
	Horizontal Axis = iota
	// Vertical strips pack columns [Start, End) into the short axis and
	// sweep the full grid height as the long axis.
	Vertical
)

// Strip identifies a horizontal band of rows or vertical band of columns
// to be jointly re-optimized. [Start, End) is the short-axis range; the
// long axis always spans the entire other grid dimension (the frame's own
// 2-cell dead margin there satisfies the strip DP's boundary precondition;
// see stripdp.Solve).
type Strip struct {
	Axis       Axis
	Start, End int
}

// Thickness is the strip's short-axis length.
func (s Strip) Thickness() int { return s.End - s.Start }

// Long returns the strip's long-axis length given the frame dimensions.
func (s Strip) Long(w, h int) int {
	if s.Axis == Horizontal {
		return w
	}
	return h
}

// ToGlobal maps a strip-local (long, short) coordinate to a global (x, y)
// cell.
func (s Strip) ToGlobal(long, short int) pattern.Cell {
	if s.Axis == Horizontal {
		return pattern.Cell{X: long, Y: s.Start + short}
	}
	return pattern.Cell{X: s.Start + short, Y: long}
}

// Sees reports whether a change at (x, y) re-queues this strip. The
// short-axis bound is checked inclusive of End, so it covers the strip's
// own footprint [Start, End) plus one row/column past it.
func (s Strip) Sees(x, y int) bool {
	if s.Axis == Horizontal {
		return s.Start <= y && y <= s.End
	}
	return s.Start <= x && x <= s.End
}

// EnumerateStrips produces every Horizontal and Vertical strip of
// short-axis thickness searchMax+4 that fits the frame. If the thickness
// exceeds the dimension, a single strip spanning the whole dimension is
// emitted instead, so small frames still get one full-width/height solve.
func EnumerateStrips(w, h, searchMax int) []Strip {
	thickness := searchMax + 4
	var strips []Strip

	if thickness <= h {
		for start := 0; start+thickness <= h; start++ {
			strips = append(strips, Strip{Axis: Horizontal, Start: start, End: start + thickness})
		}
	} else {
		strips = append(strips, Strip{Axis: Horizontal, Start: 0, End: h})
	}

	if thickness <= w {
		for start := 0; start+thickness <= w; start++ {
			strips = append(strips, Strip{Axis: Vertical, Start: start, End: start + thickness})
		}
	} else {
		strips = append(strips, Strip{Axis: Vertical, Start: 0, End: w})
	}

	return strips
}

// Solver holds the optimizer's mutable working state: the current live-
// cell pattern (rotor and stator cells together), the rotor classification,
// and the per-cell allowed-count tables compiled from the original phase
// sequence (these never change across the run; only the stator assignment
// does).
type Solver struct {
	W, H int
	Pat  pattern.Pattern

	isRotor    [][]bool
	allowedTbl [][]allowed.Table
	rng        *rand.Rand
	log        *zap.SugaredLogger

	strips  []Strip
	affects map[pattern.Cell][]int
}

// New builds a Solver over a w x h frame. initial is the starting live-cell
// set (typically phase 0 of the seed's period sequence). seed controls the
// deterministic shuffle of strip processing order, using a private
// *rand.Rand rather than the global math/rand functions so two Solvers with
// the same seed always process strips in the same order regardless of what
// else in the process has drawn from math/rand. log receives a line for
// every strip pop/accept/discard; pass zap.NewNop().Sugar() to silence it.
func New(w, h int, initial pattern.Pattern, isRotor [][]bool, allowedTbl [][]allowed.Table, searchMax int, seed int64, log *zap.SugaredLogger) *Solver {
	s := &Solver{
		W:          w,
		H:          h,
		Pat:        initial.Clone(),
		isRotor:    isRotor,
		allowedTbl: allowedTbl,
		rng:        rand.New(rand.NewSource(seed)),
		log:        log,
	}
	s.strips = EnumerateStrips(w, h, searchMax)
	s.rng.Shuffle(len(s.strips), func(i, j int) {
		s.strips[i], s.strips[j] = s.strips[j], s.strips[i]
	})
	s.affects = buildAffects(s.strips, w, h)
	return s
}

func buildAffects(strips []Strip, w, h int) map[pattern.Cell][]int {
	affects := make(map[pattern.Cell][]int)
	for i, st := range strips {
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				if st.Sees(x, y) {
					c := pattern.Cell{X: x, Y: y}
					affects[c] = append(affects[c], i)
				}
			}
		}
	}
	return affects
}

// dedupQueue is a FIFO of strip indices with O(1) membership testing, so a
// strip already queued for re-solve is never queued twice.
type dedupQueue struct {
	order   *list.List
	present map[int]*list.Element
}

func newDedupQueue() *dedupQueue {
	return &dedupQueue{order: list.New(), present: make(map[int]*list.Element)}
}

func (q *dedupQueue) push(i int) {
	if _, ok := q.present[i]; ok {
		return
	}
	q.present[i] = q.order.PushBack(i)
}

func (q *dedupQueue) pop() (int, bool) {
	front := q.order.Front()
	if front == nil {
		return 0, false
	}
	q.order.Remove(front)
	i := front.Value.(int)
	delete(q.present, i)
	return i, true
}

// Run drives the strip scheduler to a fixed point: every strip is solved
// at least once, and a changed cell re-queues every strip that could see
// it, until no strip's re-solve yields a strictly smaller stator count.
// It returns the number of accepted (strictly improving) strip solves.
func (s *Solver) Run() (int, error) {
	queue := newDedupQueue()
	for i := range s.strips {
		queue.push(i)
	}

	accepted := 0
	for {
		i, ok := queue.pop()
		if !ok {
			break
		}
		st := s.strips[i]
		s.log.Debugw("pop", "strip", i, "axis", st.Axis, "start", st.Start, "end", st.End)

		changed, err := s.solveStrip(st)
		if err != nil {
			return accepted, err
		}
		if len(changed) == 0 {
			s.log.Debugw("discard", "strip", i)
			continue
		}
		accepted++

		for _, c := range changed {
			for _, j := range s.affects[c] {
				queue.push(j)
			}
		}
	}

	return accepted, nil
}

// solveStrip re-solves one strip and, if the result strictly reduces the
// strip's stator live-cell count, applies it to s.Pat and returns the
// changed cells. A non-improving or tied result is dropped silently, so
// ties keep the earlier-discovered state. An accepted change is logged
// alongside a rendered before/after delta of the strip.
func (s *Solver) solveStrip(st Strip) ([]pattern.Cell, error) {
	long := st.Long(s.W, s.H)
	short := st.Thickness()

	getPat0 := func(l, sh int) bool {
		return s.Pat.Live(st.ToGlobal(l, sh))
	}
	isRotorFn := func(l, sh int) bool {
		c := st.ToGlobal(l, sh)
		return s.isRotor[c.X][c.Y]
	}
	allowedAt := func(l, sh int) *allowed.Table {
		c := st.ToGlobal(l, sh)
		return &s.allowedTbl[c.X][c.Y]
	}

	result, err := stripdp.Solve(long, short, getPat0, isRotorFn, allowedAt)
	if err != nil {
		return nil, err
	}

	type update struct {
		c    pattern.Cell
		live bool
	}
	var updates []update
	oldCost, newCost := 0, 0
	for l := 0; l < long; l++ {
		for sh := 0; sh < short; sh++ {
			c := st.ToGlobal(l, sh)
			if s.isRotor[c.X][c.Y] {
				continue
			}
			oldLive := s.Pat.Live(c)
			newLive := result.Live(pattern.Cell{X: l, Y: sh})
			if oldLive {
				oldCost++
			}
			if newLive {
				newCost++
			}
			if oldLive != newLive {
				updates = append(updates, update{c: c, live: newLive})
			}
		}
	}

	if newCost >= oldCost || len(updates) == 0 {
		return nil, nil
	}

	before := s.Pat.Clone()
	changed := make([]pattern.Cell, 0, len(updates))
	for _, u := range updates {
		if u.live {
			s.Pat.Set(u.c)
		} else {
			delete(s.Pat, u.c)
		}
		changed = append(changed, u.c)
	}

	var delta bytes.Buffer
	if err := gridio.RenderDelta(&delta, s.W, s.H, st.Axis == Vertical, st.Start, st.End, s.isRotor, before, s.Pat); err != nil {
		return nil, err
	}
	s.log.Infow("replace", "axis", st.Axis, "start", st.Start, "end", st.End, "old_cost", oldCost, "new_cost", newCost)
	s.log.Infof("\n%s", delta.String())

	return changed, nil
}
