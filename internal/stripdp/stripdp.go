// Package stripdp implements the strip solver: a bit-masked column-sweep
// dynamic program that returns the minimum-weight stator assignment inside
// a strip, consistent with the rotor boundary data.
//
// The sweep fans out one goroutine per column-value via errgroup, and
// reconstructs the winning assignment through a persistent, pointer-linked
// backpointer chain rather than a shared arena: concurrent column-value
// tasks only ever read existing nodes and append new ones independently,
// so the GC-managed chain needs no mutex around a shared slice.
package stripdp

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"statoropt/internal/allowed"
	"statoropt/internal/bitops"
	"statoropt/internal/pattern"
)

// MaxFrontierBits bounds log2 of a single frontier's entry count: the
// solver refuses any strip whose frontier would need more than this many
// bits rather than risk an unbounded allocation. 30 bits (1Gi entries)
// comfortably fits a realistic search_max while staying well inside Go
// slice/memory limits.
const MaxFrontierBits = 30

// MaxShortAxis bounds the short (bitmask-packed) axis length to 64, the
// width of the uint64 column representation.
const MaxShortAxis = 64

// ErrMarginPrecondition is returned when the solver's dead-margin
// precondition (the two leading long-axis columns must be entirely dead)
// is violated — a bug in the caller, since the frame normalizer
// guarantees this margin.
var ErrMarginPrecondition = errors.New("stripdp: columns 0 and 1 of the strip must be entirely dead")

// ErrResourceCeiling is returned before allocation when a strip's frontier
// would exceed MaxFrontierBits.
var ErrResourceCeiling = errors.New("stripdp: strip too wide for the frontier size ceiling")

// ErrInfeasible is returned when the terminal frontier entry is empty.
// The seed assignment is always itself a feasible solution, so reaching
// this indicates an internal inconsistency rather than a genuinely
// unsolvable strip.
var ErrInfeasible = errors.New("stripdp: no feasible assignment found at the terminal state (internal inconsistency)")

// GetLive reports whether (long, short) is live under the strip's boundary
// pattern.
type GetLive func(long, short int) bool

// IsRotor reports whether (long, short) is a rotor cell.
type IsRotor func(long, short int) bool

// AllowedAt returns the allowed-count table for (long, short).
type AllowedAt func(long, short int) *allowed.Table

// colNode is one link of the persistent backpointer chain: each frontier
// entry's tail is a *colNode, and states sharing a prefix share storage.
type colNode struct {
	parent *colNode
	col    uint64
}

func materialize(n *colNode) []uint64 {
	var cols []uint64
	for cur := n; cur != nil; cur = cur.parent {
		cols = append(cols, cur.col)
	}
	for i, j := 0, len(cols)-1; i < j; i, j = i+1, j-1 {
		cols[i], cols[j] = cols[j], cols[i]
	}
	return cols
}

// frontierEntry is one state in the DP frontier: the minimum cumulative
// live count over all consistent assignments ending in this (c_{x-1},
// c_x) raw pair, plus the backpointer chain that achieved it.
type frontierEntry struct {
	ok   bool
	cost int
	tail *colNode
}

// Solve runs the strip DP over a strip of long x short cells and returns
// the minimum-live-count assignment as a Pattern in strip-local
// coordinates (long, short). getPat0 supplies the fixed boundary/rotor
// values; isRotor marks non-mutable cells; allowedAt supplies each cell's
// allowed-count table for that cell.
//
// Precondition: long-axis columns 0 and 1 must be entirely dead under
// getPat0. A caller whose long axis spans a full frame dimension gets
// this for free from the frame's own dead margin.
//
// The returned pattern only carries stator cells: a rotor position never
// occupies a bit in outer() or innerMask(), so it is always absent from
// the result regardless of its true liveness. Callers must overlay
// getPat0 at rotor cells onto the result themselves (see
// internal/scheduler, which does exactly this when folding a strip's
// solution back into the full grid).
func Solve(long, short int, getPat0 GetLive, isRotor IsRotor, allowedAt AllowedAt) (pattern.Pattern, error) {
	if short > MaxShortAxis {
		return nil, errors.Wrapf(ErrResourceCeiling, "short axis length %d exceeds %d-bit column width", short, MaxShortAxis)
	}
	for y := 0; y < short; y++ {
		for x := 0; x < 2 && x < long; x++ {
			if getPat0(x, y) {
				return nil, ErrMarginPrecondition
			}
		}
	}

	outer := make([]uint64, long)
	innerMask := make([]uint64, long)
	innerLen := make([]int, long)
	for x := 0; x < long; x++ {
		var o uint64
		for _, y := range []int{0, 1, short - 2, short - 1} {
			if y < 0 || y >= short {
				continue
			}
			if !isRotor(x, y) && getPat0(x, y) {
				o |= 1 << uint(y)
			}
		}
		outer[x] = o

		var mask uint64
		for y := 2; y < short-2; y++ {
			if !isRotor(x, y) {
				mask |= 1 << uint(y)
			}
		}
		innerMask[x] = mask
		innerLen[x] = bitops.PopCount(mask)
	}

	if long < 2 {
		return nil, errors.New("stripdp: strip must span at least 2 long-axis columns")
	}
	if innerLen[0]+innerLen[1] > MaxFrontierBits {
		return nil, errors.Wrapf(ErrResourceCeiling, "initial frontier would need 2^%d entries", innerLen[0]+innerLen[1])
	}

	rr := make([]frontierEntry, 1<<uint(innerLen[0]+innerLen[1]))
	rr[0] = frontierEntry{ok: true, cost: 0, tail: nil}

	for x := 2; x < long; x++ {
		c0Len, c1Len, c2Len := innerLen[x-2], innerLen[x-1], innerLen[x]
		if c1Len+c2Len > MaxFrontierBits {
			return nil, errors.Wrapf(ErrResourceCeiling, "frontier at column %d would need 2^%d entries", x, c1Len+c2Len)
		}
		c0Outer, c1Outer, c2Outer := outer[x-2], outer[x-1], outer[x]
		c0Mask, c1Mask, c2Mask := innerMask[x-2], innerMask[x-1], innerMask[x]

		type rowBase struct {
			y       int
			allowed [2]uint64 // bit i set iff snh=i permitted, i in 0..=9
		}
		bases := make([]rowBase, 0, short)
		for y := 1; y < short-1; y++ {
			tbl := allowedAt(x-1, y)
			var a0, a1 uint64
			for snh := 0; snh < allowed.NumSNH; snh++ {
				if tbl[0][snh] {
					a0 |= 1 << uint(snh)
				}
				if tbl[1][snh] {
					a1 |= 1 << uint(snh)
				}
			}
			bases = append(bases, rowBase{y: y, allowed: [2]uint64{a0, a1}})
		}

		rr2 := make([]frontierEntry, 1<<uint(c1Len+c2Len))

		g, _ := errgroup.WithContext(context.Background())
		for c1RawIter := 0; c1RawIter < (1 << uint(c1Len)); c1RawIter++ {
			c1Raw := c1RawIter
			g.Go(func() error {
				c1 := c1Outer | bitops.Deposit(uint64(c1Raw), c1Mask)

				type rowC1 struct {
					y       int
					allowed uint64 // over snh' in 0..=6
				}
				c1Checks := make([]rowC1, len(bases))
				for i, b := range bases {
					live := (c1 >> uint(b.y)) & 1
					window := uint64(7) << uint(b.y-1)
					c1Snh := bitops.PopCount(c1 & window)
					var a uint64
					for snh := 0; snh <= 6; snh++ {
						if b.allowed[live]&(1<<uint(c1Snh+snh)) != 0 {
							a |= 1 << uint(snh)
						}
					}
					c1Checks[i] = rowC1{y: b.y, allowed: a}
				}

				best := make([]frontierEntry, 1<<uint(c2Len))
				bestC0 := make([]uint64, 1<<uint(c2Len))

				for c0Raw := 0; c0Raw < (1 << uint(c0Len)); c0Raw++ {
					idx := (c0Raw << uint(c1Len)) | c1Raw
					fe := rr[idx]
					if !fe.ok {
						continue
					}
					c0 := c0Outer | bitops.Deposit(uint64(c0Raw), c0Mask)
					c0Pop := bitops.PopCount(c0)

					type rowFinal struct {
						rawMask uint64
						allowed uint64 // over snh'' in 0..=3
					}
					finals := make([]rowFinal, len(c1Checks))
					for i, rc := range c1Checks {
						window := uint64(7) << uint(rc.y-1)
						c0Snh := bitops.PopCount(c0 & window)
						c2SnhFixed := bitops.PopCount(c2Outer & window)
						rawMask := bitops.Extract(window, c2Mask)
						var a uint64
						for snh := 0; snh <= 3; snh++ {
							if rc.allowed&(1<<uint(c0Snh+c2SnhFixed+snh)) != 0 {
								a |= 1 << uint(snh)
							}
						}
						finals[i] = rowFinal{rawMask: rawMask, allowed: a}
					}

				c2loop:
					for c2Raw := 0; c2Raw < (1 << uint(c2Len)); c2Raw++ {
						for _, rf := range finals {
							c2SnhRaw := bitops.PopCount(uint64(c2Raw) & rf.rawMask)
							if rf.allowed&(1<<uint(c2SnhRaw)) == 0 {
								continue c2loop
							}
						}

						ctNext := fe.cost + c0Pop
						if best[c2Raw].ok && best[c2Raw].cost <= ctNext {
							continue
						}
						best[c2Raw] = frontierEntry{ok: true, cost: ctNext, tail: fe.tail}
						bestC0[c2Raw] = c0
					}
				}

				for c2Raw, b := range best {
					if !b.ok {
						continue
					}
					rr2[(c1Raw<<uint(c2Len))|c2Raw] = frontierEntry{
						ok:   true,
						cost: b.cost,
						tail: &colNode{parent: b.tail, col: bestC0[c2Raw]},
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		rr = rr2
	}

	final := rr[0]
	if !final.ok {
		return nil, ErrInfeasible
	}

	out := pattern.New()
	for x, col := range materialize(final.tail) {
		for y := 0; y < short; y++ {
			if col&(1<<uint(y)) != 0 {
				out.Set(pattern.Cell{X: x, Y: y})
			}
		}
	}
	return out, nil
}
