// Command statoropt rewrites the stator of a Game of Life oscillator to
// minimize its live-cell count while preserving the rotor's dynamics. It
// reads the seed grid from standard input, writes a structured progress
// log and the final grid to standard error, and exits non-zero on any of
// the five fatal error kinds (see internal/gridio, internal/period,
// internal/frame, internal/stripdp).
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"statoropt/internal/allowed"
	"statoropt/internal/applog"
	"statoropt/internal/frame"
	"statoropt/internal/gridio"
	"statoropt/internal/pattern"
	"statoropt/internal/period"
	"statoropt/internal/rotorclass"
	"statoropt/internal/scheduler"
	"statoropt/internal/stripdp"
)

// Exit codes distinguish each fatal condition at the process boundary,
// beyond a generic non-zero exit status.
const (
	exitOK = iota
	exitParseError
	exitPeriodBoundExceeded
	exitNonCyclingSeed
	exitInfeasibleDP
	exitResourceCeiling
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func newRootCommand() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:          "statoropt bb_pad search_max",
		Short:        "Minimize the stator of a Game of Life oscillator",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			bbPad, err := parseNonNegativeInt(args[0], "bb_pad")
			if err != nil {
				return wrapParseError(err)
			}
			searchMax, err := parseNonNegativeInt(args[1], "search_max")
			if err != nil {
				return wrapParseError(err)
			}
			if searchMax <= 0 {
				return wrapParseError(errors.New("search_max must be a positive integer"))
			}

			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}

			return run(cmd.InOrStdin(), bbPad, searchMax, seed)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for the scheduler's strip-order shuffle (default: current time)")
	return cmd
}

func parseNonNegativeInt(s, name string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, errors.Wrapf(err, "%s must be an integer", name)
	}
	if v < 0 {
		return 0, errors.Errorf("%s must be non-negative, got %d", name, v)
	}
	return v, nil
}

type parsedSeed struct {
	pat0   pattern.Pattern
	forced pattern.Pattern
}

type detectedPeriod struct {
	pats []pattern.Pattern
}

type classified struct {
	isRotor [][]bool
}

type compiled struct {
	tbl [][]allowed.Table
}

func run(stdin io.Reader, bbPad, searchMax int, seed int64) error {
	log, err := applog.New()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	seedGrid, err := applog.Time(log, "parse seed", func() (parsedSeed, error) {
		pat0, forced, err := gridio.Parse(stdin)
		return parsedSeed{pat0, forced}, err
	})
	if err != nil {
		return wrapParseError(err)
	}

	detected, err := applog.Time(log, "detect period", func() (detectedPeriod, error) {
		pats, err := period.Detect(seedGrid.pat0)
		return detectedPeriod{pats}, err
	})
	if err != nil {
		return classifyPeriodError(err)
	}

	fr, err := applog.Time(log, "bounding box", func() (frame.Result, error) {
		return frame.Normalize(detected.pats, seedGrid.forced, bbPad)
	})
	if err != nil {
		return wrapParseError(err)
	}

	rotor, err := applog.Time(log, "classify rotor", func() (classified, error) {
		ir := rotorclass.Classify(fr.Pats, fr.ForcedRotors, fr.W, fr.H)
		if err := frame.ValidateRotorMargin(ir, fr.W, fr.H); err != nil {
			return classified{}, err
		}
		return classified{ir}, nil
	})
	if err != nil {
		return wrapParseError(err)
	}

	tables, err := applog.Time(log, "compile allowed counts", func() (compiled, error) {
		return compiled{allowed.Compile(fr.Pats, rotor.isRotor, fr.W, fr.H)}, nil
	})
	if err != nil {
		return err
	}

	sol := scheduler.New(fr.W, fr.H, fr.Pats[0], rotor.isRotor, tables.tbl, searchMax, seed, log)
	accepted, err := sol.Run()
	if err != nil {
		return classifyStripDPError(err)
	}

	log.Infow("final", "accepted_improvements", accepted, "stator_live_cells", sol.Pat.Len())
	return gridio.RenderFinal(os.Stderr, fr.W, fr.H, rotor.isRotor, sol.Pat)
}

func wrapParseError(err error) error {
	return &classifiedError{kind: exitParseError, err: err}
}

func classifyPeriodError(err error) error {
	switch {
	case errors.Is(err, period.ErrPeriodBoundExceeded):
		return &classifiedError{kind: exitPeriodBoundExceeded, err: err}
	case errors.Is(err, period.ErrNonCyclingSeed):
		return &classifiedError{kind: exitNonCyclingSeed, err: err}
	default:
		return &classifiedError{kind: exitParseError, err: err}
	}
}

func classifyStripDPError(err error) error {
	if errors.Is(err, stripdp.ErrResourceCeiling) {
		return &classifiedError{kind: exitResourceCeiling, err: err}
	}
	return &classifiedError{kind: exitInfeasibleDP, err: err}
}

// classifiedError carries the exit code a fatal condition maps to
// alongside the wrapped cause, so main can report and set os.Exit's code
// without cobra's own error-printing losing the original error's stack.
type classifiedError struct {
	kind int
	err  error
}

func (e *classifiedError) Error() string { return e.err.Error() }
func (e *classifiedError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.kind
	}
	return exitParseError
}
