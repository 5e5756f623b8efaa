// Package applog wires zap structured logging into the solver's pipeline:
// New builds a development-mode sugared logger, and Time wraps a named
// stage and logs its elapsed time so each phase's wall-clock cost shows up
// in the log.
package applog

import (
	"time"

	"go.uber.org/zap"
)

// New builds a development-mode sugared logger: human-readable console
// output written to stderr, the same stream the final grid render is
// written to.
func New() (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Time runs fn, logging its wall-clock duration under label at info level,
// or at error level together with the error when fn fails.
func Time[T any](log *zap.SugaredLogger, label string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)
	if err != nil {
		log.Errorw(label, "elapsed", elapsed, "error", err)
		return result, err
	}
	log.Infow(label, "elapsed", elapsed)
	return result, nil
}
