// Package logger wraps github.com/op/go-logging into the leveled sink
// cegis.Logger expects, standing in for the original's TheLogger.Log1
// through Log6 verbosity buckets (§6 "statsLevel 0-6").
package logger

import (
	"os"
	"time"

	"github.com/op/go-logging"

	"github.com/esolver/cegis"
)

var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{shortfunc} ▶ %{level:.4s}%{color:reset} %{message}`,
)

// NewLogger builds a go-logging.Logger for module, leveled by the string
// name of a logging.Level (CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG).
// An unrecognized level falls back to INFO rather than failing, since this
// is almost always driven by a CLI flag the user can simply have mistyped.
func NewLogger(level string, module string) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	backendLeveled := logging.AddModuleLevel(backendFormatter)

	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}
	backendLeveled.SetLevel(lvl, "")

	logging.SetBackend(backendLeveled)
	return logging.MustGetLogger(module)
}

// ParseTime splits elapsed into hours/minutes/seconds for the kind of
// "Total Time: H:M:S" summary line CEGSolver::Solve prints at the end of a
// run.
func ParseTime(elapsed time.Duration) (hours, minutes, seconds uint32) {
	total := uint32(elapsed.Seconds())
	return total / 3600, (total % 3600) / 60, total % 60
}

// CegisLogger adapts a go-logging.Logger to cegis.Logger, mapping the
// core's 1-6 statsLevel buckets onto go-logging's six severities in the
// same increasing-verbosity order: 1 is the least chatty (CRITICAL), 6 the
// most (DEBUG).
type CegisLogger struct {
	log *logging.Logger
}

// NewCegisLogger wraps an already-built go-logging.Logger.
func NewCegisLogger(log *logging.Logger) CegisLogger {
	return CegisLogger{log: log}
}

var _ cegis.Logger = CegisLogger{}

func (c CegisLogger) Logf(level int, format string, args ...any) {
	switch {
	case level <= 1:
		c.log.Criticalf(format, args...)
	case level == 2:
		c.log.Errorf(format, args...)
	case level == 3:
		c.log.Warningf(format, args...)
	case level == 4:
		c.log.Noticef(format, args...)
	case level == 5:
		c.log.Infof(format, args...)
	default:
		c.log.Debugf(format, args...)
	}
}
