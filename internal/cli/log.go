package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI's logger, stamping lines like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch logs how long a command step took.
type stopwatch struct {
	logger  *log.Logger
	started time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, started: time.Now()}
}

// lap logs msg at info level with a "took" field appended to keyvals.
func (s stopwatch) lap(msg string, keyvals ...any) {
	took := time.Since(s.started).Round(time.Millisecond)
	s.logger.Info(msg, append(keyvals, "took", took)...)
}
