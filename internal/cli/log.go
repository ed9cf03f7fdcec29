// Package cli implements the gdivelog2uddf command-line interface.
//
// Run without a subcommand, the binary converts the log named by -f (default
// gdivelog.glg in the working directory). The subcommands are:
//   - convert: export the dive log as UDDF or UDCF
//   - inspect: show repetition groups, trips and documents without exporting
//   - cache: list, prune or clear decompressed logs
//   - completion: print a shell completion script
//
// Diagnostics go to stderr through a charmbracelet/log logger carried in the
// command context; -v lowers its level to debug. Documents go to stdout or
// to the files named by -o.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the converter's logger, stamping each line with the
// time of day to the hundredth of a second.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress reports how long a conversion took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Conversion finished (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the command logger, or log.Default() outside a
// command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
