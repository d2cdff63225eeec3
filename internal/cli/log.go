package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// logger receives debug and warning output. It discards everything until
// setupLogger runs.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// setupLogger points logger at w. Colors are only used when w is a terminal,
// so output captured by a hook framework stays plain.
func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	logger = slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}))
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// VerboseLog writes a debug message with key/value attributes. It is only
// visible with --verbose.
func VerboseLog(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// warnf writes a warning that is visible without --verbose.
func warnf(format string, args ...any) {
	logger.Warn(fmt.Sprintf(format, args...))
}
