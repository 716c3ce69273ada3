package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// LogFileName is the log written into the config directory.
const LogFileName = "modtool.log"

// NewLogger returns a text logger at debug level when verbose is set,
// and a JSON logger at info level otherwise.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}

// OpenLogFile opens the log file in the config directory for appending.
func (d Dirs) OpenLogFile() (*os.File, error) {
	if err := os.MkdirAll(d.Config, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(d.Config, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// SetupLogger creates the logger for a run: verbose runs log to stderr,
// others to the log file. The returned close function is never nil.
func SetupLogger(dirs Dirs, verbose bool) (*slog.Logger, func() error, error) {
	if verbose {
		return NewLogger(os.Stderr, true), func() error { return nil }, nil
	}

	f, err := dirs.OpenLogFile()
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return NewLogger(f, false), f.Close, nil
}
