package java

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
)

// Result is the outcome of a runtime check.
type Result struct {
	Present bool
	Version string
}

// Checker verifies a Java runtime is installed.
type Checker struct {
	path   string
	goos   string
	runner Runner
	log    *slog.Logger
}

// NewChecker creates a Checker that invokes the executable at path
// ("java" resolves through PATH).
func NewChecker(path string, runner Runner, logger *slog.Logger) *Checker {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{path: path, goos: runtime.GOOS, runner: runner, log: logger}
}

// VersionFlag returns the version query flag for the host OS. Windows
// builds are assumed to ship an older launcher that only knows -version.
func VersionFlag(goos string) string {
	if goos == "windows" {
		return "-version"
	}
	return "--version"
}

// Check runs the version query. A runtime that cannot be launched is a
// normal negative result, never an error.
func (c *Checker) Check(ctx context.Context) Result {
	out, err := c.runner.Run(ctx, c.path, VersionFlag(c.goos))
	if err != nil {
		c.log.Info("java runtime not found", "path", c.path, "error", err)
		return Result{}
	}

	// -version prints to stderr on every JVM; --version prints to stdout.
	version := firstLine(out.Stdout)
	if version == "" {
		version = firstLine(out.Stderr)
	}

	c.log.Info("java runtime found", "path", c.path, "version", version, "exit_code", out.ExitCode)
	return Result{Present: true, Version: version}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
