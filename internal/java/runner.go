package java

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Output is what a finished process wrote.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner starts external processes. The installer and the runtime check
// go through a Runner so tests can substitute a fake.
type Runner interface {
	// Run executes name with args and waits for it to exit. The error is
	// non-nil only when the process could not be started; a non-zero exit
	// code is reported in Output.
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}
