package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// Conventional exit codes for failures that never reached the program.
const (
	ExitTimeout  = 124
	ExitNotFound = 127
)

// ProcResult captures everything a finished process produced.
type ProcResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
	Err      error
}

// OK reports whether the process ran and exited with status 0.
func (r ProcResult) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// TimedOut reports whether the process was killed by its deadline.
func (r ProcResult) TimedOut() bool {
	return r.ExitCode == ExitTimeout
}

// Error describes a failed result for logs. It returns nil on success.
func (r ProcResult) Error() error {
	if r.OK() {
		return nil
	}
	stderr := strings.TrimSpace(string(r.Stderr))
	if stderr == "" && r.Err != nil {
		stderr = r.Err.Error()
	}
	return fmt.Errorf("exit %d: %s", r.ExitCode, stderr)
}

// ExecRunner implements the Runner interface with os/exec.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for I/O after the process is killed.
	WaitDelay time.Duration
}

var _ Runner = &ExecRunner{} // Compile-time check

// NewExecRunner creates a runner for local binaries.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: 2 * time.Second}
}

// Run implements the Runner interface. The working directory is set on the
// command, so the process-wide current directory is never touched.
func (r *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) ProcResult {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = r.WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ProcResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
		Err:      err,
	}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.ExitCode = ExitTimeout
	case errors.Is(err, exec.ErrNotFound):
		res.ExitCode = ExitNotFound
	case errors.As(err, &exitErr) && exitErr.ExitCode() > 0:
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = 1
	}
	return res
}

// DecodeText returns b as a string when it is valid UTF-8.
func DecodeText(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// WithDir runs fn with the process working directory set to dir and always
// restores the previous directory, including when fn panics.
func WithDir(dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to read working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("failed to enter %q: %w. Check that the directory exists", dir, err)
	}
	defer func() {
		if chErr := os.Chdir(prev); chErr != nil && err == nil {
			err = fmt.Errorf("failed to restore working directory %q: %w", prev, chErr)
		}
	}()
	return fn()
}
