// Package process runs one external command at a time and captures its
// outcome.
package process

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"dirsend/internal/command"
	dserrors "dirsend/internal/errors"
)

// JobResult is the captured outcome of one finished command.
type JobResult struct {
	Cmd        string
	Stdout     string
	Stderr     string
	ReturnCode int
	Duration   time.Duration
}

// Failed reports whether the command exited with a nonzero code.
func (r JobResult) Failed() bool {
	return r.ReturnCode != 0
}

// Options configures a Runner.
type Options struct {
	// Dir is the working directory of every command. Empty means the
	// working directory of this process at the time NewRunner is called.
	Dir string
	// Verbose logs each command line before it is started.
	Verbose bool
}

// Runner executes commands synchronously. It never retries and never
// times out.
type Runner struct {
	logger *slog.Logger
	opts   Options
}

// NewRunner creates a Runner that logs through logger.
func NewRunner(logger *slog.Logger, opts Options) *Runner {
	if opts.Dir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.Dir = wd
		}
	}

	return &Runner{
		logger: logger.With("comp", "process"),
		opts:   opts,
	}
}

// Run starts the command described by spec and blocks until it exits.
//
// A command that starts and exits nonzero yields a JobResult carrying the
// exit code and a nil error. A command that cannot be started yields an
// *errors.LaunchError and no result.
func (r *Runner) Run(spec command.JobSpec) (JobResult, error) {
	line := spec.String()
	if r.opts.Verbose {
		r.logger.Info("running", "cmd", line, "dir", r.opts.Dir)
	}

	cmd := exec.Command(spec.Program, spec.Args...)
	cmd.Dir = r.opts.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := JobResult{
		Cmd:      line,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ReturnCode = exitErr.ExitCode()
			r.logger.Debug("exited", "cmd", line, "code", result.ReturnCode, "dur", result.Duration)
			return result, nil
		}
		return JobResult{}, dserrors.NewLaunchError(line, err)
	}

	r.logger.Debug("exited", "cmd", line, "code", 0, "dur", result.Duration)
	return result, nil
}
