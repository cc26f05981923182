// Package batch drives a dirsend run: it walks the mappings in order, sends
// each file through the process runner and stops at the first failure.
package batch

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"dirsend/internal/command"
	"dirsend/internal/config"
	"dirsend/internal/errors"
	"dirsend/internal/mapper"
	"dirsend/internal/process"
)

// State is the lifecycle state of an Orchestrator.
type State string

// Orchestrator states. Succeeded and Aborted are terminal.
const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateAborted    State = "aborted"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateAborted
}

// MappingSource yields mappings in order. *mapper.Cursor satisfies it.
type MappingSource interface {
	Next() (mapper.FileMapping, bool)
	Len() int
	Remaining() int
}

// Runner executes one command. *process.Runner satisfies it.
type Runner interface {
	Run(spec command.JobSpec) (process.JobResult, error)
}

// Orchestrator sends every mapping of a source through a Runner.
type Orchestrator struct {
	source MappingSource
	runner Runner
	opts   config.RunOptions
	logger *slog.Logger
	runID  string
	state  State
}

// New creates an Orchestrator in the Idle state.
func New(runID string, source MappingSource, runner Runner, opts config.RunOptions, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		source: source,
		runner: runner,
		opts:   opts,
		logger: logger.With("comp", "batch"),
		runID:  runID,
		state:  StateIdle,
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run processes the mappings in the order the source yields them.
//
// The first JobResult with a nonzero return code aborts the run with an
// *errors.JobFailureError carrying that result's stderr; later mappings are
// neither built nor executed. A launch failure or an output directory that
// cannot be created also aborts the run.
//
// The returned Report is non-nil whenever Run got past the Idle state, on
// success and on failure alike.
func (o *Orchestrator) Run() (*Report, error) {
	switch {
	case o.state.Terminal():
		return nil, errors.NewConfigError("batch already run", nil)
	case o.state != StateIdle:
		return nil, errors.NewConfigError("batch is running", nil)
	}

	start := time.Now()
	report := &Report{
		RunID:     o.runID,
		Total:     o.source.Len(),
		StartedAt: start,
	}

	o.transition(StateProcessing, report)
	o.logger.Info("batch started", "stage", "start", "files", report.Total,
		"peer", o.peer(), "aec", o.opts.CalledAETitle)

	for {
		m, ok := o.source.Next()
		if !ok {
			break
		}

		if err := o.process(m, report); err != nil {
			return o.finish(report, StateAborted, start), err
		}
	}

	return o.finish(report, StateSucceeded, start), nil
}

func (o *Orchestrator) process(m mapper.FileMapping, report *Report) error {
	if err := os.MkdirAll(filepath.Dir(m.OutputPath), 0o755); err != nil {
		report.Failed = &m
		return errors.WrapFileError(filepath.Dir(m.OutputPath), err)
	}

	spec := command.Build(o.opts, m.InputPath)
	o.logger.Info("sending", "stage", "job", "file", filepath.Base(m.InputPath),
		"to", o.opts.CalledAETitle, "peer", o.peer())

	res, err := o.runner.Run(spec)
	if err != nil {
		report.Failed = &m
		o.logger.Error("launch failed", "stage", "job", "file", m.RelPath, "err", err)
		return err
	}

	report.Results = append(report.Results, res)
	o.logger.Info("command", "stage", "job", "cmd", res.Cmd)

	if res.Failed() {
		report.Failed = &m
		o.logger.Error("send failed", "stage", "job", "file", m.RelPath,
			"code", res.ReturnCode, "stderr", res.Stderr)
		return errors.NewJobFailureError(m.InputPath, res.Cmd, res.Stderr, res.ReturnCode)
	}

	o.logger.Info("response: success", "stage", "job", "file", m.RelPath)
	return nil
}

func (o *Orchestrator) finish(report *Report, state State, start time.Time) *Report {
	report.Remaining = o.source.Remaining()
	report.Duration = time.Since(start)
	o.transition(state, report)

	kv := []any{"stage", "finish", "state", state, "processed", report.Processed(),
		"remaining", report.Remaining, "dur", report.Duration.Round(time.Millisecond)}
	if state == StateAborted {
		o.logger.Error("batch aborted", kv...)
	} else {
		o.logger.Info("batch succeeded", kv...)
	}
	return report
}

func (o *Orchestrator) transition(to State, report *Report) {
	o.logger.Debug("transition", "from", o.state, "to", to)
	o.state = to
	report.State = to
}

func (o *Orchestrator) peer() string {
	return net.JoinHostPort(o.opts.Host, o.opts.Port)
}
