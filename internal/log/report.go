package log

import (
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"dirsend/internal/batch"
	"dirsend/internal/errors"
)

// Summary is the YAML document written at the end of a run. It records how
// far the batch got; it does not change the fail-fast behavior.
type Summary struct {
	RunID         string     `yaml:"run_id"`
	State         string     `yaml:"state"`
	Peer          string     `yaml:"peer"`
	AETitle       string     `yaml:"ae_title"`
	CalledAETitle string     `yaml:"called_ae_title"`
	StartedAt     string     `yaml:"started_at"`
	Duration      string     `yaml:"duration"`
	Total         int        `yaml:"total"`
	Processed     int        `yaml:"processed"`
	Remaining     int        `yaml:"remaining"`
	Failed        *Failure   `yaml:"failed,omitempty"`
	Jobs          []JobEntry `yaml:"jobs"`
}

// Failure describes the mapping that stopped the run.
type Failure struct {
	File       string `yaml:"file"`
	Error      string `yaml:"error"`
	ReturnCode int    `yaml:"returncode,omitempty"`
	Stderr     string `yaml:"stderr,omitempty"`
}

// JobEntry is one executed command.
type JobEntry struct {
	Cmd        string `yaml:"cmd"`
	ReturnCode int    `yaml:"returncode"`
	Duration   string `yaml:"duration"`
}

// BuildSummary converts a batch report and the error the run ended with into
// a Summary.
func (l *Logger) BuildSummary(report *batch.Report, runErr error) Summary {
	s := Summary{
		RunID:         report.RunID,
		State:         string(report.State),
		Peer:          net.JoinHostPort(l.config.Host, l.config.Port),
		AETitle:       l.config.AETitle,
		CalledAETitle: l.config.CalledAETitle,
		StartedAt:     report.StartedAt.UTC().Format(time.RFC3339),
		Duration:      report.Duration.Round(time.Millisecond).String(),
		Total:         report.Total,
		Processed:     report.Processed(),
		Remaining:     report.Remaining,
		Jobs:          make([]JobEntry, 0, len(report.Results)),
	}

	for _, r := range report.Results {
		s.Jobs = append(s.Jobs, JobEntry{
			Cmd:        r.Cmd,
			ReturnCode: r.ReturnCode,
			Duration:   r.Duration.Round(time.Millisecond).String(),
		})
	}

	if report.Failed != nil {
		f := &Failure{File: report.Failed.InputPath}
		if runErr != nil {
			f.Error = runErr.Error()
		}
		var jobErr *errors.JobFailureError
		if stderrors.As(runErr, &jobErr) {
			f.ReturnCode = jobErr.ReturnCode
			f.Stderr = jobErr.Stderr
		}
		s.Failed = f
	}

	return s
}

// WriteReport writes the run summary to the configured summary file.
// Nothing is written when summaries are disabled or no report exists.
func (l *Logger) WriteReport(report *batch.Report, runErr error) error {
	if report == nil || !l.config.ShouldWriteSummary() {
		return nil
	}

	data, err := yaml.Marshal(l.BuildSummary(report, runErr))
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	path := l.config.SummaryFile()
	if err := writeFile(path, data); err != nil {
		return err
	}

	l.line.Info("summary written", "comp", "log", "path", path)
	return nil
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.NewFileError(path, "failed to create summary", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		return errors.NewFileError(path, "failed to write summary", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.NewFileError(path, "failed to write summary", err)
	}
	_ = tmp.Close()

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.NewFileError(path, "failed to write summary", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.NewFileError(path, "failed to write summary", err)
	}
	return nil
}
