// Package errors provides a hierarchical error system for dirsend operations.
// It implements typed errors that can be inspected and handled differently
// based on their category, letting the CLI map each kind to an exit code.
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ErrorType represents the category of error for classification and handling.
type ErrorType string

// Error type constants define the categories of errors that can occur during a run.
// Every kind aborts the run; the type only decides how the failure is reported.
const (
	ErrTypeFile       ErrorType = "file"
	ErrTypeConfig     ErrorType = "config"
	ErrTypeEmptyInput ErrorType = "empty input"
	ErrTypeLaunch     ErrorType = "launch"
	ErrTypeJobFailure ErrorType = "job failure"
	ErrTypeLogSink    ErrorType = "log sink"
)

// DirSendError is the base error type that provides structured error information.
// Specific kinds embed it, so errors.Is matches on Type and errors.As on the
// concrete kind.
type DirSendError struct {
	Type    ErrorType
	Path    string
	Message string
	Cause   error
}

func (e *DirSendError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Path, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *DirSendError) Unwrap() error {
	return e.Cause
}

// Is implements error identity checking so that errors.Is matches any error
// of the same type anywhere in a chain.
func (e *DirSendError) Is(target error) bool {
	t, ok := target.(*DirSendError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// FileError represents file system failures while walking the input tree or
// preparing the output tree.
type FileError struct {
	*DirSendError
}

// NewFileError creates a file operation error with context.
func NewFileError(path, message string, cause error) *FileError {
	return &FileError{
		DirSendError: &DirSendError{
			Type:    ErrTypeFile,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// ConfigError represents configuration validation errors. These are raised
// before any file is discovered or any process is started.
type ConfigError struct {
	*DirSendError
}

// NewConfigError creates a configuration error without path context.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		DirSendError: &DirSendError{
			Type:    ErrTypeConfig,
			Message: message,
			Cause:   cause,
		},
	}
}

// NewConfigErrorWithPath creates a configuration error tied to a path given
// on the command line.
func NewConfigErrorWithPath(path, message string, cause error) *ConfigError {
	return &ConfigError{
		DirSendError: &DirSendError{
			Type:    ErrTypeConfig,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// EmptyInputError reports that the input root holds no file matching the
// filter while the mapper was asked to fail in that case.
type EmptyInputError struct {
	*DirSendError
	Pattern string
}

// NewEmptyInputError creates an empty input error for root and pattern.
func NewEmptyInputError(root, pattern string) *EmptyInputError {
	return &EmptyInputError{
		DirSendError: &DirSendError{
			Type:    ErrTypeEmptyInput,
			Path:    root,
			Message: fmt.Sprintf("no files match %q", pattern),
		},
		Pattern: pattern,
	}
}

// LaunchError reports that the external command could not be started at all.
// No return code exists for it.
type LaunchError struct {
	*DirSendError
	Command string
}

// NewLaunchError creates a launch error for the attempted command line.
func NewLaunchError(command string, cause error) *LaunchError {
	msg := "failed to start command"
	if cause != nil {
		msg = fmt.Sprintf("failed to start command: %v", cause)
	}
	return &LaunchError{
		DirSendError: &DirSendError{
			Type:    ErrTypeLaunch,
			Path:    command,
			Message: msg,
			Cause:   cause,
		},
		Command: command,
	}
}

// JobFailureError reports a launched command that exited with a nonzero code.
// Stderr carries everything the command wrote to its standard error.
type JobFailureError struct {
	*DirSendError
	Command    string
	Stderr     string
	ReturnCode int
}

// NewJobFailureError creates a job failure error for the file at path.
func NewJobFailureError(path, command, stderr string, returnCode int) *JobFailureError {
	msg := fmt.Sprintf("command exited with code %d", returnCode)
	if s := strings.TrimSpace(stderr); s != "" {
		msg = fmt.Sprintf("%s: %s", msg, s)
	}
	return &JobFailureError{
		DirSendError: &DirSendError{
			Type:    ErrTypeJobFailure,
			Path:    path,
			Message: msg,
		},
		Command:    command,
		Stderr:     stderr,
		ReturnCode: returnCode,
	}
}

// LogSinkError reports that the run log file could not be created or opened.
type LogSinkError struct {
	*DirSendError
}

// NewLogSinkError creates a log sink error for the log file at path.
func NewLogSinkError(path string, cause error) *LogSinkError {
	return &LogSinkError{
		DirSendError: &DirSendError{
			Type:    ErrTypeLogSink,
			Path:    path,
			Message: "cannot open log file",
			Cause:   cause,
		},
	}
}

// WrapFileError converts standard Go errors into typed FileError instances.
func WrapFileError(path string, err error) error {
	if err == nil {
		return nil
	}

	absPath, absErr := filepath.Abs(path)
	if absErr != nil {
		absPath = path
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewFileError(absPath, "file not found", err)
	case errors.Is(err, fs.ErrPermission):
		return NewFileError(absPath, "permission denied", err)
	default:
		return NewFileError(absPath, "file operation failed", err)
	}
}

// IsPermission reports whether err stems from a permission failure.
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// Exit codes returned by ExitCode.
const (
	ExitJobFailure = 1
	ExitConfig     = 2
	ExitEmptyInput = 3
	ExitLogSink    = 4
	ExitLaunch     = 5
)

// ExitCode maps an error returned by a run to the process exit code.
// A nil error maps to 0; unknown errors map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var (
		cfgErr    *ConfigError
		emptyErr  *EmptyInputError
		sinkErr   *LogSinkError
		launchErr *LaunchError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ExitConfig
	case errors.As(err, &emptyErr):
		return ExitEmptyInput
	case errors.As(err, &sinkErr):
		return ExitLogSink
	case errors.As(err, &launchErr):
		return ExitLaunch
	default:
		return ExitJobFailure
	}
}
