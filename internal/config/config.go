// Package config provides configuration management and validation for dirsend.
// It centralizes all command-line options and runtime settings, providing
// validation logic to catch configuration errors before any file is touched.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dirsend/internal/errors"
)

// LogFormat represents the supported line formats for the run log.
type LogFormat string

// Supported log format constants.
const (
	LogFormatText   LogFormat = "text"
	LogFormatJSON   LogFormat = "json"
	LogFormatLogfmt LogFormat = "logfmt"
)

// Defaults applied by the CLI flags.
const (
	DefaultFileFilter    = "dcm"
	DefaultHost          = "0.0.0.0"
	DefaultPort          = "4242"
	DefaultAETitle       = "ChRIS"
	DefaultCalledAETitle = "CHRISLOCAL"
	DefaultExecutable    = "dcmsend"

	// LogFileName is the run log written under the output directory.
	LogFileName = "terminal.log"
	// SummaryFileName is the run summary written under the output directory.
	SummaryFileName = "dirsend-summary.yaml"

	maxAETitleLength = 16
)

// Config holds all runtime configuration options for a dirsend run.
// It is populated by the CLI flags and validated once before the run starts.
type Config struct {
	InputDir      string
	OutputDir     string
	FileFilter    string
	Host          string
	Port          string
	AETitle       string
	CalledAETitle string
	Executable    string
	FailIfEmpty   bool
	Verbose       bool
	Debug         bool
	Quiet         bool
	NoSummary     bool
	LogFormat     LogFormat
}

// RunOptions is the configuration snapshot handed to the mapper, the command
// builder and the orchestrator. It does not change for the duration of a run.
type RunOptions struct {
	FileFilter    string
	Host          string
	Port          string
	AETitle       string
	CalledAETitle string
	InputDir      string
	OutputDir     string
	Executable    string
}

// Validate performs comprehensive validation of configuration settings and
// normalizes directories to absolute paths.
func (c *Config) Validate() error {
	if err := c.validateInputDir(); err != nil {
		return err
	}

	if err := c.validateOutputDir(); err != nil {
		return err
	}

	if err := c.validateEndpoint(); err != nil {
		return err
	}

	if err := c.validateFileFilter(); err != nil {
		return err
	}

	if err := c.validateLogFormat(); err != nil {
		return err
	}

	c.normalizeConfig()
	return nil
}

func (c *Config) validateInputDir() error {
	if c.InputDir == "" {
		return errors.NewConfigError("input directory is required", nil)
	}

	absDir, err := filepath.Abs(c.InputDir)
	if err != nil {
		return errors.NewConfigErrorWithPath(c.InputDir, "invalid input directory path", err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return errors.NewConfigErrorWithPath(absDir, "input directory is not accessible", err)
	}
	if !info.IsDir() {
		return errors.NewConfigErrorWithPath(absDir, "input path is not a directory", nil)
	}

	c.InputDir = absDir
	return nil
}

func (c *Config) validateOutputDir() error {
	if c.OutputDir == "" {
		return errors.NewConfigError("output directory is required", nil)
	}

	absDir, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return errors.NewConfigErrorWithPath(c.OutputDir, "invalid output directory path", err)
	}

	if info, err := os.Stat(absDir); err == nil && !info.IsDir() {
		return errors.NewConfigErrorWithPath(absDir, "output path is not a directory", nil)
	}

	c.OutputDir = absDir
	return nil
}

func (c *Config) validateEndpoint() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.NewConfigError("host is required", nil)
	}

	port, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil {
		return errors.NewConfigError("port must be numeric: "+c.Port, err)
	}
	if port < 1 || port > 65535 {
		return errors.NewConfigError("port out of range: "+c.Port, nil)
	}

	if err := validateAETitle("aeTitle", c.AETitle); err != nil {
		return err
	}
	return validateAETitle("calledAETitle", c.CalledAETitle)
}

func validateAETitle(flag, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.NewConfigError(flag+" is required", nil)
	}
	if len(title) > maxAETitleLength {
		return errors.NewConfigError(flag+" must be at most 16 characters: "+title, nil)
	}
	return nil
}

func (c *Config) validateFileFilter() error {
	if strings.TrimSpace(c.FileFilter) == "" {
		return errors.NewConfigError("file filter is required", nil)
	}
	if _, err := filepath.Match(c.GlobPattern(), "probe"); err != nil {
		return errors.NewConfigError("invalid file filter: "+c.FileFilter, err)
	}
	return nil
}

func (c *Config) validateLogFormat() error {
	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON, LogFormatLogfmt:
		return nil
	default:
		return errors.NewConfigError("log format must be 'text', 'json' or 'logfmt'", nil)
	}
}

func (c *Config) normalizeConfig() {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	if strings.TrimSpace(c.Executable) == "" {
		c.Executable = DefaultExecutable
	}
	c.Host = strings.TrimSpace(c.Host)
	c.Port = strings.TrimSpace(c.Port)
	c.AETitle = strings.TrimSpace(c.AETitle)
	c.CalledAETitle = strings.TrimSpace(c.CalledAETitle)
}

// GlobPattern turns the file filter into the glob matched against file names.
// A bare suffix such as "dcm" or ".dcm" becomes "*.dcm"; a value that already
// holds a glob metacharacter is used as given.
func (c *Config) GlobPattern() string {
	f := strings.TrimSpace(c.FileFilter)
	if strings.ContainsAny(f, "*?[") {
		return f
	}
	return "*." + strings.TrimPrefix(f, ".")
}

// LogFile returns the path of the run log under the output directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.OutputDir, LogFileName)
}

// SummaryFile returns the path of the run summary under the output directory.
func (c *Config) SummaryFile() string {
	return filepath.Join(c.OutputDir, SummaryFileName)
}

// RunOptions returns the snapshot of the settings a run depends on.
func (c *Config) RunOptions() RunOptions {
	return RunOptions{
		FileFilter:    c.FileFilter,
		Host:          c.Host,
		Port:          c.Port,
		AETitle:       c.AETitle,
		CalledAETitle: c.CalledAETitle,
		InputDir:      c.InputDir,
		OutputDir:     c.OutputDir,
		Executable:    c.Executable,
	}
}

// IsVerbose determines if each command line is logged before it runs.
// Quiet mode overrides Verbose mode.
func (c *Config) IsVerbose() bool {
	return c.Verbose && !c.Quiet
}

// IsDebug determines if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.Debug && !c.Quiet
}

// ShouldWriteSummary determines if the YAML run summary is written.
func (c *Config) ShouldWriteSummary() bool {
	return !c.NoSummary
}
