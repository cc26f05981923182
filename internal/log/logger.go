// Package log provides the run log and the run summary for dirsend.
// Every entry goes to the console and to <outputDir>/terminal.log; the
// summary is written as YAML next to it once the run ends. The console
// honors --quiet, the file never drops below info.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"dirsend/internal/config"
	"dirsend/internal/errors"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger owns the run log sinks. The structured logger returned by Line is
// handed to every component of the run.
type Logger struct {
	config *config.Config
	path   string
	file   *os.File
	line   *slog.Logger
	runID  string
}

// NewLogger opens the run log under the configured output directory and
// creates a logger writing to console and to that file. The output directory
// is created when missing. Any failure is returned as an *errors.LogSinkError.
func NewLogger(cfg *config.Config, console io.Writer) (*Logger, error) {
	path := cfg.LogFile()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.NewLogSinkError(path, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.NewLogSinkError(path, err)
	}

	runID := uuid.NewString()
	line := slog.New(teeHandler{
		newSink(console, consoleLevel(cfg), cfg),
		newSink(file, fileLevel(cfg), cfg),
	}).With("run", runID)

	return &Logger{
		config: cfg,
		path:   path,
		file:   file,
		line:   line,
		runID:  runID,
	}, nil
}

func newSink(w io.Writer, level charmlog.Level, cfg *config.Config) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		ReportCaller:    cfg.IsDebug(),
		Level:           level,
		Formatter:       formatterFor(cfg.LogFormat),
	})
}

func consoleLevel(cfg *config.Config) charmlog.Level {
	if cfg.Quiet {
		return charmlog.ErrorLevel
	}
	return fileLevel(cfg)
}

func fileLevel(cfg *config.Config) charmlog.Level {
	if cfg.IsDebug() {
		return charmlog.DebugLevel
	}
	return charmlog.InfoLevel
}

func formatterFor(format config.LogFormat) charmlog.Formatter {
	switch format {
	case config.LogFormatJSON:
		return charmlog.JSONFormatter
	case config.LogFormatLogfmt:
		return charmlog.LogfmtFormatter
	default:
		return charmlog.TextFormatter
	}
}

// Line returns the structured logger shared by the components of a run.
func (l *Logger) Line() *slog.Logger {
	return l.line
}

// RunID returns the identifier stamped on every entry of this run.
func (l *Logger) RunID() string {
	return l.runID
}

// Path returns the run log file path.
func (l *Logger) Path() string {
	return l.path
}

// Preamble logs the program title and, at debug level, the options snapshot
// and the process environment.
func (l *Logger) Preamble(version string) {
	l.line.Info("dirsend: send DICOM files to a remote PACS store", "version", version, "log", l.Path())

	if !l.config.IsDebug() {
		return
	}

	l.line.Debug("plugin arguments", "options", strings.TrimSpace(spew.Sdump(l.config.RunOptions())))

	env := os.Environ()
	sort.Strings(env)
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		l.line.Debug("base environment", "key", k, "value", v)
	}
}

// Close releases the run log file. The console sink is left open.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
