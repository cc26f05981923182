package cmd

import (
	"fmt"
	"io"
	"os"

	"dirsend/internal/config"
	"dirsend/internal/errors"

	"github.com/spf13/cobra"
)

// Version is the program version printed by --version.
var Version = "1.1.9"

// newRootCmd builds the root command. Flags are bound into cfg.
func newRootCmd(cfg *config.Config, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dirsend [options] <inputDir> <outputDir>",
		Short: "Send DICOM files to a remote PACS store",
		Long: `dirsend walks an input directory, runs dcmsend once for every file matching
the file filter and stops at the first file the remote store does not accept.
Progress is logged to the console and to <outputDir>/terminal.log.`,
		Version: Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return errors.NewConfigError("expected <inputDir> and <outputDir>", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InputDir = args[0]
			cfg.OutputDir = args[1]

			if err := cfg.Validate(); err != nil {
				return err
			}

			return executeDirSend(cfg, stderr)
		},
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewConfigError(err.Error(), err)
	})

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.FileFilter, "fileFilter", "f", config.DefaultFileFilter, "input file filter glob")
	flags.StringVarP(&cfg.Host, "host", "n", config.DefaultHost, "host IP of the remote PACS")
	flags.StringVarP(&cfg.Port, "port", "p", config.DefaultPort, "host port of the remote PACS")
	flags.StringVarP(&cfg.AETitle, "aeTitle", "a", config.DefaultAETitle, "my AE title")
	flags.StringVarP(&cfg.CalledAETitle, "calledAETitle", "c", config.DefaultCalledAETitle, "called AE title of peer")
	flags.BoolP("version", "V", false, "print version and exit")
	flags.BoolVar(&cfg.FailIfEmpty, "fail-if-empty", false, "fail when no input file matches the filter")
	flags.StringVar(&cfg.Executable, "executable", config.DefaultExecutable, "dcmsend executable to invoke")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log each command line before it runs")
	flags.BoolVar(&cfg.Debug, "debug", false, "debug logging, including options and environment")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "log errors only")
	flags.BoolVar(&cfg.NoSummary, "no-summary", false, "do not write "+config.SummaryFileName)
	cfg.LogFormat = config.LogFormatText
	flags.Var((*logFormatFlag)(&cfg.LogFormat), "log-format", "log format (text, json, logfmt)")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("debug", "quiet")

	return rootCmd
}

// Execute runs the root command and handles top-level error reporting.
// The process exit code is derived from the kind of error the run ended with.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(&config.Config{}, stderr)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err.Error())
		if code := errors.ExitCode(err); code != 0 {
			return code
		}
		return 1
	}
	return 0
}

type logFormatFlag config.LogFormat

func (f *logFormatFlag) String() string {
	return string(*f)
}

func (f *logFormatFlag) Set(v string) error {
	switch config.LogFormat(v) {
	case config.LogFormatText, config.LogFormatJSON, config.LogFormatLogfmt:
		*f = logFormatFlag(v)
		return nil
	default:
		return fmt.Errorf("must be 'text', 'json' or 'logfmt'")
	}
}

func (f *logFormatFlag) Type() string {
	return "string"
}
