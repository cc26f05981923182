// Package cmd implements the command-line interface and orchestration logic for dirsend.
// It connects configuration, discovery, command execution and reporting.
package cmd

import (
	stderrors "errors"
	"io"

	"dirsend/internal/batch"
	"dirsend/internal/config"
	"dirsend/internal/log"
	"dirsend/internal/mapper"
	"dirsend/internal/process"
)

func executeDirSend(cfg *config.Config, console io.Writer) (err error) {
	logger, err := log.NewLogger(cfg, console)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logger.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	logger.Preamble(Version)

	cursor, err := mapper.New(cfg.InputDir, cfg.OutputDir, cfg.GlobPattern(), cfg.FailIfEmpty).Open()
	if err != nil {
		logger.Line().Error("input discovery failed", "comp", "mapper", "err", err)
		return err
	}

	runner := process.NewRunner(logger.Line(), process.Options{
		Dir:     cfg.OutputDir,
		Verbose: cfg.IsVerbose(),
	})
	orchestrator := batch.New(logger.RunID(), cursor, runner, cfg.RunOptions(), logger.Line())

	report, runErr := orchestrator.Run()
	if werr := logger.WriteReport(report, runErr); werr != nil {
		logger.Line().Error("summary not written", "comp", "log", "err", werr)
		return stderrors.Join(runErr, werr)
	}
	return runErr
}
