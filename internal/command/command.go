// Package command renders the dcmsend invocation for a single input file.
package command

import (
	"github.com/kballard/go-shellquote"

	"dirsend/internal/config"
)

// JobSpec is the argument vector of one external command.
type JobSpec struct {
	Program string
	Args    []string
}

// Build renders
//
//	dcmsend -aet <aeTitle> -aec <calledAETitle> <host> <port> <inputPath>
//
// as an argument vector. Every value is its own element; nothing goes
// through a shell.
func Build(opts config.RunOptions, inputPath string) JobSpec {
	program := opts.Executable
	if program == "" {
		program = config.DefaultExecutable
	}

	return JobSpec{
		Program: program,
		Args: []string{
			"-aet", opts.AETitle,
			"-aec", opts.CalledAETitle,
			opts.Host,
			opts.Port,
			inputPath,
		},
	}
}

// Argv returns a copy of the full argument vector, program first.
func (s JobSpec) Argv() []string {
	argv := make([]string, 0, len(s.Args)+1)
	argv = append(argv, s.Program)
	return append(argv, s.Args...)
}

// String renders the command as a shell-quoted line for logs. The line is
// never executed.
func (s JobSpec) String() string {
	return shellquote.Join(s.Argv()...)
}
