//go:build linux

// Package repl is the shell's read-eval-print loop: prompt, read,
// dispatch to the lexer/parser/builtin-dispatcher/launcher, and drain
// completed jobs between turns.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Armaan1620/jobshell/internal/builtin"
	"github.com/Armaan1620/jobshell/internal/diag"
	"github.com/Armaan1620/jobshell/internal/job"
	"github.com/Armaan1620/jobshell/internal/lexer"
	"github.com/Armaan1620/jobshell/internal/parser"
	"github.com/Armaan1620/jobshell/internal/process"
)

// Shell bundles every component the REPL drives.
type Shell struct {
	table      *job.Table
	controller *process.Controller
	diag       *diag.Printer
	in         *bufio.Reader
	out        io.Writer
}

// New wires a Shell around stdin/stdout/stderr, installing the
// signal & terminal controller on stdin's fd.
func New() (*Shell, error) {
	c, err := process.New(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}
	return &Shell{
		table:      job.New(),
		controller: c,
		diag:       diag.New(os.Stderr),
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}, nil
}

// Run drives the REPL until EOF or the exit builtin terminates the
// process.
func (s *Shell) Run() {
	for {
		s.drain()
		s.printPrompt()

		line, err := s.in.ReadString('\n')
		if err != nil {
			if len(strings.TrimSpace(line)) == 0 {
				fmt.Fprintln(s.out)
				return
			}
		}

		line = strings.TrimRight(line, "\n")
		if strings.TrimSpace(line) == "" {
			if err == io.EOF {
				return
			}
			continue
		}

		s.eval(line)

		if err == io.EOF {
			return
		}
	}
}

func (s *Shell) drain() {
	if s.controller.SigchldPending() {
		s.controller.DrainNonBlocking(s.table)
	}
	s.table.DrainDone(func(j *job.Job) {
		s.diag.Done(j.ID, j.Cmdline)
	})
}

func (s *Shell) printPrompt() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprint(s.out, "$ ")
		return
	}
	fmt.Fprintf(s.out, "%s $ ", prettyCwd(cwd))
}

func prettyCwd(cwd string) string {
	home := os.Getenv("HOME")
	if home == "" {
		return cwd
	}
	if cwd == home {
		return "~"
	}
	if strings.HasPrefix(cwd, home+"/") {
		return "~" + cwd[len(home):]
	}
	return cwd
}

func (s *Shell) eval(line string) {
	toks, err := lexer.Lex(line)
	if err != nil {
		s.diag.Errorf("Parse error", "%s", err)
		return
	}
	pipeline, err := parser.ParseTokens(toks)
	if err != nil {
		s.diag.Errorf("Parse error", "%s", err)
		return
	}

	if pipeline.IsSingleCommand() {
		name := pipeline.Commands[0].Argv[0]
		if builtin.IsBuiltin(name) {
			builtin.Dispatch(pipeline.Commands[0].Argv, builtin.Deps{
				Table:      s.table,
				Controller: s.controller,
				Diag:       s.diag,
				Stdout:     os.Stdout,
				Stderr:     os.Stderr,
			})
			return
		}
	}

	s.launch(pipeline, line)
}

func (s *Shell) launch(pipeline *parser.Pipeline, line string) {
	launched, err := process.Launch(pipeline, line, s.table, func(name string, err error) {
		s.diag.Errorf(name, "%s", err)
	})
	if err != nil {
		return
	}

	j := launched.Job
	if pipeline.Background {
		s.diag.Announce(j.ID, j.Pgid, line)
		return
	}

	if err := s.controller.Foreground(s.table, j, false); err != nil {
		s.diag.Errorf("wait", "%s", err)
		return
	}

	switch j.State {
	case job.Stopped:
		s.diag.Stopped(j.ID, j.Cmdline)
	case job.Done:
		s.table.Remove(j)
		s.diag.Done(j.ID, j.Cmdline)
	}
}
