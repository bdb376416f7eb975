//go:build linux

// Package builtin executes cd, exit, jobs, fg, and bg in the shell
// process without forking.
package builtin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Armaan1620/jobshell/internal/diag"
	"github.com/Armaan1620/jobshell/internal/job"
	"github.com/Armaan1620/jobshell/internal/process"
)

// Names lists every recognized builtin.
var Names = map[string]bool{
	"cd":    true,
	"exit":  true,
	"jobs":  true,
	"fg":    true,
	"bg":    true,
}

// IsBuiltin reports whether name is a recognized builtin.
func IsBuiltin(name string) bool { return Names[name] }

// Deps are the collaborators a builtin needs to act on shell state.
type Deps struct {
	Table      *job.Table
	Controller *process.Controller
	Diag       *diag.Printer
	Stdout     *os.File
	Stderr     *os.File
}

// Dispatch executes argv[0] in-shell. Caller must already have
// checked IsBuiltin(argv[0]).
func Dispatch(argv []string, d Deps) {
	switch argv[0] {
	case "cd":
		cd(argv, d)
	case "exit":
		exit(argv, d)
	case "jobs":
		jobsCmd(argv, d)
	case "fg":
		fg(argv, d)
	case "bg":
		bg(argv, d)
	}
}

func cd(argv []string, d Deps) {
	var target string
	if len(argv) > 1 {
		target = argv[1]
	} else if home := os.Getenv("HOME"); home != "" {
		target = home
	} else {
		target = "/"
	}
	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(d.Stderr, "cd: %s\n", err)
	}
}

func exit(argv []string, d Deps) {
	if d.Controller != nil {
		d.Controller.RestoreTermAttrs()
	}
	os.Exit(0)
}

func jobsCmd(argv []string, d Deps) {
	if d.Controller != nil {
		d.Controller.DrainNonBlocking(d.Table)
	}
	d.Table.DrainDone(func(j *job.Job) {
		if d.Diag != nil {
			d.Diag.Done(j.ID, j.Cmdline)
		}
	})
	for _, j := range d.Table.All() {
		fmt.Fprintf(d.Stdout, "[%d] %s\t%s\n", j.ID, j.State, j.Cmdline)
	}
}

// parseJobspec accepts "%id" or "id".
func parseJobspec(s string) (int, bool) {
	s = strings.TrimPrefix(s, "%")
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return id, true
}

func fg(argv []string, d Deps) {
	if len(argv) != 2 {
		fmt.Fprintln(d.Stderr, "fg: usage: fg %jobid")
		return
	}
	id, ok := parseJobspec(argv[1])
	if !ok {
		fmt.Fprintln(d.Stderr, "fg: usage: fg %jobid")
		return
	}
	j := d.Table.FindByID(id)
	if j == nil {
		fmt.Fprintln(d.Stderr, "fg: no such job")
		return
	}
	wasStopped := j.State == job.Stopped
	if err := d.Controller.Foreground(d.Table, j, wasStopped); err != nil {
		fmt.Fprintf(d.Stderr, "fg: %s\n", err)
		return
	}
	switch j.State {
	case job.Stopped:
		if d.Diag != nil {
			d.Diag.Stopped(j.ID, j.Cmdline)
		}
	case job.Done:
		d.Table.Remove(j)
		if d.Diag != nil {
			d.Diag.Done(j.ID, j.Cmdline)
		}
	}
}

func bg(argv []string, d Deps) {
	if len(argv) != 2 {
		fmt.Fprintln(d.Stderr, "bg: usage: bg %jobid")
		return
	}
	id, ok := parseJobspec(argv[1])
	if !ok {
		fmt.Fprintln(d.Stderr, "bg: usage: bg %jobid")
		return
	}
	j := d.Table.FindByID(id)
	if j == nil {
		fmt.Fprintln(d.Stderr, "bg: no such job")
		return
	}
	if err := d.Controller.Background(d.Table, j, true); err != nil {
		fmt.Fprintf(d.Stderr, "kill (SIGCONT): %s\n", err)
		return
	}
	fmt.Fprintf(d.Stdout, "[%d] %d %s\n", j.ID, j.Pgid, j.Cmdline)
}
