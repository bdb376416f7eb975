//go:build linux

// Package process forks children, wires pipes and file redirections,
// assigns a shared process group per pipeline, and owns the terminal
// ownership transfers and signal dispositions job control needs.
package process

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/Armaan1620/jobshell/internal/job"
	"github.com/Armaan1620/jobshell/internal/parser"
)

// Launched is the result of launching a pipeline: the Job recorded
// for it and the *exec.Cmd for every spawned process, in launch order.
// The controller waits on the group by pgid and does not use Cmds.
type Launched struct {
	Job  *job.Job
	Cmds []*exec.Cmd
}

// Launch spawns every command of p, connected by anonymous pipes per
// spec.md §4.4, puts them all in one new process group, and records a
// Job for the result. cmdline is the original line, used as the
// Job's display string.
func Launch(p *parser.Pipeline, cmdline string, table *job.Table, diag func(name string, err error)) (*Launched, error) {
	n := len(p.Commands)
	cmds := make([]*exec.Cmd, 0, n)
	pids := make([]int, 0, n)

	var prevRead *os.File // nil means "inherit the shell's stdin"
	pgid := 0

	abort := func(extra ...*os.File) {
		for _, f := range extra {
			if f != nil {
				f.Close()
			}
		}
		if prevRead != nil {
			prevRead.Close()
		}
	}

	for i, c := range p.Commands {
		var stdin *os.File
		var stdout *os.File
		var pipeRead *os.File
		var pipeWrite *os.File
		var opened []*os.File

		if c.HasInput() {
			f, err := os.Open(c.InFile)
			if err != nil {
				diag("open infile", err)
				abort()
				return nil, err
			}
			stdin = f
			opened = append(opened, f)
		} else if prevRead != nil {
			stdin = prevRead
		}

		if i < n-1 {
			r, w, err := os.Pipe()
			if err != nil {
				diag("pipe", err)
				abort(opened...)
				return nil, err
			}
			stdout = w
			pipeRead = r
			pipeWrite = w
			opened = append(opened, r, w)
		}

		// Output redirection is applied after pipe wiring and overrides
		// it; the pipe still exists, so the next stage reads EOF from it
		// instead of the shell's stdin.
		if c.HasOutput() {
			flags := os.O_WRONLY | os.O_CREATE
			if c.AppendMode {
				flags |= os.O_APPEND
			} else {
				flags |= os.O_TRUNC
			}
			f, err := os.OpenFile(c.OutFile, flags, 0644)
			if err != nil {
				diag("open outfile", err)
				abort(opened...)
				return nil, err
			}
			stdout = f
			opened = append(opened, f)
		}

		cmd := exec.Command(c.Argv[0], c.Argv[1:]...)
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		if pgid != 0 {
			cmd.SysProcAttr.Pgid = pgid
		}

		if stdin != nil {
			cmd.Stdin = stdin
		} else {
			cmd.Stdin = os.Stdin
		}
		if stdout != nil {
			cmd.Stdout = stdout
		} else {
			cmd.Stdout = os.Stdout
		}
		cmd.Stderr = os.Stderr

		if err := cmd.Start(); err != nil {
			// exec.Command resolves argv[0] via LookPath before
			// forking, so a missing/non-executable program surfaces
			// here rather than as a child-side execvp(3) failure the
			// way a hand-rolled fork+exec would observe it. Report it
			// under the same "execvp" name spec.md's diagnostic
			// vocabulary uses for that failure mode; anything else is
			// a genuine fork/resource failure.
			if _, ok := err.(*exec.Error); ok {
				diag("execvp", err)
			} else {
				diag("fork", err)
			}
			abort(opened...)
			return nil, err
		}

		if pgid == 0 {
			pgid = cmd.Process.Pid
		}
		// Duplicate assignment closes the race where the parent gets
		// here before the child has run its own setpgid(0, 0).
		if err := unix.Setpgid(cmd.Process.Pid, pgid); err != nil && err != unix.EACCES {
			diag("setpgid", err)
		}

		if prevRead != nil {
			prevRead.Close()
		}
		if pipeWrite != nil {
			pipeWrite.Close()
		}
		if c.HasInput() && stdin != nil {
			stdin.Close()
		}
		if c.HasOutput() && stdout != nil {
			stdout.Close()
		}

		prevRead = pipeRead

		cmds = append(cmds, cmd)
		pids = append(pids, cmd.Process.Pid)
	}

	j := table.Add(pgid, cmdline, pids)
	return &Launched{Job: j, Cmds: cmds}, nil
}
