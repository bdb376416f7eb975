//go:build linux

package process

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/Armaan1620/jobshell/internal/job"
)

// Controller owns the shell's process-wide signal dispositions and
// controlling-terminal ownership transfers: spec.md §4.6.
type Controller struct {
	shellPgid int
	termFd    int
	saved     *unix.Termios

	sigchldPending atomic.Bool
	sigChan        chan os.Signal
}

// New installs the shell's startup dispositions: places the shell in
// its own process group, grants it the terminal, catches-and-discards
// SIGTTOU/SIGTTIN/SIGTSTP/SIGINT so the shell itself is never stopped
// or interrupted by them while leaving children to inherit default
// disposition, and starts the SIGCHLD watcher. termFd is canonically
// os.Stdin's fd.
func New(termFd int) (*Controller, error) {
	pgid := unix.Getpid()
	if err := unix.Setpgid(0, pgid); err != nil && err != unix.EPERM {
		return nil, err
	}

	termios, err := unix.IoctlGetTermios(termFd, unix.TCGETS)
	if err != nil {
		// Not a real terminal (e.g. piped stdin under test); proceed
		// without saved attributes.
		termios = nil
	}

	c := &Controller{
		shellPgid: pgid,
		termFd:    termFd,
		saved:     termios,
		sigChan:   make(chan os.Signal, 8),
	}

	_ = unix.IoctlSetInt(termFd, unix.TIOCSPGRP, pgid)

	// SIGINT/SIGTSTP/SIGTTIN/SIGTTOU must not stop or interrupt the
	// shell process itself, but signal.Ignore sets SIG_IGN, and SIG_IGN
	// survives execve into every child the launcher starts — os/exec
	// gives no hook to reset disposition on the child side, so the
	// parent's choice of disposition is the only lever. A caught
	// handler is different: the kernel resets a caught signal back to
	// SIG_DFL across execve, so Notify-and-discard here is what actually
	// leaves children with default disposition, letting the terminal
	// driver deliver ^C/^Z straight to the foreground process group.
	ignored := make(chan os.Signal, 8)
	signal.Notify(ignored, syscall.SIGINT, syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU)
	go func() {
		for range ignored {
		}
	}()

	signal.Notify(c.sigChan, syscall.SIGCHLD)
	go c.watchSigchld()

	return c, nil
}

func (c *Controller) watchSigchld() {
	for range c.sigChan {
		c.sigchldPending.Store(true)
	}
}

// SigchldPending reports whether a SIGCHLD has arrived since the last
// drain, and clears the flag.
func (c *Controller) SigchldPending() bool {
	return c.sigchldPending.Swap(false)
}

// ShellPgid returns the shell's own process group id.
func (c *Controller) ShellPgid() int { return c.shellPgid }

// grantTerminal transfers controlling-terminal ownership to pgid.
func (c *Controller) grantTerminal(pgid int) error {
	return unix.IoctlSetInt(c.termFd, unix.TIOCSPGRP, pgid)
}

// ReclaimTerminal always returns terminal ownership to the shell;
// call on every exit path of a foreground wait.
func (c *Controller) ReclaimTerminal() {
	_ = c.grantTerminal(c.shellPgid)
}

// RestoreTermAttrs restores the terminal attributes captured at
// startup, used when exiting the shell.
func (c *Controller) RestoreTermAttrs() {
	if c.saved != nil {
		_ = unix.IoctlSetTermios(c.termFd, unix.TCSETS, c.saved)
	}
}

// DrainNonBlocking reaps every child that has already changed state
// without blocking, applying each status to table. Called between
// REPL turns when SigchldPending is set.
func (c *Controller) DrainNonBlocking(table *job.Table) {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err != nil || pid <= 0 {
			return
		}
		table.Update(pid, ws)
	}
}

// Foreground transfers the terminal to j's pgid, optionally sends
// SIGCONT first (when resuming a stopped job), then blocks until the
// group reports a status that settles it into Stopped or Done,
// reclaiming the terminal on every exit path per spec.md §4.6 step 4.
func (c *Controller) Foreground(table *job.Table, j *job.Job, cont bool) error {
	if err := c.grantTerminal(j.Pgid); err != nil {
		c.ReclaimTerminal()
		return err
	}
	defer c.ReclaimTerminal()

	if cont {
		if err := unix.Kill(-j.Pgid, unix.SIGCONT); err != nil {
			return err
		}
		table.SetRunning(j)
	}

	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-j.Pgid, &ws, unix.WUNTRACED|unix.WCONTINUED, nil)
		if err != nil {
			if err == unix.ECHILD {
				return nil
			}
			return err
		}
		table.Update(pid, ws)

		cur := table.FindByPgid(j.Pgid)
		if cur == nil || cur.State != job.Running {
			// settled into Stopped or Done (or was already drained)
			return nil
		}
	}
}

// Background transfers no terminal ownership. If cont, SIGCONT is
// sent to the group and the job is marked Running; otherwise it does
// nothing. `bg` calls it with cont set; `&` launches do not call it.
func (c *Controller) Background(table *job.Table, j *job.Job, cont bool) error {
	if cont {
		if err := unix.Kill(-j.Pgid, unix.SIGCONT); err != nil {
			return err
		}
		table.SetRunning(j)
	}
	return nil
}
