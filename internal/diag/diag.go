// Package diag is the REPL's surface for parse/exec/syscall failure
// reporting and job announcements, with the short command-name
// prefixes spec.md §6 and §7 specify. The builtins write their own
// usage and error lines directly to their Stderr.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes diagnostics to w. Colors are used unless
// fatih/color's color.NoColor is set, which the library decides from
// whether the process's stdout is a terminal; w itself is not
// inspected.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer { return &Printer{w: w} }

// Errorf prints "<name>: <message>" in red.
func (p *Printer) Errorf(name, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	color.New(color.FgRed).Fprintf(p.w, "%s: %s\n", name, msg)
}

// Stopped prints the Stopped announcement for a job.
func (p *Printer) Stopped(id int, cmdline string) {
	color.New(color.FgYellow).Fprintf(p.w, "\n[%d] Stopped\t%s\n", id, cmdline)
}

// Done prints the Done announcement for a job.
func (p *Printer) Done(id int, cmdline string) {
	color.New(color.FgGreen).Fprintf(p.w, "[%d] Done\t%s\n", id, cmdline)
}

// Announce prints a new background-launch announcement.
func (p *Printer) Announce(id, pgid int, cmdline string) {
	fmt.Fprintf(p.w, "[%d] %d %s\n", id, pgid, cmdline)
}
