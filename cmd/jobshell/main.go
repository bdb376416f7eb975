// Command jobshell is an interactive, job-control-capable POSIX
// shell: read-eval-print loop, pipelines, redirection, and
// foreground/background job management over the controlling
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Armaan1620/jobshell/internal/repl"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobshell",
		Short: "An interactive POSIX shell with job control",
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := repl.New()
			if err != nil {
				return fmt.Errorf("jobshell: %w", err)
			}
			sh.Run()
			return nil
		},
	}
	cmd.SetVersionTemplate("jobshell {{.Version}}\n")
	cmd.Version = version
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
