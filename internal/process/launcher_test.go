//go:build linux

package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/Armaan1620/jobshell/internal/job"
	"github.com/Armaan1620/jobshell/internal/parser"
)

func waitAll(t *testing.T, l *Launched, table *job.Table) {
	remaining := len(l.Cmds)
	for remaining > 0 {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-l.Job.Pgid, &ws, 0, nil)
		require.NoError(t, err)
		table.Update(pid, ws)
		if ws.Exited() || ws.Signaled() {
			remaining--
		}
	}
}

func TestLaunchSingleCommandOutputRedirection(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	p, err := parser.Parse("echo hello > " + out)
	require.NoError(t, err)

	table := job.New()
	l, err := Launch(p, "echo hello > "+out, table, func(name string, err error) { t.Logf("%s: %v", name, err) })
	require.NoError(t, err)
	assert.Greater(t, l.Job.Pgid, 0)
	assert.Equal(t, l.Job.Pgid, l.Cmds[0].Process.Pid)

	waitAll(t, l, table)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
	assert.Equal(t, job.Done, table.FindByPgid(l.Job.Pgid).State)
}

func TestLaunchPipelineSharesProcessGroup(t *testing.T) {
	p, err := parser.Parse("false | true")
	require.NoError(t, err)

	table := job.New()
	l, err := Launch(p, "false | true", table, func(name string, err error) { t.Logf("%s: %v", name, err) })
	require.NoError(t, err)
	require.Len(t, l.Cmds, 2)

	for _, cmd := range l.Cmds {
		pgid, err := unix.Getpgid(cmd.Process.Pid)
		require.NoError(t, err)
		assert.Equal(t, l.Job.Pgid, pgid)
	}
	assert.Equal(t, l.Job.Pgid, l.Cmds[0].Process.Pid)

	waitAll(t, l, table)
	assert.Equal(t, job.Done, table.FindByPgid(l.Job.Pgid).State)
}

func TestLaunchInputRedirectionMissingFileReportsDiagnostic(t *testing.T) {
	p, err := parser.Parse("cat < /nonexistent/path")
	require.NoError(t, err)

	var gotName string
	table := job.New()
	_, err = Launch(p, "cat < /nonexistent/path", table, func(name string, e error) { gotName = name })
	require.Error(t, err)
	assert.Equal(t, "open infile", gotName)
}
