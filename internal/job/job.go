//go:build linux

// Package job maintains the in-memory job table: the lifecycle record
// for every spawned pipeline, driven by the child-status protocol
// (exit, signal, stop, continue).
package job

import (
	"sort"
	"sync"

	"golang.org/x/sys/unix"
)

// State is a job's externally visible lifecycle state.
type State int

const (
	Running State = iota
	Stopped
	Done
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// procState tracks one forked pid's own status, so a Job spanning a
// multi-command pipeline can tell "one member stopped" from "every
// member terminated" instead of collapsing to the status of whichever
// pid the reaper happened to see last.
type procState int

const (
	procRunning procState = iota
	procStopped
	procDone
)

// Job is a shell-level handle to a spawned pipeline.
type Job struct {
	ID      int
	Pgid    int
	Cmdline string
	State   State

	procs map[int]procState // pid -> state, one entry per forked child
}

// Table is the process-wide job table. Safe for concurrent use: job
// state is mutated from the REPL/foreground-wait context and read
// from builtins (jobs/fg/bg), all on the same goroutine in practice,
// but the mutex keeps the contract explicit rather than relying on
// single-threaded discipline.
type Table struct {
	mu     sync.Mutex
	jobs   []*Job
	nextID int
}

// New returns an empty job table with ids starting at 1.
func New() *Table {
	return &Table{nextID: 1}
}

// Add records a newly launched pipeline and returns its Job. pids is
// every process forked for the pipeline, in launch order; the first
// is both Job.Pgid's leader and the canonical pgid per spec.md §3.
func (t *Table) Add(pgid int, cmdline string, pids []int) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	procs := make(map[int]procState, len(pids))
	for _, p := range pids {
		procs[p] = procRunning
	}
	j := &Job{
		ID:      t.nextID,
		Pgid:    pgid,
		Cmdline: cmdline,
		State:   Running,
		procs:   procs,
	}
	t.nextID++
	t.jobs = append(t.jobs, j)
	return j
}

// FindByPgid returns the job with the given pgid, or nil.
func (t *Table) FindByPgid(pgid int) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.jobs {
		if j.Pgid == pgid {
			return j
		}
	}
	return nil
}

// FindByID returns the job with the given id, or nil.
func (t *Table) FindByID(id int) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// Update applies a kernel-reported wait status for pid to whichever
// job owns it, folding the per-process states into the job's
// externally visible State: Stopped if any member is stopped, Done
// only once every member has exited or been signaled, Running
// otherwise.
func (t *Table) Update(pid int, status unix.WaitStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var j *Job
	for _, cand := range t.jobs {
		if _, ok := cand.procs[pid]; ok {
			j = cand
			break
		}
	}
	if j == nil {
		return
	}

	switch {
	case status.Stopped():
		j.procs[pid] = procStopped
	case status.Continued():
		j.procs[pid] = procRunning
	case status.Exited() || status.Signaled():
		j.procs[pid] = procDone
	default:
		return
	}

	j.State = foldState(j.procs)
}

func foldState(procs map[int]procState) State {
	anyStopped := false
	allDone := true
	for _, s := range procs {
		if s == procStopped {
			anyStopped = true
		}
		if s != procDone {
			allDone = false
		}
	}
	switch {
	case anyStopped:
		return Stopped
	case allDone:
		return Done
	default:
		return Running
	}
}

// SetRunning marks every process of the job Running and the job's
// state Running; used when bg/fg sends SIGCONT ahead of actually
// observing WIFCONTINUED for each member.
func (t *Table) SetRunning(j *Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for p := range j.procs {
		j.procs[p] = procRunning
	}
	j.State = Running
}

// All returns every job in ascending id order.
func (t *Table) All() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Job, len(t.jobs))
	copy(out, t.jobs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DrainDone calls emit once per Done job, in ascending id order, then
// removes each from the table.
func (t *Table) DrainDone(emit func(*Job)) {
	t.mu.Lock()
	var done []*Job
	var remaining []*Job
	for _, j := range t.jobs {
		if j.State == Done {
			done = append(done, j)
		} else {
			remaining = append(remaining, j)
		}
	}
	t.jobs = remaining
	t.mu.Unlock()

	sort.Slice(done, func(i, j int) bool { return done[i].ID < done[j].ID })
	for _, j := range done {
		emit(j)
	}
}

// Remove deletes a job from the table regardless of state, used when
// a foreground wait already reported the job Done.
func (t *Table) Remove(j *Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, cand := range t.jobs {
		if cand == j {
			t.jobs = append(t.jobs[:i], t.jobs[i+1:]...)
			return
		}
	}
}
