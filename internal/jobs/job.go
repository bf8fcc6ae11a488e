// Package jobs implements the job table, child reaping, jobspec
// resolution, and the fg/bg terminal-transfer primitives.
package jobs

import (
	"golang.org/x/sys/unix"
)

// Status is a job's lifecycle state.
type Status int

const (
	Running Status = iota
	Stopped
	Done
)

func (s Status) String() string {
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

// Job is one entry in the job table.
type Job struct {
	Index      int
	Pgid       int
	Name       string
	Status     Status
	ExitStatus int
	TermSignal unix.Signal // non-zero if Status==Done and killed by a signal
	NoHup      bool
	Notified   bool

	pids map[int]bool // member process ids, for set_status's "all done" check
	done map[int]bool // which member pids have individually exited
}

// newJob constructs a job tracking a single known member pid (the
// process-group leader); additional pids are added via AddMember.
func newJob(index, pgid int, name string, leaderPid int) *Job {
	return &Job{
		Index:  index,
		Pgid:   pgid,
		Name:   name,
		Status: Running,
		pids:   map[int]bool{leaderPid: true},
		done:   map[int]bool{},
	}
}

// AddMember registers an additional pipeline member pid under this job.
func (j *Job) AddMember(pid int) {
	j.pids[pid] = true
}

// ContainsPid reports whether pid belongs to this job.
func (j *Job) ContainsPid(pid int) bool {
	return j.pids[pid]
}

// applyWaitStatus folds one reaped child's status into the job: any
// stopped child means the job is stopped; all children done means the
// job is done with the last non-zero exit status (or the terminating
// signal).
func (j *Job) applyWaitStatus(pid int, ws unix.WaitStatus) {
	j.Notified = false
	switch {
	case ws.Stopped():
		j.Status = Stopped
		return
	case ws.Continued():
		j.Status = Running
		return
	case ws.Exited() || ws.Signaled():
		j.done[pid] = true
		if ws.Signaled() {
			j.TermSignal = ws.Signal()
			j.ExitStatus = 128 + int(ws.Signal())
		} else if code := ws.ExitStatus(); code != 0 || j.ExitStatus == 0 {
			j.ExitStatus = code
		}
	}
	if len(j.done) >= len(j.pids) {
		j.Status = Done
	} else {
		j.Status = Running
	}
}

// SignalDescription renders the default termination message for a job
// killed by a signal. The caller decides whether to print it (only for
// foreground jobs, and never for SIGINT or SIGPIPE); this just names
// the signal.
func (j *Job) SignalDescription() string {
	if j.TermSignal == 0 {
		return ""
	}
	return unix.SignalName(j.TermSignal)
}
