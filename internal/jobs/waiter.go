package jobs

import (
	"fmt"
	"log"

	"golang.org/x/sys/unix"
)

// Waiter reaps children with WNOHANG|WUNTRACED in a loop and folds
// status changes into a Table.
type Waiter struct {
	table   *Table
	notify  bool // report status changes as they are reaped
	printFn func(j *Job)
}

// NewWaiter creates a Waiter over table. When notify is set, printFn is
// called once per job whose status changed since the last ReapAll, and
// a Done job is dropped from the table right after it is printed; when
// it is not, ReapAll only updates the table.
func NewWaiter(table *Table, notify bool, printFn func(j *Job)) *Waiter {
	return &Waiter{table: table, notify: notify, printFn: printFn}
}

// ReapAll calls wait4(WNOHANG|WUNTRACED) in a loop until no more
// children are reapable, updating job statuses. Returns whether any
// status changed. A reap failure other than ECHILD/EINTR is logged and
// ends this call; the changes folded in so far are kept.
func (w *Waiter) ReapAll() bool {
	changed := false
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err != nil {
			if err == unix.ECHILD || err == unix.EINTR {
				break
			}
			log.Printf("[JOB] wait4 error: %v", err)
			break
		}
		if pid <= 0 {
			break
		}
		if idx, found := w.table.SetStatus(pid, ws); found {
			changed = true
			if w.notify {
				w.reportAndMaybeDrop(idx)
			}
		}
	}
	return changed
}

func (w *Waiter) reportAndMaybeDrop(idx int) {
	j, ok := w.table.Get(idx)
	if !ok || j.Notified {
		return
	}
	if w.printFn != nil {
		w.printFn(j)
	}
	w.table.MarkNotified(idx)
	if j.Status == Done {
		w.table.Remove(idx)
	}
}

// FormatStatusLine renders a `jobs`-style status line for j, e.g.
// "[1]+  Running                  sleep 30".
func FormatStatusLine(j *Job, isCurrent, isPrevious bool, withPid bool) string {
	marker := " "
	if isCurrent {
		marker = "+"
	} else if isPrevious {
		marker = "-"
	}
	status := j.Status.String()
	if j.Status == Done && j.TermSignal != 0 {
		status = fmt.Sprintf("Killed (%s)", unix.SignalName(j.TermSignal))
	} else if j.Status == Done && j.ExitStatus != 0 {
		status = fmt.Sprintf("Done (%d)", j.ExitStatus)
	}
	if withPid {
		return fmt.Sprintf("[%d]%s  pid %-7d %-24s %s", j.Index, marker, j.Pgid, status, j.Name)
	}
	return fmt.Sprintf("[%d]%s  %-24s %s", j.Index, marker, status, j.Name)
}
