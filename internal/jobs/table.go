package jobs

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sys/unix"
)

// Table is the sparse, 1-based-indexed job collection.
type Table struct {
	mu       sync.Mutex
	byIndex  map[int]*Job
	current  int // 0 = unset
	previous int // 0 = unset
}

// New creates an empty job table.
func New() *Table {
	return &Table{byIndex: make(map[int]*Job)}
}

// Add inserts a new job at the lowest unused positive index, sets
// current to the new index, and previous to the prior current.
func (t *Table) Add(pgid int, name string, leaderPid int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := 1
	for t.byIndex[idx] != nil {
		idx++
	}
	t.byIndex[idx] = newJob(idx, pgid, name, leaderPid)
	t.previous = t.current
	t.current = idx
	return idx
}

// Get returns the job at index, or false if none exists.
func (t *Table) Get(index int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.byIndex[index]
	return j, ok
}

// GetByPid returns the index of the job containing pid.
func (t *Table) GetByPid(pid int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for idx, j := range t.byIndex {
		if j.ContainsPid(pid) {
			return idx, true
		}
	}
	return 0, false
}

// Current returns the current job index (%+), or 0 if unset.
func (t *Table) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Previous returns the previous job index (%-), or 0 if unset.
func (t *Table) Previous() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.previous
}

// Remove deletes the job at index. If it was current, previous is
// promoted to current and a new previous is picked as the highest
// remaining index other than the new current.
func (t *Table) Remove(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byIndex, index)

	switch index {
	case t.current:
		t.current = t.previous
		t.previous = t.highestExcept(t.current)
	case t.previous:
		t.previous = t.highestExcept(t.current)
	}
}

// highestExcept returns the highest remaining job index other than
// exclude, or 0 if none remains.
func (t *Table) highestExcept(exclude int) int {
	best := 0
	for idx := range t.byIndex {
		if idx != exclude && idx > best {
			best = idx
		}
	}
	return best
}

// SetStatus locates the job containing pid and folds ws into it,
// clearing Notified so the Waiter knows to report the change.
func (t *Table) SetStatus(pid int, ws unix.WaitStatus) (idx int, found bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, j := range t.byIndex {
		if j.ContainsPid(pid) {
			j.applyWaitStatus(pid, ws)
			if j.Status == Stopped && t.current != i {
				t.previous = t.current
				t.current = i
			}
			return i, true
		}
	}
	return 0, false
}

// Indices returns all job indices in ascending order.
func (t *Table) Indices() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int, 0, len(t.byIndex))
	for idx := range t.byIndex {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// CountUnreportedDoneOrStopped counts jobs whose stop or completion has
// not been reported yet. `exit` and `exec` refuse to proceed without -f
// while this is non-zero.
func (t *Table) CountUnreportedDoneOrStopped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, j := range t.byIndex {
		if (j.Status == Done || j.Status == Stopped) && !j.Notified {
			n++
		}
	}
	return n
}

// MarkNotified flips a job's notified flag to true, called after
// printing its status line.
func (t *Table) MarkNotified(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.byIndex[index]; ok {
		j.Notified = true
	}
}

// ErrNoSuchJob is returned by Foreground and Background when an index
// names no job.
var ErrNoSuchJob = fmt.Errorf("no such job")
