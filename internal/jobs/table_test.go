package jobs

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestTable_AddLowestFreeIndex(t *testing.T) {
	tb := New()
	i1 := tb.Add(100, "sleep 30", 100)
	i2 := tb.Add(200, "sleep 60", 200)
	if i1 != 1 || i2 != 2 {
		t.Fatalf("expected indices 1,2; got %d,%d", i1, i2)
	}
	tb.Remove(1)
	i3 := tb.Add(300, "sleep 90", 300)
	if i3 != 1 {
		t.Fatalf("expected reuse of freed index 1, got %d", i3)
	}
}

func TestTable_CurrentPreviousTracking(t *testing.T) {
	tb := New()
	tb.Add(100, "a", 100)
	tb.Add(200, "b", 200)
	if tb.Current() != 2 || tb.Previous() != 1 {
		t.Fatalf("current=%d previous=%d", tb.Current(), tb.Previous())
	}
	tb.Add(300, "c", 300)
	if tb.Current() != 3 || tb.Previous() != 2 {
		t.Fatalf("current=%d previous=%d", tb.Current(), tb.Previous())
	}
}

func TestTable_RemovePromotesCurrent(t *testing.T) {
	tb := New()
	tb.Add(100, "a", 100) // 1
	tb.Add(200, "b", 200) // 2, current
	tb.Add(300, "c", 300) // 3, current; previous=2

	tb.Remove(3)
	if tb.Current() != 2 {
		t.Fatalf("expected current promoted to 2, got %d", tb.Current())
	}
	if tb.Previous() != 1 {
		t.Fatalf("expected previous=1 (highest remaining), got %d", tb.Previous())
	}
}

func TestTable_GetByPid(t *testing.T) {
	tb := New()
	tb.Add(500, "sleep 5", 500)
	idx, ok := tb.GetByPid(500)
	if !ok || idx != 1 {
		t.Fatalf("GetByPid failed: idx=%d ok=%v", idx, ok)
	}
	if _, ok := tb.GetByPid(999); ok {
		t.Fatal("expected not found for unknown pid")
	}
}

func TestTable_SetStatus_FoldsIntoCorrectJob(t *testing.T) {
	tb := New()
	tb.Add(10, "sleep 30", 10)
	tb.Add(20, "sleep 60", 20)

	idx, found := tb.SetStatus(20, exitedStatus(5))
	if !found || idx != 2 {
		t.Fatalf("expected job 2 found, got idx=%d found=%v", idx, found)
	}
	j, _ := tb.Get(2)
	if j.Status != Done || j.ExitStatus != 5 {
		t.Fatalf("expected job 2 Done/5, got %v/%d", j.Status, j.ExitStatus)
	}
	other, _ := tb.Get(1)
	if other.Status != Running {
		t.Fatalf("job 1 should be untouched, got %v", other.Status)
	}
}

func TestJob_ApplyWaitStatus_AllDoneNonZeroExit(t *testing.T) {
	j := newJob(1, 10, "false", 10)
	j.AddMember(11)

	// Exit status 0 then nonzero across two pids; job should end Done with last nonzero.
	j.applyWaitStatus(10, exitedStatus(0))
	if j.Status != Running {
		t.Fatalf("expected still running with one pid left, got %v", j.Status)
	}
	j.applyWaitStatus(11, exitedStatus(3))
	if j.Status != Done {
		t.Fatalf("expected Done once all members exit, got %v", j.Status)
	}
	if j.ExitStatus != 3 {
		t.Fatalf("expected exit status 3, got %d", j.ExitStatus)
	}
}

// exitedStatus builds a unix.WaitStatus indicating normal exit with the
// given status code, portable across unix.WaitStatus's platform layouts
// via the standard encoding (low byte 0, next byte = code).
func exitedStatus(code int) unix.WaitStatus {
	return unix.WaitStatus(code << 8)
}
