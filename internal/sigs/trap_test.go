package sigs

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestTrapTable_ForbiddenSignals(t *testing.T) {
	tt := NewTrapTable(true)
	cmd := "echo hi"
	if err := tt.SetTrap(unix.SIGKILL, &cmd, true, false); err == nil {
		t.Fatal("expected error trapping SIGKILL")
	}
	if err := tt.SetTrap(unix.SIGSTOP, &cmd, true, false); err == nil {
		t.Fatal("expected error trapping SIGSTOP")
	}
}

func TestTrapTable_ThreeWayDisposition(t *testing.T) {
	tt := NewTrapTable(true)
	cmd := "echo caught"
	empty := ""

	if err := tt.SetTrap(unix.SIGUSR1, &cmd, true, false); err != nil {
		t.Fatal(err)
	}
	if got := tt.Get(unix.SIGUSR1); got.State != TrapNonEmpty || got.Text != cmd {
		t.Fatalf("got %+v", got)
	}

	if err := tt.SetTrap(unix.SIGUSR1, &empty, true, false); err != nil {
		t.Fatal(err)
	}
	if got := tt.Get(unix.SIGUSR1); got.State != TrapEmpty {
		t.Fatalf("got %+v", got)
	}

	if err := tt.SetTrap(unix.SIGUSR1, nil, true, false); err != nil {
		t.Fatal(err)
	}
	if got := tt.Get(unix.SIGUSR1); got.State != TrapUnset {
		t.Fatalf("got %+v", got)
	}
}

// TestTrapTable_TrappedSignalsInvariant checks that TrappedSignals
// returns exactly the signals whose entry is non-empty non-ignored.
func TestTrapTable_TrappedSignalsInvariant(t *testing.T) {
	tt := NewTrapTable(true)
	a, b := "a", "b"
	empty := ""
	_ = tt.SetTrap(unix.SIGUSR1, &a, true, false)
	_ = tt.SetTrap(unix.SIGUSR2, &b, true, false)
	_ = tt.SetTrap(unix.SIGHUP, &empty, true, false)

	got := tt.TrappedSignals()
	want := []unix.Signal{unix.SIGHUP, unix.SIGUSR1, unix.SIGUSR2}
	sortSignals(want)
	if len(got) != 2 {
		t.Fatalf("expected 2 trapped signals (HUP is ignored, not trapped), got %v", got)
	}
	for _, sig := range got {
		if sig != unix.SIGUSR1 && sig != unix.SIGUSR2 {
			t.Fatalf("unexpected trapped signal %v in %v", sig, got)
		}
	}
}

func TestTrapTable_ForkPrepare(t *testing.T) {
	tt := NewTrapTable(true)
	caught, empty, exitCmd := "echo caught", "", "echo bye"
	_ = tt.SetTrap(unix.SIGUSR1, &caught, true, false)
	_ = tt.SetTrap(unix.SIGUSR2, &empty, true, false)
	const exitSig = unix.Signal(0)
	_ = tt.SetTrap(exitSig, &exitCmd, true, false)

	child := tt.ForkPrepare(exitSig)

	if got := child.Get(unix.SIGUSR1); got.State != TrapUnset {
		t.Fatalf("caught trap should reset to default in child, got %+v", got)
	}
	if got := child.Get(unix.SIGUSR2); got.State != TrapEmpty {
		t.Fatalf("ignored trap should stay ignored in child, got %+v", got)
	}
	if got := child.Get(exitSig); got.State != TrapUnset {
		t.Fatalf("EXIT trap should be cleared in subshell, got %+v", got)
	}
}

func TestTrapTable_RejectRetrapOfEntryIgnored(t *testing.T) {
	tt := NewTrapTable(true)
	cmd := "echo hi"
	if err := tt.SetTrap(unix.SIGTTIN, &cmd, false /* non-interactive */, true /* entry ignored */); err == nil {
		t.Fatal("expected rejection of re-trap for entry-ignored signal on non-interactive shell")
	}
	// Interactive shells are exempt from the POSIX rule.
	if err := tt.SetTrap(unix.SIGTTIN, &cmd, true, true); err != nil {
		t.Fatalf("interactive shell should be able to re-trap: %v", err)
	}
}
