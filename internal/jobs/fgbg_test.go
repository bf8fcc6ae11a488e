package jobs

import (
	"context"
	"testing"

	"golang.org/x/sys/unix"
)

type fakeTerm struct {
	fgPgid []int
}

func (f *fakeTerm) SetForegroundPgrp(pgid int) error {
	f.fgPgid = append(f.fgPgid, pgid)
	return nil
}
func (f *fakeTerm) Fd() int { return 0 }

type fakeSignaler struct {
	sent []struct {
		pgid int
		sig  unix.Signal
	}
}

func (f *fakeSignaler) KillPgrp(pgid int, sig unix.Signal) error {
	f.sent = append(f.sent, struct {
		pgid int
		sig  unix.Signal
	}{pgid, sig})
	return nil
}

func TestForeground_ResumesAndWaits(t *testing.T) {
	tb := New()
	tb.Add(555, "sleep 30", 555)

	term := &fakeTerm{}
	sig := &fakeSignaler{}
	waited := false
	wait := func(ctx context.Context, idx int) string {
		waited = true
		j, _ := tb.Get(idx)
		j.Status = Done
		j.ExitStatus = 0
		return "reaped"
	}

	status, msg, err := Foreground(context.Background(), tb, term, sig, wait, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !waited {
		t.Fatal("expected wait to be invoked")
	}
	if len(term.fgPgid) < 1 || term.fgPgid[0] != 555 {
		t.Fatalf("expected terminal handed to pgid 555, got %v", term.fgPgid)
	}
	if len(sig.sent) != 1 || sig.sent[0].sig != unix.SIGCONT {
		t.Fatalf("expected SIGCONT sent to pgrp, got %v", sig.sent)
	}
	if status != 0 {
		t.Fatalf("expected status 0, got %d", status)
	}
	if msg != "" {
		t.Fatalf("no termination message expected, got %q", msg)
	}
}

func TestForeground_TerminatedBySignalReportsMessage(t *testing.T) {
	tb := New()
	tb.Add(555, "sleep 30", 555)

	term := &fakeTerm{}
	sig := &fakeSignaler{}
	wait := func(ctx context.Context, idx int) string {
		j, _ := tb.Get(idx)
		j.Status = Done
		j.TermSignal = unix.SIGTERM
		j.ExitStatus = 128 + int(unix.SIGTERM)
		return "killed"
	}

	status, msg, err := Foreground(context.Background(), tb, term, sig, wait, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 128+int(unix.SIGTERM) {
		t.Fatalf("expected 128+SIGTERM, got %d", status)
	}
	if msg == "" {
		t.Fatal("expected a termination message for SIGTERM")
	}
	if _, ok := tb.Get(1); ok {
		t.Fatal("expected job removed after done+reported")
	}
}

func TestForeground_StoppedReturnsBlankLine(t *testing.T) {
	tb := New()
	tb.Add(555, "vim", 555)

	term := &fakeTerm{}
	sig := &fakeSignaler{}
	wait := func(ctx context.Context, idx int) string {
		j, _ := tb.Get(idx)
		j.Status = Stopped
		return "stopped"
	}

	status, msg, err := Foreground(context.Background(), tb, term, sig, wait, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 0 || msg != "\n" {
		t.Fatalf("expected (0, \"\\n\"), got (%d, %q)", status, msg)
	}
	if _, ok := tb.Get(1); !ok {
		t.Fatal("stopped job should remain in the table")
	}
}

func TestBackground_SendsSIGCONTWithoutTerminalTransfer(t *testing.T) {
	tb := New()
	tb.Add(555, "sleep 30", 555)
	sig := &fakeSignaler{}

	if err := Background(tb, sig, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sig.sent) != 1 || sig.sent[0].sig != unix.SIGCONT {
		t.Fatalf("expected SIGCONT, got %v", sig.sent)
	}
	j, _ := tb.Get(1)
	if j.Status != Running {
		t.Fatalf("expected job running, got %v", j.Status)
	}
}
