package builtins

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/vush-shell/vush/internal/complete"
	"github.com/vush-shell/vush/internal/jobs"
	"github.com/vush-shell/vush/internal/sigs"
)

type fakeSignaler struct {
	sent []unix.Signal
}

func (f *fakeSignaler) KillPgrp(pgid int, sig unix.Signal) error {
	f.sent = append(f.sent, sig)
	return nil
}

func newTestEnv() (*Env, *jobs.Table, *fakeSignaler) {
	table := jobs.New()
	sig := &fakeSignaler{}
	return &Env{
		Jobs:   table,
		Waiter: jobs.NewWaiter(table, false, nil),
		Traps:  sigs.NewTrapTable(true),
		Signal: sig,
		Wait:   func(ctx context.Context, idx int) string { return "" },
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}, table, sig
}

func TestParseSignal_NameAndNumberAndPrefix(t *testing.T) {
	cases := []struct {
		in   string
		want unix.Signal
	}{
		{"TERM", unix.SIGTERM},
		{"SIGTERM", unix.SIGTERM},
		{"9", unix.SIGKILL},
		{"int", unix.SIGINT},
	}
	for _, c := range cases {
		got, err := ParseSignal(c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("%s: got %v want %v", c.in, got, c.want)
		}
	}
}

func TestParseSignal_Unknown(t *testing.T) {
	if _, err := ParseSignal("NOTASIGNAL"); err == nil {
		t.Fatal("expected error")
	}
}

func TestKill_SendsSignalToJobspec(t *testing.T) {
	env, table, sig := newTestEnv()
	table.Add(1234, "sleep 30", 1234)

	code := Kill(env, []string{"-s", "TERM", "%1"})
	if code != ExitSuccess {
		t.Fatalf("got %d", code)
	}
	if len(sig.sent) != 1 || sig.sent[0] != unix.SIGTERM {
		t.Fatalf("got %v", sig.sent)
	}
}

func TestKill_ListNamesIncludesTerm(t *testing.T) {
	env, _, _ := newTestEnv()
	code := killList(env, nil, false)
	if code != ExitSuccess {
		t.Fatalf("got %d", code)
	}
	out := env.Stdout.(*bytes.Buffer).String()
	if !strings.Contains(out, "TERM") {
		t.Fatalf("expected TERM in listing, got %q", out)
	}
}

func TestTrap_SetAndPrint(t *testing.T) {
	env, _, _ := newTestEnv()
	if code := Trap(env, []string{"echo hi", "USR1"}); code != ExitSuccess {
		t.Fatalf("got %d", code)
	}
	if code := trapPrint(env, nil); code != ExitSuccess {
		t.Fatalf("got %d", code)
	}
	out := env.Stdout.(*bytes.Buffer).String()
	if !strings.Contains(out, "echo hi") {
		t.Fatalf("expected printed trap body, got %q", out)
	}
}

func TestTrap_ForbidsKillAndStop(t *testing.T) {
	env, _, _ := newTestEnv()
	if code := Trap(env, []string{"echo hi", "KILL"}); code == ExitSuccess {
		t.Fatal("expected failure trapping SIGKILL")
	}
}

func TestExit_BlocksOnStoppedJobsWithoutForce(t *testing.T) {
	env, table, _ := newTestEnv()
	idx := table.Add(999, "vim", 999)
	j, _ := table.Get(idx)
	j.Status = jobs.Stopped

	code, shouldExit := Exit(env, nil)
	if shouldExit {
		t.Fatal("expected exit to be blocked by an unreported stopped job")
	}
	if code != ExitGenericFailure {
		t.Fatalf("got %d", code)
	}
}

func TestExit_ForceOverridesBusyCheck(t *testing.T) {
	env, table, _ := newTestEnv()
	idx := table.Add(999, "vim", 999)
	j, _ := table.Get(idx)
	j.Status = jobs.Stopped

	_, shouldExit := Exit(env, []string{"-f"})
	if !shouldExit {
		t.Fatal("expected -f to force exit")
	}
}

func TestComplete_LongOptionSignalCategory(t *testing.T) {
	reg := complete.NewRegistry()
	reg.Signals = []string{"INT", "TERM"}
	ctx := complete.Context{Kind: complete.ContextArgument, Word: "T"}

	res, status := Complete(reg, ctx, []string{"--signal"})
	if status != ExitSuccess {
		t.Fatalf("got status %d", status)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Origin != "TERM" {
		t.Fatalf("got %+v", res.Candidates)
	}
}

func TestComplete_LongOptionBindkeyCategory(t *testing.T) {
	reg := complete.NewRegistry()
	reg.Bindings = []string{"accept-line", "yank", "yank-pop"}
	ctx := complete.Context{Kind: complete.ContextArgument, Word: "yank"}

	res, status := Complete(reg, ctx, []string{"--bindkey"})
	if status != ExitSuccess {
		t.Fatalf("got status %d", status)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("expected both yank bindings, got %+v", res.Candidates)
	}
}

func TestJobs_PrintsTableEntries(t *testing.T) {
	env, table, _ := newTestEnv()
	table.Add(111, "sleep 30", 111)

	if code := Jobs(env, nil); code != ExitSuccess {
		t.Fatalf("got %d", code)
	}
	out := env.Stdout.(*bytes.Buffer).String()
	if !strings.Contains(out, "sleep 30") {
		t.Fatalf("got %q", out)
	}
}
