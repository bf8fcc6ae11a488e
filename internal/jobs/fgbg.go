package jobs

import (
	"context"
	"fmt"
	"os/signal"

	"golang.org/x/sys/unix"
)

// Terminal is the minimal process-group control surface fg/bg need.
// Kept as an interface (rather than calling unix directly from here) so
// tests can substitute a fake and so the real implementation can live
// next to the rest of the raw-mode terminal code in internal/term.
type Terminal interface {
	SetForegroundPgrp(pgid int) error
	Fd() int
}

// Signaler sends signals to process groups; split out from Terminal so
// tests can fake it independently.
type Signaler interface {
	KillPgrp(pgid int, sig unix.Signal) error
}

// WaitFunc blocks until the job named by idx leaves the Running state,
// mirroring SigState.WaitForChild's role in the real shell; injected so
// this package doesn't import internal/sigs.
type WaitFunc func(ctx context.Context, idx int) (outcome string)

// Foreground implements `fg`: transfers the terminal to the job's
// process group (bracketed against SIGTTOU), sends SIGCONT,
// marks it running, then blocks until it is no longer running. Returns
// the exit status to propagate and a termination message (empty if
// none should be printed).
func Foreground(ctx context.Context, table *Table, term Terminal, sig Signaler, wait WaitFunc, idx int) (status int, message string, err error) {
	j, ok := table.Get(idx)
	if !ok {
		return 0, "", ErrNoSuchJob
	}

	// SIGTTOU is ignored around the terminal-pgrp handoff so the shell
	// itself (a background-relative process at this instant) isn't
	// stopped by the kernel for touching the terminal it no longer owns.
	restore := ignoreSIGTTOU()
	defer restore()

	if err := term.SetForegroundPgrp(j.Pgid); err != nil {
		return 0, "", fmt.Errorf("fg: %w", err)
	}
	if err := sig.KillPgrp(j.Pgid, unix.SIGCONT); err != nil {
		return 0, "", fmt.Errorf("fg: %w", err)
	}
	j.Status = Running

	wait(ctx, idx)

	j, _ = table.Get(idx)
	switch j.Status {
	case Stopped:
		// Reclaim the terminal for the shell, then report success with a
		// blank line.
		_ = term.SetForegroundPgrp(shellPgrp())
		return 0, "\n", nil
	case Done:
		_ = term.SetForegroundPgrp(shellPgrp())
		msg := ""
		if j.TermSignal != 0 && j.TermSignal != unix.SIGINT && j.TermSignal != unix.SIGPIPE {
			msg = j.Name + ": " + j.SignalDescription()
		}
		table.Remove(idx)
		return j.ExitStatus, msg, nil
	default:
		return 0, "", nil
	}
}

// Background implements `bg`: identical to Foreground minus the
// terminal transfer and the final wait.
func Background(table *Table, sig Signaler, idx int) error {
	j, ok := table.Get(idx)
	if !ok {
		return ErrNoSuchJob
	}
	if err := sig.KillPgrp(j.Pgid, unix.SIGCONT); err != nil {
		return fmt.Errorf("bg: %w", err)
	}
	j.Status = Running
	return nil
}

// UnixSignaler is the real Signaler: unix.Kill against the negated
// pgid, the POSIX convention for "send to every process in the group".
type UnixSignaler struct{}

// KillPgrp sends sig to every process in pgid's process group.
func (UnixSignaler) KillPgrp(pgid int, sig unix.Signal) error {
	return unix.Kill(-pgid, sig)
}

// shellPgrp returns the shell's own process group, used to reclaim the
// terminal after a foreground job stops or finishes.
func shellPgrp() int {
	pgid, err := unix.Getpgid(unix.Getpid())
	if err != nil {
		return unix.Getpid()
	}
	return pgid
}

// ignoreSIGTTOU sets SIGTTOU to ignored for the duration of the
// terminal-pgrp handoff and returns the restore function. Between the
// tcsetpgrp that gives the terminal away and the one that reclaims it,
// the shell is a background process relative to the controlling
// terminal; at the default disposition the kernel would stop it on the
// reclaiming ioctl.
func ignoreSIGTTOU() func() {
	signal.Ignore(unix.SIGTTOU)
	return func() { signal.Reset(unix.SIGTTOU) }
}
