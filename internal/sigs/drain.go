package sigs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// WaitOutcome is the result of WaitForChild.
type WaitOutcome int

const (
	Reaped WaitOutcome = iota
	Interrupted
	TrapExecuted
)

// ReadOutcome is the result of WaitForInput.
type ReadOutcome int

const (
	Ready ReadOutcome = iota
	Timeout
)

// Reaper is the subset of Waiter that Drain needs: reap every reapable
// child and report whether any status changed. Kept as an interface so
// internal/sigs never depends on internal/jobs' table types.
type Reaper interface {
	ReapAll() (changed bool)
}

// TrapRunner executes a trap command fragment and returns the exit
// status to restore as $? afterward. Kept as an interface for the same
// reason as Reaper — the parser/executor is an external collaborator.
type TrapRunner interface {
	RunTrap(sig unix.Signal, command string) (status int)
}

// Drain synchronously consumes received flags: SIGCHLD reap first, then
// pending trap commands in signal-number order. It returns the signal
// that triggered the last trap run, for the `wait` builtin's $?
// reporting, or -1 if none ran.
func (s *SigState) Drain(reaper Reaper, runner TrapRunner) int {
	if !s.anyReceived.Load() {
		return -1
	}
	s.anyReceived.Store(false)

	if s.sigchld.Load() {
		s.sigchld.Store(false)
		if reaper != nil {
			reaper.ReapAll()
		}
	}

	last := -1
	for _, sig := range s.traps.TrappedSignals() {
		s.mu.Lock()
		r := s.records[sig]
		s.mu.Unlock()
		if r == nil || !r.received.Load() {
			continue
		}
		r.received.Store(false)
		if s.runTrapGuarded(sig, runner) {
			last = int(sig)
		}
	}

	// The window-change flag is not consumed here: the main loop's
	// editor-refresh step observes it after traps, via WinchPending.
	// Terminal redraw is the editor's concern, not sigs'.
	return last
}

// RunExitTrap runs the EXIT trap, if one is set. Callers invoke it once
// on shell teardown; the re-entrancy guard still applies, so an EXIT
// trap reached from within another trap runs at most once.
func (s *SigState) RunExitTrap(runner TrapRunner) bool {
	return s.runTrapGuarded(exitSentinel, runner)
}

// WinchPending reports and clears the window-change latch.
func (s *SigState) WinchPending() bool {
	return s.winch.CompareAndSwap(true, false)
}

// runTrapGuarded enforces the re-entrancy rule: while a trap is running,
// a recursive entry only proceeds for the EXIT trap, which may run once
// from within another trap.
func (s *SigState) runTrapGuarded(sig unix.Signal, runner TrapRunner) bool {
	cmd := s.traps.Get(sig)
	if cmd.State != TrapNonEmpty {
		return false
	}
	isExit := sig == exitSentinel
	if s.inFlightTrap != 0 && !(isExit && !s.exitRunning) {
		log.Printf("[SIG] trap dispatch for signal %d deferred: trap already running", sig)
		return false
	}
	prevInFlight := s.inFlightTrap
	s.inFlightTrap = sig
	if isExit {
		s.exitRunning = true
	}
	s.traps.MarkExecuting(sig)

	if runner != nil {
		// corrID lets interleaved trap log lines from different signals
		// be grouped when reading the debug log.
		corrID := uuid.New().String()
		log.Printf("[TRAP] corr=%s sig=%d dispatch", corrID, sig)
		runner.RunTrap(sig, cmd.Text)
		log.Printf("[TRAP] corr=%s sig=%d done", corrID, sig)
	}

	s.traps.ClearExecuting()
	s.inFlightTrap = prevInFlight
	if isExit {
		s.exitRunning = false
	}
	return true
}

// suspendMax caps a single pselect wait so context cancellation is
// observed even when no signal or fd activity arrives.
const suspendMax = 200 * time.Millisecond

// suspend is the sigsuspend/pselect-equivalent: it blocks in the
// platform pselect until fd (if >= 0) is readable, the self-pipe fires
// (a signal landed and its flags are already set), or timeout elapses.
// The Go runtime owns the real signal handlers and their masks, so the
// atomic unmask-and-wait is expressed as pselect over the self-pipe the
// handler goroutine writes: the wait and the delivery edge cannot race.
// Reports whether fd is readable.
func (s *SigState) suspend(fd int, timeout time.Duration) bool {
	var set unix.FdSet
	nfd := 0
	add := func(x int) {
		if x >= 0 {
			set.Set(x)
			if x+1 > nfd {
				nfd = x + 1
			}
		}
	}
	add(s.wakeR)
	add(fd)
	if timeout < 0 || timeout > suspendMax {
		timeout = suspendMax
	}
	pselectWait(nfd, &set, timeout)

	if s.wakeR >= 0 && set.IsSet(s.wakeR) {
		// Swallow the pending wake bytes so the pipe level-triggers only
		// while wakeups are genuinely outstanding.
		var buf [16]byte
		for {
			n, err := unix.Read(s.wakeR, buf[:])
			if n <= 0 || err != nil {
				break
			}
		}
	}
	return fd >= 0 && set.IsSet(fd)
}

// WaitForChild blocks until a child is reaped, SIGINT arrives (if
// interruptible), or a trap fires (if honorTraps). Together with
// WaitForInput and the terminal read it is one of the shell's three
// suspension points.
func (s *SigState) WaitForChild(ctx context.Context, interruptible, honorTraps bool, reaper Reaper, runner TrapRunner) WaitOutcome {
	for {
		if honorTraps {
			if sig := s.Drain(reaper, runner); sig >= 0 {
				return TrapExecuted
			}
		}
		if reaper != nil && reaper.ReapAll() {
			return Reaped
		}
		if interruptible && s.sigint.CompareAndSwap(true, false) {
			return Interrupted
		}
		select {
		case <-ctx.Done():
			return Interrupted
		default:
		}
		s.suspend(-1, suspendMax)
	}
}

// WaitForInput blocks until fd is readable, deadline elapses, or (if
// honorTraps) a trap fires; the other pselect suspension point.
func (s *SigState) WaitForInput(ctx context.Context, fd int, deadline time.Duration, honorTraps bool, reaper Reaper, runner TrapRunner) ReadOutcome {
	deadlineAt := time.Now().Add(deadline)
	for {
		if honorTraps {
			s.Drain(reaper, runner)
		}
		remaining := suspendMax
		if deadline >= 0 {
			remaining = time.Until(deadlineAt)
			if remaining <= 0 {
				return Timeout
			}
		}
		if s.suspend(fd, remaining) {
			return Ready
		}
		select {
		case <-ctx.Done():
			return Timeout
		default:
		}
	}
}
