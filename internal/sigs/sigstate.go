// Package sigs owns process-wide signal disposition and the synchronous
// drain point that turns asynchronous signal delivery into main-loop
// events. Signal handling goroutines here only ever set flags; all
// reaping, trap dispatch, and window-change handling happens from Drain,
// WaitForChild, or WaitForInput, called from the single-threaded main
// loop.
package sigs

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Disposition is a signal's current handling mode.
type Disposition int

const (
	DispositionDefault Disposition = iota
	DispositionIgnored
	DispositionCaught
)

type signalRecord struct {
	received    atomic.Bool
	disposition Disposition
}

// SigState is the process-wide signal table. All fields are touched from
// at most one goroutine at a time except the atomic received flags, which
// the notify goroutine sets and Drain clears.
type SigState struct {
	mu sync.Mutex
	// records holds one entry per signal of interest, keyed by number,
	// so named and real-time signals share the same dispatch path.
	records map[unix.Signal]*signalRecord

	interactive bool
	jobControl  bool

	// rememberedIgnored holds signals whose disposition was SIG_IGN when
	// InstallShellHandlers ran; they must stay ignored across exec.
	rememberedIgnored map[unix.Signal]bool

	anyReceived  atomic.Bool
	sigchld      atomic.Bool
	sigint       atomic.Bool
	winch        atomic.Bool

	notifyCh chan os.Signal
	notified []unix.Signal // signals currently routed through notifyCh, in install order

	// wakeR/wakeW form the self-pipe: the notify goroutine writes one
	// byte after setting flags, and the pselect-equivalent suspension
	// points block on wakeR, so a signal ends the wait the instant it
	// lands rather than on a poll tick. -1 when the pipe could not be
	// created (suspension degrades to pure timeout waits).
	wakeR, wakeW int

	// coreWatched marks the signals the shell's own handler owns
	// (SIGCHLD, and SIGINT/SIGWINCH when interactive); trap changes
	// never reroute these.
	coreWatched map[unix.Signal]bool

	// inFlightTrap guards trap re-entrancy: while non-zero, Drain won't
	// run another trap except the EXIT trap (signal 0 sentinel below).
	inFlightTrap unix.Signal
	exitRunning  bool

	traps *TrapTable
}

// exitSentinel is the pseudo-signal number used for the EXIT trap, which
// has no corresponding OS signal.
const exitSentinel unix.Signal = 0

// New creates a SigState bound to traps. interactive and jobControl
// mirror the shell's startup classification and drive which signals
// InstallShellHandlers touches.
func New(traps *TrapTable, interactive, jobControl bool) *SigState {
	s := &SigState{
		records:           make(map[unix.Signal]*signalRecord),
		rememberedIgnored: make(map[unix.Signal]bool),
		coreWatched:       make(map[unix.Signal]bool),
		interactive:       interactive,
		jobControl:        jobControl,
		traps:             traps,
		wakeR:             -1,
		wakeW:             -1,
	}
	p := make([]int, 2)
	if err := unix.Pipe(p); err == nil {
		for _, fd := range p {
			unix.CloseOnExec(fd)
			_ = unix.SetNonblock(fd, true)
		}
		s.wakeR, s.wakeW = p[0], p[1]
	}
	return s
}

// Interactive reports whether the shell session was classified
// interactive at startup.
func (s *SigState) Interactive() bool { return s.interactive }

// EntryIgnored reports whether sig's disposition was SIG_IGN when the
// shell started, for the POSIX rule that a non-interactive shell may
// not re-trap such signals.
func (s *SigState) EntryIgnored(sig unix.Signal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rememberedIgnored[sig]
}

func (s *SigState) recordFor(sig unix.Signal) *signalRecord {
	if r, ok := s.records[sig]; ok {
		return r
	}
	r := &signalRecord{}
	s.records[sig] = r
	return r
}

// InstallShellHandlers installs the common handler for SIGCHLD
// unconditionally, for SIGINT and SIGWINCH when interactive, ignores
// SIGTERM/SIGQUIT, and ignores SIGTSTP under job control. Signals already
// SIG_IGN at entry are remembered so RestoreForExec keeps them ignored.
func (s *SigState) InstallShellHandlers() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot which signals were SIG_IGN at entry before any
	// installation below changes them; the set must survive exec and
	// feeds the non-interactive re-trap rule.
	for n := 1; n < 32; n++ {
		if sig := unix.Signal(n); signal.Ignored(sig) {
			s.rememberedIgnored[sig] = true
		}
	}

	watch := []unix.Signal{unix.SIGCHLD}
	if s.interactive {
		watch = append(watch, unix.SIGINT)
		if hasWinch() {
			watch = append(watch, unix.SIGWINCH)
		}
	}
	for _, sig := range watch {
		s.recordFor(sig).disposition = DispositionCaught
		s.coreWatched[sig] = true
	}

	ignore := []unix.Signal{unix.SIGTERM, unix.SIGQUIT}
	if s.jobControl {
		ignore = append(ignore, unix.SIGTSTP)
	}
	for _, sig := range ignore {
		s.recordFor(sig).disposition = DispositionIgnored
	}

	s.notifyCh = make(chan os.Signal, 64)
	s.notified = append([]unix.Signal{}, watch...)
	osSignals := make([]os.Signal, len(watch))
	for i, sig := range watch {
		osSignals[i] = sig
	}
	signal.Notify(s.notifyCh, osSignals...)

	ignoreOS := make([]os.Signal, len(ignore))
	for i, sig := range ignore {
		ignoreOS[i] = sig
	}
	signal.Ignore(ignoreOS...)

	go s.handlerLoop(s.notifyCh)
	return nil
}

// handlerLoop is the handler-context boundary: it does nothing but set
// flags. No trap dispatch, no reaping, no table mutation happens here.
func (s *SigState) handlerLoop(ch <-chan os.Signal) {
	for raw := range ch {
		sig, ok := raw.(unix.Signal)
		if !ok {
			continue
		}
		s.anyReceived.Store(true)
		s.mu.Lock()
		r := s.records[sig]
		s.mu.Unlock()
		if r != nil {
			r.received.Store(true)
		}
		switch sig {
		case unix.SIGCHLD:
			s.sigchld.Store(true)
		case unix.SIGINT:
			s.sigint.Store(true)
		case unix.SIGWINCH:
			s.winch.Store(true)
		}
		s.wake()
	}
}

// wake nudges any pselect-equivalent wait blocked on the self-pipe. A
// full pipe means a wakeup is already pending, so EAGAIN is fine.
func (s *SigState) wake() {
	if s.wakeW >= 0 {
		_, _ = unix.Write(s.wakeW, []byte{0})
	}
}

// ApplyTrapDisposition points sig's kernel routing at what its trap
// entry requires: caught (routed through the shell handler) for a
// non-empty trap, ignored for an empty one, default when the trap is
// cleared. Signals the shell's own handler owns are left alone — their
// trap entries are consulted at drain time instead.
func (s *SigState) ApplyTrapDisposition(sig unix.Signal, state TrapState) {
	if sig == exitSentinel {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coreWatched[sig] {
		return
	}
	switch state {
	case TrapNonEmpty:
		for _, w := range s.notified {
			if w == sig {
				return
			}
		}
		s.recordFor(sig).disposition = DispositionCaught
		s.notified = append(s.notified, sig)
		if s.notifyCh != nil {
			signal.Notify(s.notifyCh, sig)
		}
	case TrapEmpty:
		s.dropNotifiedLocked(sig)
		s.recordFor(sig).disposition = DispositionIgnored
		signal.Ignore(sig)
	default:
		s.dropNotifiedLocked(sig)
		s.recordFor(sig).disposition = DispositionDefault
		signal.Reset(sig)
	}
}

func (s *SigState) dropNotifiedLocked(sig unix.Signal) {
	out := s.notified[:0]
	for _, w := range s.notified {
		if w != sig {
			out = append(out, w)
		}
	}
	s.notified = out
}

// RestoreForExec undoes InstallShellHandlers. Signals remembered as
// ignored at entry, and signals an empty trap ignores, stay ignored;
// everything else reverts to default. When aboutToExec is false (a temporary restore, e.g. around a
// subshell), SIGCHLD is left blocked so child-exit events aren't lost.
func (s *SigState) RestoreForExec(aboutToExec bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	signal.Stop(s.notifyCh)
	for _, sig := range s.notified {
		if s.rememberedIgnored[sig] {
			signal.Ignore(sig)
			continue
		}
		signal.Reset(sig)
	}
	// The signals InstallShellHandlers ignored revert as well.
	for _, sig := range []unix.Signal{unix.SIGTERM, unix.SIGQUIT, unix.SIGTSTP} {
		if s.rememberedIgnored[sig] || (s.traps != nil && s.traps.Get(sig).State == TrapEmpty) {
			continue
		}
		signal.Reset(sig)
	}
	if !aboutToExec {
		// Temporary restore: keep SIGCHLD blocked so child-exit events
		// aren't lost while the shell is between drain points.
		var block, old unix.Sigset_t
		addSignal(&block, unix.SIGCHLD)
		return unix.PthreadSigmask(unix.SIG_BLOCK, &block, &old)
	}
	return nil
}

// BlockWhileForking blocks all signals across fork, returning the prior
// mask so UnblockAfterForking can restore it.
func (s *SigState) BlockWhileForking() (unix.Sigset_t, error) {
	var all, old unix.Sigset_t
	for i := 1; i <= 64; i++ {
		addSignal(&all, unix.Signal(i))
	}
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, &all, &old); err != nil {
		return old, err
	}
	return old, nil
}

// UnblockAfterForking restores the signal mask saved by
// BlockWhileForking. In the child, it additionally resets the
// caught-flag array so the child never observes the parent's pending
// signals.
func (s *SigState) UnblockAfterForking(child bool, saved unix.Sigset_t) error {
	if child {
		s.mu.Lock()
		for _, r := range s.records {
			r.received.Store(false)
		}
		s.anyReceived.Store(false)
		s.sigchld.Store(false)
		s.sigint.Store(false)
		s.winch.Store(false)
		s.mu.Unlock()
	}
	return unix.PthreadSigmask(unix.SIG_SETMASK, &saved, nil)
}

// hasWinch reports whether SIGWINCH exists on this platform. All unix
// targets vush builds for define it.
func hasWinch() bool { return true }
