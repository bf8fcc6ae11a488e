package sigs

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// TrapState is the three-way disposition of a trap entry.
type TrapState int

const (
	TrapUnset TrapState = iota
	TrapEmpty
	TrapNonEmpty
)

// TrapCommand is a trap entry: unset (default disposition), empty
// (signal ignored), or non-empty (run Text when caught).
type TrapCommand struct {
	State TrapState
	Text  string
}

// TrapTable maps signal to deferred handler command. TrappedSignals
// reports exactly the signals whose entry is TrapNonEmpty.
type TrapTable struct {
	mu       sync.Mutex
	commands map[unix.Signal]*TrapCommand
	// executing is the signal whose trap command is currently running,
	// as recorded by MarkExecuting; SetTrap does not consult it.
	executing unix.Signal
	// rejectRetrapOfEntryIgnored selects the policy for the POSIX rule
	// that signals ignored on entry to a non-interactive shell may not
	// be re-trapped: reject loudly rather than succeed silently.
	rejectRetrapOfEntryIgnored bool
}

// NewTrapTable creates an empty trap table. strictEntryIgnored selects
// the compile-time policy for re-trapping signals that were SIG_IGN at
// shell entry on a non-interactive shell.
func NewTrapTable(strictEntryIgnored bool) *TrapTable {
	return &TrapTable{
		commands:                   make(map[unix.Signal]*TrapCommand),
		rejectRetrapOfEntryIgnored: strictEntryIgnored,
	}
}

// forbidden signals: KILL and STOP can never be trapped.
func forbidden(sig unix.Signal) bool {
	return sig == unix.SIGKILL || sig == unix.SIGSTOP
}

// SetTrap installs, clears, or ignores a trap. command == nil resets to
// default; an empty string ignores the signal; anything else installs
// the fragment. entryIgnored reports whether sig was SIG_IGN at shell
// entry on a non-interactive shell, for the POSIX re-trap rule.
func (t *TrapTable) SetTrap(sig unix.Signal, command *string, interactive, entryIgnored bool) error {
	if forbidden(sig) {
		name := "STOP"
		if sig == unix.SIGKILL {
			name = "KILL"
		}
		return fmt.Errorf("trap: cannot trap SIG%s", name)
	}
	if !interactive && entryIgnored && t.rejectRetrapOfEntryIgnored {
		return fmt.Errorf("trap: signal %d was ignored on entry and cannot be re-trapped", sig)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case command == nil:
		delete(t.commands, sig)
	case *command == "":
		t.commands[sig] = &TrapCommand{State: TrapEmpty}
	default:
		t.commands[sig] = &TrapCommand{State: TrapNonEmpty, Text: *command}
	}
	return nil
}

// Get returns sig's trap entry, or the zero-value TrapUnset entry if
// none is set.
func (t *TrapTable) Get(sig unix.Signal) TrapCommand {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.commands[sig]; ok {
		return *c
	}
	return TrapCommand{State: TrapUnset}
}

// TrappedSignals returns the signals whose entry is TrapNonEmpty, in
// ascending signal-number order. These signals are not blocked: they
// are delivered through os/signal and flagged for Drain, which runs
// their traps at the next drain point.
func (t *TrapTable) TrappedSignals() []unix.Signal {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []unix.Signal
	for sig, c := range t.commands {
		if c.State == TrapNonEmpty {
			out = append(out, sig)
		}
	}
	sortSignals(out)
	return out
}

func sortSignals(s []unix.Signal) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// All returns every set trap entry, used by `trap -p` to print all
// non-default traps.
func (t *TrapTable) All() map[unix.Signal]TrapCommand {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[unix.Signal]TrapCommand, len(t.commands))
	for sig, c := range t.commands {
		out[sig] = *c
	}
	return out
}

// ForkPrepare builds the child's trap table for fork: ignored traps
// remain ignored in the child; default and caught traps reset to
// default; the EXIT trap is cleared in subshells unless the child
// re-sets it afterward.
func (t *TrapTable) ForkPrepare(exitSig unix.Signal) *TrapTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	child := &TrapTable{
		commands:                   make(map[unix.Signal]*TrapCommand),
		rejectRetrapOfEntryIgnored: t.rejectRetrapOfEntryIgnored,
	}
	for sig, c := range t.commands {
		if sig == exitSig {
			continue // EXIT trap cleared in subshells unless re-set
		}
		if c.State == TrapEmpty {
			child.commands[sig] = &TrapCommand{State: TrapEmpty}
		}
		// TrapNonEmpty (caught) resets to default: simply not copied.
	}
	return child
}

// MarkExecuting records which trap command is presently running. The
// running body holds its own copy of the text (Get returns entries by
// value), so a SetTrap meanwhile does not affect it.
func (t *TrapTable) MarkExecuting(sig unix.Signal) {
	t.mu.Lock()
	t.executing = sig
	t.mu.Unlock()
}

// ClearExecuting clears the in-flight marker set by MarkExecuting.
func (t *TrapTable) ClearExecuting() {
	t.mu.Lock()
	t.executing = 0
	t.mu.Unlock()
}
