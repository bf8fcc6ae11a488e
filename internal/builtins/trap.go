package builtins

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/vush-shell/vush/internal/sigs"
)

// Trap implements `trap [action sig...]` / `trap -p [sig...]`.
func Trap(env *Env, args []string) int {
	if len(args) > 0 && args[0] == "-p" {
		return trapPrint(env, args[1:])
	}
	if len(args) < 2 {
		return usageError(env.Stderr, "trap", "usage", "trap action sig...")
	}

	action := args[0]
	var cmd *string
	switch action {
	case "-":
		cmd = nil // reset to default
	case "":
		empty := ""
		cmd = &empty // ignore
	default:
		cmd = &action
	}

	// The POSIX re-trap rule needs the shell's real session state:
	// without a SigState (tests), default to the permissive interactive
	// classification.
	interactive := true
	if env.Sig != nil {
		interactive = env.Sig.Interactive()
	}

	status := ExitSuccess
	for _, name := range args[1:] {
		sig, err := parseTrapSignal(name)
		if err != nil {
			reportError(env.Stderr, "trap", name, err)
			status = ExitGenericFailure
			continue
		}
		entryIgnored := false
		if env.Sig != nil {
			entryIgnored = env.Sig.EntryIgnored(sig)
		}
		if err := env.Traps.SetTrap(sig, cmd, interactive, entryIgnored); err != nil {
			reportError(env.Stderr, "trap", name, err)
			status = ExitGenericFailure
			continue
		}
		if env.Sig != nil {
			env.Sig.ApplyTrapDisposition(sig, env.Traps.Get(sig).State)
		}
	}
	return status
}

// parseTrapSignal accepts everything ParseSignal does plus the EXIT
// pseudo-signal (number 0), which has no kernel signal behind it.
func parseTrapSignal(name string) (unix.Signal, error) {
	if strings.EqualFold(name, "EXIT") || name == "0" {
		return 0, nil
	}
	return ParseSignal(name)
}

// trapPrint implements `trap -p`: with no signals, print every
// non-default trap; with signals given, print just those.
func trapPrint(env *Env, sigArgs []string) int {
	var list []sigs.TrapCommand
	var names []string

	if len(sigArgs) == 0 {
		all := env.Traps.All()
		sigNums := make([]int, 0, len(all))
		for s := range all {
			sigNums = append(sigNums, int(s))
		}
		sort.Ints(sigNums)
		for _, n := range sigNums {
			sig := unix.Signal(n)
			tc := all[sig]
			if tc.State == sigs.TrapUnset {
				continue
			}
			list = append(list, tc)
			names = append(names, SignalName(sig))
		}
	} else {
		for _, name := range sigArgs {
			sig, err := ParseSignal(name)
			if err != nil {
				reportError(env.Stderr, "trap", name, err)
				continue
			}
			tc := env.Traps.Get(sig)
			list = append(list, tc)
			names = append(names, SignalName(sig))
		}
	}

	for i, tc := range list {
		switch tc.State {
		case sigs.TrapEmpty:
			fmt.Fprintf(env.Stdout, "trap -- '' %s\n", names[i])
		case sigs.TrapNonEmpty:
			fmt.Fprintf(env.Stdout, "trap -- %q %s\n", tc.Text, names[i])
		}
	}
	return ExitSuccess
}
