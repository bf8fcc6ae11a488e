package builtins

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/vush-shell/vush/internal/jobs"
)

// signalTable maps canonical signal names (without "SIG") to numbers.
var signalTable = map[string]unix.Signal{
	"HUP": unix.SIGHUP, "INT": unix.SIGINT, "QUIT": unix.SIGQUIT,
	"ILL": unix.SIGILL, "TRAP": unix.SIGTRAP, "ABRT": unix.SIGABRT,
	"BUS": unix.SIGBUS, "FPE": unix.SIGFPE, "KILL": unix.SIGKILL,
	"USR1": unix.SIGUSR1, "SEGV": unix.SIGSEGV, "USR2": unix.SIGUSR2,
	"PIPE": unix.SIGPIPE, "ALRM": unix.SIGALRM, "TERM": unix.SIGTERM,
	"CHLD": unix.SIGCHLD, "CONT": unix.SIGCONT, "STOP": unix.SIGSTOP,
	"TSTP": unix.SIGTSTP, "TTIN": unix.SIGTTIN, "TTOU": unix.SIGTTOU,
	"URG": unix.SIGURG, "XCPU": unix.SIGXCPU, "XFSZ": unix.SIGXFSZ,
	"VTALRM": unix.SIGVTALRM, "PROF": unix.SIGPROF, "WINCH": unix.SIGWINCH,
	"SYS": unix.SIGSYS,
}

// signalDescriptions holds the short description `kill -v` prints next
// to each name.
var signalDescriptions = map[string]string{
	"HUP": "hangup", "INT": "interrupt", "QUIT": "quit",
	"ILL": "illegal instruction", "TRAP": "trace trap", "ABRT": "abort",
	"BUS": "bus error", "FPE": "arithmetic exception", "KILL": "killed",
	"USR1": "user signal 1", "SEGV": "segmentation fault", "USR2": "user signal 2",
	"PIPE": "broken pipe", "ALRM": "alarm clock", "TERM": "terminated",
	"CHLD": "child status changed", "CONT": "continued", "STOP": "stopped (signal)",
	"TSTP": "stopped", "TTIN": "tty input from background", "TTOU": "tty output from background",
	"URG": "urgent I/O condition", "XCPU": "cpu time limit exceeded", "XFSZ": "file size limit exceeded",
	"VTALRM": "virtual timer expired", "PROF": "profiling timer expired", "WINCH": "window size changed",
	"SYS": "bad system call",
}

// ParseSignal accepts a signal name with or without the "SIG" prefix, a
// decimal number, or (on platforms with real-time signals) RTMIN/RTMAX
// forms.
func ParseSignal(s string) (unix.Signal, error) {
	s = strings.ToUpper(strings.TrimPrefix(s, "SIG"))
	if n, ok := signalTable[s]; ok {
		return n, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return unix.Signal(n), nil
	}
	if sig, ok := parseRealtimeSignal(s); ok {
		return sig, nil
	}
	return 0, fmt.Errorf("invalid signal specification %q", s)
}

// parseRealtimeSignal handles RTMIN, RTMAX, RTMIN+k, RTMAX-k for
// 0 <= k <= (RTMAX-RTMIN).
func parseRealtimeSignal(s string) (unix.Signal, bool) {
	if runtime.GOOS != "linux" {
		return 0, false
	}
	base := unix.Signal(34) // SIGRTMIN on Linux; platforms without a
	top := unix.Signal(64)  // real-time range simply won't match these forms.
	switch {
	case s == "RTMIN":
		return base, true
	case s == "RTMAX":
		return top, true
	case strings.HasPrefix(s, "RTMIN+"):
		if k, err := strconv.Atoi(s[len("RTMIN+"):]); err == nil && k >= 0 && base+unix.Signal(k) <= top {
			return base + unix.Signal(k), true
		}
	case strings.HasPrefix(s, "RTMAX-"):
		if k, err := strconv.Atoi(s[len("RTMAX-"):]); err == nil && k >= 0 && top-unix.Signal(k) >= base {
			return top - unix.Signal(k), true
		}
	}
	return 0, false
}

// SignalName renders sig the way `kill -l` prints it, without the SIG
// prefix. Signal 0 is the EXIT pseudo-signal used by `trap`.
func SignalName(sig unix.Signal) string {
	if sig == 0 {
		return "EXIT"
	}
	for name, n := range signalTable {
		if n == sig {
			return name
		}
	}
	if sig >= 34 && sig <= 64 {
		return fmt.Sprintf("RTMIN+%d", int(sig-34))
	}
	return strconv.Itoa(int(sig))
}

// SignalNames returns every named signal in sorted order, the
// vocabulary `kill -l` prints and the completion engine's signal
// generator draws candidates from.
func SignalNames() []string {
	names := make([]string, 0, len(signalTable))
	for n := range signalTable {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Kill implements the `kill` builtin: send a signal to a jobspec/pid
// target, or list signal names with `-l`/`-v`.
func Kill(env *Env, args []string) int {
	if len(args) == 0 {
		return usageError(env.Stderr, "kill", "usage", "kill [-s sig|-signame] target...")
	}

	if args[0] == "-l" {
		return killList(env, args[1:], false)
	}
	if args[0] == "-v" {
		return killList(env, args[1:], true)
	}

	sig := unix.SIGTERM
	i := 0
	switch {
	case strings.HasPrefix(args[0], "-s"):
		spec := strings.TrimPrefix(args[0], "-s")
		if spec == "" {
			if len(args) < 2 {
				return usageError(env.Stderr, "kill", "usage", "-s requires a signal name")
			}
			spec = args[1]
			i = 2
		} else {
			i = 1
		}
		s, err := ParseSignal(spec)
		if err != nil {
			return reportError(env.Stderr, "kill", "-s", err)
		}
		sig = s
	case strings.HasPrefix(args[0], "-") && len(args[0]) > 1:
		s, err := ParseSignal(args[0][1:])
		if err != nil {
			return reportError(env.Stderr, "kill", args[0], err)
		}
		sig = s
		i = 1
	}

	if i >= len(args) {
		return usageError(env.Stderr, "kill", "usage", "missing target")
	}

	status := ExitSuccess
	for _, target := range args[i:] {
		if err := killTarget(env, target, sig); err != nil {
			reportError(env.Stderr, "kill", target, err)
			status = ExitGenericFailure
		}
	}
	return status
}

func killTarget(env *Env, target string, sig unix.Signal) error {
	if strings.HasPrefix(target, "%") {
		idx, perr := jobs.ParseJobspec(env.Jobs, target)
		if perr != nil {
			return perr
		}
		j, ok := env.Jobs.Get(idx)
		if !ok {
			return fmt.Errorf("no such job")
		}
		return env.Signal.KillPgrp(j.Pgid, sig)
	}
	pid, err := strconv.Atoi(target)
	if err != nil {
		return fmt.Errorf("arguments must be process or job IDs")
	}
	return unix.Kill(pid, sig)
}

func killList(env *Env, args []string, verbose bool) int {
	if len(args) == 0 {
		names := SignalNames()
		const columns = 4
		for i := 0; i < len(names); i += columns {
			end := i + columns
			if end > len(names) {
				end = len(names)
			}
			row := names[i:end]
			if verbose {
				// One signal per line with its description.
				for _, n := range row {
					fmt.Fprintf(env.Stdout, "%2d) SIG%-8s %s\n",
						int(signalTable[n]), n, signalDescriptions[n])
				}
			} else {
				fmt.Fprintln(env.Stdout, strings.Join(row, "  "))
			}
		}
		return ExitSuccess
	}
	for _, a := range args {
		// A number above 128 is an exit status from a signal death;
		// `kill -l 143` prints TERM.
		if n, aerr := strconv.Atoi(a); aerr == nil && n > 128 {
			fmt.Fprintln(env.Stdout, SignalName(unix.Signal(n-128)))
			continue
		}
		sig, err := ParseSignal(a)
		if err != nil {
			reportError(env.Stderr, "kill", a, err)
			continue
		}
		fmt.Fprintln(env.Stdout, SignalName(sig))
	}
	return ExitSuccess
}
