package builtins

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/vush-shell/vush/internal/jobs"
)

// Jobs implements the `jobs` builtin: print the job table, optionally
// restricted to given jobspecs. `-l` adds pids, `-n` prints only jobs
// whose status changed since the last report.
func Jobs(env *Env, args []string) int {
	withPid := false
	changedOnly := false
	var specs []string
	for _, a := range args {
		switch {
		case a == "-l":
			withPid = true
		case a == "-n":
			changedOnly = true
		case a == "-ln" || a == "-nl":
			withPid, changedOnly = true, true
		default:
			specs = append(specs, a)
		}
	}

	indices := env.Jobs.Indices()
	if len(specs) > 0 {
		indices = indices[:0]
		for _, s := range specs {
			idx, err := jobs.ParseJobspec(env.Jobs, s)
			if err != nil {
				reportError(env.Stderr, "jobs", s, err)
				continue
			}
			indices = append(indices, idx)
		}
	}

	cur, prev := env.Jobs.Current(), env.Jobs.Previous()
	for _, idx := range indices {
		j, ok := env.Jobs.Get(idx)
		if !ok {
			continue
		}
		if changedOnly && j.Notified {
			continue
		}
		fmt.Fprintln(env.Stdout, jobs.FormatStatusLine(j, idx == cur, idx == prev, withPid))
		env.Jobs.MarkNotified(idx)
		if j.Status == jobs.Done {
			env.Jobs.Remove(idx)
		}
	}
	return ExitSuccess
}

func resolveJobspecOrCurrent(env *Env, args []string, name string) (int, int) {
	if len(args) == 0 {
		idx := env.Jobs.Current()
		if idx == 0 {
			fmt.Fprintf(env.Stderr, "%s: no current job\n", name)
			return 0, ExitGenericFailure
		}
		return idx, ExitSuccess
	}
	idx, err := jobs.ParseJobspec(env.Jobs, args[0])
	if err != nil {
		return 0, reportError(env.Stderr, name, args[0], err)
	}
	return idx, ExitSuccess
}

// Fg implements the `fg` builtin.
func Fg(env *Env, args []string) int {
	idx, code := resolveJobspecOrCurrent(env, args, "fg")
	if code != ExitSuccess {
		return code
	}
	status, msg, err := jobs.Foreground(context.Background(), env.Jobs, env.Term, env.Signal, env.Wait, idx)
	if err != nil {
		return reportError(env.Stderr, "fg", "resume", err)
	}
	if msg != "" {
		fmt.Fprint(env.Stdout, msg)
		if !strings.HasSuffix(msg, "\n") {
			fmt.Fprintln(env.Stdout)
		}
	}
	return status
}

// Bg implements the `bg` builtin.
func Bg(env *Env, args []string) int {
	idx, code := resolveJobspecOrCurrent(env, args, "bg")
	if code != ExitSuccess {
		return code
	}
	if err := jobs.Background(env.Jobs, env.Signal, idx); err != nil {
		return reportError(env.Stderr, "bg", "resume", err)
	}
	return ExitSuccess
}

// Disown implements `disown [-arh] [jobspec...]`: detaches jobs from
// the table so their completion is no longer tracked or reported. With
// `-h` the selected jobs are only marked no-hup and stay in the table.
func Disown(env *Env, args []string) int {
	all, runningOnly, noHup := false, false, false
	var specs []string
	for _, a := range args {
		switch a {
		case "-a":
			all = true
		case "-r":
			runningOnly = true
		case "-h":
			noHup = true
		default:
			specs = append(specs, a)
		}
	}

	var indices []int
	if all || len(specs) == 0 {
		indices = env.Jobs.Indices()
	} else {
		for _, s := range specs {
			idx, err := jobs.ParseJobspec(env.Jobs, s)
			if err != nil {
				reportError(env.Stderr, "disown", s, err)
				continue
			}
			indices = append(indices, idx)
		}
	}

	for _, idx := range indices {
		j, ok := env.Jobs.Get(idx)
		if !ok {
			continue
		}
		if runningOnly && j.Status != jobs.Running {
			continue
		}
		if noHup {
			j.NoHup = true
			continue
		}
		env.Jobs.Remove(idx)
	}
	return ExitSuccess
}

// Wait implements the `wait` builtin. It blocks until every named job
// (or, with no arguments, every job) leaves the running state, and is
// SIGINT-cancelable.
func Wait(env *Env, args []string) int {
	ctx := context.Background()

	var indices []int
	if len(args) == 0 {
		indices = env.Jobs.Indices()
	} else {
		for _, a := range args {
			idx, err := jobs.ParseJobspec(env.Jobs, a)
			if err != nil {
				reportError(env.Stderr, "wait", a, err)
				return ExitGenericFailure
			}
			indices = append(indices, idx)
		}
	}

	status := ExitSuccess
	for _, idx := range indices {
		outcome := env.Wait(ctx, idx)
		if outcome == "interrupted" {
			return SignalExit(unix.SIGINT)
		}
		if j, ok := env.Jobs.Get(idx); ok && j.Status == jobs.Done {
			status = j.ExitStatus
		}
	}
	return status
}

// Suspend implements `suspend [-f]`: raises SIGSTOP on the shell itself.
func Suspend(env *Env, args []string) int {
	force := len(args) > 0 && args[0] == "-f"
	_ = force // login-shell gating is an external-session concern; accepted for flag-compat.
	if err := unix.Kill(unix.Getpid(), unix.SIGSTOP); err != nil {
		return reportError(env.Stderr, "suspend", "raise", err)
	}
	return ExitSuccess
}

// Exit implements `exit [-f] [n]`. It refuses to terminate with
// unreported stopped or finished jobs unless `-f` is given.
func Exit(env *Env, args []string) (code int, shouldExit bool) {
	force := false
	var rest []string
	for _, a := range args {
		if a == "-f" {
			force = true
			continue
		}
		rest = append(rest, a)
	}

	if !force && env.Jobs.CountUnreportedDoneOrStopped() > 0 {
		fmt.Fprintln(env.Stderr, "exit: there are unreported stopped or finished jobs")
		return ExitGenericFailure, false
	}

	if len(rest) == 0 {
		return env.LastStatus, true
	}
	n, err := parseExitCode(rest[0])
	if err != nil {
		return usageError(env.Stderr, "exit", "argument", "numeric argument required"), true
	}
	return n, true
}

func parseExitCode(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, err
	}
	return n & 0xff, nil
}

// Exec implements `exec [-cfl] [-a name] cmd [args]`, replacing the
// process image. Blocked (like exit) if jobs remain and `-f` wasn't
// given.
func Exec(env *Env, args []string, execve func(path string, argv, envp []string) error) int {
	clearEnv, force, login := false, false, false
	argv0 := ""
	i := 0
	for i < len(args) {
		switch {
		case args[i] == "-c":
			clearEnv = true
			i++
		case args[i] == "-f":
			force = true
			i++
		case args[i] == "-l":
			login = true
			i++
		case args[i] == "-a":
			if i+1 >= len(args) {
				return usageError(env.Stderr, "exec", "-a", "missing name")
			}
			argv0 = args[i+1]
			i += 2
		default:
			goto done
		}
	}
done:
	if i >= len(args) {
		return usageError(env.Stderr, "exec", "usage", "missing command")
	}
	if !force && env.Jobs.CountUnreportedDoneOrStopped() > 0 {
		fmt.Fprintln(env.Stderr, "exec: there are unreported stopped or finished jobs")
		return ExitGenericFailure
	}

	path := args[i]
	cmdArgs := args[i:]
	name := argv0
	if name == "" {
		name = path
	}
	if login {
		name = "-" + name
	}
	argv := append([]string{name}, cmdArgs[1:]...)

	var envp []string
	if !clearEnv {
		envp = currentEnviron()
	}

	if err := execve(path, argv, envp); err != nil {
		if strings.Contains(err.Error(), "permission denied") {
			return ExitNotExecutable
		}
		if strings.Contains(err.Error(), "no such file") {
			return ExitNotFound
		}
		return reportError(env.Stderr, "exec", path, err)
	}
	return ExitSuccess // unreachable on success: execve replaces the process
}
