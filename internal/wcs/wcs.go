// Package wcs is the opaque command-language parser/executor
// collaborator, invoked through an exec_wcs(command)-shaped entry
// point. The core (internal/sigs, internal/jobs, internal/edit,
// internal/complete) never depends on a real parser — only on the small
// interfaces here — so it stays buildable and testable without one.
//
// Direct is a minimal, non-parsing Interpreter that hands the command
// text to the host's own shell via os/exec, with process-group setup so
// launched commands are real job-control citizens (their own pgid,
// reapable via Wait4/WUNTRACED).
package wcs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Interpreter parses and runs a command-language fragment. Foreground
// calls block until the command completes; Start launches a command in
// the background and returns its process group immediately so the
// caller can register it as a job.
type Interpreter interface {
	// Exec runs command to completion and returns its exit status.
	Exec(ctx context.Context, command string) (status int, err error)
	// Start launches command in a new process group without waiting,
	// returning the pgid for job registration. The launched process is
	// reaped by the job-control Waiter, never by the Interpreter.
	Start(command string) (pgid int, err error)
	// RunTrap executes a trap command fragment, restoring $? from its
	// own exit status; it implements internal/sigs.TrapRunner.
	RunTrap(sig unix.Signal, command string) (status int)
}

// Direct is the fallback Interpreter: it forks `sh -c command` instead
// of parsing the wcs language itself.
type Direct struct {
	// Shell is the interpreter binary used to run command fragments,
	// defaulting to "sh".
	Shell string
}

// NewDirect returns a Direct interpreter using "sh".
func NewDirect() *Direct { return &Direct{Shell: "sh"} }

func (d *Direct) shell() string {
	if d.Shell == "" {
		return "sh"
	}
	return d.Shell
}

// Exec runs command to completion in the foreground.
func (d *Direct) Exec(ctx context.Context, command string) (int, error) {
	cmd := exec.CommandContext(ctx, d.shell(), "-c", command)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("wcs: %w", err)
}

// Start launches command in its own process group and returns
// immediately, for backgrounding. Reaping is left entirely to the
// job-control Waiter; a second waiter here would race it for the same
// child.
func (d *Direct) Start(command string) (int, error) {
	cmd := exec.Command(d.shell(), "-c", command)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("wcs: start: %w", err)
	}
	// Release the exec.Cmd's claim on the child so os/exec never reaps
	// it behind the Waiter's back. Release resets Process.Pid to -1, so
	// the pid (also the new group's pgid) is read first.
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}

// RunTrap executes a trap command fragment with a short grace period;
// it implements internal/sigs.TrapRunner.
func (d *Direct) RunTrap(_ unix.Signal, command string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	status, err := d.Exec(ctx, command)
	if err != nil {
		return 1
	}
	return status
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}
