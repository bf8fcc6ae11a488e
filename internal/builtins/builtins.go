// Package builtins implements the built-in command surface: exit,
// kill, jobs, fg, bg, disown, wait, suspend, exec, trap, and complete.
// Each builtin returns an exit code and writes errors in the
// `name: context: message` shape.
package builtins

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/vush-shell/vush/internal/jobs"
	"github.com/vush-shell/vush/internal/sigs"
)

const (
	ExitSuccess        = 0
	ExitGenericFailure = 1
	ExitUsageError     = 2
	ExitNotExecutable  = 126
	ExitNotFound       = 127
)

// SignalExit computes the 128+signum exit code for an uncaught-signal
// death.
func SignalExit(sig unix.Signal) int { return 128 + int(sig) }

// usageError reports a usage failure in the `name: context: message`
// shape and returns ExitUsageError.
func usageError(stderr io.Writer, name, context, message string) int {
	fmt.Fprintf(stderr, "%s: %s: %s\n", name, context, message)
	return ExitUsageError
}

func reportError(stderr io.Writer, name, context string, err error) int {
	fmt.Fprintf(stderr, "%s: %s: %s\n", name, context, err)
	return ExitGenericFailure
}

// Env is the small set of collaborators every builtin needs: the job
// table/waiter/signal state, plus stdio. internal/wcs and
// internal/alias are deliberately absent — builtins here never touch
// the command language.
type Env struct {
	Jobs   *jobs.Table
	Waiter *jobs.Waiter
	Sig    *sigs.SigState
	Traps  *sigs.TrapTable
	Term   jobs.Terminal
	Signal jobs.Signaler
	Wait   jobs.WaitFunc

	Stdout io.Writer
	Stderr io.Writer

	LastStatus int
}
