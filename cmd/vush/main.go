// Command vush is the interactive POSIX-style shell built around the
// control core in internal/sigs, internal/jobs, internal/edit, and
// internal/complete. It wires those packages to a real terminal, the
// opaque internal/wcs command-language collaborator, and the built-in
// command surface in internal/builtins.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/vush-shell/vush/internal/alias"
	"github.com/vush-shell/vush/internal/builtins"
	"github.com/vush-shell/vush/internal/complete"
	"github.com/vush-shell/vush/internal/config"
	"github.com/vush-shell/vush/internal/edit"
	"github.com/vush-shell/vush/internal/histfile"
	"github.com/vush-shell/vush/internal/jobs"
	"github.com/vush-shell/vush/internal/sigs"
	"github.com/vush-shell/vush/internal/term"
	"github.com/vush-shell/vush/internal/wcs"
)

func main() {
	_ = config.Load(config.DefaultPath())
	cacheDir := config.CacheDir()

	// Debug logging goes to a file before the terminal enters raw mode,
	// so log output never corrupts the editing screen.
	if f, err := os.OpenFile(filepath.Join(cacheDir, "debug.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		log.SetOutput(f)
	}

	if wd, err := os.Getwd(); err == nil {
		os.Setenv("PWD", wd)
		os.Setenv("SPWD", collapseHome(wd))
	}

	// With argv the shell runs one command non-interactively; otherwise
	// it is an interactive, job-controlling session. The classification
	// drives handler installation and the POSIX re-trap rule.
	interactive := len(os.Args) <= 1

	shell := newShell(cacheDir, interactive)

	// os.Exit skips deferred calls, so teardown is explicit: EXIT trap
	// first (it may still run commands), then terminal restore.
	var status int
	if interactive {
		status = shell.repl()
	} else {
		status = shell.runOneShot(strings.Join(os.Args[1:], " "))
	}
	shell.lastStatus = status
	shell.sig.RunExitTrap(trapRunner{shell})
	shell.close()
	os.Exit(status)
}

// shell bundles every control-core collaborator the main loop drives.
type shell struct {
	term  *term.Terminal
	table *jobs.Table
	wait  *jobs.Waiter
	traps *sigs.TrapTable
	sig   *sigs.SigState
	wc    *wcs.Direct
	hist  *edit.History
	histf *histfile.Store
	alias *alias.Table
	reg   *complete.Registry
	eng   *complete.Engine
	fsm   *edit.FSM

	lastStatus  int
	lastTabLine string // buffer contents after the previous TAB, for double-TAB selection
}

// trapRunner adapts the wcs interpreter to sigs.TrapRunner, seeding the
// fragment with the shell's current $? so `trap 'echo caught $?' ...`
// observes the last status rather than a fresh interpreter's zero. The
// shell's own lastStatus is untouched by the trap body.
type trapRunner struct{ s *shell }

func (t trapRunner) RunTrap(sig unix.Signal, command string) int {
	return t.s.wc.RunTrap(sig, fmt.Sprintf("(exit %d); %s", t.s.lastStatus, command))
}

func newShell(cacheDir string, interactive bool) *shell {
	t := term.Open(int(os.Stdin.Fd()))
	if interactive {
		if err := t.MakeRaw(); err != nil {
			fmt.Fprintf(os.Stderr, "vush: raw mode: %v\n", err)
		}
	}

	table := jobs.New()
	waiter := jobs.NewWaiter(table, interactive, func(j *jobs.Job) {
		fmt.Println(jobs.FormatStatusLine(j, false, false, false))
	})
	traps := sigs.NewTrapTable(true)
	sig := sigs.New(traps, interactive, interactive)
	if err := sig.InstallShellHandlers(); err != nil {
		log.Printf("[SIG] install handlers: %v", err)
	}

	hist, err := histfile.Load(filepath.Join(cacheDir, "history"))
	if err != nil {
		log.Printf("[EDIT] history load: %v", err)
		hist = edit.NewHistory()
	}
	histf, err := histfile.Open(filepath.Join(cacheDir, "history"), filepath.Join(cacheDir, "history.db"))
	if err != nil {
		log.Printf("[EDIT] history mirror: %v", err)
	}
	if hist.Len() == 0 && histf != nil {
		// Text file gone (or first run): fall back to the mirror.
		if rec, err := histf.Recover(); err == nil && rec.Len() > 0 {
			log.Printf("[EDIT] history recovered from mirror: %d entries", rec.Len())
			hist = rec
		}
	}

	fsm := edit.NewFSM(edit.ModeEmacs)
	fsm.Hist = hist

	reg := complete.NewRegistry()
	reg.Builtins = []string{"exit", "kill", "jobs", "fg", "bg", "disown", "wait", "suspend", "exec", "trap", "complete"}
	reg.Keywords = []string{"if", "then", "else", "fi", "for", "in", "do", "done", "while", "case", "esac", "function"}
	reg.Signals = builtins.SignalNames()
	reg.Bindings = edit.BindingNames()

	return &shell{
		term:  t,
		table: table,
		wait:  waiter,
		traps: traps,
		sig:   sig,
		wc:    wcs.NewDirect(),
		hist:  hist,
		histf: histf,
		alias: alias.New(),
		reg:   reg,
		eng:   complete.NewEngine(reg),
		fsm:   fsm,
	}
}

func (s *shell) close() {
	_ = s.term.Restore()
	if s.histf != nil {
		_ = s.histf.Close()
	}
}

// env builds the builtins.Env the `jobs`/`fg`/`bg`/... dispatch needs,
// capturing the shell's current $? as env.LastStatus.
func (s *shell) env() *builtins.Env {
	return &builtins.Env{
		Jobs:       s.table,
		Waiter:     s.wait,
		Sig:        s.sig,
		Traps:      s.traps,
		Term:       s.term,
		Signal:     jobs.UnixSignaler{},
		Wait:       s.waitFunc,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		LastStatus: s.lastStatus,
	}
}

// waitFunc blocks until the job at idx leaves the Running state,
// implementing jobs.WaitFunc over SigState.WaitForChild.
func (s *shell) waitFunc(ctx context.Context, idx int) string {
	for {
		j, ok := s.table.Get(idx)
		if !ok || j.Status != jobs.Running {
			return "done"
		}
		switch s.sig.WaitForChild(ctx, true, true, s.wait, trapRunner{s}) {
		case sigs.Interrupted:
			return "interrupted"
		case sigs.Reaped, sigs.TrapExecuted:
			continue
		}
	}
}

// runOneShot executes a single command line non-interactively (vush
// with argv, as opposed to the REPL).
func (s *shell) runOneShot(line string) int {
	return s.dispatch(line)
}

// prompt is the REPL's primary prompt string, used both to print it and
// to compute the column offset redraw positions the cursor at.
const prompt = "vush$ "

// repl runs the interactive read-edit-execute loop: terminal input
// drives the EditorFSM; an accepted line is recorded to history and
// dispatched to a builtin or the wcs interpreter.
func (s *shell) repl() int {
	fmt.Print(prompt)
	for {
		// Block in the pselect suspension point until the terminal has a
		// byte, reaping children and dispatching traps while idle.
		s.sig.WaitForInput(context.Background(), s.term.Fd(), -1, true, s.wait, trapRunner{s})

		r, ok := s.readRune()
		if !ok {
			fmt.Println()
			break
		}

		if r == '\t' {
			s.handleTab()
			s.redraw()
			continue
		}

		s.fsm.Feed(r)
		if s.fsm.LineReady {
			line := strings.TrimRight(s.fsm.FinalLine, "\n")
			fmt.Println()
			s.acceptLine(line)
			s.fsm.Buf.Clear()
			s.fsm.LineReady = false
			fmt.Print(prompt)
			continue
		}
		s.redraw()
	}
	return s.lastStatus
}

// redraw repaints the prompt and buffer in place and positions the
// terminal cursor at the buffer's cursor column, using
// Buffer.ColumnWidth so wide (e.g. CJK) runes advance the cursor by
// their true display width rather than one column per rune.
func (s *shell) redraw() {
	buf := s.fsm.Buf
	totalCols := buf.ColumnWidth(buf.Len())
	cursorCols := buf.ColumnWidth(buf.Cursor())
	fmt.Printf("\r\x1b[K%s%s", prompt, buf.String())
	if back := totalCols - cursorCols; back > 0 {
		fmt.Printf("\x1b[%dD", back)
	}
}

// acceptLine records line in history and runs it, unless blank.
func (s *shell) acceptLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	seq := s.hist.Add(line)
	if s.histf != nil {
		if err := s.histf.Append(seq, line); err != nil {
			log.Printf("[EDIT] history append: %v", err)
		}
	}
	s.lastStatus = s.dispatch(line)
}

// dispatch resolves a parsed command line to a builtin or the wcs
// collaborator. Trailing "&" backgrounds the command as a new job.
func (s *shell) dispatch(line string) int {
	line = strings.TrimSpace(line)
	background := strings.HasSuffix(line, "&")
	if background {
		line = strings.TrimSpace(strings.TrimSuffix(line, "&"))
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return builtins.ExitSuccess
	}
	name, args := fields[0], fields[1:]

	if fn, ok := s.builtinDispatch(name); ok {
		return fn(args)
	}

	if background {
		pgid, err := s.wc.Start(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vush: %v\n", err)
			return builtins.ExitGenericFailure
		}
		// The Waiter reaps it on the next SIGCHLD drain; no second
		// waiter is spawned here.
		idx := s.table.Add(pgid, line, pgid)
		fmt.Printf("[%d] %d\n", idx, pgid)
		return builtins.ExitSuccess
	}

	status, err := s.wc.Exec(context.Background(), line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vush: %v\n", err)
		return builtins.ExitNotFound
	}
	return status
}

// builtinDispatch returns the handler for a built-in command name and
// whether one exists, adapting each internal/builtins function's
// signature to a uniform (args []string) int shape.
func (s *shell) builtinDispatch(name string) (func(args []string) int, bool) {
	env := s.env()
	switch name {
	case "exit":
		return func(args []string) int {
			code, shouldExit := builtins.Exit(env, args)
			if shouldExit {
				s.lastStatus = code
				s.sig.RunExitTrap(trapRunner{s})
				s.close()
				os.Exit(code)
			}
			return code
		}, true
	case "kill":
		return func(args []string) int { return builtins.Kill(env, args) }, true
	case "jobs":
		return func(args []string) int { return builtins.Jobs(env, args) }, true
	case "fg":
		return func(args []string) int { return builtins.Fg(env, args) }, true
	case "bg":
		return func(args []string) int { return builtins.Bg(env, args) }, true
	case "disown":
		return func(args []string) int { return builtins.Disown(env, args) }, true
	case "wait":
		return func(args []string) int { return builtins.Wait(env, args) }, true
	case "suspend":
		return func(args []string) int { return builtins.Suspend(env, args) }, true
	case "trap":
		return func(args []string) int { return builtins.Trap(env, args) }, true
	case "exec":
		return func(args []string) int {
			return builtins.Exec(env, args, func(path string, argv, envp []string) error {
				resolved, err := exec.LookPath(path)
				if err != nil {
					resolved = path
				}
				return unix.Exec(resolved, argv, envp)
			})
		}, true
	case "complete":
		return func(args []string) int {
			ctx := complete.Classify(s.fsm.Buf.String(), s.fsm.Buf.Cursor())
			_, status := builtins.Complete(s.reg, ctx, args)
			return status
		}, true
	case "alias":
		return func(args []string) int { return s.aliasBuiltin(args) }, true
	}
	return nil, false
}

func (s *shell) aliasBuiltin(args []string) int {
	if len(args) == 0 {
		for _, name := range s.alias.Names() {
			exp, _ := s.alias.Get(name)
			fmt.Printf("alias %s=%q\n", name, exp)
		}
		return builtins.ExitSuccess
	}
	for _, a := range args {
		name, expansion, ok := strings.Cut(a, "=")
		if !ok {
			exp, ok := s.alias.Get(a)
			if !ok {
				fmt.Fprintf(os.Stderr, "alias: %s: not found\n", a)
				continue
			}
			fmt.Printf("alias %s=%q\n", a, exp)
			continue
		}
		s.alias.Set(name, expansion)
	}
	s.reg.Aliases = s.alias.Names()
	return builtins.ExitSuccess
}

// readRune reads one UTF-8 rune from the terminal, decoding multi-byte
// sequences a byte at a time. Returns ok=false on EOF/read error.
func (s *shell) readRune() (rune, bool) {
	var buf []byte
	for {
		b, err := s.term.ReadByte()
		if err != nil {
			return 0, false
		}
		buf = append(buf, b)
		if utf8.FullRune(buf) {
			r, _ := utf8.DecodeRune(buf)
			return r, true
		}
		if len(buf) >= utf8.UTFMax {
			r, _ := utf8.DecodeRune(buf)
			return r, true
		}
	}
}

// handleTab runs the completion pipeline against the buffer's current
// prefix and either inserts the single result or lists candidates.
func (s *shell) handleTab() {
	line := s.fsm.Buf.String()
	cursor := s.fsm.Buf.Cursor()
	command := ""
	if fields := strings.Fields(line); len(fields) > 0 {
		command = fields[0]
	}

	s.reg.Jobs = s.jobNames()
	ctx := complete.Classify(line, cursor)

	// Completion functions see the preceding words and the source word as
	// WORDS and TARGETWORD, with IFS at its default for the duration.
	restoreEnv := completionScopeEnv(ctx)
	defer restoreEnv()

	result := s.eng.Complete(line, cursor, command, complete.Options{})
	start := wordStart(line, cursor)
	quote := ctx.Quote

	insertCandidate := func(c complete.Candidate) {
		insertion := complete.Quote(c.Insert, quote)
		if !c.NoTerminate {
			insertion += " "
		}
		s.fsm.Buf.DeleteRange(start, cursor)
		s.fsm.Buf.SetCursor(start)
		s.fsm.Buf.Insert(insertion)
	}

	switch {
	case len(result.Candidates) == 0:
		fmt.Print("\a")
	case result.Single:
		insertCandidate(result.Candidates[0])
	case line == s.lastTabLine:
		// A second TAB with no intervening edit selects the first
		// candidate outright.
		insertCandidate(result.Candidates[0])
	default:
		names := make([]string, len(result.Candidates))
		for i, c := range result.Candidates {
			if c.Description != "" {
				names[i] = c.Insert + " (" + c.Description + ")"
			} else {
				names[i] = c.Insert
			}
		}
		fmt.Println()
		fmt.Println(strings.Join(names, "  "))
		if result.CommonPrefix != "" {
			s.fsm.Buf.DeleteRange(start, cursor)
			s.fsm.Buf.SetCursor(start)
			s.fsm.Buf.Insert(complete.Quote(result.CommonPrefix, quote))
		}
	}
	s.lastTabLine = s.fsm.Buf.String()
}

// collapseHome renders wd with the home-directory prefix shortened to
// "~", the display form exported as SPWD.
func collapseHome(wd string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return wd
	}
	if wd == home {
		return "~"
	}
	if strings.HasPrefix(wd, home+"/") {
		return "~" + wd[len(home):]
	}
	return wd
}

// completionScopeEnv exports WORDS and TARGETWORD for completion
// functions and pins IFS to its default, returning the function that
// restores the prior values when the completion request ends.
func completionScopeEnv(ctx complete.Context) func() {
	prevWords, hadWords := os.LookupEnv("WORDS")
	prevTarget, hadTarget := os.LookupEnv("TARGETWORD")
	prevIFS, hadIFS := os.LookupEnv("IFS")

	os.Setenv("WORDS", strings.Join(ctx.Words, " "))
	os.Setenv("TARGETWORD", ctx.TargetWord)
	os.Setenv("IFS", " \t\n")

	restore := func(key, prev string, had bool) {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	}
	return func() {
		restore("WORDS", prevWords, hadWords)
		restore("TARGETWORD", prevTarget, hadTarget)
		restore("IFS", prevIFS, hadIFS)
	}
}

// jobNames snapshots the current job-table names for the completion
// engine's job generator.
func (s *shell) jobNames() []string {
	var names []string
	for _, idx := range s.table.Indices() {
		if j, ok := s.table.Get(idx); ok {
			names = append(names, j.Name)
		}
	}
	return names
}

// wordStart finds the start of the whitespace-delimited word ending at
// cursor, the span handleTab replaces on completion.
func wordStart(line string, cursor int) int {
	runes := []rune(line)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	i := cursor
	for i > 0 && runes[i-1] != ' ' && runes[i-1] != '\t' {
		i--
	}
	return i
}
