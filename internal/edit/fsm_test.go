package edit

import "testing"

func feedString(f *FSM, s string) {
	for _, r := range s {
		f.Feed(r)
	}
}

func TestFSM_EmacsSelfInsertAndAccept(t *testing.T) {
	f := NewFSM(ModeEmacs)
	feedString(f, "echo hi")
	f.Feed(keyEnter)
	if !f.LineReady {
		t.Fatal("expected line ready after Enter")
	}
	if f.FinalLine != "echo hi\n" {
		t.Fatalf("got %q", f.FinalLine)
	}
}

func TestFSM_EmacsKillAndYank(t *testing.T) {
	f := NewFSM(ModeEmacs)
	feedString(f, "hello world")
	f.Buf.SetCursor(0)
	f.Feed(keyCtrlK)
	if f.Buf.String() != "" {
		t.Fatalf("expected empty buffer after kill-line, got %q", f.Buf.String())
	}
	f.Feed(keyCtrlY)
	if f.Buf.String() != "hello world" {
		t.Fatalf("expected yank to restore text, got %q", f.Buf.String())
	}
}

func TestFSM_ViCommandCursorInvariant(t *testing.T) {
	f := NewFSM(ModeViCommand)
	f.Buf.SetContents("abc")
	f.Feed('l')
	f.Feed('l')
	f.Feed('l')
	f.Feed('l') // one past end, should clamp
	if c := f.Buf.Cursor(); c < 0 || c > f.Buf.Len() {
		t.Fatalf("cursor invariant violated: %d not in [0,%d]", c, f.Buf.Len())
	}
}

func TestFSM_ViDeleteWordOperator(t *testing.T) {
	f := NewFSM(ModeViCommand)
	f.Buf.SetContents("foo bar baz")
	f.Buf.SetCursor(0)
	f.Feed('d')
	f.Feed('w')
	if got := f.Buf.String(); got != "bar baz" {
		t.Fatalf("got %q", got)
	}
}

func TestFSM_ViDoubledOperatorWholeLine(t *testing.T) {
	f := NewFSM(ModeViCommand)
	f.Buf.SetContents("foo bar baz")
	f.Feed('d')
	f.Feed('d')
	if got := f.Buf.String(); got != "" {
		t.Fatalf("expected dd to clear the line, got %q", got)
	}
}

func TestFSM_UndoRedoRoundTrip(t *testing.T) {
	f := NewFSM(ModeEmacs)
	feedString(f, "abcd")
	f.Feed(keyCtrlUnderscore)
	if f.Buf.String() != "abc" {
		t.Fatalf("after undo expected %q, got %q", "abc", f.Buf.String())
	}
	if cur, contents, ok := f.Undo.Redo(); !ok || contents != "abcd" {
		t.Fatalf("redo did not restore forward state: %q %d %v", contents, cur, ok)
	}
}

// TestFSM_UndoRedoKUndosKRedos exercises the round-trip invariant: k
// undos followed by k redos restores the exact (buffer, cursor) state.
func TestFSM_UndoRedoKUndosKRedos(t *testing.T) {
	f := NewFSM(ModeEmacs)
	feedString(f, "abcde")
	wantText, wantCur := f.Buf.String(), f.Buf.Cursor()

	const k = 3
	for i := 0; i < k; i++ {
		f.Feed(keyCtrlUnderscore)
	}
	for i := 0; i < k; i++ {
		if cur, contents, ok := f.Undo.Redo(); ok {
			f.Buf.SetContents(contents)
			f.Buf.SetCursor(cur)
		}
	}
	if f.Buf.String() != wantText || f.Buf.Cursor() != wantCur {
		t.Fatalf("round trip lost state: got (%q, %d), want (%q, %d)",
			f.Buf.String(), f.Buf.Cursor(), wantText, wantCur)
	}
}

func TestFSM_BackspaceThenUndoRestoresDeletedChar(t *testing.T) {
	f := NewFSM(ModeEmacs)
	feedString(f, "abc")
	f.Feed(keyCtrlH)
	f.Feed(keyCtrlH)
	if f.Buf.String() != "a" {
		t.Fatalf("after two backspaces expected %q, got %q", "a", f.Buf.String())
	}
	f.Feed(keyCtrlUnderscore)
	if f.Buf.String() != "ab" {
		t.Fatalf("undo should restore the last deleted char, got %q", f.Buf.String())
	}
}

func TestFSM_KillRingSaturatesAtCapacity(t *testing.T) {
	f := NewFSM(ModeViCommand)
	for i := 0; i < KillRingCapacity+5; i++ {
		f.Kill.Put("x")
	}
	if f.Kill.Len() != KillRingCapacity {
		t.Fatalf("kill ring should saturate at %d, got %d", KillRingCapacity, f.Kill.Len())
	}
}

func TestFSM_ViEscReturnsToCommandModeAndMovesCursorBack(t *testing.T) {
	f := NewFSM(ModeViInsert)
	feedString(f, "ab")
	f.Feed(keyEsc)
	if f.Mode != ModeViCommand {
		t.Fatalf("expected vi-command mode, got %v", f.Mode)
	}
	if f.Buf.Cursor() != 1 {
		t.Fatalf("expected cursor to move back one on escape, got %d", f.Buf.Cursor())
	}
}

func TestFSM_ViSearchAnchoredFindsMostRecentThenRepeatsOlder(t *testing.T) {
	f := NewFSM(ModeViCommand)
	f.Hist.Add("ls")
	f.Hist.Add("cat foo")
	f.Hist.Add("ls -la")

	f.Feed('?')
	feedString(f, "^ls")
	f.Feed(keyEnter)

	if f.Buf.String() != "ls -la" {
		t.Fatalf("expected most recent ls-prefixed entry, got %q", f.Buf.String())
	}
	if f.Mode != ModeViCommand {
		t.Fatalf("expected vi-command mode after accept, got %v", f.Mode)
	}

	f.Feed('n')
	if f.Buf.String() != "ls" {
		t.Fatalf("expected repeat to select the older match, got %q", f.Buf.String())
	}
}

func TestFSM_ViSearchAbortRestoresPriorLine(t *testing.T) {
	f := NewFSM(ModeViCommand)
	f.Hist.Add("make test")
	f.Buf.SetContents("half-typed")
	f.Buf.SetCursor(4)

	f.Feed('?')
	feedString(f, "make")
	f.Feed(keyEsc)

	if f.Buf.String() != "half-typed" || f.Buf.Cursor() != 4 {
		t.Fatalf("abort should restore the pre-search line, got %q cursor %d",
			f.Buf.String(), f.Buf.Cursor())
	}
	if f.Mode != ModeViCommand {
		t.Fatalf("expected vi-command mode after abort, got %v", f.Mode)
	}
}

func TestFSM_HistoryUpDownRoundTrip(t *testing.T) {
	f := NewFSM(ModeEmacs)
	f.Hist.Add("first")
	f.Hist.Add("second")
	f.Feed(keyCtrlP)
	if f.Buf.String() != "second" {
		t.Fatalf("expected most recent entry, got %q", f.Buf.String())
	}
	f.Feed(keyCtrlP)
	if f.Buf.String() != "first" {
		t.Fatalf("expected older entry, got %q", f.Buf.String())
	}
	f.Feed(keyCtrlN)
	if f.Buf.String() != "second" {
		t.Fatalf("expected to walk forward again, got %q", f.Buf.String())
	}
}
