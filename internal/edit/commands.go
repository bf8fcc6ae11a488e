package edit

import "sort"

// bindingNames lists the editor commands a key can be bound to, one
// name per dispatchable command across the emacs and vi keymaps.
var bindingNames = []string{
	"accept-line", "self-insert", "backward-char", "forward-char",
	"beginning-of-line", "end-of-line", "first-non-blank",
	"absolute-column", "delete-char", "backward-delete-char",
	"delete-semiword", "kill-line", "backward-kill-line",
	"yank", "yank-pop", "put-after", "put-before",
	"undo", "undo-all", "cancel-undo", "redo",
	"history-up", "history-down",
	"search-backward", "search-forward",
	"search-again", "search-again-reverse",
	"bigword-forward", "bigword-backward", "bigword-end",
	"viword-forward", "viword-backward", "viword-end",
	"find-char", "find-char-backward", "till-char",
	"till-char-backward", "find-repeat",
	"vi-insert", "vi-insert-beginning", "vi-append", "vi-append-end",
	"vi-replace", "vi-replace-char", "vi-substitute",
	"vi-change-case", "vi-edit-and-accept",
}

// BindingNames returns the editor's command-binding vocabulary in
// sorted order, for binding-name completion.
func BindingNames() []string {
	out := make([]string, len(bindingNames))
	copy(out, bindingNames)
	sort.Strings(out)
	return out
}

// Feed is the FSM's single entry point: one input rune in, zero or more
// buffer/mode mutations out.
func (f *FSM) Feed(r rune) {
	switch f.Mode {
	case ModeInsert, ModeEmacs:
		f.feedEmacs(r)
	case ModeViInsert:
		f.feedViInsert(r)
	case ModeViCommand:
		f.feedViCommand(r)
	case ModeViExpectChar:
		f.feedViExpectChar(r)
	case ModeViSearch:
		f.feedViSearch(r)
	case ModeSuspended:
		// Suspended mode ignores input until job control resumes the
		// shell and switches the mode back.
	}
}

const (
	keyCtrlA = rune(1)
	keyCtrlB = rune(2)
	keyCtrlD = rune(4)
	keyCtrlE = rune(5)
	keyCtrlF = rune(6)
	keyCtrlG = rune(7)
	keyCtrlH = rune(8)
	keyCtrlK = rune(11)
	keyCtrlN = rune(14)
	keyCtrlP = rune(16)
	keyCtrlR = rune(18)
	keyCtrlT = rune(20)
	keyCtrlU = rune(21)
	keyCtrlW = rune(23)
	keyCtrlY = rune(25)
	keyCtrlUnderscore = rune(31)
	keyEsc   = rune(27)
	keyDel   = rune(127)
	keyEnter = rune('\r')
	keyLF    = rune('\n')

	// KeyMetaY is the synthetic rune the terminal layer feeds for the
	// Alt/Meta-y chord (yank-pop), since Feed only accepts one logical
	// key at a time and Meta sequences are decoded below internal/term.
	KeyMetaY = rune(0xE079)
)

func (f *FSM) acceptLine() {
	if f.Search.Active() {
		f.Search.Accept()
	}
	f.LineReady = true
	f.FinalLine = f.Buf.String() + "\n"
}

// --- emacs mode ---

func (f *FSM) feedEmacs(r rune) {
	switch r {
	case keyEnter, keyLF:
		f.acceptLine()
		return
	case keyCtrlB:
		f.Buf.SetCursor(f.Buf.Cursor() - 1)
	case keyCtrlF:
		f.Buf.SetCursor(f.Buf.Cursor() + 1)
	case keyCtrlA:
		f.Buf.SetCursor(0)
	case keyCtrlE:
		f.Buf.SetCursor(f.Buf.Len())
	case keyCtrlD:
		f.saveUndoIfNeeded()
		f.Buf.DeleteRange(f.Buf.Cursor(), f.Buf.Cursor()+1)
	case keyCtrlH, keyDel:
		f.saveUndoIfNeeded()
		c := f.Buf.Cursor()
		if c > 0 {
			f.Buf.DeleteRange(c-1, c)
		}
	case keyCtrlK:
		f.saveUndoIfNeeded()
		text := f.Buf.DeleteRange(f.Buf.Cursor(), f.Buf.Len())
		f.Kill.Put(text)
	case keyCtrlU:
		f.saveUndoIfNeeded()
		text := f.Buf.DeleteRange(0, f.Buf.Cursor())
		f.Kill.Put(text)
	case keyCtrlW:
		// delete-semiword: kill back to the start of the semiword.
		f.saveUndoIfNeeded()
		c := f.Buf.Cursor()
		start := semiwordBackward(f.Buf.Runes(), c)
		text := f.Buf.DeleteRange(start, c)
		f.Kill.Put(text)
	case keyCtrlY:
		f.saveUndoIfNeeded()
		f.yankAt(f.Buf.Cursor(), f.Kill.Current())
	case KeyMetaY:
		f.popKillInPlace()
	case keyCtrlUnderscore:
		// Snapshot the live state first so a redo can come back to it.
		f.saveUndoIfNeeded()
		if cur, contents, ok := f.Undo.Undo(); ok {
			f.Buf.SetContents(contents)
			f.Buf.SetCursor(cur)
		}
	case keyCtrlP:
		f.historyUp()
	case keyCtrlN:
		f.historyDown()
	case keyCtrlR:
		// The incremental-search sub-mode is shared by both keymaps.
		f.enterSearch(SearchBackward, f.Mode)
	default:
		if r >= 0x20 || r == '\t' {
			f.saveUndoIfNeeded()
			f.Buf.Insert(string(r))
		}
	}
}

// --- vi insert mode ---

func (f *FSM) feedViInsert(r rune) {
	switch r {
	case keyEnter, keyLF:
		f.acceptLine()
		return
	case keyEsc:
		f.Mode = ModeViCommand
		if f.Buf.Cursor() > 0 {
			f.Buf.SetCursor(f.Buf.Cursor() - 1)
		}
	case keyDel, keyCtrlH:
		f.saveUndoIfNeeded()
		c := f.Buf.Cursor()
		if c > 0 {
			f.Buf.DeleteRange(c-1, c)
		}
	default:
		if r >= 0x20 || r == '\t' {
			f.saveUndoIfNeeded()
			if f.overwrite {
				f.Buf.Overwrite(string(r))
			} else {
				f.Buf.Insert(string(r))
			}
		}
	}
}

func (f *FSM) historyUp() {
	var e *Entry
	if f.histEntry != nil {
		e = f.Hist.Prev(f.histEntry)
	} else {
		e = f.Hist.Newest()
	}
	if e == nil {
		return
	}
	f.histEntry = e
	f.Buf.SetContents(e.Text)
	f.Buf.SetCursor(f.Buf.Len())
}

func (f *FSM) historyDown() {
	if f.histEntry == nil {
		return
	}
	e := f.Hist.Next(f.histEntry)
	f.histEntry = e
	if e == nil {
		f.Buf.Clear()
		return
	}
	f.Buf.SetContents(e.Text)
	f.Buf.SetCursor(f.Buf.Len())
}

// --- vi command mode ---

// motionKey maps a vi command-mode key to its motion tag, for keys that
// are always motions (never commands in their own right).
var motionKey = map[rune]string{
	'l': "char-forward", ' ': "char-forward",
	'h': "char-backward",
	'w': "viword-forward",
	'b': "viword-backward",
	'e': "viword-end",
	'W': "bigword-forward",
	'B': "bigword-backward",
	'E': "bigword-end",
	'0': "bol",
	'$': "eol",
	'^': "first-non-blank",
	'|': "absolute-column",
}

func (f *FSM) feedViCommand(r rune) {
	if f.pendingDoubleOp != 0 {
		op := f.pendingDoubleOp
		f.pendingDoubleOp = 0
		if r == op {
			// dd/cc/yy: operate on the whole line.
			n := f.operatorMult
			if n < 1 {
				n = 1
			}
			start := 0
			end := f.Buf.Len()
			pending := f.pendingOperator
			f.pendingOperator = OpNone
			before := f.Buf.String()
			beforeCur := f.Buf.Cursor()
			f.saveUndoIfNeeded()
			applyOperator(f, pending, start, motionResult{pos: end, inclusive: false, ok: true})
			if pending == OpKill {
				f.recordEdit("dd", 0, n, beforeCur, before)
			}
			f.resetCount()
			return
		}
		// Not doubled: fall through and let r be interpreted as a normal
		// motion/command key with the operator still pending.
	}

	// Digits build the count prefix, except a leading 0 which is the
	// beginning-of-line motion.
	if r >= '1' && r <= '9' || (r == '0' && f.count.hasDigits) {
		if f.count.AddDigit(int(r - '0')) {
			f.Buf.SetCursor(0)
		}
		return
	}
	if r == '-' && !f.count.hasDigits {
		f.count.ToggleSign()
		return
	}

	n := f.count.Value()
	if n < 0 {
		n = -n
	}
	if n == 0 {
		n = 1
	}

	if tag, isMotion := motionKey[r]; isMotion {
		motionCount := n
		if f.pendingOperator != OpNone && f.operatorMult > 1 {
			// "3d2w" deletes six words: the operator's count and the
			// motion's own count multiply.
			motionCount = n * f.operatorMult
		}
		m := runMotion(f, tag, motionCount, 0)
		if f.pendingOperator != OpNone {
			op := f.pendingOperator
			f.pendingOperator = OpNone
			before := f.Buf.String()
			beforeCur := f.Buf.Cursor()
			f.saveUndoIfNeeded()
			applyOperator(f, op, f.operatorStart, m)
			if op == OpKill {
				f.recordEdit("op:"+tag, 0, motionCount, beforeCur, before)
			}
		} else if m.ok {
			f.Buf.SetCursor(m.pos)
		}
		f.resetCount()
		return
	}

	switch r {
	case keyEnter, keyLF:
		f.acceptLine()
	case 'i':
		f.Mode = ModeViInsert
	case 'I':
		f.Buf.SetCursor(firstNonBlank(f.Buf.Runes()))
		f.Mode = ModeViInsert
	case 'a':
		f.Buf.SetCursor(f.Buf.Cursor() + 1)
		f.Mode = ModeViInsert
	case 'A':
		f.Buf.SetCursor(f.Buf.Len())
		f.Mode = ModeViInsert
	case 'R':
		f.overwrite = true
		f.Mode = ModeViInsert
	case 'x':
		before, beforeCur := f.Buf.String(), f.Buf.Cursor()
		f.saveUndoIfNeeded()
		c := f.Buf.Cursor()
		end := c + n
		if end > f.Buf.Len() {
			end = f.Buf.Len()
		}
		text := f.Buf.DeleteRange(c, end)
		f.Kill.Put(text)
		f.recordEdit("x", 0, n, beforeCur, before)
	case 'X':
		before, beforeCur := f.Buf.String(), f.Buf.Cursor()
		f.saveUndoIfNeeded()
		c := f.Buf.Cursor()
		start := c - n
		if start < 0 {
			start = 0
		}
		text := f.Buf.DeleteRange(start, c)
		f.Kill.Put(text)
		f.recordEdit("X", 0, n, beforeCur, before)
	case 's':
		f.saveUndoIfNeeded()
		c := f.Buf.Cursor()
		end := c + n
		if end > f.Buf.Len() {
			end = f.Buf.Len()
		}
		text := f.Buf.DeleteRange(c, end)
		f.Kill.Put(text)
		f.Mode = ModeViInsert
	case 'S':
		f.saveUndoIfNeeded()
		text := f.Buf.DeleteRange(0, f.Buf.Len())
		f.Kill.Put(text)
		f.Mode = ModeViInsert
	case 'D':
		before, beforeCur := f.Buf.String(), f.Buf.Cursor()
		f.saveUndoIfNeeded()
		text := f.Buf.DeleteRange(f.Buf.Cursor(), f.Buf.Len())
		f.Kill.Put(text)
		f.recordEdit("D", 0, n, beforeCur, before)
	case 'C':
		f.saveUndoIfNeeded()
		text := f.Buf.DeleteRange(f.Buf.Cursor(), f.Buf.Len())
		f.Kill.Put(text)
		f.Mode = ModeViInsert
	case 'd', 'c', 'y':
		op := map[rune]Operator{'d': OpKill, 'c': OpChange, 'y': OpCopy}[r]
		// Doubled letter (dd/cc/yy) operates on the whole line; otherwise
		// the next key is a motion (handled at the top of this function).
		f.pendingOperator = op
		f.operatorStart = f.Buf.Cursor()
		f.operatorMult = n
		f.pendingDoubleOp = r
	case 'p':
		before, beforeCur := f.Buf.String(), f.Buf.Cursor()
		f.saveUndoIfNeeded()
		c := f.Buf.Cursor()
		if c < f.Buf.Len() {
			c++
		}
		f.yankAt(c, f.Kill.Current())
		f.recordEdit("p", 0, n, beforeCur, before)
	case 'P':
		before, beforeCur := f.Buf.String(), f.Buf.Cursor()
		f.saveUndoIfNeeded()
		f.yankAt(f.Buf.Cursor(), f.Kill.Current())
		f.recordEdit("P", 0, n, beforeCur, before)
	case 'u':
		// Snapshot the live state first so a redo can come back to it.
		f.saveUndoIfNeeded()
		if cur, contents, ok := f.Undo.Undo(); ok {
			f.Buf.SetContents(contents)
			f.Buf.SetCursor(cur)
		}
	case 'U':
		f.saveUndoIfNeeded()
		if cur, contents, ok := f.Undo.UndoAll(); ok {
			f.Buf.SetContents(contents)
			f.Buf.SetCursor(cur)
		}
	case keyCtrlG:
		if cur, contents, ok := f.Undo.CancelUndo(); ok {
			f.Buf.SetContents(contents)
			f.Buf.SetCursor(cur)
		}
	case '~':
		before, beforeCur := f.Buf.String(), f.Buf.Cursor()
		f.saveUndoIfNeeded()
		f.toggleCase(n)
		f.recordEdit("~", 0, n, beforeCur, before)
	case 'r':
		f.expectChar = true
		f.onExpectChar = func(f *FSM, rc rune) bool {
			before, beforeCur := f.Buf.String(), f.Buf.Cursor()
			f.saveUndoIfNeeded()
			c := f.Buf.Cursor()
			end := c + n
			if end > f.Buf.Len() {
				end = f.Buf.Len()
			}
			f.Buf.DeleteRange(c, end)
			f.Buf.SetCursor(c)
			for i := 0; i < n; i++ {
				f.Buf.Insert(string(rc))
			}
			f.Buf.SetCursor(c + n - 1)
			f.recordEdit("r", rc, n, beforeCur, before)
			return true
		}
		f.Mode = ModeViExpectChar
	case 'f', 'F', 't', 'T':
		forward := r == 'f' || r == 't'
		till := r == 't' || r == 'T'
		f.expectChar = true
		f.onExpectChar = func(f *FSM, rc rune) bool {
			tag := map[bool]string{true: "find-char-forward", false: "find-char-backward"}[forward]
			if till {
				tag = map[bool]string{true: "till-char-forward", false: "till-char-backward"}[forward]
			}
			m := runMotion(f, tag, n, rc)
			if !m.ok {
				return true
			}
			f.lastFindMotion = r
			f.lastFindTarget = rc
			if f.pendingOperator != OpNone {
				op := f.pendingOperator
				f.pendingOperator = OpNone
				before := f.Buf.String()
				beforeCur := f.Buf.Cursor()
				f.saveUndoIfNeeded()
				applyOperator(f, op, f.operatorStart, m)
				if op == OpKill {
					f.recordEdit("opc:"+tag, rc, n, beforeCur, before)
				}
			} else {
				f.Buf.SetCursor(m.pos)
			}
			return true
		}
		f.Mode = ModeViExpectChar
	case ';', ',':
		f.repeatFind(r == ',', n)
	case '/':
		// As in vi's file view with the newest entry at the bottom: `/`
		// searches down toward newer entries, `?` up toward older ones.
		f.enterSearch(SearchForward, ModeViCommand)
	case '?':
		f.enterSearch(SearchBackward, ModeViCommand)
	case 'n':
		f.repeatSearch(false)
	case 'N':
		f.repeatSearch(true)
	case 'k', keyCtrlP:
		f.historyUp()
	case 'j', keyCtrlN:
		f.historyDown()
	case 'v':
		if line, err := f.Editor.Edit(f.Buf.String()); err == nil {
			f.saveUndoIfNeeded()
			f.Buf.SetContents(line)
			f.acceptLine()
		}
	case '.':
		f.redoLastEdit(n, f.count.hasDigits)
	}
	f.resetCount()
}

func (f *FSM) toggleCase(n int) {
	rs := f.Buf.Runes()
	c := f.Buf.Cursor()
	for i := 0; i < n && c+i < len(rs); i++ {
		r := rs[c+i]
		switch {
		case 'a' <= r && r <= 'z':
			rs[c+i] = r - 'a' + 'A'
		case 'A' <= r && r <= 'Z':
			rs[c+i] = r - 'A' + 'a'
		}
	}
	f.Buf.SetContents(string(rs))
	end := c + n
	if end > f.Buf.Len() {
		end = f.Buf.Len()
	}
	f.Buf.SetCursor(end)
}

// yankAt inserts text at pos and records the inserted range so a
// following put-pop knows what to replace.
func (f *FSM) yankAt(pos int, text string) {
	f.Buf.SetCursor(pos)
	f.Buf.Insert(text)
	f.lastYankStart, f.lastYankEnd = pos, pos+len([]rune(text))
	f.hasLastYank = true
}

// popKillInPlace implements put-pop: cycles the kill ring backward and
// replaces the most recently yanked span with the new entry, so
// repeated invocations walk the whole ring.
func (f *FSM) popKillInPlace() {
	if !f.hasLastYank {
		return
	}
	text := f.Kill.PopPrevious()
	if text == "" {
		return
	}
	f.saveUndoIfNeeded()
	f.Buf.DeleteRange(f.lastYankStart, f.lastYankEnd)
	f.yankAt(f.lastYankStart, text)
}

func (f *FSM) repeatFind(reverse bool, n int) {
	if f.lastFindMotion == 0 {
		return
	}
	key := f.lastFindMotion
	forward := key == 'f' || key == 't'
	till := key == 't' || key == 'T'
	if reverse {
		forward = !forward
	}
	tag := map[bool]string{true: "find-char-forward", false: "find-char-backward"}[forward]
	if till {
		tag = map[bool]string{true: "till-char-forward", false: "till-char-backward"}[forward]
	}
	m := runMotion(f, tag, n, f.lastFindTarget)
	if !m.ok {
		return
	}
	if f.pendingOperator != OpNone {
		op := f.pendingOperator
		f.pendingOperator = OpNone
		f.saveUndoIfNeeded()
		applyOperator(f, op, f.operatorStart, m)
		return
	}
	f.Buf.SetCursor(m.pos)
}

func (f *FSM) repeatSearch(reverse bool) {
	e, ok := f.Search.Repeat(f.Hist, f.currentHistSeq(), reverse)
	if !ok {
		return
	}
	f.histEntry = e
	f.Buf.SetContents(e.Text)
	f.Buf.SetCursor(f.Buf.Len())
}

// --- vi expect-char sub-mode (r, f, F, t, T argument) ---

func (f *FSM) feedViExpectChar(r rune) {
	handled := false
	if f.onExpectChar != nil {
		handled = f.onExpectChar(f, r)
	}
	f.expectChar = false
	f.onExpectChar = nil
	f.Mode = ModeViCommand
	if !handled {
		return
	}
	f.resetCount()
}

// --- incremental history search sub-mode ---

// enterSearch starts an incremental search, remembering the pre-search
// line so an abort can restore it, and the mode to return to.
func (f *FSM) enterSearch(dir SearchDirection, returnMode Mode) {
	f.searchSavedText = f.Buf.String()
	f.searchSavedCursor = f.Buf.Cursor()
	f.searchSavedEntry = f.histEntry
	f.searchReturnMode = returnMode
	f.Search.Begin(dir, f.currentHistSeq())
	f.Mode = ModeViSearch
}

// abortSearch cancels the search and restores the pre-search state.
func (f *FSM) abortSearch() {
	f.Search.Abort()
	f.Buf.SetContents(f.searchSavedText)
	f.Buf.SetCursor(f.searchSavedCursor)
	f.histEntry = f.searchSavedEntry
	f.Mode = f.postSearchMode()
}

func (f *FSM) feedViSearch(r rune) {
	switch r {
	case keyEnter, keyLF:
		f.Search.Accept()
		f.Mode = f.postSearchMode()
	case keyEsc, keyCtrlG:
		f.abortSearch()
	case keyDel, keyCtrlH:
		if !f.Search.Backspace() {
			f.abortSearch()
			return
		}
		f.reSearch()
	default:
		if r >= 0x20 {
			f.Search.AddRune(r)
			f.reSearch()
			return
		}
		// Any other non-search keystroke commits the search and is
		// re-dispatched in the restored mode.
		f.Search.Accept()
		f.Mode = f.postSearchMode()
		f.Feed(r)
	}
}

// postSearchMode restores the mode the editor entered search from;
// Ctrl-R from either keymap shares this sub-mode.
func (f *FSM) postSearchMode() Mode {
	return f.searchReturnMode
}

func (f *FSM) reSearch() {
	e, ok := f.Search.Step(f.Hist)
	if !ok {
		return
	}
	f.histEntry = e
	f.Buf.SetContents(e.Text)
	f.Buf.SetCursor(f.Buf.Len())
}
