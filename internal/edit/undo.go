package edit

// snapshot is one (cursor, contents) pair on the undo stack.
type snapshot struct {
	cursor   int
	contents string
}

// UndoHistory holds a strictly growing prefix of edit states plus a
// cursor into it (undoIndex), and a pointer tracking which history
// entry this stack was seeded from; a mismatch forces a reset on the
// next Save.
type UndoHistory struct {
	stack      []snapshot
	undoIndex  int
	seededFrom int  // history-entry sequence number this stack belongs to
	hasSeed    bool // whether seededFrom is meaningful yet
}

// NewUndoHistory creates an empty undo history.
func NewUndoHistory() *UndoHistory {
	return &UndoHistory{}
}

// ResetFor clears the stack and seeds it with original (the pristine
// history-entry text) for historyEntry. Switching to a different
// history entry goes through here so undo never crosses entries.
func (u *UndoHistory) ResetFor(historyEntry int, original string, cursor int) {
	u.stack = []snapshot{{cursor: cursor, contents: original}}
	u.undoIndex = 0
	u.seededFrom = historyEntry
	u.hasSeed = true
}

// NeedsReset reports whether the stack was never seeded, or was seeded
// from a different history entry than historyEntry.
func (u *UndoHistory) NeedsReset(historyEntry int) bool {
	return !u.hasSeed || u.seededFrom != historyEntry
}

// Save appends a new snapshot, truncating any redo-able entries above
// the current undoIndex first: a new edit after an undo discards the
// undone future.
func (u *UndoHistory) Save(cursor int, contents string) {
	if len(u.stack) > 0 {
		top := u.stack[u.undoIndex]
		if top.cursor == cursor && top.contents == contents {
			return // nothing changed since the last save
		}
	}
	u.stack = append(u.stack[:u.undoIndex+1:u.undoIndex+1], snapshot{cursor: cursor, contents: contents})
	u.undoIndex = len(u.stack) - 1
}

// Undo moves one step back and returns the snapshot there, or ok=false
// if already at the oldest state.
func (u *UndoHistory) Undo() (cursor int, contents string, ok bool) {
	if u.undoIndex <= 0 {
		return 0, "", false
	}
	u.undoIndex--
	s := u.stack[u.undoIndex]
	return s.cursor, s.contents, true
}

// UndoAll rewinds all the way to the oldest snapshot.
func (u *UndoHistory) UndoAll() (cursor int, contents string, ok bool) {
	if len(u.stack) == 0 {
		return 0, "", false
	}
	u.undoIndex = 0
	s := u.stack[0]
	return s.cursor, s.contents, true
}

// Redo moves one step forward and returns the snapshot there, or
// ok=false if already at the newest state.
func (u *UndoHistory) Redo() (cursor int, contents string, ok bool) {
	if u.undoIndex >= len(u.stack)-1 {
		return 0, "", false
	}
	u.undoIndex++
	s := u.stack[u.undoIndex]
	return s.cursor, s.contents, true
}

// CancelUndo reverts a just-performed Undo, moving forward one step
// without treating it as a fresh edit (vi's C-g / cancel-undo binding).
// It behaves like Redo but callers use it specifically to undo an
// accidental undo keypress.
func (u *UndoHistory) CancelUndo() (cursor int, contents string, ok bool) {
	return u.Redo()
}

// Depth returns how many snapshots are on the stack, for tests.
func (u *UndoHistory) Depth() int { return len(u.stack) }
