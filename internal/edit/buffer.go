// Package edit implements the modal vi/emacs line editor: the mutable
// edit buffer, undo history, kill ring, the command dispatch FSM, and
// incremental history search.
package edit

import (
	"github.com/mattn/go-runewidth"
)

// Buffer is a mutable wide-character sequence with a cursor index c
// such that 0 <= c <= len(runes). No NUL is ever inserted.
type Buffer struct {
	runes  []rune
	cursor int
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Len returns the number of runes in the buffer.
func (b *Buffer) Len() int { return len(b.runes) }

// Cursor returns the current cursor index.
func (b *Buffer) Cursor() int { return b.cursor }

// String renders the buffer contents.
func (b *Buffer) String() string { return string(b.runes) }

// Runes returns a copy of the buffer contents.
func (b *Buffer) Runes() []rune {
	out := make([]rune, len(b.runes))
	copy(out, b.runes)
	return out
}

// SetCursor clamps c to [0, len] and sets the cursor.
func (b *Buffer) SetCursor(c int) {
	if c < 0 {
		c = 0
	}
	if c > len(b.runes) {
		c = len(b.runes)
	}
	b.cursor = c
}

// SetContents replaces the buffer with s, clamping the cursor in place.
// NUL bytes are stripped to preserve the no-NUL invariant.
func (b *Buffer) SetContents(s string) {
	b.runes = stripNUL([]rune(s))
	b.SetCursor(b.cursor)
}

func stripNUL(rs []rune) []rune {
	out := rs[:0:0]
	for _, r := range rs {
		if r != 0 {
			out = append(out, r)
		}
	}
	return out
}

// Insert inserts s at the cursor and advances the cursor past it.
func (b *Buffer) Insert(s string) {
	rs := stripNUL([]rune(s))
	if len(rs) == 0 {
		return
	}
	b.runes = append(b.runes[:b.cursor:b.cursor], append(rs, b.runes[b.cursor:]...)...)
	b.cursor += len(rs)
}

// Overwrite replaces runes starting at the cursor with s (vi's
// overwrite/replace mode), extending the buffer if s runs past the end,
// then advances the cursor past the replaced span.
func (b *Buffer) Overwrite(s string) {
	rs := stripNUL([]rune(s))
	for _, r := range rs {
		if b.cursor < len(b.runes) {
			b.runes[b.cursor] = r
		} else {
			b.runes = append(b.runes, r)
		}
		b.cursor++
	}
}

// DeleteRange removes runes in [from, to) and places the cursor at from.
// Indices are clamped into range; from > to is a no-op.
func (b *Buffer) DeleteRange(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(b.runes) {
		to = len(b.runes)
	}
	if from >= to {
		return ""
	}
	removed := string(b.runes[from:to])
	b.runes = append(b.runes[:from:from], b.runes[to:]...)
	b.SetCursor(from)
	return removed
}

// Clear empties the buffer and resets the cursor to 0.
func (b *Buffer) Clear() {
	b.runes = nil
	b.cursor = 0
}

// RuneAt returns the rune at i, or 0 and false if out of range.
func (b *Buffer) RuneAt(i int) (rune, bool) {
	if i < 0 || i >= len(b.runes) {
		return 0, false
	}
	return b.runes[i], true
}

// ColumnWidth returns the terminal column width of the buffer contents
// up to (not including) index i, so CJK and other wide runes advance
// the cursor by their true display width during redraw.
func (b *Buffer) ColumnWidth(i int) int {
	if i > len(b.runes) {
		i = len(b.runes)
	}
	w := 0
	for _, r := range b.runes[:i] {
		w += runewidth.RuneWidth(r)
	}
	return w
}
