package edit

import "unicode"

// wordClass classifies runes for vi's word motions.
type wordClass int

const (
	classBlank wordClass = iota
	classWord            // [A-Za-z0-9_]
	classOther            // other non-blank, non-underscore
)

func classify(r rune) wordClass {
	switch {
	case unicode.IsSpace(r):
		return classBlank
	case r == '_' || 'A' <= r && r <= 'Z' || 'a' <= r && r <= 'z' || '0' <= r && r <= '9':
		return classWord
	default:
		return classOther
	}
}

func isBlank(r rune) bool { return unicode.IsSpace(r) }

// bigwordForward returns the index just past the current bigword (a
// maximal run of non-blanks), skipping count-1 further bigwords.
func bigwordForward(rs []rune, pos, count int) int {
	for ; count > 0; count-- {
		n := len(rs)
		for pos < n && !isBlank(rs[pos]) {
			pos++
		}
		for pos < n && isBlank(rs[pos]) {
			pos++
		}
	}
	return pos
}

// bigwordBackward mirrors bigwordForward in reverse.
func bigwordBackward(rs []rune, pos, count int) int {
	for ; count > 0; count-- {
		for pos > 0 && isBlank(rs[pos-1]) {
			pos--
		}
		for pos > 0 && !isBlank(rs[pos-1]) {
			pos--
		}
	}
	return pos
}

// bigwordEnd returns the index of the last character of the current or
// next bigword (inclusive motion).
func bigwordEnd(rs []rune, pos, count int) int {
	n := len(rs)
	for ; count > 0; count-- {
		if pos < n {
			pos++
		}
		for pos < n && isBlank(rs[pos]) {
			pos++
		}
		for pos < n-1 && !isBlank(rs[pos+1]) {
			pos++
		}
	}
	if pos >= n {
		pos = n - 1
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// viwordForward returns the index just past the current viword: a
// maximal run of classWord, or a maximal run of classOther, skipping
// intervening blanks.
func viwordForward(rs []rune, pos, count int) int {
	n := len(rs)
	for ; count > 0; count-- {
		if pos < n {
			cls := classify(rs[pos])
			for pos < n && classify(rs[pos]) == cls && cls != classBlank {
				pos++
			}
		}
		for pos < n && isBlank(rs[pos]) {
			pos++
		}
	}
	return pos
}

func viwordBackward(rs []rune, pos, count int) int {
	for ; count > 0; count-- {
		for pos > 0 && isBlank(rs[pos-1]) {
			pos--
		}
		if pos > 0 {
			cls := classify(rs[pos-1])
			for pos > 0 && classify(rs[pos-1]) == cls {
				pos--
			}
		}
	}
	return pos
}

func viwordEnd(rs []rune, pos, count int) int {
	n := len(rs)
	for ; count > 0; count-- {
		if pos < n {
			pos++
		}
		for pos < n && isBlank(rs[pos]) {
			pos++
		}
		if pos < n {
			cls := classify(rs[pos])
			for pos < n-1 && classify(rs[pos+1]) == cls {
				pos++
			}
		}
	}
	if pos >= n {
		pos = n - 1
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// A semiword is a maximal run of characters that are neither blank nor
// punctuation.
func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func semiwordBackward(rs []rune, pos int) int {
	for pos > 0 && (isBlank(rs[pos-1]) || isPunct(rs[pos-1])) {
		pos--
	}
	for pos > 0 && !isBlank(rs[pos-1]) && !isPunct(rs[pos-1]) {
		pos--
	}
	return pos
}

// firstNonBlank returns the index of the first non-blank rune, or 0 if
// the buffer is empty.
func firstNonBlank(rs []rune) int {
	for i, r := range rs {
		if !isBlank(r) {
			return i
		}
	}
	return 0
}

// findChar returns the index of the count'th occurrence of target at or
// after (forward) / before (backward) pos, excluding pos itself. ok is
// false if not found.
func findChar(rs []rune, pos int, target rune, forward bool, count int) (int, bool) {
	if forward {
		i := pos
		for ; count > 0; count-- {
			found := false
			for i = i + 1; i < len(rs); i++ {
				if rs[i] == target {
					found = true
					break
				}
			}
			if !found {
				return 0, false
			}
		}
		return i, true
	}
	i := pos
	for ; count > 0; count-- {
		found := false
		for i = i - 1; i >= 0; i-- {
			if rs[i] == target {
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return i, true
}

// tillChar is findChar offset by one position short of the match, vi's
// `t`/`T`.
func tillChar(rs []rune, pos int, target rune, forward bool, count int) (int, bool) {
	if forward {
		// Forward till repeatedly needs to look one further each time to
		// avoid getting stuck re-matching the same adjacent target.
		search := pos
		for ; count > 0; count-- {
			idx, ok := findChar(rs, search, target, true, 1)
			if !ok {
				return 0, false
			}
			search = idx
		}
		return search - 1, true
	}
	search := pos
	for ; count > 0; count-- {
		idx, ok := findChar(rs, search, target, false, 1)
		if !ok {
			return 0, false
		}
		search = idx
	}
	return search + 1, true
}

// motionResult is what a motion produces: the new cursor position and
// whether the motion is inclusive (extends the operated range by one).
type motionResult struct {
	pos       int
	inclusive bool
	ok        bool
}

// runMotion dispatches a motion tag against the buffer's current state.
// argChar is the target character for find/till motions.
func runMotion(f *FSM, tag string, count int, argChar rune) motionResult {
	rs := f.Buf.Runes()
	pos := f.Buf.Cursor()

	switch tag {
	case "char-forward":
		np := pos + count
		if np > len(rs) {
			np = len(rs)
		}
		return motionResult{np, false, true}
	case "char-backward":
		np := pos - count
		if np < 0 {
			np = 0
		}
		return motionResult{np, false, true}
	case "bigword-forward":
		return motionResult{bigwordForward(rs, pos, count), false, true}
	case "bigword-backward":
		return motionResult{bigwordBackward(rs, pos, count), false, true}
	case "bigword-end":
		return motionResult{bigwordEnd(rs, pos, count), true, true}
	case "viword-forward":
		return motionResult{viwordForward(rs, pos, count), false, true}
	case "viword-backward":
		return motionResult{viwordBackward(rs, pos, count), false, true}
	case "viword-end":
		return motionResult{viwordEnd(rs, pos, count), true, true}
	case "bol":
		return motionResult{0, false, true}
	case "eol":
		return motionResult{len(rs), false, true}
	case "first-non-blank":
		return motionResult{firstNonBlank(rs), false, true}
	case "absolute-column":
		np := count - 1
		if np < 0 {
			np = 0
		}
		if np > len(rs) {
			np = len(rs)
		}
		return motionResult{np, false, true}
	case "find-char-forward":
		np, ok := findChar(rs, pos, argChar, true, count)
		return motionResult{np, true, ok}
	case "find-char-backward":
		np, ok := findChar(rs, pos, argChar, false, count)
		return motionResult{np, false, ok}
	case "till-char-forward":
		np, ok := tillChar(rs, pos, argChar, true, count)
		return motionResult{np, true, ok}
	case "till-char-backward":
		np, ok := tillChar(rs, pos, argChar, false, count)
		return motionResult{np, false, ok}
	default:
		return motionResult{pos, false, false}
	}
}

// applyOperator applies op over the half-open range between the
// operator's start position and a motion's end position, extended by
// one for inclusive motions. Returns the killed or copied text.
func applyOperator(f *FSM, op Operator, start int, m motionResult) string {
	if !m.ok {
		return ""
	}
	lo, hi := start, m.pos
	if lo > hi {
		lo, hi = hi, lo
	}
	if m.inclusive && hi < f.Buf.Len() {
		hi++
	}

	switch op {
	case OpCopy:
		text := string(f.Buf.Runes()[lo:hi])
		f.Kill.Put(text)
		f.Buf.SetCursor(lo)
		return text
	case OpKill:
		text := f.Buf.DeleteRange(lo, hi)
		f.Kill.Put(text)
		return text
	case OpChange, OpCopyChange:
		text := f.Buf.DeleteRange(lo, hi)
		f.Kill.Put(text)
		if f.Mode == ModeViCommand || f.Mode == ModeViExpectChar {
			f.Mode = ModeViInsert
		}
		return text
	}
	return ""
}
