// Package complete implements the shell's completion engine: classifying
// where the cursor sits in the command line, selecting and merging
// candidate generators, and rendering a sorted, quoted candidate list.
package complete

import "strings"

// ContextKind is the cursor-position classification that selects a
// generator set.
type ContextKind int

const (
	ContextCommand ContextKind = iota
	ContextArgument
	ContextRedirection
	ContextRedirectionFD
	ContextTilde
	ContextVariable
	ContextArithmetic
	ContextAssignment
	ContextForIn
	ContextForDo
	ContextCaseIn
	ContextFunction
)

func (k ContextKind) String() string {
	switch k {
	case ContextCommand:
		return "command"
	case ContextArgument:
		return "argument"
	case ContextRedirection:
		return "redirection"
	case ContextRedirectionFD:
		return "redirection-fd"
	case ContextTilde:
		return "tilde"
	case ContextVariable:
		return "variable"
	case ContextArithmetic:
		return "arithmetic"
	case ContextAssignment:
		return "assignment"
	case ContextForIn:
		return "for-in"
	case ContextForDo:
		return "for-do"
	case ContextCaseIn:
		return "case-in"
	case ContextFunction:
		return "function"
	default:
		return "unknown"
	}
}

// QuoteState is the quoting the cursor currently sits inside; it
// decides how inserted text is escaped.
type QuoteState int

const (
	QuoteNormal QuoteState = iota
	QuoteSingle
	QuoteDouble
)

// Context is what the buffer prefix classifies to: the kind of
// completion needed, the partial word being completed, the preceding
// words (WORDS), and the quote state the cursor is inside.
type Context struct {
	Kind       ContextKind
	Word       string
	Words      []string // preceding words, exposed to completion functions as WORDS
	TargetWord string   // the source word, exposed as TARGETWORD
	Quote      QuoteState
}

// splitWords splits a command line on unquoted whitespace. It is a
// simplified tokenizer: the full word-splitting/quoting state machine
// belongs to the out-of-scope parser (internal/wcs); this only needs
// enough to find word boundaries for completion classification.
func splitWords(line string) []string {
	var out []string
	var cur strings.Builder
	inSingle, inDouble := false, false
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			cur.WriteRune(r)
		case r == '"' && !inSingle:
			inDouble = !inDouble
			cur.WriteRune(r)
		case r == ' ' && !inSingle && !inDouble:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// quoteStateAt reports which quote state the cursor sits inside, by
// scanning the prefix for an odd count of unescaped quote characters.
func quoteStateAt(prefix string) QuoteState {
	state := QuoteNormal
	rs := []rune(prefix)
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '\'':
			if state == QuoteNormal {
				state = QuoteSingle
			} else if state == QuoteSingle {
				state = QuoteNormal
			}
		case '"':
			if state == QuoteNormal {
				state = QuoteDouble
			} else if state == QuoteDouble {
				state = QuoteNormal
			}
		case '\\':
			i++ // skip the escaped rune
		}
	}
	return state
}

// Classify builds a Context from the buffer contents and cursor
// position: the word shapes ($var, $((, ~user, redirection operators),
// the keyword slots of for/case/function headers, the
// command-vs-argument split, and ContextArgument otherwise.
func Classify(line string, cursor int) Context {
	if cursor > len(line) {
		cursor = len(line)
	}
	prefix := line[:cursor]
	ws := splitWords(prefix)

	quote := quoteStateAt(prefix)

	trimmed := strings.TrimRight(prefix, " ")
	var current string
	if len(trimmed) < len(prefix) {
		current = "" // cursor is past a trailing space: completing a fresh word
	} else if len(ws) > 0 {
		current = ws[len(ws)-1]
		ws = ws[:len(ws)-1]
	}

	switch {
	case strings.HasPrefix(current, "~"):
		return Context{Kind: ContextTilde, Word: current, Words: ws, TargetWord: current, Quote: quote}
	case strings.HasPrefix(current, "$(("):
		return Context{Kind: ContextArithmetic, Word: strings.TrimPrefix(current, "$(("), Words: ws, TargetWord: current, Quote: quote}
	case strings.HasPrefix(current, "$"):
		return Context{Kind: ContextVariable, Word: strings.TrimPrefix(current, "$"), Words: ws, TargetWord: current, Quote: quote}
	case strings.ContainsAny(current, "<>") || isRedirectionFD(current):
		kind := ContextRedirection
		if isRedirectionFD(current) {
			kind = ContextRedirectionFD
		}
		return Context{Kind: kind, Word: current, Words: ws, TargetWord: current, Quote: quote}
	case strings.Contains(current, "=") && len(ws) == 0:
		return Context{Kind: ContextAssignment, Word: current, Words: ws, TargetWord: current, Quote: quote}
	case len(ws) > 0 && ws[len(ws)-1] == "function":
		return Context{Kind: ContextFunction, Word: current, Words: ws, TargetWord: current, Quote: quote}
	case len(ws) > 0 && ws[0] == "for" && !containsWord(ws[1:], "in"):
		// `for x ` completes the `in` keyword slot (or the loop variable
		// itself, same vocabulary).
		return Context{Kind: ContextForIn, Word: current, Words: ws, TargetWord: current, Quote: quote}
	case len(ws) > 0 && ws[0] == "for":
		// Past `in`, the open slot is the `do` keyword (word lists end
		// only when it appears).
		return Context{Kind: ContextForDo, Word: current, Words: ws, TargetWord: current, Quote: quote}
	case len(ws) >= 2 && ws[0] == "case" && !containsWord(ws, "in"):
		return Context{Kind: ContextCaseIn, Word: current, Words: ws, TargetWord: current, Quote: quote}
	case len(ws) == 0:
		return Context{Kind: ContextCommand, Word: current, Words: ws, TargetWord: current, Quote: quote}
	default:
		return Context{Kind: ContextArgument, Word: current, Words: ws, TargetWord: current, Quote: quote}
	}
}

// containsWord reports whether ws contains exactly w.
func containsWord(ws []string, w string) bool {
	for _, s := range ws {
		if s == w {
			return true
		}
	}
	return false
}

// isRedirectionFD reports whether s looks like a "N>" / "N<" fd prefix.
func isRedirectionFD(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i < len(s) && (s[i] == '>' || s[i] == '<')
}
