package complete

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
)

// Candidate is one completion result: the text inserted into the
// buffer, the value sorted/deduplicated on (origin, usually equal to
// Insert), and an optional human-readable description (`complete -D`).
type Candidate struct {
	Insert      string
	Origin      string
	Description string
	NoTerminate bool // `-T`: do not append a terminator after insertion
}

// Generator produces candidates for a Context. Each generator filters
// by ctx.Word itself; Engine.Complete applies only the accept/reject
// filters on top.
type Generator func(ctx Context) []Candidate

// hasWordPrefix reports whether candidate text starts with prefix: a
// byte-prefix test, followed by a walk over the candidate's uax29 word
// segments.
func hasWordPrefix(candidate, prefix string) bool {
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(candidate, prefix) {
		return false
	}
	// Confirm the match doesn't split a word boundary uax29 would treat
	// as a single unit (defensive for combining-mark prefixes).
	seg := words.FromString(candidate)
	consumed := 0
	for seg.Next() {
		consumed += len(seg.Value())
		if consumed >= len(prefix) {
			return true
		}
	}
	return consumed >= len(prefix)
}

// FileGenerator completes path names from the word's directory prefix.
func FileGenerator(ctx Context) []Candidate {
	dir := "."
	base := ctx.Word
	if idx := strings.LastIndexByte(ctx.Word, '/'); idx >= 0 {
		dir = ctx.Word[:idx+1]
		base = ctx.Word[idx+1:]
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []Candidate
	for _, e := range entries {
		name := e.Name()
		if !hasWordPrefix(name, base) {
			continue
		}
		full := name
		if dir != "." {
			full = dir + name
		}
		if e.IsDir() {
			full += "/"
		}
		out = append(out, Candidate{Insert: full, Origin: full})
	}
	return out
}

// ExternalGenerator walks PATH directories for executables matching the
// prefix.
func ExternalGenerator(ctx Context) []Candidate {
	var out []Candidate
	seen := map[string]bool{}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if seen[name] || !hasWordPrefix(name, ctx.Word) {
				continue
			}
			info, err := e.Info()
			if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
				continue
			}
			seen[name] = true
			out = append(out, Candidate{Insert: name, Origin: name})
		}
	}
	return out
}

// StaticGenerator builds a Generator from a fixed candidate vocabulary
// (used for builtin/keyword/alias/variable/job/signal/user/group/host/
// binding name completion, all of which enumerate a known, in-memory
// list rather than touching the filesystem or PATH).
func StaticGenerator(names []string) Generator {
	return func(ctx Context) []Candidate {
		var out []Candidate
		for _, n := range names {
			if hasWordPrefix(n, ctx.Word) {
				out = append(out, Candidate{Insert: n, Origin: n})
			}
		}
		return out
	}
}

// isOptionLike reports whether s begins with `-`.
func isOptionLike(s string) bool { return strings.HasPrefix(s, "-") }

// SortDedup orders candidates case-sensitively by byte order (no locale
// collation is applied), except `-`-prefixed candidates are grouped
// together and compared case-insensitively with their leading hyphens
// set aside, so short options sort before long options of the same
// name (e.g. "-v" before "--verbose").
// Adjacent equal entries (by Origin) are then deduplicated.
func SortDedup(cands []Candidate) []Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i].Origin, cands[j].Origin
		ao, bo := isOptionLike(a), isOptionLike(b)
		if ao != bo {
			return ao // options sort before non-options as a group
		}
		if ao && bo {
			al, bl := strings.ToLower(strings.TrimLeft(a, "-")), strings.ToLower(strings.TrimLeft(b, "-"))
			if al != bl {
				return al < bl
			}
			return len(a) < len(b) // shorter (short option) first
		}
		return a < b
	})

	out := cands[:0:0]
	for i, c := range cands {
		if i > 0 && c.Origin == cands[i-1].Origin {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CommonPrefix returns the longest string shared by every candidate's
// Origin. It returns "" for an empty slice.
func CommonPrefix(cands []Candidate) string {
	if len(cands) == 0 {
		return ""
	}
	prefix := cands[0].Origin
	for _, c := range cands[1:] {
		prefix = commonPrefixOf(prefix, c.Origin)
		if prefix == "" {
			break
		}
	}
	return prefix
}

func commonPrefixOf(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
