package jobs

import (
	"strconv"
	"strings"
)

// ParseError classifies why a jobspec failed to resolve.
type ParseError int

const (
	ErrNone ParseError = iota
	ErrInvalidSyntax
	ErrNotFound
	ErrAmbiguous
)

func (e ParseError) Error() string {
	switch e {
	case ErrInvalidSyntax:
		return "invalid job spec"
	case ErrNotFound:
		return "no such job"
	case ErrAmbiguous:
		return "ambiguous job spec"
	default:
		return "no error"
	}
}

// ParseJobspec resolves s to a job index against table.
//
//	%            current job, or ErrNotFound
//	%+  %%       current job
//	%-           previous job
//	%N           index N
//	%name…       prefix match against job names (0/1/2+ candidates)
//	<digits>     bare pid, resolved via GetByPid
func ParseJobspec(table *Table, s string) (int, error) {
	if s == "" {
		return 0, ErrInvalidSyntax
	}
	if !strings.HasPrefix(s, "%") {
		pid, err := strconv.Atoi(s)
		if err != nil {
			return 0, ErrInvalidSyntax
		}
		idx, ok := table.GetByPid(pid)
		if !ok {
			return 0, ErrNotFound
		}
		return idx, nil
	}

	rest := s[1:]
	switch rest {
	case "", "+", "%":
		idx := table.Current()
		if idx == 0 {
			return 0, ErrNotFound
		}
		return idx, nil
	case "-":
		idx := table.Previous()
		if idx == 0 {
			return 0, ErrNotFound
		}
		return idx, nil
	}

	if n, err := strconv.Atoi(rest); err == nil {
		if _, ok := table.Get(n); !ok {
			return 0, ErrNotFound
		}
		return n, nil
	}

	// %name… prefix match.
	var matches []int
	for _, idx := range table.Indices() {
		j, _ := table.Get(idx)
		if strings.HasPrefix(j.Name, rest) {
			matches = append(matches, idx)
		}
	}
	switch len(matches) {
	case 0:
		return 0, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return 0, ErrAmbiguous
	}
}
