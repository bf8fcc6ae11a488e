package edit

import "testing"

func TestHistorySearch_LiteralSubstringBackward(t *testing.T) {
	h := NewHistory()
	h.Add("ls -la")
	h.Add("git commit -m foo")
	h.Add("echo hello")

	s := NewHistorySearch()
	s.Begin(SearchBackward, -1)
	s.AddRune('c')
	s.AddRune('o')
	s.AddRune('m')
	e, ok := s.Step(h)
	if !ok {
		t.Fatal("expected a match")
	}
	if e.Text != "git commit -m foo" {
		t.Fatalf("got %q", e.Text)
	}
}

func TestHistorySearch_AnchorRestrictsToPrefix(t *testing.T) {
	h := NewHistory()
	h.Add("echo hi")
	h.Add("  echo hi")

	s := NewHistorySearch()
	s.Begin(SearchBackward, -1)
	s.AddRune('^')
	s.AddRune('e')
	s.AddRune('c')
	e, ok := s.Step(h)
	if !ok {
		t.Fatal("expected a match")
	}
	if e.Text != "echo hi" {
		t.Fatalf("anchored search should skip the indented entry, got %q", e.Text)
	}
}

func TestHistorySearch_GlobMetaPattern(t *testing.T) {
	h := NewHistory()
	h.Add("foobar")
	h.Add("foo123bar")

	s := NewHistorySearch()
	s.Begin(SearchBackward, -1)
	for _, r := range "foo*bar" {
		s.AddRune(r)
	}
	e, ok := s.Step(h)
	if !ok {
		t.Fatal("expected a glob match")
	}
	if e.Text != "foo123bar" {
		t.Fatalf("got %q", e.Text)
	}
}

func TestHistorySearch_RepeatWalksFurther(t *testing.T) {
	h := NewHistory()
	h.Add("make build")
	h.Add("make test")

	s := NewHistorySearch()
	s.Begin(SearchBackward, -1)
	s.AddRune('m')
	s.AddRune('a')
	s.AddRune('k')
	s.AddRune('e')
	e, ok := s.Step(h)
	if !ok || e.Text != "make test" {
		t.Fatalf("got %v %q", ok, e.Text)
	}
	s.Accept()

	e2, ok := s.Repeat(h, e.Seq, false)
	if !ok || e2.Text != "make build" {
		t.Fatalf("repeat should walk to the next older match, got %v %q", ok, e2.Text)
	}
}

func TestHistorySearch_BackspaceRemovesAnchorLast(t *testing.T) {
	s := NewHistorySearch()
	s.Begin(SearchBackward, -1)
	s.AddRune('^')
	s.AddRune('a')
	if !s.Backspace() {
		t.Fatal("expected backspace to remove the pattern rune")
	}
	if s.Pattern() != "^" {
		t.Fatalf("got %q", s.Pattern())
	}
	if !s.Backspace() {
		t.Fatal("expected backspace to remove the anchor")
	}
	if s.Pattern() != "" {
		t.Fatalf("got %q", s.Pattern())
	}
	if s.Backspace() {
		t.Fatal("expected false once nothing left to remove")
	}
}
