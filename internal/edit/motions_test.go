package edit

import "testing"

func TestBigwordForward_SkipsBlanksAndWords(t *testing.T) {
	rs := []rune("foo  bar baz")
	if got := bigwordForward(rs, 0, 1); got != 5 {
		t.Fatalf("got %d", got)
	}
	if got := bigwordForward(rs, 0, 2); got != 9 {
		t.Fatalf("got %d", got)
	}
}

func TestViwordForward_StopsAtClassBoundary(t *testing.T) {
	rs := []rune("foo.bar baz")
	// "foo" (word) then "." (other) are distinct viwords.
	if got := viwordForward(rs, 0, 1); got != 3 {
		t.Fatalf("got %d", got)
	}
	if got := viwordForward(rs, 3, 1); got != 4 {
		t.Fatalf("got %d", got)
	}
}

func TestSemiwordBackward_SkipsPunctuationAndBlanks(t *testing.T) {
	rs := []rune("git commit -m, foo")
	// From the end: skip "foo" back to its start.
	if got := semiwordBackward(rs, len(rs)); got != 15 {
		t.Fatalf("got %d", got)
	}
	// From just after "-m,": the comma is skipped as punctuation and
	// the semiword is the bare "m" between the punctuation marks.
	if got := semiwordBackward(rs, 14); got != 12 {
		t.Fatalf("got %d", got)
	}
}

func TestFindChar_ForwardAndBackward(t *testing.T) {
	rs := []rune("a,b,c,d")
	idx, ok := findChar(rs, 0, ',', true, 2)
	if !ok || idx != 3 {
		t.Fatalf("got %d %v", idx, ok)
	}
	idx, ok = findChar(rs, len(rs)-1, ',', false, 1)
	if !ok || idx != 5 {
		t.Fatalf("got %d %v", idx, ok)
	}
}

func TestFindChar_NotFound(t *testing.T) {
	rs := []rune("abc")
	if _, ok := findChar(rs, 0, 'z', true, 1); ok {
		t.Fatal("expected not found")
	}
}

func TestTillChar_StopsOneShort(t *testing.T) {
	rs := []rune("a,b,c")
	idx, ok := tillChar(rs, 0, ',', true, 1)
	if !ok || idx != 0 {
		t.Fatalf("got %d %v", idx, ok)
	}
}
