package jobs

import "testing"

func buildTable(t *testing.T) *Table {
	t.Helper()
	tb := New()
	tb.Add(100, "sleep 30", 100)        // 1
	tb.Add(200, "vim notes.txt", 200)   // 2, current
	tb.Add(300, "vim README.md", 300)   // 3, current; previous=2
	return tb
}

func TestParseJobspec_PercentForms(t *testing.T) {
	tb := buildTable(t)

	cases := []struct {
		spec string
		want int
	}{
		{"%", 3},
		{"%%", 3},
		{"%+", 3},
		{"%-", 2},
		{"%1", 1},
	}
	for _, c := range cases {
		idx, err := ParseJobspec(tb, c.spec)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.spec, err)
		}
		if idx != c.want {
			t.Fatalf("%s: want %d got %d", c.spec, c.want, idx)
		}
	}
}

func TestParseJobspec_BarePid(t *testing.T) {
	tb := buildTable(t)
	idx, err := ParseJobspec(tb, "200")
	if err != nil || idx != 2 {
		t.Fatalf("idx=%d err=%v", idx, err)
	}
}

func TestParseJobspec_NamePrefix(t *testing.T) {
	tb := buildTable(t)

	idx, err := ParseJobspec(tb, "%sleep")
	if err != nil || idx != 1 {
		t.Fatalf("idx=%d err=%v", idx, err)
	}

	_, err = ParseJobspec(tb, "%vim")
	if err != ErrAmbiguous {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}

	_, err = ParseJobspec(tb, "%nonexistent")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseJobspec_InvalidSyntax(t *testing.T) {
	tb := buildTable(t)
	if _, err := ParseJobspec(tb, ""); err != ErrInvalidSyntax {
		t.Fatalf("expected ErrInvalidSyntax, got %v", err)
	}
	if _, err := ParseJobspec(tb, "abc"); err != ErrInvalidSyntax {
		t.Fatalf("expected ErrInvalidSyntax, got %v", err)
	}
}

// TestParseJobspec_Idempotent verifies that parsing
// twice returns identical outcomes unless the table changed.
func TestParseJobspec_Idempotent(t *testing.T) {
	tb := buildTable(t)
	a, errA := ParseJobspec(tb, "%+")
	b, errB := ParseJobspec(tb, "%+")
	if a != b || errA != errB {
		t.Fatalf("expected identical outcomes, got (%d,%v) vs (%d,%v)", a, errA, b, errB)
	}
	if a != tb.Current() {
		t.Fatalf("%%+ should equal current index")
	}
}
