package complete

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassify_CommandVsArgument(t *testing.T) {
	ctx := Classify("ec", 2)
	if ctx.Kind != ContextCommand {
		t.Fatalf("got %v", ctx.Kind)
	}
	ctx = Classify("echo fo", 7)
	if ctx.Kind != ContextArgument || ctx.Word != "fo" {
		t.Fatalf("got %v %q", ctx.Kind, ctx.Word)
	}
}

func TestClassify_VariableAndTilde(t *testing.T) {
	if ctx := Classify("echo $HO", 8); ctx.Kind != ContextVariable || ctx.Word != "HO" {
		t.Fatalf("got %v %q", ctx.Kind, ctx.Word)
	}
	if ctx := Classify("cd ~us", 6); ctx.Kind != ContextTilde {
		t.Fatalf("got %v", ctx.Kind)
	}
}

func TestClassify_KeywordSlots(t *testing.T) {
	cases := []struct {
		line string
		want ContextKind
	}{
		{"for x i", ContextForIn},
		{"for x in a b ", ContextForDo},
		{"case $x ", ContextCaseIn},
		{"function cle", ContextFunction},
	}
	for _, c := range cases {
		if ctx := Classify(c.line, len(c.line)); ctx.Kind != c.want {
			t.Fatalf("%q: got %v, want %v", c.line, ctx.Kind, c.want)
		}
	}
	// Past `in`, a case body completes patterns as ordinary arguments.
	if ctx := Classify("case $x in ab", 13); ctx.Kind != ContextArgument {
		t.Fatalf("got %v", ctx.Kind)
	}
}

func TestClassify_Arithmetic(t *testing.T) {
	ctx := Classify("echo $((co", 10)
	if ctx.Kind != ContextArithmetic || ctx.Word != "co" {
		t.Fatalf("got %v %q", ctx.Kind, ctx.Word)
	}
}

func TestGeneratorsFor_KeywordSlotsOfferKeywords(t *testing.T) {
	reg := NewRegistry()
	reg.Keywords = []string{"do", "done", "in"}
	e := NewEngine(reg)

	res := e.Complete("for x i", 7, "", Options{})
	if len(res.Candidates) != 1 || res.Candidates[0].Origin != "in" {
		t.Fatalf("expected the in keyword, got %+v", res.Candidates)
	}

	res = e.Complete("for x in a b d", 14, "", Options{})
	names := map[string]bool{}
	for _, c := range res.Candidates {
		names[c.Origin] = true
	}
	if !names["do"] || !names["done"] {
		t.Fatalf("expected do/done keywords, got %+v", res.Candidates)
	}
}

func TestGeneratorsFor_ArithmeticOffersVariables(t *testing.T) {
	reg := NewRegistry()
	reg.Variables = []string{"count", "color"}
	e := NewEngine(reg)

	res := e.Complete("echo $((co", 10, "echo", Options{})
	if len(res.Candidates) != 2 {
		t.Fatalf("expected both co-prefixed variables, got %+v", res.Candidates)
	}
}

func TestQuoteStateAt_TracksOpenQuotes(t *testing.T) {
	if got := quoteStateAt(`echo "foo`); got != QuoteDouble {
		t.Fatalf("got %v", got)
	}
	if got := quoteStateAt(`echo 'foo`); got != QuoteSingle {
		t.Fatalf("got %v", got)
	}
	if got := quoteStateAt(`echo foo`); got != QuoteNormal {
		t.Fatalf("got %v", got)
	}
}

func TestSortDedup_OptionsBeforeNonOptionsAndShortBeforeLong(t *testing.T) {
	in := []Candidate{
		{Insert: "zeta", Origin: "zeta"},
		{Insert: "--verbose", Origin: "--verbose"},
		{Insert: "-v", Origin: "-v"},
		{Insert: "alpha", Origin: "alpha"},
	}
	out := SortDedup(in)
	want := []string{"-v", "--verbose", "alpha", "zeta"}
	if len(out) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(out), len(want))
	}
	for i, w := range want {
		if out[i].Origin != w {
			t.Fatalf("at %d: got %q, want %q", i, out[i].Origin, w)
		}
	}
}

func TestSortDedup_DeduplicatesAdjacentEqual(t *testing.T) {
	in := []Candidate{{Origin: "a"}, {Origin: "a"}, {Origin: "b"}}
	out := SortDedup(in)
	if len(out) != 2 {
		t.Fatalf("got %d", len(out))
	}
}

func TestCommonPrefix_AcrossCandidates(t *testing.T) {
	cands := []Candidate{{Origin: "foobar"}, {Origin: "foobaz"}, {Origin: "foo"}}
	if got := CommonPrefix(cands); got != "foo" {
		t.Fatalf("got %q", got)
	}
}

func TestQuote_SingleDoubleNormal(t *testing.T) {
	if got := Quote("it's", QuoteSingle); got != `it'\''s` {
		t.Fatalf("got %q", got)
	}
	if got := Quote(`a"b`, QuoteDouble); got != `a\"b` {
		t.Fatalf("got %q", got)
	}
	if got := Quote("a b", QuoteNormal); got != `a\ b` {
		t.Fatalf("got %q", got)
	}
}

func TestEngine_MergesAllGeneratorsBeforeSorting(t *testing.T) {
	reg := NewRegistry()
	reg.Builtins = []string{"cd", "cat-helper"}
	reg.Keywords = []string{"case"}
	reg.Functions = []string{"cleanup"}
	e := NewEngine(reg)

	res := e.Complete("c", 1, "", Options{})
	if len(res.Candidates) == 0 {
		t.Fatal("expected candidates merged from multiple generators")
	}
	names := map[string]bool{}
	for _, c := range res.Candidates {
		names[c.Origin] = true
	}
	for _, want := range []string{"cd", "cat-helper", "case", "cleanup"} {
		if !names[want] {
			t.Fatalf("missing candidate %q among %v", want, names)
		}
	}
}

func TestEngine_AcceptRejectFilters(t *testing.T) {
	reg := NewRegistry()
	reg.Builtins = []string{"cd", "clear"}
	e := NewEngine(reg)

	res := e.Complete("c", 1, "", Options{Filters: []Filter{{Pattern: "cd", Accept: true}}})
	if len(res.Candidates) != 1 || res.Candidates[0].Origin != "cd" {
		t.Fatalf("got %+v", res.Candidates)
	}
}

func TestFileGenerator_CommonPrefixAcrossMatches(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alpha1", "alpha2", "beta"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ctx := Context{Kind: ContextArgument, Word: dir + "/al"}
	cands := SortDedup(FileGenerator(ctx))
	if len(cands) != 2 {
		t.Fatalf("expected the two alpha candidates, got %+v", cands)
	}
	if got := CommonPrefix(cands); got != dir+"/alpha" {
		t.Fatalf("common prefix should extend to alpha, got %q", got)
	}
}

func TestEngine_PerCommandFunctionBeforeFileCompletion(t *testing.T) {
	reg := NewRegistry()
	reg.PerCommand["git"] = StaticGenerator([]string{"commit", "checkout"})
	e := NewEngine(reg)

	res := e.Complete("git comm", 8, "git", Options{})
	if len(res.Candidates) != 1 || res.Candidates[0].Origin != "commit" {
		t.Fatalf("got %+v", res.Candidates)
	}
}
