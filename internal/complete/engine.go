package complete

import "strings"

// Registry resolves the generators available for a given context, and
// holds the accept/reject pattern chains a completion script can narrow
// candidates with.
type Registry struct {
	Builtins  []string
	Keywords  []string
	Aliases   []string
	Functions []string
	Variables []string
	Jobs      []string
	Signals   []string
	Users     []string
	Groups    []string
	Hosts     []string
	Bindings  []string

	// PerCommand maps a command name to the named completion function
	// tried first for its arguments. The function itself is an opaque
	// collaborator — represented here as a Generator so tests and the
	// builtin layer can register one without this package knowing
	// anything about the command language.
	PerCommand map[string]Generator

	// Autoload, when set, is tried for commands absent from PerCommand
	// (a completion-scripts directory, typically) before falling back to
	// file completion.
	Autoload func(command string) (Generator, bool)
}

// NewRegistry creates an empty registry; callers populate the
// vocabulary slices and PerCommand map as the shell accumulates state.
func NewRegistry() *Registry {
	return &Registry{PerCommand: make(map[string]Generator)}
}

// generatorsFor selects the default generator set for ctx: commands
// complete from external+builtin+function+keyword+alias
// (excluding slash-bearing words, which fall through to file completion
// instead); arguments try the command's named completion function, then
// an autoloaded script, then file completion.
func (r *Registry) generatorsFor(ctx Context, command string) []Generator {
	switch ctx.Kind {
	case ContextVariable, ContextArithmetic:
		// Arithmetic expansion references variable names without the $.
		return []Generator{StaticGenerator(r.Variables)}
	case ContextTilde:
		return []Generator{StaticGenerator(r.Users)}
	case ContextForIn, ContextForDo, ContextCaseIn:
		// Keyword slots in for/case headers complete from the keyword
		// vocabulary (`in`, `do`), never from files or commands.
		return []Generator{StaticGenerator(r.Keywords)}
	case ContextFunction:
		return []Generator{StaticGenerator(r.Functions)}
	case ContextCommand:
		if strings.ContainsRune(ctx.Word, '/') {
			return []Generator{FileGenerator}
		}
		return []Generator{
			ExternalGenerator,
			StaticGenerator(r.Builtins),
			StaticGenerator(r.Functions),
			StaticGenerator(r.Keywords),
			StaticGenerator(r.Aliases),
		}
	case ContextArgument:
		if fn, ok := r.PerCommand[command]; ok {
			return []Generator{fn}
		}
		if r.Autoload != nil {
			if fn, ok := r.Autoload(command); ok {
				return []Generator{fn}
			}
		}
		switch command {
		case "kill", "trap":
			// Signal-name arguments complete from the signal vocabulary
			// alongside files (kill also takes pids and jobspecs).
			return []Generator{StaticGenerator(r.Signals), FileGenerator}
		case "fg", "bg", "disown", "wait":
			return []Generator{StaticGenerator(r.Jobs), FileGenerator}
		}
		return []Generator{FileGenerator}
	default:
		return []Generator{FileGenerator}
	}
}

// Filter is an accept or reject pattern, applied to a candidate's
// Origin via glob matching; an empty pattern matches everything.
type Filter struct {
	Pattern string
	Accept  bool // true = -A (must match to keep), false = -R (must not match)
}

func (f Filter) apply(origin string) bool {
	if f.Pattern == "" {
		return true
	}
	ok, _ := matchGlob(f.Pattern, origin)
	if f.Accept {
		return ok
	}
	return !ok
}

// Options controls one completion request: the optional prefix/suffix
// to wrap the insertion in, whether to suppress the trailing
// terminator, a static description, and the accept/reject filters (the
// `complete` builtin's `-A`/`-R`/`-P`/`-S`/`-T`/`-D` flags).
type Options struct {
	Prefix       string
	Suffix       string
	NoTerminate  bool
	Description  string
	Filters      []Filter
	WordAsOption bool // `-O`: treat ctx.Word itself as an option-style token
}

// Engine drives the full completion pipeline.
type Engine struct {
	Registry *Registry
}

// NewEngine creates an Engine over reg.
func NewEngine(reg *Registry) *Engine {
	return &Engine{Registry: reg}
}

// Result is what a completion request produces: either a single
// candidate ready for insertion, or a list to present to the user.
type Result struct {
	Candidates   []Candidate
	CommonPrefix string
	Single       bool
}

// Complete runs the full pipeline: classify, select generators (merging
// every applicable one rather than stopping at the first non-empty
// one), filter, sort+dedup, and compute the common prefix.
func (e *Engine) Complete(line string, cursor int, command string, opts Options) Result {
	ctx := Classify(line, cursor)
	if opts.WordAsOption && !strings.HasPrefix(ctx.Word, "-") {
		ctx.Word = "-" + ctx.Word
	}

	gens := e.Registry.generatorsFor(ctx, command)

	var all []Candidate
	for _, g := range gens {
		all = append(all, g(ctx)...)
	}

	var filtered []Candidate
	for _, c := range all {
		keep := true
		for _, f := range opts.Filters {
			if !f.apply(c.Origin) {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		c.Insert = opts.Prefix + c.Insert + opts.Suffix
		if opts.Description != "" && c.Description == "" {
			c.Description = opts.Description
		}
		if opts.NoTerminate {
			c.NoTerminate = true
		}
		filtered = append(filtered, c)
	}

	filtered = SortDedup(filtered)

	return Result{
		Candidates:   filtered,
		CommonPrefix: CommonPrefix(filtered),
		Single:       len(filtered) == 1,
	}
}
