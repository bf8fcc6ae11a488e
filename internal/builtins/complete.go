package builtins

import (
	"path/filepath"
	"strings"

	"github.com/vush-shell/vush/internal/complete"
)

// Complete implements the `complete` builtin: inside a completion
// function, parse its flag set and register the resulting
// candidates/filters against the engine's current request.
//
// Flags: -A pattern (accept filter), -R pattern (reject filter),
// -P prefix, -S suffix, -T no-termination, -D description,
// -O word-as-option, plus category flags -a/-b/-c/-d/-f/-g/-h/-j/-k/-u/-v
// selecting which vocabulary from reg to draw candidates from.
// Sub-categories use long options (--signal, --bindkey, --function,
// --array-variable, --scalar-variable, --running-job, --stopped-job,
// --finished-job).
// Exit status is success iff at least one new candidate was produced.
func Complete(reg *complete.Registry, ctx complete.Context, args []string) (result complete.Result, status int) {
	opts := complete.Options{}
	var categories []string

	i := 0
	for i < len(args) {
		a := args[i]
		takesValue := a == "-A" || a == "-R" || a == "-P" || a == "-S" || a == "-D"
		if takesValue && i+1 >= len(args) {
			break // flag missing its value: stop parsing rather than panic
		}
		switch {
		case a == "-A":
			opts.Filters = append(opts.Filters, complete.Filter{Pattern: args[i+1], Accept: true})
			i += 2
		case a == "-R":
			opts.Filters = append(opts.Filters, complete.Filter{Pattern: args[i+1], Accept: false})
			i += 2
		case a == "-P":
			opts.Prefix = args[i+1]
			i += 2
		case a == "-S":
			opts.Suffix = args[i+1]
			i += 2
		case a == "-T":
			opts.NoTerminate = true
			i++
		case a == "-D":
			opts.Description = args[i+1]
			i += 2
		case a == "-O":
			opts.WordAsOption = true
			i++
		case strings.HasPrefix(a, "--"):
			categories = append(categories, strings.TrimPrefix(a, "--"))
			i++
		case strings.HasPrefix(a, "-") && len(a) == 2:
			categories = append(categories, a[1:])
			i++
		default:
			i++
		}
	}

	var all []complete.Candidate
	for _, cat := range categories {
		var names []string
		switch cat {
		case "a":
			names = reg.Aliases
		case "b":
			names = reg.Builtins
		case "d", "f":
			// file/directory candidates come from the filesystem generator,
			// not a static vocabulary.
			all = append(all, complete.FileGenerator(ctx)...)
			continue
		case "g":
			names = reg.Groups
		case "h":
			names = reg.Hosts
		case "j", "running-job", "stopped-job", "finished-job":
			names = reg.Jobs
		case "k":
			names = reg.Keywords
		case "u":
			names = reg.Users
		case "v", "array-variable", "scalar-variable":
			names = reg.Variables
		case "signal":
			names = reg.Signals
		case "bindkey":
			names = reg.Bindings
		case "function":
			names = reg.Functions
		case "c", "external-command", "executable-file":
			all = append(all, complete.ExternalGenerator(ctx)...)
			continue
		}
		all = append(all, complete.StaticGenerator(names)(ctx)...)
	}

	var filtered []complete.Candidate
	for _, c := range all {
		keep := true
		for _, f := range opts.Filters {
			ok := f.Pattern == ""
			if !ok {
				ok, _ = filepath.Match(f.Pattern, c.Origin)
			}
			if f.Accept && !ok {
				keep = false
			}
			if !f.Accept && ok {
				keep = false
			}
		}
		if !keep {
			continue
		}
		c.Insert = opts.Prefix + c.Insert + opts.Suffix
		if opts.Description != "" {
			c.Description = opts.Description
		}
		c.NoTerminate = opts.NoTerminate
		filtered = append(filtered, c)
	}

	filtered = complete.SortDedup(filtered)
	result = complete.Result{
		Candidates:   filtered,
		CommonPrefix: complete.CommonPrefix(filtered),
		Single:       len(filtered) == 1,
	}
	if len(filtered) == 0 {
		return result, ExitGenericFailure
	}
	return result, ExitSuccess
}
