// Package alias is the opaque alias/hash-table collaborator: a plain
// key/value store the core treats as external state. The `alias`
// builtin in cmd/vush reads and writes it and copies its names into
// internal/complete's alias vocabulary (command-position completion and
// `complete -a`).
package alias

import "sort"

// Table is a name -> expansion map. The zero value is ready to use.
type Table struct {
	m map[string]string
}

// New returns an empty alias table.
func New() *Table { return &Table{m: make(map[string]string)} }

// Set records name as an alias for expansion.
func (t *Table) Set(name, expansion string) {
	if t.m == nil {
		t.m = make(map[string]string)
	}
	t.m[name] = expansion
}

// Unset removes name, if present.
func (t *Table) Unset(name string) { delete(t.m, name) }

// Get returns the expansion for name and whether it exists.
func (t *Table) Get(name string) (string, bool) {
	v, ok := t.m[name]
	return v, ok
}

// Names returns every alias name in sorted order, the vocabulary
// internal/complete's alias generator draws candidates from.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.m))
	for k := range t.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
