// Package symbols models per-artifact defined/undefined symbol sets, the
// input to conditional support-library linking.
package symbols

import (
	"strings"
)

// Table holds the symbol surface of one compiled artifact. It is computed
// once, immediately before library resolution, and read-only afterwards.
type Table struct {
	defined   map[string]struct{}
	undefined map[string]struct{}
}

func NewTable() *Table {
	return &Table{
		defined:   make(map[string]struct{}),
		undefined: make(map[string]struct{}),
	}
}

// Define records a symbol this artifact provides.
func (t *Table) Define(name string) {
	t.defined[name] = struct{}{}
}

// Refer records a symbol this artifact references but does not provide.
func (t *Table) Refer(name string) {
	t.undefined[name] = struct{}{}
}

// Defines reports whether the artifact provides name.
func (t *Table) Defines(name string) bool {
	_, ok := t.defined[name]
	return ok
}

// Needs reports whether the artifact references name without providing it.
func (t *Table) Needs(name string) bool {
	_, ok := t.undefined[name]
	return ok
}

// DefinedCount and UndefinedCount expose set sizes for trace logging.
func (t *Table) DefinedCount() int   { return len(t.defined) }
func (t *Table) UndefinedCount() int { return len(t.undefined) }

// ParseListing builds a Table from an nm-style listing: one symbol per line,
// an optional address column, then a one-letter type code and the name.
// Code U (or u) marks an undefined reference; every other code counts as a
// definition. Blank and malformed lines are skipped.
func ParseListing(listing string) *Table {
	t := NewTable()
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// With an address column the code and name are the last two fields.
		code := fields[len(fields)-2]
		name := fields[len(fields)-1]
		if len(code) != 1 {
			continue
		}
		if code == "U" || code == "u" {
			t.Refer(name)
		} else {
			t.Define(name)
		}
	}
	return t
}
