package libraries

import (
	"context"

	"scriptcc/internal/cache"
	"scriptcc/internal/config"
	"scriptcc/internal/errors"
	"scriptcc/internal/symbols"
	"scriptcc/internal/toolchain"
)

// Resolution is the outcome of conditional library linking: artifact paths
// in link order, and the library names that were pulled in.
type Resolution struct {
	Paths    []string
	Included []string
}

// WarnFunc receives non-fatal diagnostics from fixups. May be nil.
type WarnFunc func(format string, args ...interface{})

// Resolve walks the catalog in order, deciding inclusion per descriptor:
// a library is included when forced by an already-included library that
// depends on it, or when some input references one of its symbols and no
// input defines any of them. A single defined symbol suppresses inclusion
// even if other symbols of the surface remain undefined - the user is
// assumed to have supplied their own implementation. Included libraries are
// materialized through the build cache and their fixups mutate settings.
func Resolve(
	ctx context.Context,
	tables []*symbols.Table,
	catalog []Descriptor,
	store *cache.Cache,
	tc toolchain.Toolchain,
	settings *config.Settings,
	warn WarnFunc,
) (*Resolution, error) {
	byName := make(map[string]*Descriptor, len(catalog))
	for i := range catalog {
		byName[catalog[i].Name] = &catalog[i]
	}

	forced := make(map[string]bool)
	res := &Resolution{}

	for i := range catalog {
		d := &catalog[i]
		need, has := false, false
		for _, sym := range d.Symbols {
			for _, t := range tables {
				if t.Needs(sym) {
					need = true
				}
				if t.Defines(sym) {
					has = true
				}
			}
		}

		if !forced[d.Name] && !(need && !has) {
			continue
		}

		path, err := store.Get(d.Name, func() (string, error) {
			return d.Build(ctx, tc, settings)
		})
		if err != nil {
			return nil, errors.LibraryBuild(err, "building %s", d.Name)
		}
		res.Paths = append(res.Paths, path)
		res.Included = append(res.Included, d.Name)

		if d.Fixup != nil {
			if msg := d.Fixup(settings); msg != "" && warn != nil {
				warn("%s", msg)
			}
		}
		force(byName, forced, d.Deps)
	}
	return res, nil
}

// force marks the transitive dependency closure for unconditional inclusion.
func force(byName map[string]*Descriptor, forced map[string]bool, deps []string) {
	for _, name := range deps {
		if forced[name] {
			continue
		}
		forced[name] = true
		if d, ok := byName[name]; ok {
			force(byName, forced, d.Deps)
		}
	}
}
