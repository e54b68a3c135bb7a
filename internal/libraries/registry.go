// Package libraries holds the runtime support-library catalog and the
// conditional linker that decides, from per-artifact symbol tables, which
// libraries a build must pull in.
package libraries

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"

	"scriptcc/internal/config"
	"scriptcc/internal/toolchain"
)

// Descriptor describes one support library: the symbol surface it provides,
// the libraries it requires, an optional settings fixup applied on
// inclusion, and a builder producing its precompiled artifact.
type Descriptor struct {
	// Name identifies the library and keys its cache entry.
	Name string

	// Symbols is the surface the library provides. A build needs the
	// library when any of these appear undefined in an input; any of them
	// appearing defined suppresses inclusion (the user brought their own).
	Symbols []string

	// Deps names libraries this one requires. Inclusion forces the whole
	// transitive closure in.
	Deps []string

	// Fixup optionally mutates the build settings when the library is
	// included. It returns a warning message, or "".
	Fixup func(*config.Settings) string

	// Build compiles the library and returns the artifact path.
	Build func(ctx context.Context, tc toolchain.Toolchain, settings *config.Settings) (string, error)
}

//go:embed support/dlmalloc.c
var dlmallocSource string

//go:embed support/libcxx.cpp
var libcxxSource string

//go:embed support/libcxxabi.cpp
var libcxxabiSource string

// Registry returns the support-library catalog in evaluation order. The
// order is a topological sort of the dependency edges: a library precedes
// everything it depends on, so forced inclusion only ever propagates
// forward.
func Registry() []Descriptor {
	return []Descriptor{
		{
			Name: "libcxx",
			Symbols: []string{
				"_Znwm", "_Znam", "_ZdlPv", "_ZdaPv",
				"_ZSt9terminatev",
			},
			Deps: []string{"libcxxabi", "dlmalloc"},
			Fixup: func(s *config.Settings) string {
				if s.DisableExceptionCatching {
					s.DisableExceptionCatching = false
					return "using libcxx, enabling exception catching"
				}
				return ""
			},
			Build: buildSupport("libcxx.cpp", libcxxSource),
		},
		{
			Name: "libcxxabi",
			Symbols: []string{
				"__cxa_allocate_exception", "__cxa_throw",
				"__cxa_begin_catch", "__cxa_end_catch",
				"__cxa_guard_acquire", "__cxa_guard_release",
				"__cxa_pure_virtual",
			},
			Deps:  []string{"dlmalloc"},
			Build: buildSupport("libcxxabi.cpp", libcxxabiSource),
		},
		{
			Name:    "dlmalloc",
			Symbols: []string{"malloc", "free", "calloc", "realloc"},
			Build:   buildSupport("dlmalloc.c", dlmallocSource),
		},
	}
}

// buildSupport writes an embedded support source to a scratch directory and
// compiles it to a bitcode object.
func buildSupport(filename, source string) func(context.Context, toolchain.Toolchain, *config.Settings) (string, error) {
	return func(ctx context.Context, tc toolchain.Toolchain, settings *config.Settings) (string, error) {
		dir, err := os.MkdirTemp("", "scriptcc-lib-")
		if err != nil {
			return "", pkgerrors.Wrap(err, "creating library scratch dir")
		}
		src := filepath.Join(dir, filename)
		if err := os.WriteFile(src, []byte(source), 0o644); err != nil {
			return "", pkgerrors.Wrapf(err, "writing %s", filename)
		}
		out := src + ".bc"
		if err := tc.Compile(ctx, settings, src, out); err != nil {
			return "", err
		}
		return out, nil
	}
}
