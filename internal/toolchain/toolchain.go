// Package toolchain defines the external-collaborator surface of the driver:
// the frontend compiler, bitcode linker and optimizer, translator and
// minifier sit behind one interface so the orchestrator can be exercised
// against a fake without spawning processes.
package toolchain

import (
	"context"

	"scriptcc/internal/config"
)

// Toolchain is the capability surface the pipeline orchestrator depends on.
// All operations are synchronous and blocking; implementations report
// failure through the returned error only.
type Toolchain interface {
	// Compile runs the frontend on one source file and writes a bitcode
	// object to out.
	Compile(ctx context.Context, settings *config.Settings, source, out string) error

	// Assemble converts textual bitcode to object form.
	Assemble(ctx context.Context, source, out string) error

	// Link combines objects into a single bitcode object at out.
	Link(ctx context.Context, objects []string, out string) error

	// Symbols returns the nm-style symbol listing for an object: one
	// symbol per line, "T name" for defined, "U name" for undefined.
	Symbols(ctx context.Context, object string) (string, error)

	// OptimizeBitcode runs the full backend optimizer at the given level,
	// rewriting the object in place.
	OptimizeBitcode(ctx context.Context, object string, level int) error

	// DeadGlobalElim runs only dead-globals elimination on the object.
	DeadGlobalElim(ctx context.Context, object string) error

	// Translate turns a bitcode object into script text at out.
	Translate(ctx context.Context, settings *config.Settings, object, out string) error

	// ApplyPasses applies the named text transformations to the script
	// file in insertion order, in one invocation.
	ApplyPasses(ctx context.Context, settings *config.Settings, script string, passes []string) error

	// Minify rewrites the script file with the minifier.
	Minify(ctx context.Context, script string) error
}
