package toolchain

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"scriptcc/internal/config"
)

// External runs the real toolchain programs. It is deliberately thin: the
// orchestrator owns all sequencing and error classification; this type only
// spawns processes and reports raw failures.
type External struct {
	// CC is the frontend compiler binary. SCRIPTCC_CC overrides it.
	CC string

	// ExtraFlags are appended to every frontend invocation.
	ExtraFlags []string

	// ForceCXX compiles every source as C++.
	ForceCXX bool

	// Linker, Optimizer, NM, Translator and Minifier name the remaining
	// toolchain binaries.
	Linker     string
	Optimizer  string
	NM         string
	Translator string
	Minifier   string
}

// NewExternal returns an External with the conventional binary names.
func NewExternal() *External {
	return &External{
		CC:         "clang",
		Linker:     "llvm-link",
		Optimizer:  "opt",
		NM:         "llvm-nm",
		Translator: "scriptgen",
		Minifier:   "scriptmin",
	}
}

func (e *External) run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", pkgerrors.Wrapf(err, "%s %s: %s", name, strings.Join(args, " "), strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func (e *External) Compile(ctx context.Context, settings *config.Settings, source, out string) error {
	args := []string{"-c", "-emit-llvm", source, "-o", out}
	if e.ForceCXX {
		args = append([]string{"-x", "c++"}, args...)
	}
	if !settings.Assertions {
		args = append(args, "-DNDEBUG")
	}
	args = append(args, e.ExtraFlags...)
	_, err := e.run(ctx, e.CC, args...)
	return err
}

func (e *External) Assemble(ctx context.Context, source, out string) error {
	_, err := e.run(ctx, e.Linker+"-as", source, "-o", out)
	return err
}

func (e *External) Link(ctx context.Context, objects []string, out string) error {
	args := append([]string{}, objects...)
	args = append(args, "-o", out)
	_, err := e.run(ctx, e.Linker, args...)
	return err
}

func (e *External) Symbols(ctx context.Context, object string) (string, error) {
	return e.run(ctx, e.NM, object)
}

func (e *External) OptimizeBitcode(ctx context.Context, object string, level int) error {
	_, err := e.run(ctx, e.Optimizer, "-O"+strconv.Itoa(level), object, "-o", object)
	return err
}

func (e *External) DeadGlobalElim(ctx context.Context, object string) error {
	_, err := e.run(ctx, e.Optimizer, "-globaldce", object, "-o", object)
	return err
}

func (e *External) Translate(ctx context.Context, settings *config.Settings, object, out string) error {
	args := []string{object, "-o", out}
	if settings.Reloop {
		args = append(args, "--reloop")
	}
	args = append(args, "--typed-arrays", strconv.Itoa(settings.TypedArrays))
	_, err := e.run(ctx, e.Translator, args...)
	return err
}

func (e *External) ApplyPasses(ctx context.Context, settings *config.Settings, script string, passes []string) error {
	args := []string{script}
	args = append(args, passes...)
	_, err := e.run(ctx, e.Translator+"-opt", args...)
	return err
}

func (e *External) Minify(ctx context.Context, script string) error {
	_, err := e.run(ctx, e.Minifier, script, "-o", script)
	return err
}

var _ Toolchain = (*External)(nil)
