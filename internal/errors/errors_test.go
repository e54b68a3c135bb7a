package errors

import (
	"bytes"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestDriverErrorFormatting(t *testing.T) {
	err := Config(ErrorOverrideSyntax, "expected KEY=VALUE, got %q", "FOO")
	assert.Equal(t, `config error[E0001]: expected KEY=VALUE, got "FOO"`, err.Error())

	wrapped := Link(fmt.Errorf("exit status 1"), "linking 3 objects")
	assert.Contains(t, wrapped.Error(), "link error[E0040]")
	assert.Contains(t, wrapped.Error(), "exit status 1")
}

func TestKindMatching(t *testing.T) {
	err := Usage("explicit target with -c and multiple inputs")
	assert.True(t, IsKind(err, UsageError), "should match its own kind")
	assert.False(t, IsKind(err, LinkError), "should not match another kind")

	// Matching survives wrapping.
	outer := fmt.Errorf("while assembling output: %w", err)
	assert.True(t, IsKind(outer, UsageError))
	assert.True(t, goerrors.Is(outer, &DriverError{Kind: UsageError}))

	// A zero-valued target matches nothing, including config errors.
	zero := &DriverError{}
	assert.False(t, goerrors.Is(err, zero))
	assert.False(t, goerrors.Is(Config(ErrorOverrideSyntax, "bad override"), zero))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("builder exploded")
	err := LibraryBuild(cause, "building dlmalloc")
	assert.Equal(t, cause, goerrors.Unwrap(err))
}

func TestReporterOutput(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Report(Template("no placeholder in shell.html"))
	assert.Equal(t, "error[E0080]: no placeholder in shell.html\n", buf.String())

	buf.Reset()
	r.Warn("--minify ignored for object target")
	assert.Equal(t, "warning: --minify ignored for object target\n", buf.String())

	buf.Reset()
	r.Report(Compile(fmt.Errorf("exit status 2"), "no object produced for main.c"))
	assert.Contains(t, buf.String(), "error[E0020]: no object produced for main.c")
	assert.Contains(t, buf.String(), "caused by: exit status 2")
}
