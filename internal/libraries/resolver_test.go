package libraries

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptcc/internal/cache"
	"scriptcc/internal/config"
	"scriptcc/internal/symbols"
)

// compileOnlyToolchain fabricates objects for Compile and fails loudly on
// anything else; library builders only ever compile.
type compileOnlyToolchain struct {
	compiles int
}

func (f *compileOnlyToolchain) Compile(_ context.Context, _ *config.Settings, source, out string) error {
	f.compiles++
	return os.WriteFile(out, []byte("BC:"+filepath.Base(source)), 0o644)
}

func (f *compileOnlyToolchain) Assemble(context.Context, string, string) error { panic("unexpected") }
func (f *compileOnlyToolchain) Link(context.Context, []string, string) error   { panic("unexpected") }
func (f *compileOnlyToolchain) Symbols(context.Context, string) (string, error) {
	panic("unexpected")
}
func (f *compileOnlyToolchain) OptimizeBitcode(context.Context, string, int) error {
	panic("unexpected")
}
func (f *compileOnlyToolchain) DeadGlobalElim(context.Context, string) error { panic("unexpected") }
func (f *compileOnlyToolchain) Translate(context.Context, *config.Settings, string, string) error {
	panic("unexpected")
}
func (f *compileOnlyToolchain) ApplyPasses(context.Context, *config.Settings, string, []string) error {
	panic("unexpected")
}
func (f *compileOnlyToolchain) Minify(context.Context, string) error { panic("unexpected") }

func tableOf(defined, undefined []string) *symbols.Table {
	t := symbols.NewTable()
	for _, s := range defined {
		t.Define(s)
	}
	for _, s := range undefined {
		t.Refer(s)
	}
	return t
}

func resolveWith(t *testing.T, tables []*symbols.Table, settings *config.Settings) (*Resolution, *compileOnlyToolchain) {
	t.Helper()
	tc := &compileOnlyToolchain{}
	res, err := Resolve(context.Background(), tables, Registry(), cache.New(), tc, settings, nil)
	require.NoError(t, err)
	return res, tc
}

func TestNoUndefinedSymbolsIncludesNothing(t *testing.T) {
	s, _ := config.Derive(0)
	tables := []*symbols.Table{tableOf([]string{"main"}, []string{"printf"})}
	res, tc := resolveWith(t, tables, s)
	assert.Empty(t, res.Included)
	assert.Empty(t, res.Paths)
	assert.Zero(t, tc.compiles)
}

func TestAllocatorIncludedOnNeed(t *testing.T) {
	s, _ := config.Derive(0)
	tables := []*symbols.Table{tableOf([]string{"main"}, []string{"malloc", "free"})}
	res, _ := resolveWith(t, tables, s)
	assert.Equal(t, []string{"dlmalloc"}, res.Included)
	require.Len(t, res.Paths, 1)
}

func TestDefinedSymbolSuppressesInclusion(t *testing.T) {
	// The user supplied malloc themselves; free staying undefined does not
	// bring dlmalloc back in. Intentional heuristic.
	s, _ := config.Derive(0)
	tables := []*symbols.Table{
		tableOf([]string{"main", "malloc"}, []string{"free"}),
	}
	res, _ := resolveWith(t, tables, s)
	assert.Empty(t, res.Included)
}

func TestForcedInclusionIsTransitive(t *testing.T) {
	s, _ := config.Derive(0)
	tables := []*symbols.Table{tableOf([]string{"main"}, []string{"_Znwm"})}
	res, _ := resolveWith(t, tables, s)
	assert.Equal(t, []string{"libcxx", "libcxxabi", "dlmalloc"}, res.Included,
		"including libcxx must force everything it depends on")
}

func TestForcedInclusionIsOneDirectional(t *testing.T) {
	// Needing only the allocator never drags the C++ runtime in.
	s, _ := config.Derive(0)
	tables := []*symbols.Table{tableOf(nil, []string{"calloc"})}
	res, _ := resolveWith(t, tables, s)
	assert.Equal(t, []string{"dlmalloc"}, res.Included)
}

func TestUnionAcrossArtifacts(t *testing.T) {
	// One artifact needs malloc, another defines it: has beats need across
	// the whole input set.
	s, _ := config.Derive(0)
	tables := []*symbols.Table{
		tableOf(nil, []string{"malloc"}),
		tableOf([]string{"malloc"}, nil),
	}
	res, _ := resolveWith(t, tables, s)
	assert.Empty(t, res.Included)
}

func TestLibcxxFixupEnablesExceptionCatching(t *testing.T) {
	s, _ := config.Derive(2)
	require.True(t, s.DisableExceptionCatching)

	var warned string
	tc := &compileOnlyToolchain{}
	tables := []*symbols.Table{tableOf(nil, []string{"_ZSt9terminatev"})}
	_, err := Resolve(context.Background(), tables, Registry(), cache.New(), tc, s,
		func(format string, args ...interface{}) { warned = fmt.Sprintf(format, args...) })
	require.NoError(t, err)

	assert.False(t, s.DisableExceptionCatching, "fixup must re-enable exception catching")
	assert.NotEmpty(t, warned)
}

func TestResolveIsDeterministicAndIdempotent(t *testing.T) {
	s, _ := config.Derive(1)
	tables := []*symbols.Table{tableOf(nil, []string{"__cxa_throw", "realloc"})}

	first, _ := resolveWith(t, tables, s)
	second, _ := resolveWith(t, tables, s)
	assert.Equal(t, first.Included, second.Included)
	assert.Equal(t, []string{"libcxxabi", "dlmalloc"}, first.Included)
}

func TestResolveSharesCacheAcrossRequests(t *testing.T) {
	s, _ := config.Derive(0)
	store := cache.New()
	tc := &compileOnlyToolchain{}
	tables := []*symbols.Table{tableOf(nil, []string{"malloc"})}

	_, err := Resolve(context.Background(), tables, Registry(), store, tc, s, nil)
	require.NoError(t, err)
	_, err = Resolve(context.Background(), tables, Registry(), store, tc, s, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tc.compiles, "second request must reuse the cached artifact")
}
