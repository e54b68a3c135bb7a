package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptcc/internal/config"
	"scriptcc/internal/errors"
)

func TestParseArgsDefaults(t *testing.T) {
	req, info, err := ParseArgs([]string{"main.c"})
	require.NoError(t, err)
	assert.Empty(t, info)
	assert.Equal(t, 0, req.OptLevel)
	assert.Equal(t, -1, req.BitcodeOpts)
	assert.Nil(t, req.Minify)
	assert.False(t, req.Compress)
	assert.False(t, req.CompileOnly)
	assert.Equal(t, Target{Path: DefaultTarget, Kind: TargetProgram}, req.Target)
	require.Len(t, req.Inputs, 1)
	assert.Equal(t, KindSource, req.Inputs[0].Kind)
}

func TestParseArgsInputKinds(t *testing.T) {
	req, _, err := ParseArgs([]string{"a.c", "b.ll", "c.o", "d.bc", "e.cpp"})
	require.NoError(t, err)
	kinds := []InputKind{KindSource, KindBitcodeText, KindObject, KindObject, KindSource}
	for i, want := range kinds {
		assert.Equal(t, want, req.Inputs[i].Kind, "input %d", i)
	}

	_, _, err = ParseArgs([]string{"weird.xyz"})
	assert.True(t, errors.IsKind(err, errors.ConfigError))
}

func TestParseArgsFlags(t *testing.T) {
	req, _, err := ParseArgs([]string{
		"main.c", "-O2", "-o", "app.html",
		"-s", "FOO=1", "-s", "RELOOP=0",
		"--bitcode-opts", "1", "--minify", "1", "--compress", "1",
		"--transform", "sed -i s/a/b/", "--shell-file", "custom.html",
		"--dep-file", "deps.d", "-shared",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, req.OptLevel)
	assert.Equal(t, Target{Path: "app.html", Kind: TargetDocument}, req.Target)
	assert.Equal(t, 1, req.BitcodeOpts)
	require.NotNil(t, req.Minify)
	assert.True(t, *req.Minify)
	assert.True(t, req.Compress)
	assert.Equal(t, "sed -i s/a/b/", req.TransformCmd)
	assert.Equal(t, "custom.html", req.ShellFile)
	assert.Equal(t, "deps.d", req.DepFile)
	assert.True(t, req.Shared)
	require.Len(t, req.Overrides, 2)
	assert.Equal(t, "FOO", req.Overrides[0].Key)
	assert.Equal(t, "RELOOP", req.Overrides[1].Key)
}

func TestParseArgsTypedArraysMapsToSettingsKey(t *testing.T) {
	req, _, err := ParseArgs([]string{"main.c", "--typed-arrays", "2"})
	require.NoError(t, err)
	require.Len(t, req.Overrides, 1)
	assert.Equal(t, config.KeyTypedArrays, req.Overrides[0].Key)
	require.NotNil(t, req.Overrides[0].Int)
	assert.Equal(t, int64(2), *req.Overrides[0].Int)

	_, _, err = ParseArgs([]string{"main.c", "--typed-arrays", "5"})
	assert.Error(t, err)
}

func TestParseArgsInformational(t *testing.T) {
	_, info, err := ParseArgs([]string{"--version"})
	require.NoError(t, err)
	assert.Contains(t, info, "scriptcc")

	// --help wins even in the middle of an otherwise broken command line.
	_, info, err = ParseArgs([]string{"-o", "--help", "nonsense.xyz"})
	require.NoError(t, err)
	assert.Contains(t, info, "Usage:")
}

func TestParseArgsErrors(t *testing.T) {
	_, _, err := ParseArgs([]string{})
	assert.True(t, errors.IsKind(err, errors.UsageError), "no inputs")

	_, _, err = ParseArgs([]string{"main.c", "-O7"})
	assert.True(t, errors.IsKind(err, errors.ConfigError), "bad level")

	_, _, err = ParseArgs([]string{"main.c", "--bitcode-opts", "2"})
	assert.True(t, errors.IsKind(err, errors.ConfigError), "bitcode opts is 0 or 1")

	_, _, err = ParseArgs([]string{"main.c", "-o"})
	assert.Error(t, err, "dangling -o")

	_, _, err = ParseArgs([]string{"main.c", "--frobnicate"})
	assert.True(t, errors.IsKind(err, errors.ConfigError), "unknown flag")

	_, _, err = ParseArgs([]string{"main.c", "-s", "NOEQUALS"})
	assert.True(t, errors.IsKind(err, errors.ConfigError), "malformed override")

	_, _, err = ParseArgs([]string{"main.c", "-o", "out.weird"})
	assert.True(t, errors.IsKind(err, errors.ConfigError), "bad target suffix")
}

func TestEffectiveMinify(t *testing.T) {
	off, on := false, true
	cases := []struct {
		level  int
		toggle *bool
		want   bool
	}{
		{0, nil, false},
		{2, nil, true},
		{2, &off, false},
		{0, &on, true},
	}
	for _, c := range cases {
		r := &BuildRequest{OptLevel: c.level, Minify: c.toggle}
		assert.Equal(t, c.want, r.effectiveMinify(), "level %d", c.level)
	}
}
