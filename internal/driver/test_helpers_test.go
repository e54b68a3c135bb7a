package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"scriptcc/internal/config"
)

// fakeToolchain fabricates artifacts and records every call so pipeline
// tests can assert sequencing without spawning external programs.
type fakeToolchain struct {
	mu    sync.Mutex
	calls []string

	// listings maps a source/object basename to the nm listing its object
	// reports. Unlisted objects report a lone defined main.
	listings map[string]string

	// objectListings is populated as sources compile, keyed by object path.
	objectListings map[string]string

	// failures maps an operation name ("compile", "link", ...) to an error.
	failures map[string]error

	// translated is the script text Translate writes.
	translated string
}

func newFakeToolchain() *fakeToolchain {
	return &fakeToolchain{
		listings:       make(map[string]string),
		objectListings: make(map[string]string),
		failures:       make(map[string]error),
		translated:     "function main() { return 0; }\n",
	}
}

func (f *fakeToolchain) record(format string, args ...interface{}) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

// callsFor returns recorded calls with the given prefix.
func (f *fakeToolchain) callsFor(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeToolchain) listingFor(key string) string {
	if l, ok := f.listings[key]; ok {
		return l
	}
	return "T main\n"
}

func (f *fakeToolchain) Compile(_ context.Context, _ *config.Settings, source, out string) error {
	f.record("compile %s", filepath.Base(source))
	if err := f.failures["compile"]; err != nil {
		return err
	}
	f.mu.Lock()
	f.objectListings[out] = f.listingFor(filepath.Base(source))
	f.mu.Unlock()
	return os.WriteFile(out, []byte("BC:"+filepath.Base(source)), 0o644)
}

func (f *fakeToolchain) Assemble(_ context.Context, source, out string) error {
	f.record("assemble %s", filepath.Base(source))
	f.mu.Lock()
	f.objectListings[out] = f.listingFor(filepath.Base(source))
	f.mu.Unlock()
	return os.WriteFile(out, []byte("BC:"+filepath.Base(source)), 0o644)
}

func (f *fakeToolchain) Link(_ context.Context, objects []string, out string) error {
	f.record("link %d", len(objects))
	if err := f.failures["link"]; err != nil {
		return err
	}
	return os.WriteFile(out, []byte("LINKED"), 0o644)
}

func (f *fakeToolchain) Symbols(_ context.Context, object string) (string, error) {
	f.record("symbols %s", filepath.Base(object))
	if err := f.failures["symbols"]; err != nil {
		return "", err
	}
	f.mu.Lock()
	listing, ok := f.objectListings[object]
	f.mu.Unlock()
	if !ok {
		listing = f.listingFor(filepath.Base(object))
	}
	return listing, nil
}

func (f *fakeToolchain) OptimizeBitcode(_ context.Context, object string, level int) error {
	f.record("optimize %d", level)
	return f.failures["optimize"]
}

func (f *fakeToolchain) DeadGlobalElim(_ context.Context, object string) error {
	f.record("globaldce")
	return f.failures["globaldce"]
}

func (f *fakeToolchain) Translate(_ context.Context, _ *config.Settings, object, out string) error {
	f.record("translate %s", filepath.Base(object))
	if err := f.failures["translate"]; err != nil {
		return err
	}
	return os.WriteFile(out, []byte(f.translated), 0o644)
}

func (f *fakeToolchain) ApplyPasses(_ context.Context, _ *config.Settings, script string, names []string) error {
	f.record("passes %s", strings.Join(names, ","))
	return f.failures["passes"]
}

func (f *fakeToolchain) Minify(_ context.Context, script string) error {
	f.record("minify")
	if err := f.failures["minify"]; err != nil {
		return err
	}
	data, err := os.ReadFile(script)
	if err != nil {
		return err
	}
	return os.WriteFile(script, []byte(strings.ReplaceAll(string(data), "\n", "")), 0o644)
}

// writeSource drops a placeholder source file into dir and returns its path.
func writeSource(dir, name string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("int main() { return 0; }\n"), 0o644); err != nil {
		panic(err)
	}
	return path
}
