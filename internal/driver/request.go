// Package driver contains the pipeline orchestrator: it sequences settings
// resolution, per-input compilation, conditional library linking, bitcode
// optimization, translation and the batched pass checkpoints for one build
// request, and assembles the final artifact.
package driver

import (
	"path/filepath"
	"strings"

	"scriptcc/internal/config"
	"scriptcc/internal/errors"
)

// InputKind classifies a positional input by suffix.
type InputKind int

const (
	KindSource InputKind = iota
	KindBitcodeText
	KindObject
)

// InputArtifact is one positional input. Object is recorded once after the
// compile stage and never mutated afterwards.
type InputArtifact struct {
	Path   string
	Kind   InputKind
	Object string
}

// stem returns the input filename without its suffix.
func (a *InputArtifact) stem() string {
	base := filepath.Base(a.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TargetKind classifies the requested output.
type TargetKind int

const (
	// TargetObject emits the linked bitcode object directly.
	TargetObject TargetKind = iota
	// TargetProgram emits translated script text.
	TargetProgram
	// TargetDocument emits script text embedded in a shell template.
	TargetDocument
)

// Target is the requested output path with its kind inferred from suffix.
type Target struct {
	Path string
	Kind TargetKind
}

// DefaultTarget is used when no -o flag is given.
const DefaultTarget = "a.out.js"

// BuildRequest is one parsed build invocation. It is immutable once parsed
// and consumed exactly once by the orchestrator.
type BuildRequest struct {
	Inputs []*InputArtifact

	// OptLevel is the -O level, 0-3.
	OptLevel int

	// BitcodeOpts overrides the backend optimization level; -1 means
	// derive it from the settings.
	BitcodeOpts int

	// Minify overrides the level default when non-nil.
	Minify *bool

	// Compress requests the whitespace-compression pass.
	Compress bool

	// TransformCmd, when non-empty, is run on the translated text.
	TransformCmd string

	// Overrides are the ordered -s pairs.
	Overrides []config.Override

	Target    Target
	ShellFile string

	// CompileOnly suppresses linking and later stages (-c).
	CompileOnly bool

	// Shared marks a shared/linkable library build; dead-globals
	// elimination is skipped for those.
	Shared bool

	// DepFile, when non-empty, is written as an empty dependency file.
	DepFile string
}

func classifyInput(path string) (InputKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c", ".cc", ".cpp", ".cxx":
		return KindSource, nil
	case ".ll":
		return KindBitcodeText, nil
	case ".o", ".bc":
		return KindObject, nil
	default:
		return 0, errors.Config(errors.ErrorBadInput, "unrecognized input %q", path)
	}
}

func classifyTarget(path string) (Target, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".o", ".bc":
		return Target{Path: path, Kind: TargetObject}, nil
	case ".js":
		return Target{Path: path, Kind: TargetProgram}, nil
	case ".html":
		return Target{Path: path, Kind: TargetDocument}, nil
	default:
		return Target{}, errors.Config(errors.ErrorBadTarget, "unrecognized target %q", path)
	}
}
