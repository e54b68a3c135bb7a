// Package config implements the settings-resolution model: per-level
// defaults, ordered KEY=VALUE overrides, and the typed settings record
// threaded through every pipeline stage.
package config

import (
	"scriptcc/internal/errors"
)

// Settings is the build configuration record for one build request. Known
// keys are typed fields; unknown keys are kept verbatim in Extra so callers
// of future toolchains keep working (open schema). Exactly one Settings
// value exists per request and is passed explicitly, never read from
// globals.
type Settings struct {
	// Assertions enables runtime assertion checks in the translated output.
	Assertions bool

	// DisableExceptionCatching removes exception-catching scaffolding.
	DisableExceptionCatching bool

	// Reloop enables structural control-flow reconstruction.
	Reloop bool

	// MicroOpts enables safe backend micro-optimizations.
	MicroOpts bool

	// TypedArrays selects the typed-array memory model (0, 1 or 2).
	TypedArrays int

	// Extra holds overrides for keys this driver does not know about.
	// Values are int64, string or []string exactly as written.
	Extra map[string]interface{}
}

// Known settings keys accepted by -s.
const (
	KeyAssertions               = "ASSERTIONS"
	KeyDisableExceptionCatching = "DISABLE_EXCEPTION_CATCHING"
	KeyReloop                   = "RELOOP"
	KeyMicroOpts                = "MICRO_OPTS"
	KeyTypedArrays              = "TYPED_ARRAYS"
)

// Derive returns the documented defaults for an optimization level.
//
// Level 0 keeps assertions on and performs no restructuring. Level 1 and up
// drop assertions, suppress exception catching and enable safe backend
// micro-optimizations. Level 2 and up additionally enable structural
// control-flow reconstruction (minification also defaults on from level 2,
// reported separately by MinifyDefault).
func Derive(level int) (*Settings, error) {
	if level < 0 || level > 3 {
		return nil, errors.Config(errors.ErrorBadOptLevel, "invalid optimization level %d (expected 0-3)", level)
	}
	s := &Settings{
		Assertions:  true,
		TypedArrays: 1,
		Extra:       make(map[string]interface{}),
	}
	if level >= 1 {
		s.Assertions = false
		s.DisableExceptionCatching = true
		s.MicroOpts = true
	}
	if level >= 2 {
		s.Reloop = true
	}
	return s, nil
}

// MinifyDefault reports whether minification defaults on at this level.
// The CLI minify toggle overrides it either way.
func MinifyDefault(level int) bool {
	return level >= 2
}

// Apply assigns overrides in declaration order; the last write per key wins.
// Overrides always take precedence over level defaults.
func Apply(s *Settings, overrides []Override) error {
	for _, ov := range overrides {
		if err := assign(s, ov); err != nil {
			return err
		}
	}
	return nil
}

func assign(s *Settings, ov Override) error {
	switch ov.Key {
	case KeyAssertions:
		return assignBool(&s.Assertions, ov)
	case KeyDisableExceptionCatching:
		return assignBool(&s.DisableExceptionCatching, ov)
	case KeyReloop:
		return assignBool(&s.Reloop, ov)
	case KeyMicroOpts:
		return assignBool(&s.MicroOpts, ov)
	case KeyTypedArrays:
		if ov.Int == nil {
			return errors.Config(errors.ErrorOverrideType, "%s expects an integer", ov.Key)
		}
		n := int(*ov.Int)
		if n < 0 || n > 2 {
			return errors.Config(errors.ErrorOverrideType, "%s expects 0, 1 or 2, got %d", ov.Key, n)
		}
		s.TypedArrays = n
		return nil
	default:
		s.Extra[ov.Key] = ov.value()
		return nil
	}
}

func assignBool(dst *bool, ov Override) error {
	if ov.Int == nil || (*ov.Int != 0 && *ov.Int != 1) {
		return errors.Config(errors.ErrorOverrideType, "%s expects 0 or 1", ov.Key)
	}
	*dst = *ov.Int == 1
	return nil
}
