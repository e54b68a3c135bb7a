package driver

import (
	"os"
	"strconv"
)

// Env carries environment-derived pipeline configuration. These are knobs
// on the pipeline itself, not build semantics; they are read once in main
// and passed down explicitly.
type Env struct {
	// Debug is the trace verbosity from SCRIPTCC_DEBUG.
	Debug int

	// TempDir pins the workspace to a persistent directory
	// (SCRIPTCC_TEMP_DIR); auto-cleanup is disabled and the path printed.
	TempDir string

	// InputsRaw skips bitcode-level processing entirely: inputs are
	// treated as a ready linked object (SCRIPTCC_INPUTS_RAW).
	InputsRaw bool

	// CC overrides the frontend compiler binary (SCRIPTCC_CC).
	CC string

	// CFlags are extra frontend flags (SCRIPTCC_CFLAGS, space-separated).
	CFlags string

	// ForceCXX forces the C++ frontend (SCRIPTCC_FORCE_CXX).
	ForceCXX bool

	// CacheRoot enables the persistent support-library cache
	// (SCRIPTCC_CACHE).
	CacheRoot string
}

// ReadEnv collects the SCRIPTCC_* environment knobs.
func ReadEnv() Env {
	debug, _ := strconv.Atoi(os.Getenv("SCRIPTCC_DEBUG"))
	return Env{
		Debug:     debug,
		TempDir:   os.Getenv("SCRIPTCC_TEMP_DIR"),
		InputsRaw: os.Getenv("SCRIPTCC_INPUTS_RAW") == "1",
		CC:        os.Getenv("SCRIPTCC_CC"),
		CFlags:    os.Getenv("SCRIPTCC_CFLAGS"),
		ForceCXX:  os.Getenv("SCRIPTCC_FORCE_CXX") == "1",
		CacheRoot: os.Getenv("SCRIPTCC_CACHE"),
	}
}
